package youtube

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"jarvis/browser"
	"jarvis/episodes"
	"jarvis/ocr"
	"jarvis/speech"
)

const (
	feedWait = 2500 * time.Millisecond
	feedPoll = 250 * time.Millisecond

	// Scroll budgets: the title flow gives up quickly and escalates to
	// search; the index flow has to reach a specific row so it digs deeper.
	titleScrolls = 3
	indexScrolls = 8

	scrollSettle = 400 * time.Millisecond
)

// Resolver runs one spoken query through the full resolution pipeline
// against a single shared browser session. Not safe for concurrent use:
// callers must serialize attempts.
type Resolver struct {
	sess *browser.Session
	rec  ocr.Recognizer
	ann  speech.Announcer
	eps  *episodes.Recorder
}

// NewResolver wires the resolver to its collaborators. rec and eps may be
// nil (OCR tier skipped, no episode recording); ann falls back to logging.
func NewResolver(sess *browser.Session, rec ocr.Recognizer, ann speech.Announcer, eps *episodes.Recorder) *Resolver {
	if ann == nil {
		ann = speech.LogAnnouncer{}
	}
	return &Resolver{sess: sess, rec: rec, ann: ann, eps: eps}
}

// Resolve locates and activates the video best matching the spoken phrase.
// Tiers degrade in fidelity: structured feed data and the visible DOM first,
// then scrolling, then a platform search, then OCR over a screenshot. Every
// wait is bounded; only session loss aborts early.
func (r *Resolver) Resolve(raw string) Outcome {
	start := time.Now()
	if !r.sess.Alive() {
		out := Outcome{Kind: OutcomeSessionLost, Message: "I couldn't reach the browser session"}
		r.finish(raw, start, out)
		return out
	}

	q := NewQuery(raw)
	if q.Canonical == "" {
		out := Outcome{Kind: OutcomeNotFound, Message: "Tell me which video to play"}
		r.finish(raw, start, out)
		return out
	}

	// Pass 1: structured feed data merged with the currently visible DOM.
	out, done := r.resolveFirstPass(q)
	if done {
		r.finish(raw, start, out)
		return out
	}

	// Pass 2: scroll the home feed forward under a bounded budget.
	sawRejection := false
	best, scrolls, err := incrementalResolve(q, r.homeHarvester(), r.scrollForward, r.sess.ViewportHeight, titleScrolls)
	if r.sessionLost(err) {
		out = r.lostOutcome(scrolls)
		r.finish(raw, start, out)
		return out
	}
	if errors.Is(err, ErrRejected) {
		sawRejection = true
	}
	if best != nil {
		out = r.activate(q, best, scrolls)
		if out.Success() {
			r.finish(raw, start, out)
			return out
		}
	}

	// Pass 3: platform search, one harvest pass over the results page.
	best, err = r.searchFallback(q)
	if r.sessionLost(err) {
		out = r.lostOutcome(scrolls)
		r.finish(raw, start, out)
		return out
	}
	if errors.Is(err, ErrRejected) {
		sawRejection = true
	}
	if best != nil {
		out = r.activate(q, best, scrolls)
		if out.Success() {
			r.finish(raw, start, out)
			return out
		}
	}

	// Pass 4: OCR over the current viewport, when a recognizer is wired in.
	best, err = resolveByOCR(r.sess, r.rec, q)
	if r.sessionLost(err) {
		out = r.lostOutcome(scrolls)
		r.finish(raw, start, out)
		return out
	}
	if errors.Is(err, ErrOCRUnavailable) {
		log.Printf("🔍 OCR tier skipped: recognizer unavailable")
	}
	if best != nil {
		out = r.activate(q, best, scrolls)
		if out.Success() {
			r.finish(raw, start, out)
			return out
		}
	}

	out = Outcome{Kind: OutcomeNotFound, Scrolls: scrolls, Message: "Couldn't find the requested video"}
	if sawRejection {
		// Candidates existed everywhere but none cleared the acceptance bar.
		out.Kind = OutcomeAmbiguous
		out.Message = "I found similar videos but none matched well enough"
	}
	r.announce(out.Message)
	r.finish(raw, start, out)
	return out
}

// SearchAndPlay skips the home-feed passes and resolves directly on the
// search-results page; used for explicit "search ..." commands.
func (r *Resolver) SearchAndPlay(raw string) Outcome {
	start := time.Now()
	if !r.sess.Alive() {
		out := Outcome{Kind: OutcomeSessionLost, Message: "I couldn't reach the browser session"}
		r.finish(raw, start, out)
		return out
	}
	q := NewQuery(raw)
	if q.Canonical == "" {
		out := Outcome{Kind: OutcomeNotFound, Message: "Tell me what to search for"}
		r.finish(raw, start, out)
		return out
	}

	best, err := r.searchFallback(q)
	if r.sessionLost(err) {
		out := r.lostOutcome(0)
		r.finish(raw, start, out)
		return out
	}
	var out Outcome
	if best != nil {
		out = r.activate(q, best, 0)
	} else {
		out = Outcome{Kind: OutcomeNotFound, Message: "Couldn't find a matching result"}
		r.announce(out.Message)
	}
	r.finish(raw, start, out)
	return out
}

// resolveFirstPass merges tier-1 feed candidates with the visible DOM and
// decides without scrolling. done is true when the attempt is finished,
// successfully or terminally.
func (r *Resolver) resolveFirstPass(q Query) (Outcome, bool) {
	feed, err := harvestFeed(r.sess, feedWait, feedPoll)
	if r.sessionLost(err) {
		return r.lostOutcome(0), true
	}
	dom, err := harvestDOM(r.sess, homeSelectors)
	if r.sessionLost(err) {
		return r.lostOutcome(0), true
	}

	merged := append(feed, dom...)
	if len(merged) == 0 {
		return Outcome{}, false
	}
	ranked := Rank(q, merged, r.sess.ViewportHeight())
	logTopMatches(ranked)
	best := Decide(q, ranked)
	if best == nil {
		return Outcome{}, false
	}
	out := r.activate(q, best, 0)
	return out, out.Success()
}

func (r *Resolver) homeHarvester() harvester {
	return func() ([]Candidate, error) {
		return harvestDOM(r.sess, homeSelectors)
	}
}

func (r *Resolver) scrollForward() error {
	delta := int(r.sess.ViewportHeight())
	if delta < 600 {
		delta = 600
	}
	return r.sess.ScrollBy(delta)
}

// harvester produces a fresh candidate set from the current page state.
type harvester func() ([]Candidate, error)

// incrementalResolve alternates harvesting and scrolling until a candidate
// is accepted, the feed stalls, or the scroll budget runs out. Returns the
// accepted candidate (nil on rejection) and the number of scrolls spent.
func incrementalResolve(q Query, harvest harvester, scroll func() error, viewportH func() float64, maxScrolls int) (*ScoredCandidate, int, error) {
	scrolls := 0
	prevCount := 0
	sawAny := false

	for {
		cands, err := harvest()
		if err != nil {
			return nil, scrolls, err
		}
		if len(cands) > 0 {
			sawAny = true
			ranked := Rank(q, cands, viewportH())
			if best := Decide(q, ranked); best != nil {
				return best, scrolls, nil
			}
			if hasStrongVisible(ranked) {
				// A near-certain match is on screen but undecidable;
				// scrolling away from it would only make things worse.
				return nil, scrolls, ErrRejected
			}
			if prevCount > 0 && len(cands) <= prevCount {
				return nil, scrolls, ErrRejected // stalled feed
			}
			prevCount = len(cands)
		}
		if scrolls >= maxScrolls {
			if !sawAny {
				return nil, scrolls, ErrNoCandidates
			}
			return nil, scrolls, ErrRejected
		}
		if err := scroll(); err != nil {
			return nil, scrolls, err
		}
		scrolls++
		time.Sleep(scrollSettle)
	}
}

// searchFallback navigates to the search-results view for the raw query and
// runs one combined harvest pass, no scrolling.
func (r *Resolver) searchFallback(q Query) (*ScoredCandidate, error) {
	target := baseURL + "/results?search_query=" + url.QueryEscape(q.Raw)
	log.Printf("🔎 Search fallback: %s", target)
	if err := r.sess.Navigate(target); err != nil {
		return nil, err
	}
	_ = r.sess.WaitForSelector("ytd-video-renderer a#video-title", 10*time.Second)

	feed, err := harvestFeed(r.sess, feedWait, feedPoll)
	if r.sessionLost(err) {
		return nil, err
	}
	dom, err := harvestDOM(r.sess, searchSelectors)
	if r.sessionLost(err) {
		return nil, err
	}
	merged := append(feed, dom...)
	if len(merged) == 0 {
		return nil, ErrNoCandidates
	}
	ranked := Rank(q, merged, r.sess.ViewportHeight())
	logTopMatches(ranked)
	best := Decide(q, ranked)
	if best == nil {
		return nil, ErrRejected
	}
	return best, nil
}

// activate runs the action executor for an accepted candidate and reports
// the outcome. dom- and ocr-sourced candidates click through their element
// handle; feed candidates navigate directly.
func (r *Resolver) activate(q Query, best *ScoredCandidate, scrolls int) Outcome {
	var err error
	if best.El != nil {
		err = activateElement(r.sess, best.El, best.Href)
	} else {
		err = activateByURL(r.sess, best.Candidate)
	}
	if err != nil {
		log.Printf("⚠️ Activation failed for %q: %v", best.Title, err)
		return Outcome{Kind: OutcomeNotFound, Tier: best.Source, Score: best.Score, Scrolls: scrolls,
			Message: fmt.Sprintf("activation failed: %v", err)}
	}
	msg := "Playing " + best.Title
	r.announce(msg)
	return Outcome{Kind: OutcomeActivated, Title: best.Title, Tier: best.Source,
		Score: best.Score, Scrolls: scrolls, Message: msg}
}

func (r *Resolver) sessionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, browser.ErrNotAttached) {
		return true
	}
	return !r.sess.Alive()
}

func (r *Resolver) lostOutcome(scrolls int) Outcome {
	out := Outcome{Kind: OutcomeSessionLost, Scrolls: scrolls, Message: "I couldn't reach the browser session"}
	r.announce(out.Message)
	return out
}

func (r *Resolver) announce(text string) {
	if r.ann != nil {
		r.ann.Announce(text)
	}
}

func (r *Resolver) finish(raw string, start time.Time, out Outcome) {
	if r.eps == nil {
		return
	}
	if err := r.eps.Record(episodes.Episode{
		Query:    raw,
		Outcome:  out.Kind,
		Tier:     string(out.Tier),
		Title:    out.Title,
		Score:    out.Score,
		Scrolls:  out.Scrolls,
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}); err != nil {
		log.Printf("⚠️ Episode record failed: %v", err)
	}
}

func logTopMatches(ranked []ScoredCandidate) {
	n := len(ranked)
	if n == 0 {
		return
	}
	if n > 3 {
		n = 3
	}
	for i := 0; i < n; i++ {
		log.Printf("  %d. score=%.3f src=%s title=%q",
			i+1, ranked[i].Score, ranked[i].Source, truncateTitle(ranked[i].Title, 80))
	}
}

// truncateTitle shortens a title to at most n runes; byte slicing could cut a
// multi-byte character in half.
func truncateTitle(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
