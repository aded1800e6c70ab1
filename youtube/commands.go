package youtube

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"jarvis/textnorm"
)

// ExecuteCommand routes a spoken command to the right flow: bare navigation
// (home, history, watch later), positional selection ("play video three"),
// or title resolution. Unrecognized commands fall through to resolution with
// the whole phrase as the query.
func (r *Resolver) ExecuteCommand(raw string) Outcome {
	cmd := strings.ToLower(strings.TrimSpace(raw))
	if cmd == "" {
		return Outcome{Kind: OutcomeNotFound, Message: "Say a command first"}
	}
	log.Printf("📥 Command: %q", cmd)

	switch {
	case isNavCommand(cmd, "home"):
		return r.navOutcome("home", OpenHome(r.sess))
	case isNavCommand(cmd, "watch later"):
		return r.navOutcome("watch later", OpenWatchLater(r.sess))
	case isNavCommand(cmd, "history"):
		return r.navOutcome("history", OpenHistory(r.sess))
	}

	if idx := textnorm.ParseVideoIndex(cmd); idx > 0 && !mentionsTitle(cmd) {
		return r.PlayByIndex(idx)
	}

	if strings.HasPrefix(cmd, "search") {
		if title := textnorm.ExtractTitle(raw); title != "" {
			return r.SearchAndPlay(title)
		}
	}

	if title := textnorm.ExtractTitle(raw); title != "" {
		return r.Resolve(title)
	}
	return r.Resolve(raw)
}

// isNavCommand reports whether the command is essentially just the
// destination plus filler, so "play home alone" stays a title request while
// "go to home" navigates.
func isNavCommand(cmd, word string) bool {
	if !strings.Contains(cmd, word) {
		return false
	}
	rest := strings.ReplaceAll(cmd, word, " ")
	for _, f := range strings.Fields(rest) {
		switch f {
		case "go", "to", "open", "show", "the", "my", "me", "take", "back", "youtube", "page", "feed", "tab":
		default:
			return false
		}
	}
	return true
}

// mentionsTitle reports whether the command carries title words beyond the
// positional phrase itself, e.g. "play video two of the lecture series".
func mentionsTitle(cmd string) bool {
	t := textnorm.ExtractTitle(cmd)
	if t == "" {
		return false
	}
	fields := strings.Fields(t)
	if len(fields) == 1 && textnorm.ParseVideoIndex("video "+fields[0]) != 0 {
		return false
	}
	return true
}

func (r *Resolver) navOutcome(where string, err error) Outcome {
	if err != nil {
		if !r.sess.Alive() {
			return Outcome{Kind: OutcomeSessionLost, Message: "I couldn't reach the browser session"}
		}
		return Outcome{Kind: OutcomeNotFound, Message: fmt.Sprintf("couldn't open %s: %v", where, err)}
	}
	msg := "Opening " + where
	r.announce(msg)
	return Outcome{Kind: OutcomeActivated, Title: where, Message: msg}
}

// PlayByIndex activates the idx-th video on the page, counting visible cards
// top to bottom. Scrolls forward until enough cards have rendered, under a
// deeper budget than the title flow since the target row is known to exist.
func (r *Resolver) PlayByIndex(idx int) Outcome {
	if !r.sess.Alive() {
		return Outcome{Kind: OutcomeSessionLost, Message: "I couldn't reach the browser session"}
	}
	log.Printf("🎬 Positional request: video %d", idx)

	scrolls := 0
	var cands []Candidate
	for {
		var err error
		cands, err = harvestDOM(r.sess, homeSelectors)
		if r.sessionLost(err) {
			return r.lostOutcome(scrolls)
		}
		if len(cands) >= idx {
			break
		}
		if scrolls >= indexScrolls {
			msg := fmt.Sprintf("I only found %d videos", len(cands))
			r.announce(msg)
			return Outcome{Kind: OutcomeNotFound, Scrolls: scrolls, Message: msg}
		}
		if err := r.scrollForward(); err != nil {
			if r.sessionLost(err) {
				return r.lostOutcome(scrolls)
			}
		}
		scrolls++
		time.Sleep(scrollSettle)
	}

	// Document order: harvest returns selector order, which interleaves when
	// several selectors fire, so sort by vertical position.
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Top < cands[j].Top })
	target := cands[idx-1]

	sc := &ScoredCandidate{Candidate: target, Score: 1.0}
	out := r.activate(NewQuery(target.Title), sc, scrolls)
	if out.Success() {
		out.Message = fmt.Sprintf("Playing video %d: %s", idx, target.Title)
	}
	return out
}
