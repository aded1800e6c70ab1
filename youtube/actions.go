package youtube

import (
	"fmt"
	"log"
	"strings"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"jarvis/browser"
)

const (
	confirmBudget = 6 * time.Second
	confirmPoll   = 250 * time.Millisecond
	baseURL       = "https://www.youtube.com"
)

// Activation states, in order. An attempt either reaches stateConfirmed or
// fails at whichever step it was in.
type clickState int

const (
	stateIdle clickState = iota
	stateResolvedAnchor
	stateClicked
	stateConfirmed
	stateFailed
)

// resolveAnchorJS walks up to the enclosing card and picks the real clickable
// anchor; the matched text element is often not the thing to click.
const resolveAnchorJS = `el => {
  const card = el.closest('ytd-rich-item-renderer') || el.closest('ytd-rich-grid-media') || el.closest('ytd-video-renderer') || el;
  const a = (card && card.querySelector('a#video-title, a#video-title-link, a[href*="watch"]')) || el.closest('a[href*="watch"]') || el;
  return a;
}`

const playerPresentJS = `() => !!document.querySelector('ytd-watch-flexy, #movie_player, ytd-player')`

// activateElement clicks a dom-sourced candidate's element and confirms the
// resulting navigation. The click chain escalates native click -> pointer
// move-and-click -> scripted click; each step retries once for transient
// stale/intercepted races before escalating.
func activateElement(sess *browser.Session, el pw.ElementHandle, href string) error {
	state := stateIdle

	anchor := resolveAnchor(sess, el)
	state = stateResolvedAnchor
	_ = sess.ScrollIntoView(anchor)

	prevURL, err := sess.CurrentURL()
	if err != nil {
		return err
	}

	if href == "" {
		if h, err := anchor.GetAttribute("href"); err == nil {
			href = h
		}
	}

	if !clickChain(sess, anchor) {
		state = stateFailed
		return fmt.Errorf("click chain exhausted (state %d): %w", state, ErrRejected)
	}
	state = stateClicked

	if err := confirmNavigation(sess, prevURL, href); err != nil {
		state = stateFailed
		return err
	}
	state = stateConfirmed
	_ = state
	return nil
}

func resolveAnchor(sess *browser.Session, el pw.ElementHandle) pw.ElementHandle {
	h, err := el.EvaluateHandle(resolveAnchorJS)
	if err != nil || h == nil {
		return el
	}
	if anchor := h.AsElement(); anchor != nil {
		return anchor
	}
	return el
}

func clickChain(sess *browser.Session, anchor pw.ElementHandle) bool {
	strategies := []func() error{
		func() error { return sess.Click(anchor) },
		func() error {
			box, err := sess.BoundingBox(anchor)
			if err != nil || box == nil {
				return fmt.Errorf("no bounding box")
			}
			return sess.MouseClick(box.X+box.Width/2, box.Y+box.Height/2)
		},
		func() error {
			_, err := anchor.Evaluate("el => el.click()")
			return err
		},
	}
	for i, try := range strategies {
		for attempt := 0; attempt < 2; attempt++ {
			if err := try(); err == nil {
				return true
			} else if attempt == 0 {
				log.Printf("⚠️ Click strategy %d retry: %v", i+1, err)
				time.Sleep(150 * time.Millisecond)
			}
		}
	}
	return false
}

// confirmNavigation polls for a watch page or player element, then falls back
// to the weaker signals: any URL change, and finally direct navigation via
// the anchor's own link.
func confirmNavigation(sess *browser.Session, prevURL, href string) error {
	deadline := time.Now().Add(confirmBudget)
	for time.Now().Before(deadline) {
		cur, err := sess.CurrentURL()
		if err != nil {
			return err
		}
		if strings.Contains(strings.ToLower(cur), "watch") {
			return nil
		}
		if v, err := sess.Evaluate(playerPresentJS); err == nil {
			if present, _ := v.(bool); present {
				return nil
			}
		}
		time.Sleep(confirmPoll)
	}
	if cur, err := sess.CurrentURL(); err == nil && prevURL != "" && cur != prevURL {
		return nil
	}
	if strings.Contains(href, "watch") {
		log.Printf("⚠️ Confirmation timed out, navigating directly to %s", href)
		return sess.Navigate(absoluteURL(href))
	}
	return ErrNavigationTimeout
}

// activateByURL opens a feed-sourced candidate through direct navigation;
// feed entries carry no element handle to click.
func activateByURL(sess *browser.Session, c Candidate) error {
	url := ""
	switch {
	case c.VideoID != "":
		url = baseURL + "/watch?v=" + c.VideoID
	case c.Href != "":
		url = absoluteURL(c.Href)
	default:
		return fmt.Errorf("candidate %q has no navigable target: %w", c.Title, ErrRejected)
	}
	log.Printf("🎬 Navigating to: %s", url)
	return sess.Navigate(url)
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return href
}

// OpenHome returns to the home feed, clicking the logo or Home link before
// resorting to direct navigation.
func OpenHome(sess *browser.Session) error {
	if clickFirst(sess, "a#logo", "ytd-guide-entry-renderer a[title='Home'], a[title='Home']") {
		return nil
	}
	return sess.Navigate(baseURL + "/")
}

// OpenHistory opens the watch-history view.
func OpenHistory(sess *browser.Session) error {
	if clickFirst(sess, "a[title='History']") {
		return nil
	}
	return sess.Navigate(baseURL + "/feed/history")
}

// OpenWatchLater opens the Watch Later playlist.
func OpenWatchLater(sess *browser.Session) error {
	if clickFirst(sess, "a[title='Watch later']") {
		return nil
	}
	return sess.Navigate(baseURL + "/playlist?list=WL")
}

func clickFirst(sess *browser.Session, selectors ...string) bool {
	for _, sel := range selectors {
		els, err := sess.FindVisibleElements(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		el := els[0]
		_ = sess.ScrollIntoView(el)
		if err := sess.Click(el); err == nil {
			return true
		}
		if _, err := el.Evaluate("el => el.click()"); err == nil {
			return true
		}
	}
	return false
}
