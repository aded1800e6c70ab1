package youtube

import (
	"log"
	"strings"

	"jarvis/browser"
	"jarvis/ocr"
)

const (
	ocrBoxFloor    = 0.65
	ocrAnchorFloor = 0.70
)

// ocrAnchorSelector covers every clickable title shape; the OCR line must be
// mapped back to one of these to become activatable.
const ocrAnchorSelector = "ytd-video-renderer a#video-title, ytd-rich-item-renderer a#video-title, a#video-title, a[href*='watch']"

// resolveByOCR is the last evidence tier: recognize text from a screenshot,
// pick the line closest to the query, then map that line back to a clickable
// anchor by text similarity. Only runs when a recognizer is present.
func resolveByOCR(sess *browser.Session, rec ocr.Recognizer, q Query) (*ScoredCandidate, error) {
	if rec == nil || !rec.Available() {
		return nil, ErrOCRUnavailable
	}

	png, err := sess.Screenshot()
	if err != nil {
		return nil, err
	}
	boxes, err := rec.TextBoxes(png)
	if err != nil {
		return nil, err
	}
	if len(boxes) == 0 {
		return nil, ErrNoCandidates
	}

	wanted := strings.ToLower(strings.TrimSpace(q.Raw))
	var bestBox *ocr.Box
	bestRatio := 0.0
	for i := range boxes {
		text := strings.ToLower(boxes[i].Text)
		r := editRatio(text, wanted)
		if strings.Contains(text, wanted) && r < 0.9 {
			r = 0.9
		}
		if r > bestRatio {
			bestRatio = r
			bestBox = &boxes[i]
		}
	}
	if bestBox == nil || bestRatio < ocrBoxFloor {
		return nil, ErrRejected
	}
	log.Printf("🔍 OCR line match: %.3f %q", bestRatio, bestBox.Text)

	// Map the recognized line back to a clickable anchor.
	els, err := sess.FindVisibleElements(ocrAnchorSelector)
	if err != nil {
		return nil, err
	}
	boxText := strings.ToLower(bestBox.Text)
	var best *ScoredCandidate
	bestElRatio := 0.0
	for _, el := range els {
		title, err := el.GetAttribute("title")
		if err != nil || strings.TrimSpace(title) == "" {
			if t, err := el.TextContent(); err == nil {
				title = t
			}
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		lower := strings.ToLower(title)
		r := editRatio(lower, boxText)
		if r2 := editRatio(lower, wanted); r2 > r {
			r = r2
		}
		if strings.Contains(lower, wanted) || strings.Contains(lower, boxText) {
			if r < 0.9 {
				r = 0.9
			}
		}
		if r > bestElRatio {
			bestElRatio = r
			c := newCandidate(title, SourceOCR)
			c.El = el
			c.Visible = true
			if href, err := el.GetAttribute("href"); err == nil {
				c.Href = href
			}
			best = &ScoredCandidate{Candidate: c, Score: r}
		}
	}
	if best == nil || bestElRatio < ocrAnchorFloor {
		return nil, ErrRejected
	}
	return best, nil
}
