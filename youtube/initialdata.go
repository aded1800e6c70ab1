package youtube

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"jarvis/browser"
)

// rendererKeys are the shape keys that mark a video entry inside the page's
// structured feed tree, across home and search layouts.
var rendererKeys = []string{"videoRenderer", "gridVideoRenderer", "compactVideoRenderer"}

// readInitialDataJS pulls the structured feed object out of the page in
// whichever global the current page revision exposes it.
const readInitialDataJS = `() => {
  try {
    const w = window;
    const pick = () => {
      if (w.ytInitialData) return w.ytInitialData;
      if (w.ytcfg && typeof w.ytcfg.get === 'function') {
        const d = w.ytcfg.get('INITIAL_DATA');
        if (d) return d;
      }
      if (w.yt && w.yt.config_ && w.yt.config_.INITIAL_DATA) return w.yt.config_.INITIAL_DATA;
      return null;
    };
    const d = pick();
    return d ? JSON.stringify(d) : null;
  } catch (e) { return null; }
}`

// readInitialData fetches and decodes the feed tree. Returns nil when the
// structure is not (yet) present; errors only on session loss.
func readInitialData(sess *browser.Session) (interface{}, error) {
	v, err := sess.Evaluate(readInitialDataJS)
	if err != nil {
		return nil, err
	}
	raw, ok := v.(string)
	if !ok || raw == "" {
		return nil, nil
	}
	var tree interface{}
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, nil
	}
	return tree, nil
}

// feedCandidatesFromTree walks the decoded feed tree — an untyped nesting of
// objects, arrays and scalars — and extracts one Candidate per video
// renderer node. Short-form entries are skipped, duplicates collapse on
// video id.
func feedCandidatesFromTree(tree interface{}) []Candidate {
	var out []Candidate
	seen := make(map[string]bool)

	var walk func(node interface{})
	walk = func(node interface{}) {
		switch n := node.(type) {
		case map[string]interface{}:
			for _, key := range rendererKeys {
				vr, ok := n[key].(map[string]interface{})
				if !ok {
					continue
				}
				id, _ := vr["videoId"].(string)
				if id == "" || seen[id] {
					continue
				}
				title := rendererTitle(vr)
				if title == "" {
					continue
				}
				if isShortForm(vr) {
					continue
				}
				seen[id] = true
				c := newCandidate(title, SourceFeed)
				c.VideoID = id
				out = append(out, c)
			}
			for _, v := range n {
				walk(v)
			}
		case []interface{}:
			for _, v := range n {
				walk(v)
			}
		}
	}
	walk(tree)
	return out
}

// rendererTitle extracts a display title from a renderer node, preferring the
// simple text field, then joined run fragments, then the accessibility label.
func rendererTitle(vr map[string]interface{}) string {
	title, _ := vr["title"].(map[string]interface{})
	if s, _ := title["simpleText"].(string); strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if runs, _ := title["runs"].([]interface{}); len(runs) > 0 {
		var parts []string
		for _, r := range runs {
			if rm, ok := r.(map[string]interface{}); ok {
				if t, _ := rm["text"].(string); strings.TrimSpace(t) != "" {
					parts = append(parts, strings.TrimSpace(t))
				}
			}
		}
		if joined := strings.TrimSpace(strings.Join(parts, " ")); joined != "" {
			return joined
		}
	}
	if acc, ok := vr["accessibility"].(map[string]interface{}); ok {
		if ad, ok := acc["accessibilityData"].(map[string]interface{}); ok {
			if label, _ := ad["label"].(string); strings.TrimSpace(label) != "" {
				return strings.TrimSpace(label)
			}
		}
	}
	return ""
}

// isShortForm detects shorts entries by their serialized form; the marker
// moves around between page revisions, so the whole node is checked.
func isShortForm(vr map[string]interface{}) bool {
	data, err := json.Marshal(vr)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "shorts")
}

// harvestFeed polls the structured feed data up to the deadline; the tree is
// often absent for a beat right after navigation. Stops at the first
// non-empty extraction.
func harvestFeed(sess *browser.Session, maxWait, poll time.Duration) ([]Candidate, error) {
	deadline := time.Now().Add(maxWait)
	for {
		tree, err := readInitialData(sess)
		if err != nil {
			return nil, err
		}
		if tree != nil {
			if cands := feedCandidatesFromTree(tree); len(cands) > 0 {
				log.Printf("🔍 Initial feed candidates: %d", len(cands))
				return cands, nil
			}
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		time.Sleep(poll)
	}
}
