package youtube

import (
	"regexp"
	"strings"

	"jarvis/browser"
)

// Selector lists run broad to narrow; later entries only add candidates the
// earlier ones missed. Search results render through ytd-video-renderer.
var homeSelectors = []string{
	"ytd-rich-grid-media a#video-title",
	"ytd-rich-item-renderer a#video-title",
	"a#video-title-link",
	"ytd-rich-item-renderer a#thumbnail[href*='watch']",
	"a#thumbnail[href*='watch']",
}

var searchSelectors = []string{
	"ytd-video-renderer a#video-title",
	"a#video-title",
}

var (
	durationTailRe = regexp.MustCompile(`(?i)\b\d+\s*(hours?|hrs?|minutes?|minute|min)\b.*$`)
	hindiTailRe    = regexp.MustCompile(`\d+\s*(घंटे|घंटा|मिनट|सेकंड).*$`)
	timestampRe    = regexp.MustCompile(`^\s*\d{1,2}:\d{2}(:\d{2})?\s*$`)
	videoIDRe      = regexp.MustCompile(`[?&]v=([\w-]{6,})`)
)

// isAdOrShortsJS flags elements inside sponsored slots or a shorts shelf.
const isAdOrShortsJS = `el => {
  if (el.closest('ytd-ad-slot-renderer') || el.closest('ytd-promoted-video-renderer')) return true;
  const shelf = el.closest('ytd-rich-shelf-renderer');
  if (shelf && /shorts/i.test(shelf.outerHTML || '')) return true;
  const row = el.closest('ytd-rich-item-renderer');
  if (row) {
    if (row.querySelector('#badge-style-type-ad, ytd-badge-supported-renderer[icon][type="BADGE_STYLE_TYPE_AD"]')) return true;
    if (/\bSponsored\b/i.test(row.innerText || '')) return true;
  }
  return false;
}`

// cardTitleJS resolves the enclosing card and reads its title element,
// falling back to the matched element's own attributes.
const cardTitleJS = `el => {
  const card = el.closest('ytd-rich-item-renderer') || el.closest('ytd-rich-grid-media') || el.closest('ytd-video-renderer');
  let t = '';
  if (card) {
    const tEl = card.querySelector('#video-title');
    if (tEl) t = tEl.getAttribute('title') || tEl.textContent || '';
  }
  if (!t) t = el.getAttribute('title') || el.getAttribute('aria-label') || el.textContent || '';
  return t.trim();
}`

// cleanTitle strips trailing duration annotations that leak into aria labels
// and rejects titles that are nothing but a timestamp.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.TrimSpace(durationTailRe.ReplaceAllString(title, ""))
	title = strings.TrimSpace(hindiTailRe.ReplaceAllString(title, ""))
	if timestampRe.MatchString(title) {
		return ""
	}
	return title
}

// harvestDOM collects candidates from the rendered page using the given
// selector list. Every candidate carries a live element handle and viewport
// geometry; ads, sponsored cards and shorts shelves are filtered out.
func harvestDOM(sess *browser.Session, selectors []string) ([]Candidate, error) {
	viewportH := sess.ViewportHeight()
	seen := make(map[string]bool)
	var out []Candidate

	for _, sel := range selectors {
		els, err := sess.FindVisibleElements(sel)
		if err != nil {
			// Session loss aborts the harvest; a bad selector just moves on.
			if !sess.Alive() {
				return nil, err
			}
			continue
		}
		for _, el := range els {
			if skip, err := el.Evaluate(isAdOrShortsJS); err == nil {
				if b, _ := skip.(bool); b {
					continue
				}
			}
			rawTitle, err := el.Evaluate(cardTitleJS)
			if err != nil {
				continue
			}
			title, _ := rawTitle.(string)
			title = cleanTitle(title)
			if title == "" {
				continue
			}
			href, _ := el.GetAttribute("href")
			key := href
			if key == "" {
				key = title
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			c := newCandidate(title, SourceDOM)
			c.El = el
			c.Href = href
			if m := videoIDRe.FindStringSubmatch(href); m != nil {
				c.VideoID = m[1]
			}
			if rect, err := sess.ElementRect(el); err == nil {
				c.Top, c.Bottom = rect.Top, rect.Bottom
				limit := viewportH * 1.05
				if viewportH == 0 {
					limit = 10000
				}
				c.Visible = rect.Bottom > 0 && rect.Top < limit
			} else {
				c.Visible = true // passed the rendered-visibility filter already
			}
			out = append(out, c)
		}
	}
	return out, nil
}
