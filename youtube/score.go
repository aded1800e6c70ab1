package youtube

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"jarvis/textnorm"
)

// Scoring constants. Boost values come from tuning against real home feeds:
// a confirmed substring match is near-certain, Devanagari token overlap is
// slightly weaker evidence, and visible dom candidates get a small edge over
// feed entries that may not be on screen at all.
const (
	substringBoostFeed = 0.92
	substringBoostDOM  = 0.90
	asciiBoost         = 0.90
	devanagariBoost    = 0.88
	devanagariJaccard  = 0.25
	domTierBonus       = 0.02

	acceptFloor       = 0.60
	acceptMarginFloor = 0.40
	acceptMargin      = 0.12
	acceptDOMFloor    = 0.33
	domSubstituteGap  = 0.05
	domSubstituteTopN = 6
)

// editRatio is the Levenshtein-normalized similarity between two strings, in
// [0,1]. Used for OCR line matching, where recognition errors are character
// substitutions.
func editRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// indelRatio is the sequence-similarity ratio 2*LCS(a,b)/(len(a)+len(b)), in
// [0,1]. Unlike a Levenshtein ratio it does not punish a short query for the
// extra length of the title around it, which is the common case when matching
// spoken phrases against full video titles.
func indelRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(total)
}

func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// tokenJaccard is the token-set Jaccard index of two whitespace-split strings.
func tokenJaccard(a, b string) float64 {
	at, bt := strings.Fields(a), strings.Fields(b)
	if len(at) == 0 && len(bt) == 0 {
		return 0
	}
	set := make(map[string]bool, len(at))
	for _, t := range at {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(bt))
	for _, t := range bt {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// scoreCandidate computes the composite similarity of one candidate against
// the query. The returned substring flag feeds both ranking and acceptance.
func scoreCandidate(q Query, c Candidate) (float64, bool) {
	ratio := indelRatio(c.Canonical, q.Canonical)
	jacc := tokenJaccard(c.Canonical, q.Canonical)
	score := ratio
	if jacc > score {
		score = jacc
	}

	substring := q.Canonical != "" && strings.Contains(c.Canonical, q.Canonical)
	if substring {
		boost := substringBoostDOM
		if c.Source == SourceFeed {
			boost = substringBoostFeed
		}
		if boost > score {
			score = boost
		}
	}

	if q.ASCII != "" {
		if strings.Contains(textnorm.ASCIIProject(c.Title), q.ASCII) && asciiBoost > score {
			score = asciiBoost
		}
	}

	if q.Devanagari != "" {
		if dev := textnorm.DevanagariProject(c.Title); dev != "" {
			if tokenJaccard(dev, q.Devanagari) >= devanagariJaccard && devanagariBoost > score {
				score = devanagariBoost
			}
		}
	}

	if c.Source == SourceDOM {
		score += domTierBonus
	}
	return score, substring
}

// Rank scores every candidate and sorts descending. Ties break on visibility,
// then on the substring flag, then on proximity to the viewport's vertical
// center (viewportH may be 0 when unknown).
func Rank(q Query, cands []Candidate, viewportH float64) []ScoredCandidate {
	center := viewportH / 2
	if center == 0 {
		center = 400
	}
	ranked := make([]ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		score, substring := scoreCandidate(q, c)
		ranked = append(ranked, ScoredCandidate{Candidate: c, Score: score, Substring: substring})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Visible != b.Visible {
			return a.Visible
		}
		if a.Substring != b.Substring {
			return a.Substring
		}
		return distToCenter(a, center) < distToCenter(b, center)
	})
	return ranked
}

func distToCenter(c ScoredCandidate, center float64) float64 {
	d := c.Top - center
	if d < 0 {
		return -d
	}
	return d
}

// Decide applies the acceptance policy to a ranked list. Returns the accepted
// candidate or nil when every rule fails.
//
// Before the rules run, a visible dom-sourced candidate within
// domSubstituteGap of the top entry is substituted for it: confirmed-visible
// evidence wins a near-tie against structured data that may be off screen.
func Decide(q Query, ranked []ScoredCandidate) *ScoredCandidate {
	if len(ranked) == 0 {
		return nil
	}
	best := ranked[0]
	runnerUp := 0.0
	if len(ranked) > 1 {
		runnerUp = ranked[1].Score
	}

	if best.Source != SourceDOM {
		limit := domSubstituteTopN
		if len(ranked) < limit {
			limit = len(ranked)
		}
		for _, sc := range ranked[:limit] {
			if sc.Source != SourceDOM {
				continue
			}
			if sc.Score >= best.Score-domSubstituteGap {
				best = sc
			}
			break
		}
	}

	switch {
	case best.Score >= acceptFloor:
	case best.Canonical == q.Canonical && q.Canonical != "":
	case best.Substring:
	case q.ASCII != "" && strings.Contains(textnorm.ASCIIProject(best.Title), q.ASCII):
	case best.Score >= acceptMarginFloor && best.Score-runnerUp >= acceptMargin:
	case best.Source == SourceDOM && best.Score >= acceptDOMFloor:
	default:
		return nil
	}
	return &best
}

// hasStrongVisible reports whether any visible candidate is already a
// near-certain match; scrolling further past one only risks losing it.
func hasStrongVisible(ranked []ScoredCandidate) bool {
	for _, sc := range ranked {
		if sc.Visible && (sc.Substring || sc.Score >= 0.9) {
			return true
		}
	}
	return false
}
