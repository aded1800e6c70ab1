package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedCand(title string) Candidate { return newCandidate(title, SourceFeed) }

func domCand(title string, top float64) Candidate {
	c := newCandidate(title, SourceDOM)
	c.Visible = true
	c.Top = top
	c.Bottom = top + 100
	return c
}

func TestEditRatio(t *testing.T) {
	assert.Equal(t, 1.0, editRatio("abc", "abc"))
	assert.Equal(t, 1.0, editRatio("", ""))
	assert.Equal(t, 0.0, editRatio("abc", "xyz"))
	assert.InDelta(t, 0.75, editRatio("abcd", "abcx"), 1e-9)
}

func TestTokenJaccard(t *testing.T) {
	assert.Equal(t, 1.0, tokenJaccard("a b c", "c b a"))
	assert.Equal(t, 0.5, tokenJaccard("a b", "b c"))
	assert.Equal(t, 0.0, tokenJaccard("a b", "c d"))
	assert.Equal(t, 0.0, tokenJaccard("", ""))
	// Duplicate tokens count once.
	assert.InDelta(t, 1.0/3.0, tokenJaccard("a a b", "b b c"), 1e-9)
}

func TestIndelRatio(t *testing.T) {
	assert.Equal(t, 1.0, indelRatio("abc", "abc"))
	assert.Equal(t, 1.0, indelRatio("", ""))
	assert.Equal(t, 0.0, indelRatio("abc", "xyz"))
	assert.Equal(t, 0.0, indelRatio("abc", ""))
	// A short query embedded in a longer string keeps a usable ratio.
	assert.InDelta(t, 14.0/31.0, indelRatio("season 3 ep 8", "s3 ep 8 the finale"), 1e-9)
}

func TestSeasonEpisodeShorthandAccepted(t *testing.T) {
	// "season 3 episode 8" against a title written as "S3 EP 8" shares no
	// substring and few tokens, but the character-sequence overlap clears the
	// margin rule when the runner-up is far behind.
	q := NewQuery("season 3 episode 8")
	cands := []Candidate{
		feedCand("S3 EP 8: The Finale"),
		feedCand("Buzz Quiz Whiz"),
	}
	ranked := Rank(q, cands, 0)
	require.Len(t, ranked, 2)
	assert.GreaterOrEqual(t, ranked[0].Score, acceptMarginFloor)
	assert.GreaterOrEqual(t, ranked[0].Score-ranked[1].Score, acceptMargin)

	got := Decide(q, ranked)
	require.NotNil(t, got)
	assert.Equal(t, "S3 EP 8: The Finale", got.Title)
}

func TestSubstringBoost(t *testing.T) {
	q := NewQuery("lofi beats")

	score, sub := scoreCandidate(q, feedCand("Lofi Beats to Relax and Study To"))
	assert.True(t, sub)
	assert.GreaterOrEqual(t, score, substringBoostFeed)

	score, sub = scoreCandidate(q, domCand("Lofi Beats to Relax and Study To", 100))
	assert.True(t, sub)
	assert.InDelta(t, substringBoostDOM+domTierBonus, score, 1e-9)
}

func TestDOMBonusOverFeed(t *testing.T) {
	q := NewQuery("morning raga")
	fs, _ := scoreCandidate(q, feedCand("Evening Concert Highlights"))
	ds, _ := scoreCandidate(q, domCand("Evening Concert Highlights", 50))
	assert.InDelta(t, domTierBonus, ds-fs, 1e-9)
}

func TestASCIIProjectionBoost(t *testing.T) {
	// Mixed-script title whose ASCII projection contains the query.
	q := NewQuery("ramayan ep 5")
	score, _ := scoreCandidate(q, feedCand("रामायण Ramayan EP 5 Full"))
	assert.GreaterOrEqual(t, score, asciiBoost)
}

func TestDevanagariOverlapBoost(t *testing.T) {
	q := NewQuery("सत्संग प्रवचन")
	score, _ := scoreCandidate(q, feedCand("सत्संग special episode"))
	assert.GreaterOrEqual(t, score, devanagariBoost)
}

func TestNumberWordAlignment(t *testing.T) {
	// "episode eight" should line up with a title written as "EP 8".
	q := NewQuery("season three episode eight")
	score, _ := scoreCandidate(q, feedCand("Show Name Season 3 EP 8"))
	assert.GreaterOrEqual(t, score, acceptFloor)
}

func TestRankProperties(t *testing.T) {
	q := NewQuery("cooking pasta")
	cands := []Candidate{
		feedCand("Unrelated gaming stream"),
		domCand("Cooking Pasta at Home", 300),
		feedCand("Cooking Pasta at Home"),
		domCand("Another video entirely", 900),
	}
	ranked := Rank(q, cands, 800)
	require.Len(t, ranked, len(cands))
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	// The dom copy of the matching title outranks the feed copy.
	assert.Equal(t, SourceDOM, ranked[0].Source)
	assert.Equal(t, "Cooking Pasta at Home", ranked[0].Title)
}

func TestDecideHighScoreAccepts(t *testing.T) {
	q := NewQuery("deep focus music")
	ranked := Rank(q, []Candidate{feedCand("Deep Focus Music for Work")}, 0)
	got := Decide(q, ranked)
	require.NotNil(t, got)
	assert.Equal(t, "Deep Focus Music for Work", got.Title)
}

func TestDecideExactTitleAlwaysAccepts(t *testing.T) {
	q := NewQuery("abc")
	ranked := []ScoredCandidate{{
		Candidate: Candidate{Title: "ABC", Canonical: "abc", Source: SourceFeed},
		Score:     0.2,
	}}
	require.NotNil(t, Decide(q, ranked))
}

func TestDecideMarginRule(t *testing.T) {
	q := NewQuery("alpha beta")
	accepted := []ScoredCandidate{
		{Candidate: Candidate{Title: "unrelated words here", Canonical: "unrelated words here", Source: SourceFeed}, Score: 0.50},
		{Candidate: Candidate{Title: "noise", Canonical: "noise", Source: SourceFeed}, Score: 0.30},
	}
	require.NotNil(t, Decide(q, accepted))

	// Two close mid-scores: neither clears the floor nor the margin.
	crowded := []ScoredCandidate{
		{Candidate: Candidate{Title: "first contender words", Canonical: "first contender words", Source: SourceFeed}, Score: 0.55},
		{Candidate: Candidate{Title: "second contender words", Canonical: "second contender words", Source: SourceFeed}, Score: 0.50},
	}
	assert.Nil(t, Decide(q, crowded))
}

func TestDecideDOMFloor(t *testing.T) {
	q := NewQuery("alpha beta")
	dom := []ScoredCandidate{{
		Candidate: Candidate{Title: "partially related", Canonical: "partially related", Source: SourceDOM, Visible: true},
		Score:     0.35,
	}}
	require.NotNil(t, Decide(q, dom))

	feed := []ScoredCandidate{{
		Candidate: Candidate{Title: "partially related", Canonical: "partially related", Source: SourceFeed},
		Score:     0.35,
	}}
	assert.Nil(t, Decide(q, feed))
}

func TestDecideDOMSubstitution(t *testing.T) {
	q := NewQuery("guitar lesson")
	ranked := []ScoredCandidate{
		{Candidate: Candidate{Title: "Guitar Lesson 1", Canonical: "guitar lesson 1", Source: SourceFeed}, Score: 0.80},
		{Candidate: Candidate{Title: "Guitar Lesson 1", Canonical: "guitar lesson 1", Source: SourceDOM, Visible: true}, Score: 0.78},
	}
	got := Decide(q, ranked)
	require.NotNil(t, got)
	assert.Equal(t, SourceDOM, got.Source)

	// Outside the gap the feed entry stays on top.
	ranked[1].Score = 0.70
	got = Decide(q, ranked)
	require.NotNil(t, got)
	assert.Equal(t, SourceFeed, got.Source)
}

func TestDecideEmpty(t *testing.T) {
	assert.Nil(t, Decide(NewQuery("anything"), nil))
}

func TestHasStrongVisible(t *testing.T) {
	assert.False(t, hasStrongVisible(nil))
	assert.False(t, hasStrongVisible([]ScoredCandidate{
		{Candidate: Candidate{Visible: true}, Score: 0.5},
		{Candidate: Candidate{Visible: false}, Score: 0.95},
	}))
	assert.True(t, hasStrongVisible([]ScoredCandidate{
		{Candidate: Candidate{Visible: true}, Score: 0.95},
	}))
	assert.True(t, hasStrongVisible([]ScoredCandidate{
		{Candidate: Candidate{Visible: true}, Score: 0.4, Substring: true},
	}))
}
