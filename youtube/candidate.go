// Package youtube implements fuzzy resolution of spoken phrases to on-screen
// YouTube videos and their activation: candidate harvesting over three
// evidence tiers (structured feed data, rendered DOM, OCR), composite
// similarity scoring, acceptance decisions under uncertainty, bounded
// incremental loading, a search fallback, and a multi-strategy click chain
// with navigation confirmation.
package youtube

import (
	"errors"

	pw "github.com/playwright-community/playwright-go"

	"jarvis/textnorm"
)

// Source identifies which evidence tier produced a candidate, ordered by
// fidelity: feed (structured page data), dom (rendered and visible), ocr
// (pixel-recognized).
type Source string

const (
	SourceFeed Source = "feed"
	SourceDOM  Source = "dom"
	SourceOCR  Source = "ocr"
)

// Resolution error taxonomy. Only ErrSessionUnavailable is terminal for the
// whole attempt; the rest drive tier escalation inside the resolver.
var (
	ErrSessionUnavailable = errors.New("no automation session")
	ErrNoCandidates       = errors.New("no candidates found")
	ErrRejected           = errors.New("all candidates rejected")
	ErrNavigationTimeout  = errors.New("navigation confirmation timed out")
	ErrOCRUnavailable     = errors.New("ocr not available")
)

// Query holds a spoken phrase and its derived comparison forms, computed once
// per resolution attempt.
type Query struct {
	Raw        string
	Canonical  string // lowercased, number words mapped, canonicalized
	ASCII      string // ASCII-only projection of the canonical form
	Devanagari string // Devanagari-only projection of the raw phrase
}

// NewQuery derives all normalized forms of a raw spoken phrase.
func NewQuery(raw string) Query {
	canonical := textnorm.CanonicalQuery(raw)
	return Query{
		Raw:        raw,
		Canonical:  canonical,
		ASCII:      textnorm.ASCIIProject(canonical),
		Devanagari: textnorm.DevanagariProject(raw),
	}
}

// Candidate is one discoverable video. Candidates are ephemeral: harvested
// fresh on every pass and never kept across resolution attempts.
type Candidate struct {
	Title     string
	Canonical string // same normalization order as Query.Canonical
	VideoID   string // stable id, feed-sourced candidates only
	Href      string // navigable link when the anchor carries one
	Source    Source

	// El is the live element handle for dom-sourced candidates; nil for feed
	// candidates, which activate by direct navigation instead.
	El pw.ElementHandle

	// Viewport geometry, only meaningful for dom-sourced candidates.
	Visible bool
	Top     float64
	Bottom  float64
}

// newCandidate fills the derived canonical form.
func newCandidate(title string, source Source) Candidate {
	return Candidate{
		Title:     title,
		Canonical: textnorm.CanonicalQuery(title),
		Source:    source,
	}
}

// ScoredCandidate is a Candidate with its composite similarity score.
// Transient: exists only within one scoring pass.
type ScoredCandidate struct {
	Candidate
	Score     float64
	Substring bool // canonical query is a substring of the canonical title
}

// Outcome kinds for a whole resolution attempt.
const (
	OutcomeActivated   = "activated"
	OutcomeNotFound    = "not_found"
	OutcomeAmbiguous   = "ambiguous"
	OutcomeSessionLost = "session_lost"
)

// Outcome is the terminal result of one resolution attempt.
type Outcome struct {
	Kind    string
	Title   string
	Tier    Source
	Score   float64
	Scrolls int
	Message string
}

// Success reports whether the attempt activated a video.
func (o Outcome) Success() bool { return o.Kind == OutcomeActivated }
