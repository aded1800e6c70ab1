package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Lofi Hip Hop Mix - Study Beats",
		"  S3 EP 8: The Finale!! ",
		"चलो चलें — गीत",
		"",
		"already canonical text",
	}
	for _, s := range inputs {
		once := Canonicalize(s)
		assert.Equal(t, once, Canonicalize(once), "input %q", s)
	}
}

func TestCanonicalizeCaseInsensitive(t *testing.T) {
	inputs := []string{"Lofi Hip Hop", "MiXeD CaSe 42", "हिंदी Title"}
	for _, s := range inputs {
		assert.Equal(t, Canonicalize(s), Canonicalize(strings.ToUpper(s)))
	}
}

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Lofi Hip Hop Mix - Study Beats", "lofi hip hop mix study beats"},
		{"  hello,,,world  ", "hello world"},
		{"!!!", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Canonicalize(c.in), "input %q", c.in)
	}
}

func TestASCIIProjectIdempotent(t *testing.T) {
	inputs := []string{"Mix-2024 गीत", "plain ascii", "१२३ देवनागरी"}
	for _, s := range inputs {
		once := ASCIIProject(s)
		assert.Equal(t, once, ASCIIProject(once))
	}
}

func TestDevanagariProject(t *testing.T) {
	assert.Equal(t, "गीत", DevanagariProject("Top गीत 2024"))
	assert.Equal(t, "", DevanagariProject("no devanagari here"))
}

func TestNormalizeNumberWords(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"season three episode eight", "season 3 ep 8"},
		{"twenty one pilots", "20 1 pilots"},
		{"someone", "someone"}, // no partial-word replacement
		{"episode", "ep"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeNumberWords(c.in), "input %q", c.in)
	}
}

func TestCanonicalQueryOrdering(t *testing.T) {
	// Number mapping happens before canonicalization, same order as candidates.
	assert.Equal(t, "season 3 ep 8", CanonicalQuery("Season Three, Episode Eight!"))
}

func TestParseVideoIndex(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"open video three", 3},
		{"play the 2nd video", 2},
		{"click video 7", 7},
		{"open the fifth one", 5},
		{"play lofi beats", 0},
		{"", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseVideoIndex(c.in), "input %q", c.in)
	}
}

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`play "Lofi Hip Hop Mix" now`, "Lofi Hip Hop Mix"},
		{"play lofi hip hop mix on youtube", "lofi hip hop mix"},
		{"open the video cooking masterclass", "cooking masterclass"},
		// Filler removal is whole-word: "the" inside "weather" stays.
		{"play the weather channel", "weather channel"},
		{"watch 12345", ""}, // bare numbers are index commands, not titles
		{"do something else", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractTitle(c.in), "input %q", c.in)
	}
}
