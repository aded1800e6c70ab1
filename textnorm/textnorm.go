// Package textnorm holds the pure text-normalization helpers used to compare
// spoken phrases against on-screen video titles. Every function is total:
// empty input yields empty output, nothing here touches I/O.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	nonASCIIRe   = regexp.MustCompile(`[^a-z0-9 ]+`)
	nonDevRe     = regexp.MustCompile("[^ऀ-ॿ ]+")
	spacesRe     = regexp.MustCompile(`\s+`)
	numberWordRe = regexp.MustCompile(`\b(zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty)\b`)
	episodeRe    = regexp.MustCompile(`\bepisode\b`)
	// Whole words only; "the" must not be stripped out of "weather".
	fillerRe = regexp.MustCompile(`\b(on youtube|on you tube|the|video)\b`)
)

var numberWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
	"ten": "10", "eleven": "11", "twelve": "12", "thirteen": "13",
	"fourteen": "14", "fifteen": "15", "sixteen": "16", "seventeen": "17",
	"eighteen": "18", "nineteen": "19", "twenty": "20",
}

// Canonicalize lowercases, replaces every run of non-word characters with a
// single space and collapses whitespace. This is the canonical comparison form.
func Canonicalize(s string) string {
	s = strings.ToLower(s)
	s = nonWordRe.ReplaceAllString(s, " ")
	return collapse(s)
}

// ASCIIProject keeps only ASCII letters, digits and spaces (lowercased).
// Bridges transliteration mismatches in mixed-script titles.
func ASCIIProject(s string) string {
	s = strings.ToLower(s)
	s = nonASCIIRe.ReplaceAllString(s, " ")
	return collapse(s)
}

// DevanagariProject keeps only Devanagari code points plus spaces. Empty when
// the input carries no Devanagari at all.
func DevanagariProject(s string) string {
	s = nonDevRe.ReplaceAllString(s, " ")
	return collapse(s)
}

// NormalizeNumberWords maps whole-word English number names (zero..twenty) to
// digit strings and abbreviates "episode" to "ep", so "season three episode
// eight" lines up with titles like "S3 EP 8".
func NormalizeNumberWords(s string) string {
	s = numberWordRe.ReplaceAllStringFunc(s, func(w string) string {
		if d, ok := numberWords[w]; ok {
			return d
		}
		return w
	})
	return episodeRe.ReplaceAllString(s, "ep")
}

// CanonicalQuery is the single normalization order used everywhere: lowercase,
// number words, then Canonicalize. Applying the same order to queries and
// candidate titles keeps scores comparable across tiers.
func CanonicalQuery(s string) string {
	return Canonicalize(NormalizeNumberWords(strings.ToLower(s)))
}

var ordinalWords = map[string]int{
	"one": 1, "first": 1, "1st": 1,
	"two": 2, "second": 2, "2nd": 2,
	"three": 3, "third": 3, "3rd": 3,
	"four": 4, "fourth": 4, "4th": 4,
	"five": 5, "fifth": 5, "5th": 5,
	"six": 6, "sixth": 6, "6th": 6,
	"seven": 7, "seventh": 7, "7th": 7,
	"eight": 8, "eighth": 8, "8th": 8,
	"nine": 9, "ninth": 9, "9th": 9,
	"ten": 10, "tenth": 10, "10th": 10,
}

// ParseVideoIndex extracts an ordinal from commands like "open video three" or
// "play the 2nd video". Returns 0 when the command names no index.
func ParseVideoIndex(command string) int {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(command), "-", " "))
	for i := 0; i < len(words)-1; i++ {
		if words[i] != "video" {
			continue
		}
		next := words[i+1]
		if n, err := strconv.Atoi(next); err == nil {
			return n
		}
		if n, ok := ordinalWords[next]; ok {
			return n
		}
	}
	for _, w := range words {
		if n, err := strconv.Atoi(w); err == nil {
			return n
		}
		if n, ok := ordinalWords[w]; ok {
			return n
		}
	}
	return 0
}

// ExtractTitle pulls the target title out of a spoken command. Quoted text
// wins; otherwise everything after the first action keyword is taken, with
// filler words stripped. Returns "" when no usable title remains.
func ExtractTitle(command string) string {
	cmd := strings.ToLower(strings.TrimSpace(command))
	for _, q := range []string{`"`, `'`} {
		if strings.Count(command, q) >= 2 {
			parts := strings.SplitN(command, q, 3)
			if len(parts) >= 3 {
				if t := strings.TrimSpace(parts[1]); t != "" {
					return t
				}
			}
		}
	}
	for _, kw := range []string{"play", "open", "click", "watch", "search"} {
		if !strings.Contains(cmd, kw) {
			continue
		}
		after := strings.SplitN(cmd, kw, 2)[1]
		after = fillerRe.ReplaceAllString(after, " ")
		title := strings.Trim(collapse(after), " :,-")
		if title != "" && !isAllDigits(strings.ReplaceAll(title, " ", "")) {
			return title
		}
	}
	return ""
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func collapse(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
