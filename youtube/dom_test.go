package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Plain Video Title", "Plain Video Title"},
		{"  padded title  ", "padded title"},
		{"Great Documentary 12 minutes, 30 seconds", "Great Documentary"},
		{"Road Trip Vlog 2 hours ago by Some Channel", "Road Trip Vlog"},
		{"Quick Tips 5 min", "Quick Tips"},
		{"रामायण कथा 3 घंटे का विशेष", "रामायण कथा"},
		{"सत्संग 45 मिनट", "सत्संग"},
		{"12:34", ""},
		{"1:02:03", ""},
		{"  10:00  ", ""},
		// A leading timestamp inside a real title is kept.
		{"10:00 AM Morning Show", "10:00 AM Morning Show"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanTitle(tc.in), "input %q", tc.in)
	}
}

func TestVideoIDExtraction(t *testing.T) {
	cases := []struct {
		href string
		want string
	}{
		{"/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=abc-123_xyz&t=10s", "abc-123_xyz"},
		{"/watch?list=PL123&v=shortID", "shortID"},
		{"/shorts/abcdef", ""},
		{"/watch?v=ab", ""}, // too short to be an id
	}
	for _, tc := range cases {
		got := ""
		if m := videoIDRe.FindStringSubmatch(tc.href); m != nil {
			got = m[1]
		}
		assert.Equal(t, tc.want, got, "href %q", tc.href)
	}
}
