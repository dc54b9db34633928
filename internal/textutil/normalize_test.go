package textutil_test

import (
	"testing"

	"marquee/internal/textutil"
)

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "The Batman", "thebatman"},
		{"punctuation", "Spider-Man: No Way Home", "spidermannowayhome"},
		{"digits kept", "Dune: Part 2", "dunepart2"},
		{"diacritics folded", "Amélie", "amelie"},
		{"whitespace collapsed", "  A   Quiet  Place  ", "aquietplace"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.NormalizeTitle(tc.input); got != tc.want {
				t.Fatalf("NormalizeTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
