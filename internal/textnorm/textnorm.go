// Package textnorm canonicalizes unicode punctuation in decoded document text
// so that date and weight patterns only need to handle ASCII forms.
package textnorm

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var replacements = map[rune]rune{
	// Dashes.
	'\u2012': '-',
	'\u2013': '-',
	'\u2014': '-',
	'\u2015': '-',
	// Single quotes and primes.
	'\u2018': '\'',
	'\u2019': '\'',
	'\u201a': '\'',
	'\u201b': '\'',
	'\u2032': '\'',
	'\u2035': '\'',
	// Double quotes and primes.
	'\u201c': '"',
	'\u201d': '"',
	'\u201e': '"',
	'\u201f': '"',
	'\u2033': '"',
	'\u2036': '"',
	// Non-breaking space.
	'\u00a0': ' ',
}

func mapRune(r rune) rune {
	if to, ok := replacements[r]; ok {
		return to
	}
	return r
}

// Normalize maps dash, quote and non-breaking space variants to ASCII.
// Every replacement target is ASCII, so Normalize is idempotent.
func Normalize(s string) string {
	out, _, err := transform.String(runes.Map(mapRune), s)
	if err != nil {
		// runes.Map never fails on valid input; keep the original text otherwise.
		return s
	}
	return out
}
