// Package normalize holds the pure text helpers shared by every layout extractor:
// whitespace/dash cleanup, es-CL money parsing and RUT canonicalization.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	reBlankRun     = regexp.MustCompile(`[ \t]+`)
	reSpaceNewline = regexp.MustCompile(` +\n`)
)

// mapRune folds the dash variants and no-break spaces pdftotext emits for SII documents.
func mapRune(r rune) rune {
	switch r {
	case '\u2212', '\u2013', '\u2014':
		return '-'
	case '\u00a0':
		return ' '
	}
	return r
}

func newRuneCleaner() transform.Transformer {
	return transform.Chain(
		runes.Remove(runes.Predicate(func(r rune) bool { return r == '\r' })),
		runes.Map(mapRune),
	)
}

// Text canonicalizes raw document text. The result has no carriage returns,
// only ASCII hyphens, no no-break spaces, single spaces between words,
// no trailing spaces before newlines and no surrounding whitespace.
func Text(s string) string {
	if s == "" {
		return s
	}
	out, _, err := transform.String(newRuneCleaner(), s)
	if err != nil {
		out = s
	}
	out = reBlankRun.ReplaceAllString(out, " ")
	out = reSpaceNewline.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}

// Lines returns the non-empty trimmed lines of Text(s).
func Lines(s string) []string {
	raw := strings.Split(Text(s), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
