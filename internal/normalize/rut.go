package normalize

import (
	"regexp"
	"strings"
)

var (
	reHyphenSpaces = regexp.MustCompile(`\s*-\s*`)
	reSpacedCheck  = regexp.MustCompile(`^(\d+)\s+([Kk0-9])$`)
	reRUTToken     = regexp.MustCompile(`\d{1,3}(?:\.?\d{3}){2}\s*-\s*[0-9Kk]`)
)

// RUT canonicalizes a Chilean tax identifier: digits, one hyphen, uppercase
// check character ("76.543.210-k" becomes "76543210-K"). The function is
// idempotent and does not validate the check digit.
func RUT(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u2010', '\u2011', '\u2012', '\u2013', '\u2014', '\u2212':
			return '-'
		}
		return r
	}, s)
	s = reHyphenSpaces.ReplaceAllString(s, "-")
	s = strings.TrimSpace(s)
	s = reSpacedCheck.ReplaceAllString(s, "$1-$2")
	return strings.TrimSpace(strings.ToUpper(s))
}

// FindRUT returns the first RUT-shaped token in s, canonicalized, or "".
func FindRUT(s string) string {
	m := reRUTToken.FindString(s)
	if m == "" {
		return ""
	}
	return RUT(m)
}
