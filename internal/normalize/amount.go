package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reAnySpace       = regexp.MustCompile(`\s+`)
	reTrailingDash   = regexp.MustCompile(`\.-$`)
	reCurrencyTokens = regexp.MustCompile(`(?i)(\$|CLP|\bTotal\b)`)
	reDecimalComma   = regexp.MustCompile(`,\d{1,2}$`)
	reThousands      = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	reDotDecimal     = regexp.MustCompile(`^\d+\.\d{1,2}$`)
	reNonDigit       = regexp.MustCompile(`[^\d]`)
	reNonDigitDot    = regexp.MustCompile(`[^\d.]`)
)

// Amount parses a money string written in Chilean conventions ("$ 28.000",
// "1.234,56", "28.000.-") into a number. It returns nil when nothing numeric
// can be recovered.
func Amount(raw string) *float64 {
	s := reAnySpace.ReplaceAllString(raw, "")
	s = reTrailingDash.ReplaceAllString(s, "")
	s = strings.TrimSpace(reCurrencyTokens.ReplaceAllString(s, ""))
	if s == "" {
		return nil
	}

	hasComma := strings.Contains(s, ",")
	switch {
	case hasComma && reDecimalComma.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
		return parseFinite(s)
	case !hasComma && reThousands.MatchString(s):
		return parseFinite(strings.ReplaceAll(s, ".", ""))
	case !hasComma && reDotDecimal.MatchString(s):
		return parseFinite(s)
	case !hasComma:
		return parseFinite(reNonDigit.ReplaceAllString(s, ""))
	}
	return parseFinite(reNonDigitDot.ReplaceAllString(s, ""))
}

func parseFinite(s string) *float64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return nil
	}
	return &n
}

// FirstNonZero returns the first candidate that is present and non-zero.
// Layouts chain alternative readings of the same amount with it.
func FirstNonZero(candidates ...*float64) *float64 {
	for _, c := range candidates {
		if c != nil && *c != 0 {
			return c
		}
	}
	return nil
}

// Float is a convenience for building *float64 literals.
func Float(v float64) *float64 {
	return &v
}
