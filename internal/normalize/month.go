package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var months = []string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

var monthAlternation = strings.Join(months, "|")

var (
	rePeriodCompact = regexp.MustCompile(`(` + monthAlternation + `)(\d{4})`)
	rePeriodSpaced  = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\s+(20\d{2})\b`)
)

// MonthNumber returns 1..12 for a Spanish month name (any case) and 0 otherwise.
func MonthNumber(name string) int {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, m := range months {
		if upper == m {
			return i + 1
		}
	}
	return 0
}

// MonthIn returns the number of the first Spanish month name contained in s,
// scanning the calendar in order, or 0.
func MonthIn(s string) int {
	upper := strings.ToUpper(s)
	for i, m := range months {
		if strings.Contains(upper, m) {
			return i + 1
		}
	}
	return 0
}

// Period renders a month/year pair as "Junio 2025".
func Period(month, year string) string {
	return fmt.Sprintf("%s %s", cases.Title(language.Spanish).String(strings.ToLower(month)), year)
}

// FindPeriodCompact looks for a month glued to its year ("JUNIO2025") after
// removing all whitespace from s, as printed in payroll footers.
func FindPeriodCompact(s string) (period string, month int) {
	compact := reAnySpace.ReplaceAllString(strings.ToUpper(s), "")
	m := rePeriodCompact.FindStringSubmatch(compact)
	if m == nil {
		return "", 0
	}
	return Period(m[1], m[2]), MonthNumber(m[1])
}

// FindPeriod looks for "<month> 20yy" anywhere in s.
func FindPeriod(s string) (period string, month int) {
	m := rePeriodSpaced.FindStringSubmatch(s)
	if m == nil {
		return "", 0
	}
	return Period(m[1], m[2]), MonthNumber(m[1])
}
