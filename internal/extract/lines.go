package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	// first run of amount characters on a line ("$ 28.000" -> "28.000").
	reAmountRun = regexp.MustCompile(`[\d.,]+(?:,-)?`)
	// money-shaped token used by whole-text fallbacks.
	reMoneyToken = regexp.MustCompile(`(?:\d{1,3}(?:\.\d{3})+|\d+)(?:,\d{1,2})?`)
	reDateDMY    = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`)
	reDateDMYAny = regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{4})`)
	reDateISO    = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	reDateWords  = regexp.MustCompile(`(?i)(\d{1,2}\s+de\s+\w+\s+del\s+\d{4})`)
)

// layout carries the identity shared by every extractor.
type layout struct {
	id    constants.FormatID
	label string
}

func (l layout) ID() string    { return string(l.id) }
func (l layout) Label() string { return l.label }

// anchor is a detection cue and the weight it adds (or subtracts).
type anchor struct {
	re     *regexp.Regexp
	weight float64
}

func score(text string, anchors []anchor) float64 {
	t := normalize.Text(text)
	var s float64
	for _, a := range anchors {
		if a.re.MatchString(t) {
			s += a.weight
		}
	}
	return s
}

// doc is a normalized document: the cleaned blob and its non-empty lines.
type doc struct {
	text  string
	lines []string
}

func newDoc(raw string) doc {
	t := normalize.Text(raw)
	return doc{text: t, lines: normalize.Lines(t)}
}

func (d doc) has(re *regexp.Regexp) bool {
	return re.MatchString(d.text)
}

// find returns the index of the first line matching re, or -1.
func (d doc) find(re *regexp.Regexp) int {
	return d.findFrom(re, 0)
}

func (d doc) findFrom(re *regexp.Regexp, from int) int {
	for i := max(from, 0); i < len(d.lines); i++ {
		if re.MatchString(d.lines[i]) {
			return i
		}
	}
	return -1
}

// line returns lines[i], or "" when i is out of range.
func (d doc) line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// lineMatching returns the first line matching re, or "".
func (d doc) lineMatching(re *regexp.Regexp) string {
	return d.line(d.find(re))
}

// group returns the first capture group of re in s, or "".
func group(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// firstAmount normalizes the first amount-looking run in s.
func firstAmount(s string) *float64 {
	run := reAmountRun.FindString(s)
	if run == "" {
		return nil
	}
	return normalize.Amount(run)
}

// lastAmount normalizes the last money token in s.
func lastAmount(s string) *float64 {
	all := reMoneyToken.FindAllString(s, -1)
	if len(all) == 0 {
		return nil
	}
	return normalize.Amount(all[len(all)-1])
}

// labelAmount applies re (one capture group) to s and normalizes the capture.
func labelAmount(re *regexp.Regexp, s string) *float64 {
	v := group(re, s)
	if v == "" {
		return nil
	}
	return normalize.Amount(v)
}

// stripLabel removes the first match of re from line and trims the rest.
// Later occurrences belong to the value.
func stripLabel(re *regexp.Regexp, line string) string {
	loc := re.FindStringIndex(line)
	if loc == nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
}

// joinLines joins lines[from:to] (clamped) with single spaces.
func (d doc) joinLines(from, to int) string {
	from = max(from, 0)
	to = min(to, len(d.lines))
	if from >= to {
		return ""
	}
	return strings.Join(d.lines[from:to], " ")
}

// rutFrom prefers a RUT-shaped token inside s and otherwise canonicalizes
// the whole value.
func rutFrom(s string) string {
	if r := normalize.FindRUT(s); r != "" {
		return r
	}
	return normalize.RUT(s)
}
