package extract

import (
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

const tipo2ImponibleFloor = 300000

var (
	reTipo2RUTTrab    = regexp.MustCompile(`(?i)RUT\s+TRABAJADOR`)
	reTipo2PeriodoLbl = regexp.MustCompile(`(?i)Per[ií]odo\s*:`)
	reTipo2Base       = regexp.MustCompile(`(?i)Base\s+Imponible`)
	reTipo2Periodo    = regexp.MustCompile(`(?i)Per[ií]odo\s*:\s*([^\n]+)`)
	reTipo2Cargo      = regexp.MustCompile(`(?i)CARGO\s*:\s*(.+)`)
	reTipo2CargoOnly  = regexp.MustCompile(`(?i)^CARGO\s*:?\s*$`)
	reTipo2CargoTail  = regexp.MustCompile(`(?i)CARGO\s*:\s*$`)
	reTipo2Figure     = regexp.MustCompile(`[\d.]+`)
	reTipo2Number     = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+|\d+`)
)

// liquidacionTipo2 handles the short payroll slip that opens with the
// worker's name and RUT on its first two lines.
type liquidacionTipo2 struct{ layout }

func newLiquidacionTipo2() Extractor {
	return liquidacionTipo2{layout{constants.FormatLiquidacionTipo2, "Liquidación (formato simple)"}}
}

func (liquidacionTipo2) Detect(text string) float64 {
	return score(text, []anchor{
		{reTipo2RUTTrab, 2},
		{reTipo2PeriodoLbl, 1},
		{reTipo2Base, 1},
	})
}

func (liquidacionTipo2) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields
	anchored := d.has(reTipo2RUTTrab)

	if rut := normalize.FindRUT(d.line(1)); rut != "" {
		f.IssuerName = d.line(0)
		f.IssuerID = rut
	}

	period := group(reTipo2Periodo, d.text)
	f.DocumentDate = period
	if m := normalize.MonthIn(period); m > 0 {
		f.DocumentNumber = strconv.Itoa(m)
	}

	cargo := tipo2Cargo(d)
	switch {
	case cargo != "" && period != "":
		f.Description = cargo + " " + period
	case anchored:
		f.Description = "Liquidación de remuneraciones"
	}

	if len(d.lines) >= 6 {
		line := reLiqWhitespace.ReplaceAllString(d.lines[5], "")
		if fig := reTipo2Figure.FindString(line); fig != "" {
			f.TotalAmount = normalize.Amount(fig)
		}
	}
	if (f.TotalAmount == nil || *f.TotalAmount < tipo2ImponibleFloor) && anchored {
		if best := largestFigure(d.text, tipo2ImponibleFloor); best != nil {
			f.TotalAmount = best
		}
	}
	return f
}

// tipo2Cargo reads "CARGO : <title>" from one line or from the line after
// a bare "CARGO :" label.
func tipo2Cargo(d doc) string {
	for _, l := range d.lines {
		if v := group(reTipo2Cargo, l); v != "" {
			return v
		}
	}
	for i, l := range d.lines {
		if reTipo2CargoOnly.MatchString(l) || reTipo2CargoTail.MatchString(l) {
			if next := d.line(i + 1); utf8.RuneCountInString(next) > 3 {
				return next
			}
		}
	}
	return ""
}

// largestFigure returns the largest number in text strictly above floor.
func largestFigure(text string, floor float64) *float64 {
	var best *float64
	for _, tok := range reTipo2Number.FindAllString(text, -1) {
		v := normalize.Amount(tok)
		if v == nil || *v <= floor {
			continue
		}
		if best == nil || *v > *best {
			best = v
		}
	}
	return best
}
