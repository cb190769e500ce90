package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reLiqWhitespace = regexp.MustCompile(`\s+`)
	reLiqTitle      = regexp.MustCompile(`LIQUIDACION`)
	reLiqRemun      = regexp.MustCompile(`REMUNERACION`)
	reLiqSueldo     = regexp.MustCompile(`SUELDO`)
	reLiqHaberes    = regexp.MustCompile(`HABERES`)
	reLiqTotHaberes = regexp.MustCompile(`TOTAL HABERES`)
	reLiqTotDesc    = regexp.MustCompile(`TOTAL DESCUENTOS`)
	reLiqRUT        = regexp.MustCompile(`(\d{1,2}\.?\d{3}\.?\d{3}-[0-9Kk])`)
	reLiqCargoLine  = regexp.MustCompile(`(?i)^Cargo`)
	reLiqCargo      = regexp.MustCompile(`(?i)Cargo:\s*(.*)`)
	reLiqImponible  = regexp.MustCompile(`(?i)TOTAL\s+IMPONIBLE\s*\$?\s*([\d.,]+)`)
	reLiqAnchor     = regexp.MustCompile(`(?i)LIQUIDACI[OÓ]N|REMUNERACI[OÓ]N`)
)

// liquidacion handles payroll settlements whose footer prints the period
// spaced out ("J U N I O 2 0 2 5") above the worker's name and RUT.
// Worker data is reported both as issuer and recipient.
type liquidacion struct{ layout }

func newLiquidacion() Extractor {
	return liquidacion{layout{constants.FormatLiquidacion, "Liquidación de remuneraciones"}}
}

func (liquidacion) Detect(text string) float64 {
	t := strings.ToUpper(reLiqWhitespace.ReplaceAllString(normalize.Text(text), " "))
	var s float64
	for _, a := range []anchor{
		{reLiqTitle, 0.7},
		{reLiqRemun, 0.5},
		{reLiqSueldo, 0.3},
		{reLiqHaberes, 0.2},
		{reLiqTotHaberes, 0.2},
		{reLiqTotDesc, 0.2},
	} {
		if a.re.MatchString(t) {
			s += a.weight
		}
	}
	return s
}

func (liquidacion) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields

	employer := ""
	if v := group(reLiqRUT, d.text); v != "" {
		employer = normalize.RUT(v)
	}

	var workerID, workerName string
	if n := len(d.lines); n >= 2 {
		if v := group(reLiqRUT, d.lines[n-1]); v != "" {
			workerID = normalize.RUT(v)
			if prev := d.lines[n-2]; !reLiqRUT.MatchString(prev) {
				workerName = prev
			}
		}
	}
	if workerID == "" || workerName == "" {
		// last RUT in the document that is not the employer's
		for i := len(d.lines) - 1; i >= 0; i-- {
			v := group(reLiqRUT, d.lines[i])
			if v == "" || normalize.RUT(v) == employer {
				continue
			}
			workerID = normalize.RUT(v)
			if prev := d.line(i - 1); i > 0 && !reLiqRUT.MatchString(prev) {
				workerName = prev
			}
			break
		}
	}
	f.IssuerID, f.RecipientID = workerID, workerID
	f.IssuerName, f.RecipientName = workerName, workerName

	var period string
	var month int
	if n := len(d.lines); n >= 3 {
		period, month = normalize.FindPeriodCompact(d.lines[n-3])
	}
	if period == "" && d.has(reLiqAnchor) {
		period, month = normalize.FindPeriod(d.text)
	}
	f.DocumentDate = period
	if month > 0 {
		f.DocumentNumber = strconv.Itoa(month)
	}

	cargo := ""
	if l := d.lineMatching(reLiqCargoLine); l != "" {
		cargo = group(reLiqCargo, l)
	}

	f.TotalAmount = labelAmount(reLiqImponible, d.text)

	switch {
	case cargo != "" && period != "":
		f.Description = cargo + " " + period
	case period != "":
		f.Description = "Liquidación " + period
	}
	return f
}
