package extract

import (
	"regexp"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reNotaTitle     = regexp.MustCompile(`(?i)NOTA\s+DE\s+CR[EÉ]DITO`)
	reNotaSII       = regexp.MustCompile(`(?i)S\.I\.I\.`)
	reNotaTotal     = regexp.MustCompile(`(?i)TOTAL`)
	reNotaAnula     = regexp.MustCompile(`(?i)Anula Documento`)
	reNotaRUTLine   = regexp.MustCompile(`R\.?U\.?T\.?\s*:`)
	reNotaIssuerRUT = regexp.MustCompile(`(\d{1,3}\.\d{3}\.\d{3}-[0-9Kk])`)
	reNotaCompany   = regexp.MustCompile(`(?i)PROGARANTIA|SPA|LTDA|SOCIEDAD|ADMINISTRADORA|EMPRESA`)
	reNotaSenor     = regexp.MustCompile(`(?i)^Señor`)
	reNotaSenorLbl  = regexp.MustCompile(`(?i)^Señor\(es\)\s*`)
	reNotaRUT       = regexp.MustCompile(`(?i)RUT\s*:?(\s*[0-9.]+[-\s]?[0-9Kk])`)
	reNotaFecha     = regexp.MustCompile(`(?i)Fecha\s+Documento`)
	reNotaAfecto    = regexp.MustCompile(`(?i)Afecto`)
	reNotaExento    = regexp.MustCompile(`(?i)Exento`)
	reNotaComment   = regexp.MustCompile(`(?i)Comentario`)
)

// notaCredito handles electronic credit notes. The exempt amount is reported
// as the net amount; the taxed amount goes to Extras["montoAfecto"].
type notaCredito struct{ layout }

func newNotaCredito() Extractor {
	return notaCredito{layout{constants.FormatNotaCredito, "Nota de Crédito Electrónica (SII)"}}
}

func (notaCredito) Detect(text string) float64 {
	return score(text, []anchor{
		{reNotaTitle, 0.7},
		{reNotaSII, 0.1},
		{reNotaTotal, 0.1},
		{reNotaAnula, 0.1},
	})
}

func (notaCredito) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields

	if v := group(reNotaIssuerRUT, d.lineMatching(reNotaRUTLine)); v != "" {
		f.IssuerID = normalize.RUT(v)
	}
	if d.has(reNotaTitle) {
		f.IssuerName = d.lineMatching(reNotaCompany)
		if f.IssuerName == "" {
			f.IssuerName = d.line(0)
		}
	}

	if idx := d.find(reNotaSenor); idx >= 0 {
		f.RecipientName = stripLabel(reNotaSenorLbl, d.lines[idx])
		if f.RecipientName == "" {
			f.RecipientName = d.line(idx + 1)
		}
		for i := idx; i < idx+5 && i < len(d.lines); i++ {
			if v := group(reNotaRUT, d.lines[i]); v != "" {
				f.RecipientID = normalize.RUT(v)
				break
			}
		}
	}

	f.DocumentDate = group(reDateDMYAny, d.lineMatching(reNotaFecha))

	var afecto, exento *float64
	for _, l := range d.lines {
		if reNotaAfecto.MatchString(l) {
			if run := reAmountRun.FindString(l); run != "" {
				afecto = normalize.Amount(run)
			}
		}
		if reNotaExento.MatchString(l) {
			if run := reAmountRun.FindString(l); run != "" {
				exento = normalize.Amount(run)
			}
		}
		if reNotaTotal.MatchString(l) {
			if run := reAmountRun.FindString(l); run != "" {
				f.TotalAmount = normalize.Amount(run)
			}
		}
	}
	f.NetAmount = exento
	if afecto != nil {
		f.Extras = map[string]float64{"montoAfecto": *afecto}
	}

	if i := d.find(reNotaComment); i >= 0 {
		f.Description = d.joinLines(i+1, i+4)
	}
	return f
}
