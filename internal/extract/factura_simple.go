package extract

import (
	"regexp"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reSimpleFechaDel  = regexp.MustCompile(`(?i)Fecha\s+Emision:\s*\d{1,2}\s+de\s+\w+\s+del\s+\d{4}`)
	reSimpleService   = regexp.MustCompile(`(?i)Administraci[oó]n|Honorarios`)
	reSimpleNeto      = regexp.MustCompile(`(?i)MONTO\s+NETO`)
	reSimpleIVAAny    = regexp.MustCompile(`(?i)I\.?V\.?A`)
	reSimpleIVA       = regexp.MustCompile(`(?i)I\.V\.A`)
	reSimpleTotal     = regexp.MustCompile(`(?i)TOTAL`)
	reSimpleIssuerRUT = regexp.MustCompile(`R\.?U\.?T\.?:\s*\d{1,3}\.\d{3}\.\d{3}-[0-9Kk]`)
	reSimpleRUTHead   = regexp.MustCompile(`^.*R\.?U\.?T\.?:`)
	reSimpleCompany   = regexp.MustCompile(`(?i)SPA|LTDA|LIMITADA|SOCIEDAD|CONSULTOR[IÍ]A|INGENIER[IÍ]A`)
	reSimpleSenor     = regexp.MustCompile(`(?i)^SEÑOR\(ES\)`)
	reSimpleSenorLbl  = regexp.MustCompile(`(?i)^SEÑOR\(ES\):?\s*`)
	reSimpleRUT       = regexp.MustCompile(`(?i)R\.?U\.?T\.?:\s*([0-9.]+[-\s]?[0-9Kk])`)
	reSimpleFecha     = regexp.MustCompile(`(?i)Fecha\s+Emisi[oó]n`)
	reSimpleDesc      = regexp.MustCompile(`(?i)Servicio|Producto|Administraci[oó]n|Honorarios`)
)

// facturaSimple handles exempt service invoices dated "12 de marzo del 2024"
// that carry no net/VAT breakdown.
type facturaSimple struct{ layout }

func newFacturaSimple() Extractor {
	return facturaSimple{layout{constants.FormatFacturaSimple, "Factura Electrónica (SII simple)"}}
}

func (facturaSimple) Detect(text string) float64 {
	return score(text, []anchor{
		{reSimpleFechaDel, 0.5},
		{reSimpleService, 0.4},
		{reSimpleNeto, -0.5},
		{reSimpleIVAAny, -0.5},
	})
}

func (facturaSimple) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields
	anchored := d.has(reSimpleFechaDel)

	if l := d.lineMatching(reSimpleIssuerRUT); l != "" {
		f.IssuerID = rutFrom(stripLabel(reSimpleRUTHead, l))
	}
	if anchored {
		f.IssuerName = d.lineMatching(reSimpleCompany)
		if f.IssuerName == "" {
			f.IssuerName = d.line(0)
		}
	}

	if idx := d.find(reSimpleSenor); idx >= 0 {
		f.RecipientName = stripLabel(reSimpleSenorLbl, d.lines[idx])
		if f.RecipientName == "" {
			f.RecipientName = d.line(idx + 1)
		}
		for i := idx; i < idx+5 && i < len(d.lines); i++ {
			if v := group(reSimpleRUT, d.lines[i]); v != "" {
				f.RecipientID = normalize.RUT(v)
				break
			}
		}
	}

	f.DocumentDate = group(reDateWords, d.lineMatching(reSimpleFecha))
	if anchored {
		f.Description = d.lineMatching(reSimpleDesc)
	}

	for _, l := range d.lines {
		if reSimpleNeto.MatchString(l) {
			if a := firstAmount(l); a != nil {
				f.NetAmount = a
			}
		}
		if reSimpleIVA.MatchString(l) {
			if a := firstAmount(l); a != nil {
				f.SecondaryTaxAmount = a
			}
		}
		if reSimpleTotal.MatchString(l) {
			if a := firstAmount(l); a != nil {
				f.TotalAmount = a
			}
		}
	}
	return f
}
