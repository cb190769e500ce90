package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reRetailTitle     = regexp.MustCompile(`(?i)FACTURA\s+ELECTR[ÓO]NICA`)
	reRetailNeto      = regexp.MustCompile(`(?i)TOTAL\s+NETO`)
	reRetailIVA       = regexp.MustCompile(`(?i)I\.?V\.?A`)
	reRetailIVAWord   = regexp.MustCompile(`(?i)\bI\.?V\.?A\b|19%`)
	reRetailTotalSign = regexp.MustCompile(`(?i)TOTAL\s*\$`)
	reRetailTotal     = regexp.MustCompile(`(?i)TOTAL`)
	reRetailNetoTail  = regexp.MustCompile(`(?i)^\s*NETO`)
	reRetailIssuerRUT = regexp.MustCompile(`R\.?U\.?T\.?:?\s*(\d{1,3}\.\d{3}\.\d{3}-[0-9Kk])`)
	reRetailCompany   = regexp.MustCompile(`(?i)SpA|LTDA|LIMITADA|SOCIEDAD|EMPRESA|COMERCIAL|CONSULTORA|INGENIER[IÍ]A|INVERSIONES`)
	reRetailUpperName = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑ\s&.]+$`)
	reRetailReceptor  = regexp.MustCompile(`(?i)^RECEPTOR`)
	reRetailRazon     = regexp.MustCompile(`(?i)Raz[oó]n\s+Social:`)
	reRetailRazonHead = regexp.MustCompile(`(?i).*Raz[oó]n\s+Social:\s*`)
	reRetailRUT       = regexp.MustCompile(`(?i)RUT:\s*([0-9.]+[-\s]?[0-9Kk])`)
	reRetailFecha     = regexp.MustCompile(`(?i)Fecha\s+de\s+Emisi[oó]n`)
	reRetailDesc      = regexp.MustCompile(`(?i)Notas\s+solicitadas|Proyecto|Pedido|Compra`)
	reRetailDescLabel = regexp.MustCompile(`(?i)^Notas\s+solicitadas\s+por\s+cliente:\s*`)
)

// facturaRetail handles e-commerce invoices with a RECEPTOR block and
// "TOTAL NETO / IVA / TOTAL $" summary lines.
type facturaRetail struct{ layout }

func newFacturaRetail() Extractor {
	return facturaRetail{layout{constants.FormatFacturaRetail, "Factura Electrónica (SII retail / e-commerce)"}}
}

func (facturaRetail) Detect(text string) float64 {
	return score(text, []anchor{
		{reRetailTitle, 0.6},
		{reRetailNeto, 0.2},
		{reRetailIVA, 0.1},
		{reRetailTotalSign, 0.1},
	})
}

func (facturaRetail) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields

	for i, l := range d.lines {
		v := group(reRetailIssuerRUT, l)
		if v == "" {
			continue
		}
		f.IssuerID = normalize.RUT(v)
		f.IssuerName = retailIssuerName(d, i)
		break
	}

	if idx := d.find(reRetailReceptor); idx >= 0 {
		for i := idx; i < idx+8 && i < len(d.lines); i++ {
			l := d.lines[i]
			if reRetailRazon.MatchString(l) {
				f.RecipientName = stripLabel(reRetailRazonHead, l)
				if f.RecipientName == "" {
					f.RecipientName = d.line(i + 1)
				}
			}
			if v := group(reRetailRUT, l); v != "" {
				f.RecipientID = normalize.RUT(v)
			}
		}
	}

	f.DocumentDate = group(reDateDMYAny, d.lineMatching(reRetailFecha))

	for _, l := range d.lines {
		switch {
		case reRetailNeto.MatchString(l):
			if a := firstAmount(l); a != nil {
				f.NetAmount = a
			}
		case reRetailIVAWord.MatchString(l):
			// the rate ("19%") precedes the figure
			if a := lastAmount(l); a != nil {
				f.SecondaryTaxAmount = a
			}
		case hasTotalNotNeto(l):
			if a := firstAmount(l); a != nil {
				f.TotalAmount = a
			}
		}
	}

	if d.has(reRetailTitle) {
		if l := d.lineMatching(reRetailDesc); l != "" {
			f.Description = stripLabel(reRetailDescLabel, l)
		}
	}
	return f
}

// retailIssuerName looks three lines around the issuer RUT for a company
// name, falling back to an all-caps line right above or below it.
func retailIssuerName(d doc, rutLine int) string {
	name := ""
	for j := rutLine - 3; j <= rutLine+3; j++ {
		l := d.line(j)
		if reRetailCompany.MatchString(l) {
			return l
		}
		if name == "" && (j == rutLine-1 || j == rutLine+1) && isUpperName(l) {
			name = l
		}
	}
	return name
}

func isUpperName(l string) bool {
	return utf8.RuneCountInString(l) > 3 && reRetailUpperName.MatchString(strings.ToUpper(l))
}

// hasTotalNotNeto reports whether some TOTAL in l is not followed by NETO.
func hasTotalNotNeto(l string) bool {
	for _, m := range reRetailTotal.FindAllStringIndex(l, -1) {
		if !reRetailNetoTail.MatchString(l[m[1]:]) {
			return true
		}
	}
	return false
}
