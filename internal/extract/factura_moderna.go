package extract

import (
	"regexp"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reModernaTitle    = regexp.MustCompile(`(?i)FACTURA ELECTR[ÓO]NICA`)
	reModernaReceptor = regexp.MustCompile(`(?i)INFORMACI[ÓO]N DEL RECEPTOR`)
	reModernaResumen  = regexp.MustCompile(`(?i)RESUMEN DEL DOCUMENTO`)
	reModernaCompany  = regexp.MustCompile(`(?i)SPA|LTDA|LIMITADA|SOCIEDAD|EMPRESARIALES`)
	reModernaRUTLine  = regexp.MustCompile(`(?i)R\.?U\.?T\.?:`)
	reModernaRUTHead  = regexp.MustCompile(`(?i).*R\.?U\.?T\.?:`)
	reModernaSenor    = regexp.MustCompile(`(?i)^Señor`)
	reModernaSenorLbl = regexp.MustCompile(`(?i)^Señor\(es\)\s*`)
	reModernaRUT      = regexp.MustCompile(`(?i)^RUT`)
	reModernaRUTLbl   = regexp.MustCompile(`(?i)^RUT\s*:?\s*`)
	reModernaFecha    = regexp.MustCompile(`(?i)Fecha\s+de\s+Emisi[oó]n`)
	reModernaDesc     = regexp.MustCompile(`(?i)^Descripci[oó]n:`)
	reModernaDetalle  = regexp.MustCompile(`(?i)DETALLE DEL DOCUMENTO`)
	reModernaNeto     = regexp.MustCompile(`(?i)Monto\s*Neto`)
	reModernaIVA      = regexp.MustCompile(`(?i)I\.?V\.?A`)
	reModernaTotal    = regexp.MustCompile(`(?i)Total`)
)

// facturaModerna handles the current SII invoice template with
// "INFORMACIÓN DEL RECEPTOR" and "RESUMEN DEL DOCUMENTO" sections.
type facturaModerna struct{ layout }

func newFacturaModerna() Extractor {
	return facturaModerna{layout{constants.FormatFacturaModerna, "Factura Electrónica (SII moderna)"}}
}

func (facturaModerna) Detect(text string) float64 {
	return score(text, []anchor{
		{reModernaTitle, 0.6},
		{reModernaReceptor, 0.3},
		{reModernaResumen, 0.1},
	})
}

func (facturaModerna) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields

	if d.has(reModernaTitle) {
		f.IssuerName = d.lineMatching(reModernaCompany)
	}
	if l := d.lineMatching(reModernaRUTLine); l != "" {
		f.IssuerID = rutFrom(stripLabel(reModernaRUTHead, l))
	}

	if idx := d.find(reModernaReceptor); idx >= 0 {
		for i := idx; i < idx+12 && i < len(d.lines); i++ {
			l := d.lines[i]
			if reModernaSenor.MatchString(l) {
				f.RecipientName = stripLabel(reModernaSenorLbl, l)
			}
			if reModernaRUT.MatchString(l) {
				f.RecipientID = rutFrom(stripLabel(reModernaRUTLbl, l))
			}
		}
	}

	f.DocumentDate = group(reDateISO, d.lineMatching(reModernaFecha))

	if i := d.find(reModernaDesc); i >= 0 && d.line(i+1) != "" {
		f.Description = d.line(i + 1)
	} else if i := d.find(reModernaDetalle); i >= 0 {
		f.Description = d.joinLines(i+1, i+4)
	}

	// the summary box lists each figure either beside its label or below it
	if idx := d.find(reModernaResumen); idx >= 0 {
		for i := idx; i < len(d.lines); i++ {
			l, next := d.lines[i], d.line(i+1)
			if reModernaNeto.MatchString(l) {
				f.NetAmount = normalize.FirstNonZero(lastAmount(l), lastAmount(next))
			}
			if reModernaIVA.MatchString(l) {
				f.SecondaryTaxAmount = normalize.FirstNonZero(lastAmount(l), lastAmount(next))
			}
			if reModernaTotal.MatchString(l) {
				f.TotalAmount = normalize.FirstNonZero(lastAmount(l), lastAmount(next))
			}
		}
	}
	return f
}
