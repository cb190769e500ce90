package extract

import (
	"regexp"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reAfectaTitle    = regexp.MustCompile(`(?i)FACTURA AFECTA ELECTR[ÓO]NICA`)
	reAfectaNeto     = regexp.MustCompile(`(?i)Monto\s+Neto`)
	reAfectaIVA      = regexp.MustCompile(`(?i)Monto\s+I\.V\.A`)
	reAfectaTotal    = regexp.MustCompile(`(?i)Monto\s+Total`)
	reAfectaCompany  = regexp.MustCompile(`(?i)spa|ltda|limitada|sociedad|comercial|empresa`)
	reAfectaRUTLine  = regexp.MustCompile(`\d{1,3}\.\d{3}\.\d{3}-[0-9Kk]`)
	reAfectaCliente  = regexp.MustCompile(`(?i)^Cliente\.`)
	reAfectaClientLn = regexp.MustCompile(`(?i)^Cliente`)
	reAfectaRUTLabel = regexp.MustCompile(`(?i)^R\.U\.T\.`)
	reAfectaFecha    = regexp.MustCompile(`(?i)Fecha\s*Emisi[oó]n`)
	reAfectaDesc     = regexp.MustCompile(`(?i)^PROTOTIPOS VARIOS|^Descripción`)
)

// facturaAfecta handles "Factura Afecta Electrónica" printouts whose amount
// labels sit on one line and the figures on the next.
type facturaAfecta struct{ layout }

func newFacturaAfecta() Extractor {
	return facturaAfecta{layout{constants.FormatFacturaAfecta, "Factura Afecta Electrónica (SII)"}}
}

func (facturaAfecta) Detect(text string) float64 {
	return score(text, []anchor{
		{reAfectaTitle, 0.6},
		{reAfectaNeto, 0.2},
		{reAfectaTotal, 0.2},
	})
}

func (facturaAfecta) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields

	if idx := d.find(reAfectaTitle); idx > 0 {
		// the issuer block sits well above the title box
		for i := idx - 5; i >= 0; i-- {
			if reAfectaCompany.MatchString(d.lines[i]) {
				f.IssuerName = d.lines[i]
				break
			}
		}
		for _, l := range d.lines[:idx+1] {
			if reAfectaRUTLine.MatchString(l) {
				f.IssuerID = normalize.FindRUT(l)
				break
			}
		}
	}

	if idx := d.find(reAfectaCliente); idx >= 0 {
		for i := idx; i < idx+10 && i < len(d.lines); i++ {
			l := d.lines[i]
			if reAfectaClientLn.MatchString(l) {
				f.RecipientName = d.line(i + 1)
			}
			if reAfectaRUTLabel.MatchString(l) {
				f.RecipientID = normalize.FindRUT(d.line(i + 1))
			}
		}
	}

	f.DocumentDate = group(reDateDMYAny, d.lineMatching(reAfectaFecha))

	if i := d.find(reAfectaNeto); i >= 0 {
		f.NetAmount = normalize.Amount(d.line(i + 1))
	}
	if i := d.find(reAfectaIVA); i >= 0 {
		f.SecondaryTaxAmount = normalize.Amount(d.line(i + 1))
	}
	if i := d.find(reAfectaTotal); i >= 0 {
		f.TotalAmount = normalize.Amount(d.line(i + 1))
	}

	f.Description = d.lineMatching(reAfectaDesc)
	return f
}
