package extract

import (
	"regexp"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reVarBBoleta     = regexp.MustCompile(`(?i)BOLETA`)
	reVarBTotal      = regexp.MustCompile(`(?i)Monto Total a Pagar`)
	reVarBReceptor   = regexp.MustCompile(`(?i)Receptor:`)
	reVarBEmisor     = regexp.MustCompile(`(?i)^Emisor:\s*`)
	reVarBRUTEmisor  = regexp.MustCompile(`(?i)^RUT Emisor:\s*`)
	reVarBRecipient  = regexp.MustCompile(`(?i)^Receptor:\s*`)
	reVarBRUTReceptr = regexp.MustCompile(`(?i)^RUT Receptor:\s*`)
	reVarBFecha      = regexp.MustCompile(`(?i)^Fecha Emisi[oó]n:`)
)

// siiVarB handles receipts that label every party on its own line
// ("Emisor:", "RUT Receptor:") and close with "Monto Total a Pagar".
type siiVarB struct{ layout }

func newSIIVarB() Extractor {
	return siiVarB{layout{constants.FormatSIIVarB, "SII variante B"}}
}

func (siiVarB) Detect(text string) float64 {
	return score(text, []anchor{
		{reVarBBoleta, 0.3},
		{reVarBTotal, 0.4},
		{reVarBReceptor, 0.3},
	})
}

func (siiVarB) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields

	if l := d.lineMatching(reVarBEmisor); l != "" {
		f.IssuerName = stripLabel(reVarBEmisor, l)
	}
	if l := d.lineMatching(reVarBRUTEmisor); l != "" {
		f.IssuerID = rutFrom(stripLabel(reVarBRUTEmisor, l))
	}
	if l := d.lineMatching(reVarBRecipient); l != "" {
		f.RecipientName = stripLabel(reVarBRecipient, l)
	}
	if l := d.lineMatching(reVarBRUTReceptr); l != "" {
		f.RecipientID = rutFrom(stripLabel(reVarBRUTReceptr, l))
	}
	f.DocumentDate = group(reDateDMY, d.lineMatching(reVarBFecha))

	if i := d.find(reVarBTotal); i >= 0 {
		if run := reAmountRun.FindString(d.lines[i]); run != "" {
			f.TotalAmount = normalize.Amount(run)
		} else {
			f.TotalAmount = normalize.Amount(d.line(i + 1))
		}
	}
	return f
}
