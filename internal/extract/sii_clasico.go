package extract

import (
	"regexp"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reClasicoTitle     = regexp.MustCompile(`(?i)BOLETA DE HONORARIOS`)
	reClasicoEmision   = regexp.MustCompile(`(?i)Fecha\s*/\s*Hora\s*Emisi[oó]n`)
	reClasicoTotal     = regexp.MustCompile(`(?i)Total\s+Honorarios`)
	reClasicoTotalSame = regexp.MustCompile(`(?i)Total\s+Honorarios.*?([\d.,]+(?:,-)?)`)
	reClasicoRUTLine   = regexp.MustCompile(`(?i)^RUT:`)
	reClasicoRUT       = regexp.MustCompile(`(?i)RUT:\s*([0-9.]+[-\s]?[0-9Kk])`)
	reClasicoSenor     = regexp.MustCompile(`(?i)Señor\(es\):`)
	reClasicoSenorName = regexp.MustCompile(`(?i)Señor\(es\):\s*(.*?)\s*Rut:`)
	reClasicoSenorRUT  = regexp.MustCompile(`(?i)Rut:\s*([0-9.]+(?:\s*-\s*|\s*)[0-9Kk])`)
	reClasicoFecha     = regexp.MustCompile(`(?i)^Fecha:\s*`)
	reClasicoDesc      = regexp.MustCompile(`(?i)Por atenci[oó]n profesional`)
	reTrailingFigure   = regexp.MustCompile(`\s*\d[\d.,]*\s*$`)
	reClasicoNumLine   = regexp.MustCompile(`(?i)BOLETA.*N`)
	reDocNumber        = regexp.MustCompile(`(?i)N\s*[°º]?\s*(\d{1,7})`)
	reResolutionTail   = regexp.MustCompile(`(?i)Res\.?\s*Ex\.?.{0,10}$`)
)

// siiClasico handles the classic SII "boleta de honorarios" printout.
type siiClasico struct{ layout }

func newSIIClasico() Extractor {
	return siiClasico{layout{constants.FormatSIIClasico, "SII boleta clásica"}}
}

func (siiClasico) Detect(text string) float64 {
	return score(text, []anchor{
		{reClasicoTitle, 0.5},
		{reClasicoEmision, 0.3},
		{reClasicoTotal, 0.2},
	})
}

func (siiClasico) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields

	idxTitle := d.find(reClasicoTitle)
	if idxTitle > 0 {
		f.IssuerName = d.lines[idxTitle-1]
	}
	if v := group(reClasicoRUT, d.lineMatching(reClasicoRUTLine)); v != "" {
		f.IssuerID = normalize.RUT(v)
	}

	if l := d.lineMatching(reClasicoSenor); l != "" {
		f.RecipientName = group(reClasicoSenorName, l)
		if v := group(reClasicoSenorRUT, l); v != "" {
			f.RecipientID = normalize.RUT(v)
		}
	}

	f.DocumentDate = group(reDateDMY, d.lineMatching(reClasicoEmision))
	if f.DocumentDate == "" {
		if l := d.lineMatching(reClasicoFecha); l != "" {
			f.DocumentDate = stripLabel(reClasicoFecha, l)
		}
	}

	if i := d.find(reClasicoDesc); i >= 0 {
		f.Description = stripLabel(reTrailingFigure, d.line(i+1))
	}

	if i := d.find(reClasicoTotal); i >= 0 {
		if v := group(reClasicoTotalSame, d.lines[i]); v != "" {
			f.TotalAmount = normalize.Amount(v)
		} else {
			f.TotalAmount = firstAmount(d.line(i + 1))
		}
	}
	anchored := idxTitle >= 0 || d.has(reClasicoTotal)
	if f.TotalAmount == nil && anchored {
		f.TotalAmount = lastAmount(d.text)
	}

	if l := d.lineMatching(reClasicoNumLine); l != "" {
		f.DocumentNumber = group(reDocNumber, l)
	}
	if f.DocumentNumber == "" && anchored {
		f.DocumentNumber = documentNumberOutsideResolution(d.text)
	}
	return f
}

// documentNumberOutsideResolution finds the first "N° <digits>" that is not
// part of a "Res. Ex. N° ..." resolution reference.
func documentNumberOutsideResolution(text string) string {
	for _, m := range reDocNumber.FindAllStringSubmatchIndex(text, -1) {
		start := m[0]
		if reResolutionTail.MatchString(text[max(0, start-64):start]) {
			continue
		}
		return text[m[2]:m[3]]
	}
	return ""
}
