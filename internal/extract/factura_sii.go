package extract

import (
	"regexp"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reSIIFactura    = regexp.MustCompile(`(?i)FACTURA`)
	reSIIMontoNeto  = regexp.MustCompile(`(?i)MONTO\s+NETO`)
	reSIIIVA        = regexp.MustCompile(`(?i)I\.?V\.?A`)
	reSIITotalWord  = regexp.MustCompile(`(?i)TOTAL`)
	reSIIEmision    = regexp.MustCompile(`(?i)Fecha\s+Emisi[oó]n`)
	reSIIHonorarios = regexp.MustCompile(`(?i)HONORARIOS`)
	reSIIRUT        = regexp.MustCompile(`(?i)R\.?U\.?T\.?:\s*([0-9.]+[-\s]?[0-9Kk])`)
	reSIICompany    = regexp.MustCompile(`(?i)(SPA|LTDA|LIMITADA|SOCIEDAD|SERVICIOS|PRODUCCIONES|COMERCIAL)`)
	reSIISenor      = regexp.MustCompile(`(?i)SEÑOR\(ES\)`)
	reSIISenorLabel = regexp.MustCompile(`(?i)SEÑOR\(ES\):?`)
	reSIIFechaDel   = regexp.MustCompile(`(?i)Fecha\s+Emision:\s*([0-9]{1,2}\s+de\s+\w+\s+del\s+[0-9]{4})`)
	reSIIFechaDMY   = regexp.MustCompile(`(?i)Fecha:\s*([0-9]{2}/[0-9]{2}/[0-9]{4})`)
	reSIINumero     = regexp.MustCompile(`(?i)N[°º]\s*:?-?\s*(\d{1,8})`)
	reSIIDesc       = regexp.MustCompile(`(?i)(Servicio|Produccion|Producto|Administraci[oó]n|Código|Descripcion)`)
	reSIICodigo     = regexp.MustCompile(`(?i)Código:?`)
	reSIINeto       = regexp.MustCompile(`(?i)MONTO\s+NETO\s*\$?\s*([\d.,]+)`)
	reSIIIVAAmount  = regexp.MustCompile(`(?i)I\.?V\.?A\.?(?:\s*\(?\s*19\s*%\s*\)?)?[^$0-9]*\$?\s*([\d.,]+)`)
	reSIITotal      = regexp.MustCompile(`(?i)TOTAL\s*\$?\s*([\d.,]+)`)
)

// facturaSII is the unified invoice extractor used in automatic mode for
// every SII invoice flavour. It scores receipts of fees negatively.
type facturaSII struct{ layout }

func newFacturaSII() Extractor {
	return facturaSII{layout{constants.FormatFacturaSII, "Factura Electrónica (unificada SII)"}}
}

func (facturaSII) Detect(text string) float64 {
	return score(text, []anchor{
		{reSIIFactura, 0.5},
		{reSIIMontoNeto, 0.2},
		{reSIIIVA, 0.1},
		{reSIITotalWord, 0.1},
		{reSIIEmision, 0.2},
		{reSIIHonorarios, -1},
	})
}

func (facturaSII) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields
	anchored := d.has(reSIIFactura)

	ruts := reSIIRUT.FindAllStringSubmatch(d.text, 2)
	if len(ruts) > 0 {
		f.IssuerID = normalize.RUT(ruts[0][1])
	}
	// the second labelled RUT belongs to the customer block
	if len(ruts) > 1 && d.has(reSIISenor) {
		f.RecipientID = normalize.RUT(ruts[1][1])
	}

	if anchored {
		f.IssuerName = d.lineMatching(reSIICompany)
		if f.IssuerName == "" {
			f.IssuerName = d.line(0)
		}
	}
	if l := d.lineMatching(reSIISenor); l != "" {
		f.RecipientName = stripLabel(reSIISenorLabel, l)
	}

	f.DocumentDate = group(reSIIFechaDel, d.text)
	if f.DocumentDate == "" {
		f.DocumentDate = group(reSIIFechaDMY, d.text)
	}
	f.DocumentNumber = group(reSIINumero, d.text)

	if anchored {
		if l := d.lineMatching(reSIIDesc); l != "" {
			f.Description = stripLabel(reSIICodigo, l)
		}
	}

	f.NetAmount = labelAmount(reSIINeto, d.text)
	f.SecondaryTaxAmount = labelAmount(reSIIIVAAmount, d.text)
	f.TotalAmount = labelAmount(reSIITotal, d.text)
	return f
}
