package constants

import (
	"strings"
)

// FormatID identifies a document layout known to the extractor registry.
type FormatID string

const (
	FormatSIIClasico       FormatID = "sii_clasico"
	FormatSIIVarB          FormatID = "sii_var_b"
	FormatFacturaAfecta    FormatID = "factura_afecta"
	FormatFacturaModerna   FormatID = "factura_electronica_moderna"
	FormatFacturaSimple    FormatID = "factura_simple"
	FormatFacturaRetail    FormatID = "factura_retail"
	FormatFacturaSII       FormatID = "factura_sii"
	FormatNotaCredito      FormatID = "nota_credito"
	FormatLiquidacion      FormatID = "liquidacion"
	FormatLiquidacionTipo2 FormatID = "liquidacion_tipo2"
	FormatLiquidacionTipo3 FormatID = "liquidacion_tipo3"
)

// AutoFormat asks the registry to pick the best layout itself.
const AutoFormat = "auto"

// AutoLabel is shown next to AutoFormat in option lists.
const AutoLabel = "Auto (detectar)"

var allFormats = []FormatID{
	FormatSIIClasico,
	FormatSIIVarB,
	FormatFacturaAfecta,
	FormatFacturaModerna,
	FormatFacturaSimple,
	FormatFacturaRetail,
	FormatFacturaSII,
	FormatNotaCredito,
	FormatLiquidacion,
	FormatLiquidacionTipo2,
	FormatLiquidacionTipo3,
}

// documentKind feeds the "Tipo de documento" export column.
var documentKind = map[FormatID]string{
	FormatSIIClasico:       "Boleta de honorarios",
	FormatSIIVarB:          "Boleta de honorarios",
	FormatFacturaAfecta:    "Factura",
	FormatFacturaModerna:   "Factura",
	FormatFacturaSimple:    "Factura",
	FormatFacturaRetail:    "Factura",
	FormatFacturaSII:       "Factura",
	FormatNotaCredito:      "Nota de crédito",
	FormatLiquidacion:      "Liquidación de sueldo",
	FormatLiquidacionTipo2: "Liquidación de sueldo",
	FormatLiquidacionTipo3: "Liquidación de sueldo",
}

func FormatsAsStringSlice() []string {
	result := make([]string, len(allFormats))
	for i, f := range allFormats {
		result[i] = string(f)
	}
	return result
}

// DocumentKind returns the human document type for a format id, or "" if unknown.
func DocumentKind(id string) string {
	return documentKind[FormatID(id)]
}

// CanonicalizeFormat maps user input (flags, form fields) to a format id.
// The second return value is false when the input names no known format;
// empty input and "auto" canonicalize to AutoFormat.
func CanonicalizeFormat(input string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" || normalized == AutoFormat {
		return AutoFormat, true
	}

	synonyms := map[string]FormatID{
		"boleta":       FormatSIIClasico,
		"honorarios":   FormatSIIClasico,
		"factura":      FormatFacturaSII,
		"nc":           FormatNotaCredito,
		"nota-credito": FormatNotaCredito,
		"liquidación":  FormatLiquidacion,
		"sueldo":       FormatLiquidacion,
	}
	if f, ok := synonyms[normalized]; ok {
		return string(f), true
	}

	for _, f := range allFormats {
		if normalized == string(f) {
			return string(f), true
		}
	}
	return normalized, false
}
