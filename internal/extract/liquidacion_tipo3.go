package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var (
	reTipo3Title   = regexp.MustCompile(`LIQUIDACION DE SUELDOS`)
	reTipo3Haberes = regexp.MustCompile(`HABERES`)
	reTipo3Desc    = regexp.MustCompile(`DESCUENTOS`)
	reTipo3Nombre  = regexp.MustCompile(`(?i)Nombre:\s*([^\n]+)`)
	reTipo3RUT     = regexp.MustCompile(`(?i)Rut:\s*([\d.]+-[0-9kK])`)
	reTipo3Ingreso = regexp.MustCompile(`(?i)Fecha de Ingreso:\s*([\d/]+)`)
)

// tipo3Breakdown lists the payroll lines copied into Fields.Extras, keyed by
// their printed label.
var tipo3Breakdown = []struct {
	key   string
	label string
}{
	{"sueldoBase", "SUELDO BASE"},
	{"gratificacion", "GRATIFICACION LEGAL"},
	{"totalImponible", "TOTAL IMPONIBLE"},
	{"colacion", "COLACION 30 DIAS"},
	{"movilizacion", "MOVILIZACION 30 DIAS"},
	{"totalNoImponible", "TOTAL NO IMPONIBLE"},
	{"totalHaberes", "TOTAL HABERES"},
	{"fonasa", "FONASA 7 %"},
	{"afp", "UNO 10.49 %"},
	{"seguroCesantia", "SEGURO CESANTIA"},
	{"complemento", "Complementario"},
	{"totalDescuentos", "TOTAL DESCUENTOS"},
	{"liquido", "LIQUIDO A PAGO"},
	{"totalTributable", "TOTAL TRIBUTABLE"},
}

var tipo3Patterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(tipo3Breakdown))
	for _, b := range tipo3Breakdown {
		m[b.key] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(b.label) + `[^\n$]*\$ ?([\d.,]+)`)
	}
	return m
}()

// liquidacionTipo3 handles detailed payroll slips ("LIQUIDACION DE SUELDOS")
// that list every earning and deduction with a "$" figure.
type liquidacionTipo3 struct{ layout }

func newLiquidacionTipo3() Extractor {
	return liquidacionTipo3{layout{constants.FormatLiquidacionTipo3, "Liquidación (detalle de haberes y descuentos)"}}
}

func (liquidacionTipo3) Detect(text string) float64 {
	return score(text, []anchor{
		{reTipo3Title, 2},
		{reTipo3Haberes, 1},
		{reTipo3Desc, 1},
	})
}

func (liquidacionTipo3) Extract(text string) Fields {
	d := newDoc(text)
	var f Fields

	f.IssuerName = group(reTipo3Nombre, d.text)

	// the employer's RUT comes first, the worker's second
	ruts := reTipo3RUT.FindAllStringSubmatch(d.text, 2)
	switch len(ruts) {
	case 2:
		f.IssuerID = normalize.RUT(ruts[1][1])
	case 1:
		f.IssuerID = normalize.RUT(ruts[0][1])
	}

	if ingreso := group(reTipo3Ingreso, d.text); ingreso != "" {
		f.DocumentDate = ingreso
		if parts := strings.Split(ingreso, "/"); len(parts) > 1 {
			if m, err := strconv.Atoi(parts[1]); err == nil {
				f.DocumentNumber = strconv.Itoa(m)
			}
		}
	}

	for _, b := range tipo3Breakdown {
		if v := labelAmount(tipo3Patterns[b.key], d.text); v != nil {
			if f.Extras == nil {
				f.Extras = make(map[string]float64)
			}
			f.Extras[b.key] = *v
		}
	}
	if v, ok := f.Extras["totalImponible"]; ok {
		f.TotalAmount = normalize.Float(v)
		f.NetAmount = normalize.Float(v)
	}
	if d.has(reTipo3Title) {
		f.Description = "Liquidación de remuneraciones"
	}
	return f
}
