package export

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/entity"
	"github.com/joseph-ayodele/boletas/internal/extract"
)

// Row is one line of the expense report ("rendición"): one per document.
// The columns without a source in the parsed fields are filled from Defaults.
type Row struct {
	Cuenta               string
	Item                 string
	FuenteFinanciamiento string
	Periodo              string
	TipoDocumento        string
	NumeroDocumento      string
	Rut                  string
	Nombre               string
	MontoTotal           *float64
	MontoARendir         string
	ValorHora            string
	HorasRendidasMes     string
	FormaPago            string
	FechaPago            string
	FechaDocumento       string
	Glosa                string
}

// Defaults are the hand-entered columns shared by every row of a report.
type Defaults struct {
	Cuenta               string
	Item                 string
	FuenteFinanciamiento string
	MontoARendir         string
	ValorHora            string
	HorasRendidasMes     string
	FormaPago            string
	FechaPago            string
}

var headers = []string{
	"Cuenta",
	"Item",
	"Fuente de financiamiento",
	"Periodo",
	"Tipo de documento",
	"N° de documento",
	"Rut",
	"Nombre",
	"Monto total (imponible)",
	"Monto a rendir",
	"Valor hora",
	"Horas rendidas/mes",
	"Forma de pago",
	"Fecha de pago",
	"Fecha del documento",
	"Glosa",
}

// RowFromResult maps a parse result onto a report row. The period and the
// document date both take the document date; the amount is the total, or
// the net amount when no total was found.
func RowFromResult(res extract.Result, d Defaults) Row {
	f := res.Fields
	total := f.TotalAmount
	if total == nil {
		total = f.NetAmount
	}
	return Row{
		Cuenta:               d.Cuenta,
		Item:                 d.Item,
		FuenteFinanciamiento: d.FuenteFinanciamiento,
		Periodo:              f.DocumentDate,
		TipoDocumento:        documentType(res.FormatID),
		NumeroDocumento:      f.DocumentNumber,
		Rut:                  f.IssuerID,
		Nombre:               f.IssuerName,
		MontoTotal:           total,
		MontoARendir:         d.MontoARendir,
		ValorHora:            d.ValorHora,
		HorasRendidasMes:     d.HorasRendidasMes,
		FormaPago:            d.FormaPago,
		FechaPago:            d.FechaPago,
		FechaDocumento:       f.DocumentDate,
		Glosa:                f.Description,
	}
}

// RowFromRun rebuilds a row from a stored parse run. Runs without fields
// (no text, failures) yield an error.
func RowFromRun(run entity.ParseRun, d Defaults) (Row, error) {
	if run.Status != constants.RunStatusParsed || len(run.Fields) == 0 {
		return Row{}, fmt.Errorf("run %s has no parsed fields (status %s)", run.ID, run.Status)
	}
	var fields extract.Fields
	if err := json.Unmarshal(run.Fields, &fields); err != nil {
		return Row{}, fmt.Errorf("decode fields of run %s: %w", run.ID, err)
	}
	return RowFromResult(extract.Result{FormatID: run.FormatID, Fields: fields}, d), nil
}

func documentType(formatID string) string {
	if kind := constants.DocumentKind(formatID); kind != "" {
		return kind
	}
	if formatID != "" {
		return formatID
	}
	return "desconocido"
}

func (r Row) values() []any {
	var total any = ""
	if r.MontoTotal != nil {
		total = *r.MontoTotal
	}
	return []any{
		r.Cuenta, r.Item, r.FuenteFinanciamiento, r.Periodo, r.TipoDocumento,
		r.NumeroDocumento, r.Rut, r.Nombre, total, r.MontoARendir, r.ValorHora,
		r.HorasRendidasMes, r.FormaPago, r.FechaPago, r.FechaDocumento, r.Glosa,
	}
}
