package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/entity"
	"github.com/joseph-ayodele/boletas/internal/extract"
	"github.com/joseph-ayodele/boletas/internal/normalize"
)

var defaults = Defaults{Cuenta: "5.1.01", Item: "Honorarios", FuenteFinanciamiento: "FONDECYT", FormaPago: "Transferencia"}

func TestRowFromResult(t *testing.T) {
	res := extract.Result{
		FormatID: "liquidacion_tipo2",
		Fields: extract.Fields{
			IssuerID:       "16234567-8",
			IssuerName:     "ANA MARIA TORRES",
			DocumentDate:   "Marzo 2024",
			DocumentNumber: "3",
			NetAmount:      normalize.Float(980000),
			Description:    "Analista Contable Marzo 2024",
		},
	}
	row := RowFromResult(res, defaults)
	if row.MontoTotal == nil || *row.MontoTotal != 980000 {
		t.Fatalf("net amount should back-fill the total, got %v", row.MontoTotal)
	}
	if row.Periodo != "Marzo 2024" || row.FechaDocumento != "Marzo 2024" {
		t.Fatalf("dates = %q / %q", row.Periodo, row.FechaDocumento)
	}
	if row.TipoDocumento != "Liquidación de sueldo" || row.Rut != "16234567-8" || row.Cuenta != "5.1.01" {
		t.Fatalf("row = %+v", row)
	}

	unknown := RowFromResult(extract.Result{FormatID: "otro"}, Defaults{})
	if unknown.TipoDocumento != "otro" || unknown.MontoTotal != nil {
		t.Fatalf("unknown = %+v", unknown)
	}
	if RowFromResult(extract.Result{}, Defaults{}).TipoDocumento != "desconocido" {
		t.Fatal("empty format id should read desconocido")
	}
}

func TestRowFromRun(t *testing.T) {
	fields, _ := json.Marshal(extract.Fields{IssuerName: "X", TotalAmount: normalize.Float(100)})
	run := entity.ParseRun{ID: uuid.New(), FormatID: "sii_clasico", Status: constants.RunStatusParsed, Fields: fields}
	row, err := RowFromRun(run, Defaults{})
	if err != nil {
		t.Fatal(err)
	}
	if row.Nombre != "X" || *row.MontoTotal != 100 || row.TipoDocumento != "Boleta de honorarios" {
		t.Fatalf("row = %+v", row)
	}
	if _, err := RowFromRun(entity.ParseRun{ID: uuid.New(), Status: constants.RunStatusNoText}, Defaults{}); err == nil {
		t.Fatal("no-text run should not export")
	}
}

func TestWriteXLSX(t *testing.T) {
	rows := []Row{
		RowFromResult(extract.Result{FormatID: "sii_clasico", Fields: extract.Fields{
			IssuerID: "12345678-9", IssuerName: "JUAN PÉREZ", DocumentDate: "15/03/2024",
			TotalAmount: normalize.Float(28000), Description: "Desarrollo de software",
		}}, defaults),
		RowFromResult(extract.Result{FormatID: "factura_retail"}, defaults),
	}
	var buf bytes.Buffer
	if err := NewService(nil).WriteXLSX(&buf, rows); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	got, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows", len(got))
	}
	if strings.Join(got[0], "|") != strings.Join(headers, "|") {
		t.Fatalf("headers = %v", got[0])
	}
	first := got[1]
	if first[0] != "5.1.01" || first[4] != "Boleta de honorarios" || first[6] != "12345678-9" ||
		first[8] != "28000" || first[14] != "15/03/2024" || first[15] != "Desarrollo de software" {
		t.Fatalf("first row = %q", first)
	}
	if got[2][4] != "Factura" {
		t.Fatalf("second row = %q", got[2])
	}
}
