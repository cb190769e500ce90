package export

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the report rows.
const SheetName = "Rendicion"

// Service renders report rows as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteXLSX writes rows as a single-sheet workbook to w.
func (s *Service) WriteXLSX(w io.Writer, rows []Row) error {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close", "err", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return fmt.Errorf("sheet index: %w", err)
	}
	f.SetActiveSheet(index)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("header %s: %w", h, err)
		}
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		vals := row.values()
		if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
			return fmt.Errorf("row %d: %w", r+2, err)
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetName, "D", "D", 16) // periodo
	_ = f.SetColWidth(SheetName, "E", "E", 22) // tipo
	_ = f.SetColWidth(SheetName, "G", "G", 14) // rut
	_ = f.SetColWidth(SheetName, "H", "H", 36) // nombre
	_ = f.SetColWidth(SheetName, "I", "I", 16) // monto
	_ = f.SetColWidth(SheetName, "O", "O", 18) // fecha
	_ = f.SetColWidth(SheetName, "P", "P", 48) // glosa

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
