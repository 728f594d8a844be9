package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"AssetSentinel/internal/model"
)

var sheetNames = map[model.LedgerKind]string{
	model.LedgerBorrowed: "Borrowed",
	model.LedgerLent:     "Lent",
}

var exportHeaders = []string{"ID", "Amount", "Purpose", "Counterparty", "Start", "End", "Done", "Reminder", "Payment link"}

// ExportXLSX writes both collections to an xlsx workbook, one sheet each.
func (m *Manager) ExportXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, kind := range []model.LedgerKind{model.LedgerBorrowed, model.LedgerLent} {
		entries, err := m.List(kind)
		if err != nil {
			return err
		}
		sheet := sheetNames[kind]
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		if err := writeSheet(f, sheet, entries); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, entries []model.LedgerEntry) error {
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, e := range entries {
		row := []any{
			e.ID,
			e.Amount.InexactFloat64(),
			e.Purpose,
			e.Counterparty,
			formatDate(e.StartDate),
			formatDate(e.EndDate),
			e.Done,
			e.Reminder,
			e.PaymentLink,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}
	return nil
}
