package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoicepipe/internal/domain"
)

const sheetName = "Invoices"

// ContentTypeXLSX is the MIME type of the workbook written by WriteXLSX.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes a single-sheet workbook with one row per invoice.
// Amount columns are written as numbers so spreadsheets can sum them.
func WriteXLSX(w io.Writer, invoices []domain.Invoice) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("xlsx stream: %w", err)
	}

	if err := sw.SetColWidth(1, 2, 36); err != nil {
		return fmt.Errorf("xlsx width: %w", err)
	}
	if err := sw.SetColWidth(6, 7, 32); err != nil {
		return fmt.Errorf("xlsx width: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for i := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, xlsxRow(&invoices[i])); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx flush: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// xlsxRow mirrors Row but keeps numeric cells numeric.
func xlsxRow(inv *domain.Invoice) []interface{} {
	strs := Row(inv)
	row := make([]interface{}, len(strs))
	for i, s := range strs {
		row[i] = s
	}

	completed := inv.ExtractionStatus == domain.ExtractionStatusCompleted
	for col, v := range map[int]*float64{
		11: inv.InvoiceData.Subtotal,
		12: inv.InvoiceData.TaxPercent,
		13: inv.InvoiceData.Total,
	} {
		if completed && v != nil {
			row[col] = *v
		}
	}
	row[16] = len(inv.InvoiceData.LineItems)
	row[17] = inv.PageCount
	return row
}
