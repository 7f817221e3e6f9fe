// Package xlsxexport renders documents as an XLSX workbook for download.
package xlsxexport

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"shopbooks/internal/domain"
)

const sheetName = "Documents"

// columns defines the header row.
var columns = []string{
	"Number",
	"Type",
	"Date",
	"Status",
	"Subtotal",
	"Discount",
	"Taxable Amount",
	"Total Tax",
	"Round Off",
	"Final Total",
	"Payment Status",
	"Paid Amount",
	"Pending Amount",
	"Due Date",
	"Line Item Count",
	"Notes",
	"Created At",
}

// WriteDocuments renders docs as a single-sheet XLSX workbook on w.
func WriteDocuments(w io.Writer, docs []domain.Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName(f.GetSheetName(0), sheetName)

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("xlsxexport: header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return fmt.Errorf("xlsxexport: header cell: %w", err)
		}
	}

	for i := range docs {
		if err := writeRow(f, i+2, &docs[i]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsxexport: writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, doc *domain.Document) error {
	dueDate := ""
	if doc.Payment.DueDate != nil {
		dueDate = doc.Payment.DueDate.Format("2006-01-02")
	}

	values := []any{
		doc.Number,
		string(doc.Type),
		doc.Date.Format("2006-01-02"),
		string(doc.Status),
		doc.Totals.Subtotal.InexactFloat64(),
		doc.Totals.TotalDiscount.InexactFloat64(),
		doc.Totals.TotalTaxableAmount.InexactFloat64(),
		doc.Totals.TotalTax.InexactFloat64(),
		doc.Totals.RoundOff.InexactFloat64(),
		doc.Totals.FinalTotal.InexactFloat64(),
		string(doc.Payment.Status),
		doc.Payment.PaidAmount.InexactFloat64(),
		doc.Payment.PendingAmount.InexactFloat64(),
		dueDate,
		len(doc.Items),
		doc.Notes,
		doc.CreatedAt.Format(time.RFC3339),
	}

	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("xlsxexport: row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("xlsxexport: row %d: %w", row, err)
		}
	}
	return nil
}
