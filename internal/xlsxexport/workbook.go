// Package xlsxexport renders batch report rows as an Excel workbook.
package xlsxexport

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"invoicex/internal/csvexport"
	"invoicex/internal/domain"
)

// SheetName is the single worksheet holding the report.
const SheetName = "Facturas"

// Build renders the rows into an in-memory workbook with the same columns as
// the CSV report. Amounts are stored as numbers, not text.
func Build(rows []domain.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("xlsx money style: %w", err)
	}

	for i, h := range csvexport.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(csvexport.Columns), 1)
	_ = f.SetCellStyle(SheetName, "A1", last, headerStyle)

	for i := range rows {
		r := &rows[i]
		line := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, line)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, r.File)
		write(2, r.InvoiceNumber)
		write(3, r.IssueDate)
		write(4, r.ClientName)
		write(5, r.ClientTaxID)
		write(6, r.PaymentTerms)
		write(7, r.ItemDescription)
		write(8, r.Quantity)
		write(9, r.UnitPrice)
		write(10, r.ItemSubtotal)
		write(11, r.InvoiceTotal)
		write(12, r.InvoiceTax)
	}

	if len(rows) > 0 {
		_ = f.SetCellStyle(SheetName, "I2", fmt.Sprintf("L%d", len(rows)+1), moneyStyle)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 22) // file
	_ = f.SetColWidth(SheetName, "B", "C", 14) // number, date
	_ = f.SetColWidth(SheetName, "D", "D", 32) // client
	_ = f.SetColWidth(SheetName, "E", "F", 16)
	_ = f.SetColWidth(SheetName, "G", "G", 40) // item
	_ = f.SetColWidth(SheetName, "H", "L", 14) // amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile builds the workbook and writes it to path.
func WriteFile(path string, rows []domain.ReportRow) error {
	data, err := Build(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
