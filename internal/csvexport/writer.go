package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicex/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns defines the report header row (12 columns).
var Columns = []string{
	"Archivo",
	"Nro_Factura",
	"Fecha",
	"Cliente",
	"NIT_Cliente",
	"Forma_Pago",
	"Item_Desc",
	"Cantidad",
	"Precio_Unit",
	"Subtotal_Item",
	"Total_Factura",
	"IVA_Factura",
}

// Writer wraps csv.Writer for exporting report rows as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 12-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteRows converts report rows to CSV records and writes them.
func (w *Writer) WriteRows(rows []domain.ReportRow) error {
	for i := range rows {
		if err := w.csv.Write(rowToRecord(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteFile writes BOM, header and rows to path, replacing any existing file.
func WriteFile(path string, rows []domain.ReportRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := f.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(f)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRows(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func rowToRecord(r *domain.ReportRow) []string {
	return []string{
		r.File,
		r.InvoiceNumber,
		r.IssueDate,
		r.ClientName,
		r.ClientTaxID,
		r.PaymentTerms,
		r.ItemDescription,
		FormatQuantity(r.Quantity),
		FormatMoney(r.UnitPrice),
		FormatMoney(r.ItemSubtotal),
		FormatMoney(r.InvoiceTotal),
		FormatMoney(r.InvoiceTax),
	}
}

// FormatMoney renders an amount exactly as returned, without rounding (12500, 0.125).
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// FormatQuantity renders a quantity without trailing zeros (2, 1.5).
func FormatQuantity(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use as an object key segment.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a dated, sanitized filename.
// Format: {sanitized_name}_{YYYYMMDD-HHMMSS}{ext}
func BuildFilename(name string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s%s", SanitizeFilename(name), at.UTC().Format("20060102-150405"), ext)
}
