package csvexport

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicex/internal/domain"
)

func sampleRows() []domain.ReportRow {
	return []domain.ReportRow{
		{
			File:            "factura_01.txt",
			InvoiceNumber:   "FV-2024-001",
			IssueDate:       "2024-03-15",
			ClientName:      "Comercializadora Andina S.A.S.",
			ClientTaxID:     "900123456-7",
			PaymentTerms:    "Crédito 30 días",
			ItemDescription: "Resma papel carta",
			Quantity:        2,
			UnitPrice:       12500,
			ItemSubtotal:    25000,
			InvoiceTotal:    1250000.5,
			InvoiceTax:      199500.08,
		},
		{
			File:            "factura_01.txt",
			InvoiceNumber:   "FV-2024-001",
			IssueDate:       "2024-03-15",
			ClientName:      "Comercializadora Andina S.A.S.",
			ClientTaxID:     "900123456-7",
			ItemDescription: "Tóner, negro \"XL\"",
			Quantity:        1.5,
			UnitPrice:       0.1,
			ItemSubtotal:    0.15,
			InvoiceTotal:    1250000.5,
			InvoiceTax:      199500.08,
		},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 12)
	assert.Equal(t, "Archivo", row[0])
	assert.Equal(t, "Nro_Factura", row[1])
	assert.Equal(t, "IVA_Factura", row[11])
}

func TestWriteRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRows(sampleRows()))
	w.Flush()
	require.NoError(t, w.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, []string{
		"factura_01.txt", "FV-2024-001", "2024-03-15", "Comercializadora Andina S.A.S.", "900123456-7",
		"Crédito 30 días", "Resma papel carta", "2", "12500", "25000", "1250000.5", "199500.08",
	}, first)

	second := records[1]
	assert.Equal(t, "", second[5])
	assert.Equal(t, "Tóner, negro \"XL\"", second[6])
	assert.Equal(t, "1.5", second[7])
	assert.Equal(t, "0.1", second[8])
	assert.Equal(t, "0.15", second[9])
}

func TestWriteFile_BOMAndHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reporte.csv")

	require.NoError(t, WriteFile(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, BOM))

	records, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0", FormatMoney(0))
	assert.Equal(t, "1234.5678", FormatMoney(1234.5678))
	assert.Equal(t, "0.125", FormatMoney(0.125))
	assert.Equal(t, "-5.5", FormatMoney(-5.5))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"reporte_facturas", "reporte_facturas"},
		{"reporte facturas (marzo)", "reporte_facturas_marzo"},
		{"___a___b___", "a_b"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.input), "input: %q", tt.input)
	}

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, SanitizeFilename(string(long)), 100)
}

func TestBuildFilename(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 30, 5, 0, time.UTC)
	assert.Equal(t, "reporte_facturas_20240315-103005.csv", BuildFilename("reporte facturas", at, ".csv"))
}
