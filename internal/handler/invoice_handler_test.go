package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicex/internal/domain"
	"invoicex/internal/handler"
	"invoicex/internal/logger"
	"invoicex/internal/parser"
	"invoicex/internal/service"
	"invoicex/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func uploadContext(t *testing.T, field string, content []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "factura.txt")
	require.NoError(t, err)
	_, _ = part.Write(content)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/procesar", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp
}

func TestInvoiceHandler_Process_Success(t *testing.T) {
	extractor := new(mocks.MockInvoiceExtractor)
	address := "Calle 10 # 5-20, Bogotá"
	extractor.On("Extract", mock.Anything, "FACTURA FV-1\nTotal 119").Return(&domain.Invoice{
		InvoiceNumber: "FV-1",
		IssueDate:     "2024-03-15",
		Client:        domain.Client{Name: "ACME", TaxID: "900-1", Address: &address},
		Items:         []domain.LineItem{{Quantity: 1, Description: "Servicio", UnitPrice: 100, Subtotal: 100}},
		Totals:        domain.Totals{Subtotal: 100, Tax: 19, GrandTotal: 119},
	}, nil)
	h := handler.NewInvoiceHandler(extractor, logger.Discard())

	c, w := uploadContext(t, "file", []byte("FACTURA FV-1\nTotal 119"))
	h.Process(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got domain.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "FV-1", got.InvoiceNumber)
	assert.Equal(t, address, domain.StringValue(got.Client.Address))
	assert.Equal(t, 119.0, got.Totals.GrandTotal)
	assert.NotContains(t, w.Body.String(), `"success"`)
	extractor.AssertExpectations(t)
}

func TestInvoiceHandler_Process_MissingFile(t *testing.T) {
	extractor := new(mocks.MockInvoiceExtractor)
	h := handler.NewInvoiceHandler(extractor, logger.Discard())

	c, w := uploadContext(t, "document", []byte("FACTURA"))
	h.Process(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeError(t, w).Error.Code)
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Process_EmptyFile(t *testing.T) {
	extractor := new(mocks.MockInvoiceExtractor)
	h := handler.NewInvoiceHandler(extractor, logger.Discard())

	c, w := uploadContext(t, "file", []byte(" \n "))
	h.Process(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_INVOICE_TEXT", decodeError(t, w).Error.Code)
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Process_InvalidUTF8(t *testing.T) {
	extractor := new(mocks.MockInvoiceExtractor)
	h := handler.NewInvoiceHandler(extractor, logger.Discard())

	c, w := uploadContext(t, "file", []byte{0xff, 0xfe, 'F', 'V'})
	h.Process(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INVALID_ENCODING", decodeError(t, w).Error.Code)
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Process_ExtractionFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"no payload", &service.ExtractionError{Provider: "openai", Err: domain.ErrNoParsedPayload}, "NO_PARSED_PAYLOAD"},
		{"schema", &service.ExtractionError{Provider: "openai", Err: domain.ErrSchemaViolation}, "SCHEMA_VIOLATION"},
		{"rate limited", &service.ExtractionError{Provider: "openai", Err: parser.NewRateLimitError("openai", errors.New("429"), 0)}, "PROVIDER_RATE_LIMITED"},
		{"provider error", &service.ExtractionError{Provider: "openai", Err: errors.New("connection refused")}, "EXTRACTION_FAILED"},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := new(mocks.MockInvoiceExtractor)
			extractor.On("Extract", mock.Anything, "FACTURA").Return(nil, tt.err)
			h := handler.NewInvoiceHandler(extractor, logger.Discard())

			c, w := uploadContext(t, "file", []byte("FACTURA"))
			h.Process(c)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
		})
	}
}

func TestInvoiceHandler_Process_ExtractionFailedKeepsMessage(t *testing.T) {
	extractor := new(mocks.MockInvoiceExtractor)
	err := &service.ExtractionError{Provider: "openai", Err: errors.New("connection refused")}
	extractor.On("Extract", mock.Anything, "FACTURA").Return(nil, err)
	h := handler.NewInvoiceHandler(extractor, logger.Discard())

	c, w := uploadContext(t, "file", []byte("FACTURA"))
	h.Process(c)

	assert.Equal(t, err.Error(), decodeError(t, w).Error.Message)
}
