package handler

import (
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"invoicex/internal/domain"
	"invoicex/internal/middleware"
	"invoicex/internal/port"
)

// InvoiceHandler handles invoice extraction uploads.
type InvoiceHandler struct {
	extractor port.InvoiceExtractor
	log       logrus.FieldLogger
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(extractor port.InvoiceExtractor, log logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{extractor: extractor, log: log}
}

// Process handles POST /procesar
// Reads the multipart field "file" as UTF-8 text and returns the extracted invoice.
func (h *InvoiceHandler) Process(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", `multipart field "file" is required`)
		return
	}

	f, err := fh.Open()
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	if !utf8.Valid(data) {
		HandleError(c, h.log, domain.ErrInvalidEncoding)
		return
	}
	if strings.TrimSpace(string(data)) == "" {
		HandleError(c, h.log, domain.ErrEmptyInvoiceText)
		return
	}

	inv, err := h.extractor.Extract(c.Request.Context(), string(data))
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"request_id":     middleware.GetRequestID(c),
		"file":           fh.Filename,
		"invoice_number": inv.InvoiceNumber,
	}).Info("invoiceHandler.Process: invoice extracted")
	c.JSON(http.StatusOK, inv)
}
