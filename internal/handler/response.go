package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"invoicex/internal/domain"
	"invoicex/internal/middleware"
	"invoicex/internal/parser"
	"invoicex/internal/service"
)

// APIResponse is the standard envelope for error responses.
// Extracted invoices are returned bare so the front-end can read them directly.
type APIResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Every extraction failure is a 500; the code tells the caller which kind.
func MapDomainError(err error) (status int, code, msg string) {
	var rlErr *parser.RateLimitError
	switch {
	case errors.Is(err, domain.ErrEmptyInvoiceText):
		return http.StatusBadRequest, "EMPTY_INVOICE_TEXT", "the uploaded file contains no invoice text"
	case errors.Is(err, domain.ErrInvalidEncoding):
		return http.StatusInternalServerError, "INVALID_ENCODING", "the uploaded file is not valid UTF-8 text"
	case errors.Is(err, domain.ErrNoParsedPayload):
		return http.StatusInternalServerError, "NO_PARSED_PAYLOAD", "the model returned no structured invoice"
	case errors.Is(err, domain.ErrSchemaViolation):
		return http.StatusInternalServerError, "SCHEMA_VIOLATION", "the model output does not match the invoice schema"
	case errors.As(err, &rlErr):
		return http.StatusInternalServerError, "PROVIDER_RATE_LIMITED", "the extraction provider is rate limiting requests"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Provider failures keep their own message so the caller can see what went wrong.
func HandleError(c *gin.Context, log logrus.FieldLogger, err error) {
	status, code, msg := MapDomainError(err)

	var extErr *service.ExtractionError
	if code == "INTERNAL_ERROR" && errors.As(err, &extErr) {
		code, msg = "EXTRACTION_FAILED", err.Error()
	}

	if status >= 500 {
		log.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"error":      err,
		}).Error("request failed")
	}
	RespondError(c, status, code, msg)
}
