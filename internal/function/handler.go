// Package function adapts the extraction service to an API Gateway proxy
// event handler for AWS Lambda.
package function

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"invoicex/internal/domain"
	"invoicex/internal/port"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST, GET, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
	"Content-Type":                 "application/json",
}

// Handler serves invoice extraction requests delivered as proxy events.
type Handler struct {
	extractor port.InvoiceExtractor
	log       logrus.FieldLogger
}

// NewHandler creates a Handler.
func NewHandler(extractor port.InvoiceExtractor, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{extractor: extractor, log: log}
}

// Handle answers a single event. Failures are reported in the response; the
// returned error is always nil so the runtime never retries the invocation.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusOK, ""), nil
	}

	text := RequestText(req.Body, req.IsBase64Encoded)
	if text == "" {
		return errorResponse(http.StatusBadRequest, domain.ErrEmptyInvoiceText.Error()), nil
	}

	log := h.log.WithField("request_id", req.RequestContext.RequestID)
	inv, err := h.extractor.Extract(ctx, text)
	if err != nil {
		log.WithError(err).Error("function.Handle: extraction failed")
		if errors.Is(err, domain.ErrEmptyInvoiceText) {
			return errorResponse(http.StatusBadRequest, err.Error()), nil
		}
		return errorResponse(http.StatusInternalServerError, err.Error()), nil
	}

	body, err := json.Marshal(inv)
	if err != nil {
		log.WithError(err).Error("function.Handle: encoding invoice failed")
		return errorResponse(http.StatusInternalServerError, err.Error()), nil
	}
	log.WithField("invoice_number", inv.InvoiceNumber).Info("function.Handle: invoice extracted")
	return respond(http.StatusOK, string(body)), nil
}

// RequestText recovers the invoice text from a proxy event body. A base64 body
// that does not decode is used as-is, and so is a JSON body that does not wrap
// the text in a string "body" field. Both fallbacks are intentional: callers
// send raw text, base64 text, or {"body": "..."} and all three must work.
func RequestText(body string, isBase64 bool) string {
	text := body
	if isBase64 {
		if decoded, err := base64.StdEncoding.DecodeString(text); err == nil {
			text = string(decoded)
		}
	}

	if strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), "{") {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &envelope); err == nil {
			if raw, ok := envelope["body"]; ok {
				var inner string
				if err := json.Unmarshal(raw, &inner); err == nil {
					text = inner
				}
			}
		}
	}
	return text
}

func respond(status int, body string) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(corsHeaders))
	for k, v := range corsHeaders {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: body}
}

func errorResponse(status int, msg string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return respond(status, string(body))
}
