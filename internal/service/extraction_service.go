package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"invoicex/internal/domain"
	"invoicex/internal/parser"
	"invoicex/internal/port"
)

// ExtractionError reports a failed extraction together with the provider that
// was asked. It unwraps to the underlying cause, so errors.Is works against the
// domain sentinels and errors.As against parser.RateLimitError.
type ExtractionError struct {
	Provider string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("invoice extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("invoice extraction failed (%s): %v", e.Provider, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExtractionService defines the invoice extraction contract.
type ExtractionService interface {
	Extract(ctx context.Context, invoiceText string) (*domain.Invoice, error)
}

type extractionService struct {
	completer port.StructuredCompleter
	provider  string
	log       logrus.FieldLogger
}

// NewExtractionService creates an ExtractionService backed by the given completer.
// provider names the configured provider for error reporting.
func NewExtractionService(completer port.StructuredCompleter, provider string, log logrus.FieldLogger) ExtractionService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &extractionService{completer: completer, provider: provider, log: log}
}

// Extract sends the text to the provider once and returns the schema-valid Invoice.
// It does not retry and does not check totals or dates.
func (s *extractionService) Extract(ctx context.Context, invoiceText string) (*domain.Invoice, error) {
	if strings.TrimSpace(invoiceText) == "" {
		return nil, s.fail(s.provider, domain.ErrEmptyInvoiceText)
	}

	schema, err := parser.InvoiceSchemaJSON()
	if err != nil {
		return nil, s.fail(s.provider, err)
	}

	start := time.Now()
	out, err := s.completer.Complete(ctx, port.CompletionRequest{
		SystemInstruction: parser.BuildInvoiceSystemPrompt(),
		UserText:          invoiceText,
		SchemaName:        parser.InvoiceSchemaName,
		Schema:            schema,
	})
	if err != nil {
		return nil, s.fail(s.provider, err)
	}

	provider := s.provider
	if out.Provider != "" {
		provider = out.Provider
	}

	if len(out.Parsed) == 0 {
		return nil, s.fail(provider, fmt.Errorf("%w (finish reason %q)", domain.ErrNoParsedPayload, out.FinishReason))
	}
	if err := parser.ValidateAgainstSchema(out.Parsed); err != nil {
		return nil, s.fail(provider, err)
	}

	var inv domain.Invoice
	if err := json.Unmarshal(out.Parsed, &inv); err != nil {
		return nil, s.fail(provider, fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err))
	}

	s.log.WithFields(logrus.Fields{
		"provider":       provider,
		"model":          out.ModelUsed,
		"invoice_number": inv.InvoiceNumber,
		"items":          len(inv.Items),
		"elapsed_ms":     time.Since(start).Milliseconds(),
	}).Info("extractionService.Extract: invoice extracted")

	return &inv, nil
}

func (s *extractionService) fail(provider string, err error) error {
	s.log.WithFields(logrus.Fields{"provider": provider, "error": err}).Error("extractionService.Extract: extraction failed")
	return &ExtractionError{Provider: provider, Err: err}
}
