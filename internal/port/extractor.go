package port

import (
	"context"

	"invoicex/internal/domain"
)

// InvoiceExtractor turns raw invoice text into a structured Invoice.
type InvoiceExtractor interface {
	Extract(ctx context.Context, invoiceText string) (*domain.Invoice, error)
}
