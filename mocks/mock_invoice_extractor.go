package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicex/internal/domain"
)

// MockInvoiceExtractor is a mock implementation of port.InvoiceExtractor.
type MockInvoiceExtractor struct {
	mock.Mock
}

func (m *MockInvoiceExtractor) Extract(ctx context.Context, invoiceText string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
