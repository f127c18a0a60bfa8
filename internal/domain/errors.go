package domain

import "errors"

var (
	ErrEmptyInvoiceText = errors.New("no invoice text provided")
	ErrNoParsedPayload  = errors.New("model returned no parsed payload")
	ErrSchemaViolation  = errors.New("model output does not match invoice schema")
	ErrInvalidEncoding  = errors.New("uploaded file is not valid UTF-8 text")
	ErrNothingGenerated = errors.New("no records generated")
)
