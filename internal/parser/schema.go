package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"invoicex/internal/domain"
)

// InvoiceJSONSchema returns the invoice output shape as a JSON schema map. Every
// object lists all of its properties as required and forbids extras, which is what
// strict structured-output modes expect; optional fields are nullable instead.
func InvoiceJSONSchema() map[string]any {
	return invoiceSchema(true)
}

// invoiceValidationSchema is the shape enforced on model output. Optional fields
// may be omitted and unknown keys are tolerated.
func invoiceValidationSchema() map[string]any {
	return invoiceSchema(false)
}

func invoiceSchema(strict bool) map[string]any {
	client := object(strict, map[string]any{
		"nombre":         text("Name or legal name of the billed client"),
		"identificacion": text("Client tax id (NIT, CC or other identification)"),
		"direccion":      nullableText("Full physical address of the client"),
	}, "direccion")

	item := object(strict, map[string]any{
		"cantidad":        number("Quantity billed; integer or decimal"),
		"descripcion":     text("Description of the product or service"),
		"precio_unitario": number("Price of one unit without currency symbols"),
		"subtotal_item":   number("Line total (unit price times quantity)"),
	})

	totals := object(strict, map[string]any{
		"subtotal":      number("Invoice subtotal before tax"),
		"iva":           number("Tax amount (IVA/VAT)"),
		"total_general": number("Grand total to pay"),
		"moneda":        nullableText("ISO 4217 currency code, if visible"),
	}, "moneda")

	return object(strict, map[string]any{
		"numero_factura": text("Unique invoice code (e.g. FV-2024-001)"),
		"fecha_emision":  text("Issue date in ISO 8601 format (YYYY-MM-DD)"),
		"forma_pago":     nullableText("Payment terms, e.g. cash, credit 30 days"),
		"cliente":        client,
		"items": map[string]any{
			"type":  "array",
			"items": item,
		},
		"montos": totals,
	}, "forma_pago")
}

// object builds an object schema. In strict mode every property is required and
// extras are forbidden; otherwise the optional names are left out of required.
func object(strict bool, props map[string]any, optional ...string) map[string]any {
	required := make([]string, 0, len(props))
	for name := range props {
		if !strict && slices.Contains(optional, name) {
			continue
		}
		required = append(required, name)
	}
	sort.Strings(required)

	schema := map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
	if strict {
		schema["additionalProperties"] = false
	}
	return schema
}

func text(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func nullableText(desc string) map[string]any {
	return map[string]any{"type": []string{"string", "null"}, "description": desc}
}

func number(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

var (
	schemaOnce     sync.Once
	schemaJSON     json.RawMessage
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() {
	b, err := json.Marshal(InvoiceJSONSchema())
	if err != nil {
		schemaErr = fmt.Errorf("marshal schema: %w", err)
		return
	}
	schemaJSON = b

	vb, err := json.Marshal(invoiceValidationSchema())
	if err != nil {
		schemaErr = fmt.Errorf("marshal validation schema: %w", err)
		return
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.json", bytes.NewReader(vb)); err != nil {
		schemaErr = fmt.Errorf("add schema: %w", err)
		return
	}
	compiledSchema, schemaErr = compiler.Compile("invoice.json")
	if schemaErr != nil {
		schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
	}
}

// InvoiceSchemaJSON returns the serialized invoice schema sent to providers.
func InvoiceSchemaJSON() (json.RawMessage, error) {
	schemaOnce.Do(loadSchema)
	return schemaJSON, schemaErr
}

// ValidateAgainstSchema checks that raw is a JSON document with every required
// invoice field present and of the right primitive type. Optional fields may be
// missing or null and unknown keys are ignored. Mismatches wrap
// domain.ErrSchemaViolation. No business rules are checked.
func ValidateAgainstSchema(raw []byte) error {
	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return schemaErr
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}
	return nil
}
