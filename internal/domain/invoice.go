package domain

// Client identifies the billed party.
type Client struct {
	Name    string  `json:"nombre"`
	TaxID   string  `json:"identificacion"`
	Address *string `json:"direccion"`
}

// LineItem is a single billed line in document order.
// Subtotal is taken from the model as-is; it is not recomputed from Quantity and UnitPrice.
type LineItem struct {
	Quantity    float64 `json:"cantidad"`
	Description string  `json:"descripcion"`
	UnitPrice   float64 `json:"precio_unitario"`
	Subtotal    float64 `json:"subtotal_item"`
}

// Totals holds the invoice amounts. GrandTotal is not checked against Subtotal + Tax.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"iva"`
	GrandTotal float64 `json:"total_general"`
	Currency   *string `json:"moneda"`
}

// Invoice is the structured record extracted from free-form invoice text.
// IssueDate is requested as YYYY-MM-DD but never parsed or validated locally.
type Invoice struct {
	InvoiceNumber string     `json:"numero_factura"`
	IssueDate     string     `json:"fecha_emision"`
	PaymentTerms  *string    `json:"forma_pago"`
	Client        Client     `json:"cliente"`
	Items         []LineItem `json:"items"`
	Totals        Totals     `json:"montos"`
}

// StringValue dereferences an optional string field, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
