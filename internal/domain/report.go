package domain

// ReportRow is one flattened line of a batch report: a single line item with
// the invoice-level fields of its invoice repeated alongside.
type ReportRow struct {
	File            string
	InvoiceNumber   string
	IssueDate       string
	ClientName      string
	ClientTaxID     string
	PaymentTerms    string
	ItemDescription string
	Quantity        float64
	UnitPrice       float64
	ItemSubtotal    float64
	InvoiceTotal    float64
	InvoiceTax      float64
}

// ReportRows flattens the invoice into one row per line item. An invoice
// without items yields no rows.
func (inv *Invoice) ReportRows(file string) []ReportRow {
	rows := make([]ReportRow, 0, len(inv.Items))
	for _, item := range inv.Items {
		rows = append(rows, ReportRow{
			File:            file,
			InvoiceNumber:   inv.InvoiceNumber,
			IssueDate:       inv.IssueDate,
			ClientName:      inv.Client.Name,
			ClientTaxID:     inv.Client.TaxID,
			PaymentTerms:    StringValue(inv.PaymentTerms),
			ItemDescription: item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			ItemSubtotal:    item.Subtotal,
			InvoiceTotal:    inv.Totals.GrandTotal,
			InvoiceTax:      inv.Totals.Tax,
		})
	}
	return rows
}
