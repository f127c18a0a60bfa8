package domain

import "strings"

// InvoiceTextExtensions lists the file extensions (without dot) the batch processor reads.
var InvoiceTextExtensions = map[string]bool{
	"txt": true,
}

// IsInvoiceTextFile reports whether name has a recognized invoice text extension.
func IsInvoiceTextFile(name string) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return false
	}
	return InvoiceTextExtensions[strings.ToLower(name[idx+1:])]
}
