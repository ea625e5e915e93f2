package analysis

import (
	"strings"

	"github.com/docuflow/document-analyzer/constants"
)

// invoiceKeywords is the fixed scoring set; two distinct hits classify a
// document as an invoice.
var invoiceKeywords = []string{"factura", "invoice", "subtotal", "iva", "total"}

// Classify maps sanitized text to a document type with a case-insensitive
// keyword score. Deterministic and total.
func Classify(text string) constants.DocumentType {
	lower := strings.ToLower(text)
	score := 0
	for _, kw := range invoiceKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	if score >= 2 {
		return constants.DocumentTypeInvoice
	}
	return constants.DocumentTypeInformation
}
