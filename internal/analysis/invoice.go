package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// ProductLine is one row of an invoice's product table, in source order.
type ProductLine struct {
	Quantity  float64  `json:"quantity"`
	Name      string   `json:"name"`
	UnitPrice *float64 `json:"unit_price"`
	LineTotal *float64 `json:"line_total"`
}

// InvoiceData is the structured representation extracted from invoice text.
// Every field is best-effort: absence is a normal outcome, never an error.
type InvoiceData struct {
	Customer *PartyBlock   `json:"customer"`
	Supplier *PartyBlock   `json:"supplier"`
	Number   *string       `json:"number"`
	Date     *string       `json:"date"` // raw matched string, original format preserved
	Lines    []ProductLine `json:"lines"`
	Total    *float64      `json:"total"`
}

var (
	invoiceNumberRE = regexp.MustCompile(`(?i)(?:número\s+de\s+factura|invoice\s+number)\s*[:\-\s]+([A-Z0-9\-]+)`)
	invoiceDateRE   = regexp.MustCompile(`(?i)(?:fecha|date)\s*[:\-\s]+([0-9]{1,2}[/\-][0-9]{1,2}[/\-][0-9]{2,4})`)
	invoiceTotalRE  = regexp.MustCompile(`(?i)(?:total\s+de\s+la\s+factura|importe\s+total|total)\s*[:\-\s]+\$?([\d.,]+)`)

	// productTableRE brackets the line-item section between the table header
	// and the closing total (or end of text).
	productTableRE = regexp.MustCompile(`(?is)Cantidad\s+Producto.*?Total(.*?)(?:Total\s+de\s+la\s+factura|$)`)
	productLineRE  = regexp.MustCompile(`(\d+)\s+([A-Za-z0-9ÁÉÍÓÚÜÑáéíóúüñ\-.\s]+)\s+\$?([\d.,]+)\s+\$?([\d.,]+)`)
)

// ParseInvoice extracts structured invoice fields from sanitized text:
// counterparties, invoice number, date, total and product lines.
func ParseInvoice(text string) InvoiceData {
	return InvoiceData{
		Customer: ExtractParty(text, "cliente"),
		Supplier: ExtractParty(text, "proveedor"),
		Number:   extractField(text, invoiceNumberRE),
		Date:     extractField(text, invoiceDateRE),
		Lines:    extractProductLines(text),
		Total:    extractAmount(text, invoiceTotalRE),
	}
}

// extractField returns the first trimmed capture of pattern, or nil.
func extractField(text string, pattern *regexp.Regexp) *string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return optional(strings.TrimSpace(m[1]))
}

// extractAmount normalizes the LAST capture of pattern in document order.
// Later totals supersede earlier subtotals.
func extractAmount(text string, pattern *regexp.Regexp) *float64 {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	return NormalizeAmount(matches[len(matches)-1][1])
}

// extractProductLines parses the tabular section of an invoice. When the
// table header is absent the whole text is scanned instead; low precision
// but resilient to mangled extraction output.
func extractProductLines(text string) []ProductLine {
	body := text
	if m := productTableRE.FindStringSubmatch(text); m != nil {
		body = m[1]
	}

	var lines []ProductLine
	for _, m := range productLineRE.FindAllStringSubmatch(body, -1) {
		qty, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(m[2])
		if name == "" {
			continue
		}
		lines = append(lines, ProductLine{
			Quantity:  qty,
			Name:      name,
			UnitPrice: NormalizeAmount(m[3]),
			LineTotal: NormalizeAmount(m[4]),
		})
	}
	return lines
}
