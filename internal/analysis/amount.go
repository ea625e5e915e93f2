package analysis

import (
	"strconv"
	"strings"
)

var amountCleaner = strings.NewReplacer("$", "", " ", "")

// NormalizeAmount parses a locale-ambiguous monetary string into a float,
// returning nil when the value is empty or unparseable.
//
// Disambiguation: when both "," and "." occur, the comma is assumed to be a
// thousands separator ("1,234.56"). When only a comma occurs it is assumed
// to be a European decimal point ("300,00"). If parsing still fails, a
// second pass strips periods as thousands separators and retries. Invoice
// totals show up in either convention with no reliable signal beyond the
// co-occurrence of both separators.
func NormalizeAmount(raw string) *float64 {
	cleaned := amountCleaner.Replace(raw)
	if cleaned == "" {
		return nil
	}

	hasComma := strings.Contains(cleaned, ",")
	hasPeriod := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasPeriod:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return &v
	}

	// Second pass: periods as thousands separators, comma as decimal point.
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return &v
	}
	return nil
}
