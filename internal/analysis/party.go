package analysis

import (
	"regexp"
	"strings"
	"sync"
)

// PartyBlock is a labeled invoice counterparty: a name and an optional
// address span.
type PartyBlock struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// partyBoundary terminates the captured block at the next field label or at
// end of text. Free-form invoice text has no reliable line delimiter per
// field, so the non-greedy capture stops at the first boundary keyword.
const partyBoundary = `(?:cliente|proveedor|número\s+de\s+factura|numero\s+de\s+factura|número|numero|invoice\s+number|fecha|cantidad|total|descripción|descripcion|$)`

// addressCutPatterns mark where a name ends and an address begins. Checked
// in this order: the first pattern that matches anywhere in the block wins,
// even if a later pattern would match earlier in the text. Downstream
// behavior depends on this exact policy.
var addressCutPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bAv\.?\b`),
	regexp.MustCompile(`(?i)\bAvenida\b`),
	regexp.MustCompile(`(?i)\bCalle\b`),
	regexp.MustCompile(`(?i)\bCarrera\b`),
	regexp.MustCompile(`(?i)\bCl\.?\b`),
	regexp.MustCompile(`(?i)\bRuta\b`),
	regexp.MustCompile(`(?i)\bBoulevard\b`),
	regexp.MustCompile(`(?i)\d+\w*`),
}

var partyPatterns sync.Map // label -> *regexp.Regexp

func partyPattern(label string) *regexp.Regexp {
	if cached, ok := partyPatterns.Load(label); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(label) + `\s*:\s*(.+?)` + partyBoundary)
	partyPatterns.Store(label, re)
	return re
}

// ExtractParty locates the first occurrence of "<label>: ..." in text and
// splits the captured block into name and address. Returns nil when the
// label is not present. Matching is case-insensitive; later occurrences of
// the same label are ignored.
func ExtractParty(text, label string) *PartyBlock {
	m := partyPattern(label).FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	block := whitespaceRE.ReplaceAllString(m[1], " ")
	block = strings.Trim(block, " ,:")

	splitIndex := -1
	for _, re := range addressCutPatterns {
		if loc := re.FindStringIndex(block); loc != nil {
			splitIndex = loc[0]
			break
		}
	}
	if splitIndex < 0 {
		if idx := strings.Index(block, ","); idx >= 0 {
			splitIndex = idx
		}
	}

	name := block
	address := ""
	if splitIndex >= 0 {
		name = strings.Trim(block[:splitIndex], " ,")
		address = strings.Trim(block[splitIndex:], " ,")
	}
	return &PartyBlock{Name: optional(name), Address: optional(address)}
}

// optional maps the empty string to absence.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
