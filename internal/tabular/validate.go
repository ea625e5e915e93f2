package tabular

import (
	"fmt"
	"sort"
	"strings"
)

// Status is the severity of a validation finding.
type Status string

const (
	StatusOK    Status = "OK"
	StatusWarn  Status = "WARN"
	StatusError Status = "ERROR"
)

// Finding is the result of one validation check.
type Finding struct {
	Check   string `json:"check_name"`
	Status  Status `json:"status"`
	Details string `json:"details,omitempty"`
}

// Validate runs all row checks in order. An empty file yields a single
// ERROR finding and stops; otherwise the missing-values and duplicate-row
// checks both run (duplicates is never short-circuited by missing values).
func Validate(rows []Row) []Finding {
	if len(rows) == 0 {
		return []Finding{{Check: "content", Status: StatusError, Details: "file is empty"}}
	}
	return []Finding{
		checkMissing(rows),
		checkDuplicates(rows),
	}
}

// checkMissing flags rows (1-indexed) with empty cells, naming the
// offending columns per row.
func checkMissing(rows []Row) Finding {
	var offenders []string
	for idx, row := range rows {
		var cols []string
		for _, cell := range row {
			if cell.Value == "" {
				cols = append(cols, cell.Column)
			}
		}
		if len(cols) > 0 {
			offenders = append(offenders, fmt.Sprintf("row %d: %s", idx+1, strings.Join(cols, ",")))
		}
	}
	if len(offenders) == 0 {
		return Finding{Check: "missing_values", Status: StatusOK}
	}
	return Finding{Check: "missing_values", Status: StatusWarn, Details: strings.Join(offenders, "; ")}
}

// checkDuplicates counts rows that repeat. Rows compare as unordered
// column/value sets, so two rows differing only in column order are equal.
func checkDuplicates(rows []Row) Finding {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[fingerprint(row)]++
	}
	duplicates := 0
	for _, n := range counts {
		if n > 1 {
			duplicates++
		}
	}
	if duplicates == 0 {
		return Finding{Check: "duplicates", Status: StatusOK}
	}
	return Finding{Check: "duplicates", Status: StatusWarn, Details: fmt.Sprintf("%d duplicate rows", duplicates)}
}

// fingerprint serializes a row order-independently.
func fingerprint(row Row) string {
	pairs := make([]string, len(row))
	for i, cell := range row {
		pairs[i] = fmt.Sprintf("%q=%q", cell.Column, cell.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ";")
}
