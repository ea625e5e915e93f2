package tabular

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, csv string) []Row {
	t.Helper()
	rows, err := ParseCSV(csv)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	return rows
}

func findingFor(t *testing.T, findings []Finding, check string) Finding {
	t.Helper()
	for _, f := range findings {
		if f.Check == check {
			return f
		}
	}
	t.Fatalf("no %q finding in %+v", check, findings)
	return Finding{}
}

func TestValidateEmpty(t *testing.T) {
	findings := Validate(nil)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Check != "content" || f.Status != StatusError || f.Details != "file is empty" {
		t.Errorf("finding = %+v", f)
	}
}

func TestValidateClean(t *testing.T) {
	rows := mustParse(t, "name,email\nJuan,j@x.com\nAna,a@x.com\n")
	findings := Validate(rows)
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}
	for _, f := range findings {
		if f.Status != StatusOK {
			t.Errorf("finding %q = %v, want OK", f.Check, f.Status)
		}
	}
}

func TestValidateMissingValues(t *testing.T) {
	rows := mustParse(t, "name,email\nJuan,j@x.com\nAna,\n")
	findings := Validate(rows)

	missing := findingFor(t, findings, "missing_values")
	if missing.Status != StatusWarn {
		t.Errorf("missing status = %v, want WARN", missing.Status)
	}
	if !strings.Contains(missing.Details, "row 2: email") {
		t.Errorf("details = %q, want mention of row 2: email", missing.Details)
	}

	// The duplicate check still runs and reports independently.
	dup := findingFor(t, findings, "duplicates")
	if dup.Status != StatusOK {
		t.Errorf("duplicates status = %v, want OK", dup.Status)
	}
}

func TestValidateMissingValuesMultipleColumns(t *testing.T) {
	rows := mustParse(t, "a,b,c\n,x,\n")
	missing := findingFor(t, Validate(rows), "missing_values")
	if !strings.Contains(missing.Details, "row 1: a,c") {
		t.Errorf("details = %q, want row 1: a,c", missing.Details)
	}
}

func TestValidateDuplicates(t *testing.T) {
	rows := mustParse(t, "name,email\nJuan,j@x.com\nJuan,j@x.com\nAna,a@x.com\n")
	dup := findingFor(t, Validate(rows), "duplicates")
	if dup.Status != StatusWarn {
		t.Errorf("status = %v, want WARN", dup.Status)
	}
	if dup.Details != "1 duplicate rows" {
		t.Errorf("details = %q, want %q", dup.Details, "1 duplicate rows")
	}
}

// Rows compare as unordered column/value sets, so identical content under a
// reordered header still counts as a duplicate.
func TestValidateDuplicatesIgnoreColumnOrder(t *testing.T) {
	rows := []Row{
		{{Column: "a", Value: "1"}, {Column: "b", Value: "2"}},
		{{Column: "b", Value: "2"}, {Column: "a", Value: "1"}},
	}
	dup := findingFor(t, Validate(rows), "duplicates")
	if dup.Status != StatusWarn {
		t.Errorf("status = %v, want WARN", dup.Status)
	}
}
