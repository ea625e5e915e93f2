package tabular

import (
	"encoding/json"
	"testing"
)

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV("name,email\nJuan,juan@example.com\nAna,ana@example.com\n")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if v, _ := rows[0].Get("name"); v != "Juan" {
		t.Errorf("rows[0][name] = %q, want Juan", v)
	}
	if v, _ := rows[1].Get("email"); v != "ana@example.com" {
		t.Errorf("rows[1][email] = %q", v)
	}
	if _, ok := rows[0].Get("missing"); ok {
		t.Error("Get reported a column that does not exist")
	}
}

func TestParseCSVShortAndLongRecords(t *testing.T) {
	rows, err := ParseCSV("a,b,c\n1,2\n1,2,3,4\n")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Short record: trailing column empty.
	if v, ok := rows[0].Get("c"); !ok || v != "" {
		t.Errorf("short record c = %q ok=%v, want empty present", v, ok)
	}
	// Long record: extras dropped.
	if len(rows[1]) != 3 {
		t.Errorf("long record has %d cells, want 3", len(rows[1]))
	}
}

func TestParseCSVEmpty(t *testing.T) {
	rows, err := ParseCSV("")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	rows, err := ParseCSV("a,b,c\n")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestParseCSVStripsBOM(t *testing.T) {
	rows, err := ParseCSV("\ufeffname\nJuan\n")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if v, ok := rows[0].Get("name"); !ok || v != "Juan" {
		t.Errorf("name = %q ok=%v; BOM leaked into the header", v, ok)
	}
}

// Serialization must preserve the original column order, not sort keys.
func TestRowMarshalJSONKeepsColumnOrder(t *testing.T) {
	row := Row{
		{Column: "zeta", Value: "1"},
		{Column: "alpha", Value: "2"},
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":"1","alpha":"2"}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}
