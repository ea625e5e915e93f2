// Package tabular parses CSV uploads into ordered rows and validates them.
package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Cell is one column/value pair of a row.
type Cell struct {
	Column string
	Value  string
}

// Row is one CSV record. Cell order follows the header, so iteration
// reproduces the original column order.
type Row []Cell

// Get returns the value for a column name.
func (r Row) Get(column string) (string, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return "", false
}

// MarshalJSON serializes the row as a JSON object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c.Column)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// ParseCSV reads delimiter-separated content whose first record names the
// columns. Short records leave trailing columns empty; long records are
// truncated to the header width.
func ParseCSV(content string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(stripBOM(content)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row[i] = Cell{Column: col, Value: value}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// stripBOM drops a UTF-8 byte-order mark left by spreadsheet exports.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
