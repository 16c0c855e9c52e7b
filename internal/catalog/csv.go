package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one CSV record keyed by lower-cased header name.
type Row struct {
	// Line is the 1-based line the record starts on.
	Line   int
	values map[string]string
}

// NewRow builds a Row from explicit values. Keys are matched case-insensitively.
func NewRow(line int, values map[string]string) Row {
	r := Row{Line: line, values: make(map[string]string, len(values))}
	for k, v := range values {
		r.values[normalizeHeader(k)] = v
	}
	return r
}

// Get returns the raw value of a column.
func (r Row) Get(field string) (string, bool) {
	v, ok := r.values[normalizeHeader(field)]
	return v, ok
}

// Table is a parsed CSV file.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// HasColumn reports whether the header contains field.
func (t *Table) HasColumn(field string) bool {
	want := normalizeHeader(field)
	for _, h := range t.Header {
		if h == want {
			return true
		}
	}
	return false
}

// RequireColumns returns a MissingFieldError for the first absent column.
func (t *Table) RequireColumns(fields ...string) error {
	for _, f := range fields {
		if !t.HasColumn(f) {
			return &MissingFieldError{File: t.Name, Field: f}
		}
	}
	return nil
}

// ReadTable parses a headed CSV. Rows shorter than the header keep only the
// columns they have; the missing ones surface when a caller asks for them.
// name is used in error messages only.
func ReadTable(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Name: name}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = normalizeHeader(h)
	}

	t := &Table{Name: name, Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line, _ := cr.FieldPos(0)

		row := Row{Line: line, values: make(map[string]string, len(header))}
		for i, h := range header {
			if i < len(rec) {
				row.values[h] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
