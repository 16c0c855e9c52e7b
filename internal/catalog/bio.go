package catalog

import (
	"io"
	"regexp"
)

// softBreak matches a line break that follows text on the same line.
var softBreak = regexp.MustCompile(`([^\n])\n`)

// NormalizeBio joins hard-wrapped lines: a newline right after a non-newline
// character becomes a space. Blank lines keep their second newline.
func NormalizeBio(text string) string {
	return softBreak.ReplaceAllString(text, "${1} ")
}

// Bios maps a creature's display name to its normalized bio.
type Bios map[string]string

// Lookup returns the bio for name, or "" when there is none.
func (b Bios) Lookup(name string) string {
	return b[name]
}

// LoadBios reads a CSV with "name" and "bio" columns.
func LoadBios(r io.Reader) (Bios, error) {
	t, err := ReadTable("bios.csv", r)
	if err != nil {
		return nil, err
	}
	return BiosFromTable(t)
}

// BiosFromTable builds the bio table from a parsed CSV. Names are kept
// verbatim; a later row for the same name replaces the earlier one.
func BiosFromTable(t *Table) (Bios, error) {
	if err := t.RequireColumns("name", "bio"); err != nil {
		return nil, err
	}

	bios := make(Bios, len(t.Rows))
	for _, row := range t.Rows {
		name, ok := row.Get("name")
		if !ok {
			return nil, &MissingFieldError{File: t.Name, Line: row.Line, Field: "name"}
		}
		text, ok := row.Get("bio")
		if !ok {
			return nil, &MissingFieldError{File: t.Name, Line: row.Line, Field: "bio"}
		}
		bios[name] = NormalizeBio(text)
	}
	return bios, nil
}
