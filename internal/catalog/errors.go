package catalog

import (
	"fmt"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// MissingFieldError reports a column absent from a CSV header or a row too short to hold it.
type MissingFieldError struct {
	File  string
	Line  int
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: missing field %q", e.File, e.Line, e.Field)
	}
	return fmt.Sprintf("%s: missing column %q", e.File, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == bestiary.ErrInvalidInput }

// UnknownReferenceError reports a class, race, source or trait name with no matching row.
type UnknownReferenceError struct {
	Category bestiary.Category
	Name     string
	Slug     string
	Line     int
}

func (e *UnknownReferenceError) Error() string {
	msg := fmt.Sprintf("unknown %s %q (slug %q)", e.Category, e.Name, e.Slug)
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *UnknownReferenceError) Is(target error) bool { return target == bestiary.ErrInvalidInput }

// SpriteError reports a battle sprite that could not be read.
type SpriteError struct {
	Name string
	Line int
	Err  error
}

func (e *SpriteError) Error() string {
	msg := fmt.Sprintf("battle sprite %q: %v", e.Name, e.Err)
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *SpriteError) Unwrap() error { return e.Err }

func (e *SpriteError) Is(target error) bool { return target == bestiary.ErrInvalidInput }

// InvalidFieldError reports a value that does not parse as its column's type.
type InvalidFieldError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("line %d: field %q: invalid value %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

func (e *InvalidFieldError) Is(target error) bool { return target == bestiary.ErrInvalidInput }

// DuplicateSlugError reports two rows of one file that derive the same slug.
type DuplicateSlugError struct {
	Slug      string
	FirstLine int
	Line      int
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("line %d: slug %q already used on line %d", e.Line, e.Slug, e.FirstLine)
}

func (e *DuplicateSlugError) Is(target error) bool { return target == bestiary.ErrInvalidInput }
