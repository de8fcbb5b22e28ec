package dictionary

import "strings"

// Period is one temporal value record of a (position, attribute) pair.
// A nil Value represents an explicit NULL.
type Period struct {
	ID       int64
	Interval Interval
	Value    *string
}

// SameValue compares the period's value with v, treating two NULLs as equal.
func (p Period) SameValue(v *string) bool {
	if p.Value == nil || v == nil {
		return p.Value == nil && v == nil
	}

	return *p.Value == *v
}

// nullForms are the raw spellings that normalize to NULL, compared after
// trimming and lower-casing.
var nullForms = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"":     {},
}

// NormalizeValue maps the raw textual value of an attribute to its stored
// form: values spelled like a missing value become NULL (nil), everything
// else is kept verbatim.
func NormalizeValue(raw string) *string {
	if _, isNull := nullForms[strings.ToLower(strings.TrimSpace(raw))]; isNull {
		return nil
	}

	return &raw
}
