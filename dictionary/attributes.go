package dictionary

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Semantic attribute keys with engine-level meaning. CODE and PARENT_CODE
// drive hierarchy derivation; START_DATE and FINISH_DATE are pseudo-attributes
// consumed to derive validity windows and are not stored as ordinary periods.
const (
	AttrCode       = "CODE"
	AttrName       = "NAME"
	AttrParentCode = "PARENT_CODE"
	AttrStartDate  = "START_DATE"
	AttrFinishDate = "FINISH_DATE"
)

// Attribute value types.
const (
	AttributeTypeText = iota
	AttributeTypeNumber
	AttributeTypeDate
	AttributeTypeFlag
)

// Attr is one raw attribute value supplied to position create/edit calls.
type Attr struct {
	Name  string
	Value string
}

// AttrMap flattens an attribute list into a name -> value map.
// Later entries win on duplicate names.
func AttrMap(attrs []Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}

	return m
}

// WindowFromAttrs derives a validity window from the START_DATE / FINISH_DATE
// pseudo-attributes and removes them from the map. It returns found == false
// when either is absent, leaving the caller to fall back to the dictionary's
// own window.
func WindowFromAttrs(attrs map[string]string) (window Interval, found bool, err error) {
	rawStart, hasStart := attrs[AttrStartDate]
	rawFinish, hasFinish := attrs[AttrFinishDate]

	delete(attrs, AttrStartDate)
	delete(attrs, AttrFinishDate)

	if !hasStart || !hasFinish {
		return Interval{}, false, nil
	}

	start, parseErr := time.Parse(DateLayout, rawStart)
	if parseErr != nil {
		return Interval{}, false, errors.Join(ErrValidation, ErrInvalidPseudoDate, parseErr)
	}

	finish, parseErr := time.Parse(DateLayout, rawFinish)
	if parseErr != nil {
		return Interval{}, false, errors.Join(ErrValidation, ErrInvalidPseudoDate, parseErr)
	}

	window, err = NewInterval(start, finish)
	if err != nil {
		return Interval{}, false, err
	}

	return window, true, nil
}

// AttributeDefinition is the schema of one named field of a dictionary,
// fixed when the dictionary is created.
type AttributeDefinition struct {
	ID           int64
	DictionaryID int64
	Name         string
	AltName      string
	Type         int
	Required     bool
	Capacity     int
	Window       Interval
}

// Validate checks the definition before it is stored.
func (d AttributeDefinition) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.AltName, validation.Required),
		validation.Field(&d.Capacity, validation.Min(0)),
	)
	if err != nil {
		return errors.Join(ErrValidation, err)
	}

	return nil
}

// DefaultAttributeSet returns the attribute definitions seeded into every new
// dictionary. The required ones carry the engine's semantic keys.
func DefaultAttributeSet() []AttributeDefinition {
	const defaultCapacity = 250

	defs := []AttributeDefinition{
		{Name: "Name", AltName: AttrName, Type: AttributeTypeText, Required: true},
		{Name: "Code", AltName: AttrCode, Type: AttributeTypeText, Required: true},
		{Name: "Parent position code", AltName: AttrParentCode, Type: AttributeTypeText, Required: true},
		{Name: "Position valid from", AltName: AttrStartDate, Type: AttributeTypeDate, Required: true},
		{Name: "Position valid until", AltName: AttrFinishDate, Type: AttributeTypeDate, Required: true},
		{Name: "Description", AltName: "DESCRIPTION", Type: AttributeTypeText, Required: false},
		{Name: "Comment", AltName: "COMMENT", Type: AttributeTypeText, Required: false},
	}

	for i := range defs {
		defs[i].Capacity = defaultCapacity
	}

	return defs
}
