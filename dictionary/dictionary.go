package dictionary

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Dictionary statuses, derived from the validity window when the dictionary
// is created or updated.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// Definition is the administrative metadata of one dictionary: a versioned
// classification list whose validity window bounds the default period of
// newly imported attribute values.
type Definition struct {
	ID          int64
	Name        string
	Code        string
	Description string
	StartDate   time.Time
	FinishDate  time.Time
	Status      int
	Type        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the definition before it is stored.
func (d Definition) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Code, validation.Required),
		validation.Field(&d.FinishDate, validation.Required, validation.By(d.finishAfterStart)),
	)
	if err != nil {
		return errors.Join(ErrValidation, err)
	}

	return nil
}

func (d Definition) finishAfterStart(_ any) error {
	if !Day(d.StartDate).Before(Day(d.FinishDate)) {
		return ErrStartAfterFinish
	}

	return nil
}

// Window returns the dictionary's validity window.
func (d Definition) Window() Interval {
	return Interval{Start: Day(d.StartDate), Finish: Day(d.FinishDate)}
}

// StatusAsOf derives the dictionary status for a reference day, usually today.
func (d Definition) StatusAsOf(day time.Time) int {
	if d.Window().Contains(day) {
		return StatusActive
	}

	return StatusInactive
}

// Position is an anchor row attribute periods and relations attach to;
// it carries no data of its own.
type Position struct {
	ID           int64
	DictionaryID int64
}
