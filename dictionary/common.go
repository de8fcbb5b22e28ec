package dictionary

import (
	"errors"
)

// Validation failures. Every error of this kind wraps ErrValidation so that
// callers can classify with errors.Is(err, ErrValidation).
var (
	// ErrValidation marks caller-correctable contract violations.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyAttributes is returned when a position is created or edited without any attribute values.
	ErrEmptyAttributes = errors.New("no attribute values supplied")

	// ErrMissingRequiredAttribute is returned when a required attribute of the dictionary is absent.
	ErrMissingRequiredAttribute = errors.New("required attribute is missing")

	// ErrMissingImportColumns is returned when the import input lacks the CODE or NAME column.
	ErrMissingImportColumns = errors.New("import input must contain CODE and NAME columns")

	// ErrInvalidPseudoDate is returned when START_DATE or FINISH_DATE cannot be parsed as 2006-01-02.
	ErrInvalidPseudoDate = errors.New("invalid START_DATE or FINISH_DATE value")

	// ErrDictionaryNotFound is returned when the referenced dictionary does not exist.
	ErrDictionaryNotFound = errors.New("dictionary not found")

	// ErrPositionNotFound is returned when the referenced position does not exist.
	ErrPositionNotFound = errors.New("position not found")

	// ErrDuplicateDictionaryCode is returned when creating a dictionary whose code is already taken.
	ErrDuplicateDictionaryCode = errors.New("dictionary code already exists")

	// ErrDictionaryHasPositions is returned when deleting a dictionary that still owns positions.
	ErrDictionaryHasPositions = errors.New("dictionary still has positions")
)

// Store failures. Every error of this kind wraps ErrStore together with the
// unmodified driver error; nothing is retried or rolled back at this level.
var (
	// ErrStore marks failures surfaced by the persistence collaborator.
	ErrStore = errors.New("store operation failed")

	// ErrBuildingQueryFailed is returned when a statement cannot be rendered to SQL.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrScanningRowFailed is returned when a result row cannot be scanned.
	ErrScanningRowFailed = errors.New("scanning database row failed")

	// ErrNilDatabaseConnection is returned by the engine constructors when no connection handle is supplied.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTablePrefix is returned when an empty table prefix is configured.
	ErrEmptyTablePrefix = errors.New("empty table prefix supplied")
)
