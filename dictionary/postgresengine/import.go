package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

const (
	opImportRows = "import_rows"

	importBatchSize = 1000

	logAttrImportID     = "import_id"
	logAttrRowCount     = "row_count"
	logAttrSkippedCount = "skipped_count"
)

// ImportRows loads a batch of tabular rows into the dictionary. Each row
// becomes one position whose known attribute columns each get one value
// period spanning the dictionary's validity window, with empty and null-like
// cells stored as null. Rows without a CODE or NAME value are skipped, and
// the whole batch is rejected when those columns are absent. Period inserts
// are flushed in batches; there is no rollback when a later batch fails.
// Relations for the whole dictionary are rebuilt once at the end.
func (s DictionaryStore) ImportRows(
	ctx context.Context,
	dictionaryID int64,
	columns []string,
	rows []dictionary.Row,
) error {

	started := time.Now()
	importID := uuid.NewString()

	if !dictionary.HasImportColumns(columns) {
		return errors.Join(dictionary.ErrValidation, dictionary.ErrMissingImportColumns)
	}

	def, err := s.GetDictionary(ctx, dictionaryID)
	if err != nil {
		return err
	}

	window := def.Window()

	attrIDs, err := s.attributeIDsByAltName(ctx, dictionaryID)
	if err != nil {
		return err
	}

	importable := dictionary.FilterImportRows(rows)
	skipped := len(rows) - len(importable)

	if len(importable) == 0 {
		s.logOperation(opImportRows, started,
			logAttrImportID, importID,
			logAttrDictionaryID, dictionaryID,
			logAttrRowCount, 0,
			logAttrSkippedCount, skipped)

		return nil
	}

	positionIDs, err := s.insertPositionBatch(ctx, dictionaryID, len(importable))
	if err != nil {
		return err
	}

	insertSQL, err := s.periodInsertSQL()
	if err != nil {
		return err
	}

	matched := matchedColumns(columns, attrIDs)

	var pending [][]any

	for i, row := range importable {
		positionID := positionIDs[i]

		for _, column := range matched {
			pending = append(pending, []any{
				positionID, attrIDs[column], window.Start, window.Finish,
				dictionary.NormalizeValue(row[column]),
			})

			if len(pending) < importBatchSize {
				continue
			}

			if err = s.execMany(ctx, opImportRows, insertSQL, pending); err != nil {
				return err
			}

			pending = pending[:0]
		}
	}

	if err = s.execMany(ctx, opImportRows, insertSQL, pending); err != nil {
		return err
	}

	if err = s.RebuildRelationsForDictionary(ctx, dictionaryID); err != nil {
		return err
	}

	s.logOperation(opImportRows, started,
		logAttrImportID, importID,
		logAttrDictionaryID, dictionaryID,
		logAttrRowCount, len(importable),
		logAttrSkippedCount, skipped)

	return nil
}

// matchedColumns keeps the columns that map to a known attribute, in their
// first-seen order, so a repeated column name yields one period per attribute.
func matchedColumns(columns []string, attrIDs map[string]int64) []string {
	matched := make([]string, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))

	for _, column := range columns {
		if _, known := attrIDs[column]; !known {
			continue
		}

		if _, duplicate := seen[column]; duplicate {
			continue
		}

		seen[column] = struct{}{}
		matched = append(matched, column)
	}

	return matched
}

// insertPositionBatch creates count position rows in one statement and
// returns their ids in insertion order.
func (s DictionaryStore) insertPositionBatch(ctx context.Context, dictionaryID int64, count int) ([]int64, error) {
	source := s.dialect().
		From(goqu.L("generate_series(1, ?)", count)).
		Select(goqu.V(dictionaryID))

	insertStmt := s.dialect().
		Insert(s.tables.positions).
		Prepared(true).
		Cols(colIDDictionary).
		FromQuery(source).
		Returning(colID)

	return s.queryIDs(ctx, opImportRows, insertStmt)
}
