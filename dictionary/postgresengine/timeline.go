package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

const (
	opCreatePosition = "create_position"
	opEditAttribute  = "edit_attribute"
	opEditPosition   = "edit_position"

	logAttrPositionID  = "position_id"
	logAttrAttributeID = "attribute_id"
	logAttrPeriodCount = "period_count"
)

// CreatePosition creates one position with one initial value period per
// supplied attribute. Every required attribute of the dictionary must be
// present and attrs must not be empty. The START_DATE / FINISH_DATE
// pseudo-attributes are consumed to derive the validity window; when absent,
// the dictionary's own window is used. The position's relations are derived
// immediately after the periods are written.
func (s DictionaryStore) CreatePosition(ctx context.Context, dictionaryID int64, attrs []dictionary.Attr) (int64, error) {
	started := time.Now()

	if len(attrs) == 0 {
		return 0, errors.Join(dictionary.ErrValidation, dictionary.ErrEmptyAttributes)
	}

	attrMap := dictionary.AttrMap(attrs)

	if err := s.checkRequiredAttrs(ctx, dictionaryID, attrMap); err != nil {
		return 0, err
	}

	def, err := s.GetDictionary(ctx, dictionaryID)
	if err != nil {
		return 0, err
	}

	window, found, err := dictionary.WindowFromAttrs(attrMap)
	if err != nil {
		return 0, err
	}

	if !found {
		window = def.Window()
	}

	attrIDs, err := s.attributeIDsByAltName(ctx, dictionaryID)
	if err != nil {
		return 0, err
	}

	positionID, err := s.insertPosition(ctx, dictionaryID)
	if err != nil {
		return 0, err
	}

	insertSQL, err := s.periodInsertSQL()
	if err != nil {
		return 0, err
	}

	var argSets [][]any

	for _, name := range sortedKeys(attrMap) {
		attributeID, known := attrIDs[name]
		if !known {
			continue
		}

		argSets = append(argSets, []any{
			positionID, attributeID, window.Start, window.Finish,
			dictionary.NormalizeValue(attrMap[name]),
		})
	}

	if err = s.execMany(ctx, opCreatePosition, insertSQL, argSets); err != nil {
		return 0, err
	}

	if err = s.RebuildRelationsForPosition(ctx, positionID, dictionaryID); err != nil {
		return 0, err
	}

	s.logOperation(opCreatePosition, started,
		logAttrDictionaryID, dictionaryID,
		logAttrPositionID, positionID,
		logAttrPeriodCount, len(argSets))

	return positionID, nil
}

// EditAttribute places a new value period onto the timeline of one
// (position, attribute) pair using the three-step edit of dictionary.Timeline,
// then re-derives the position's relations.
//
// Concurrent edits of the same (position, attribute) race across the
// read/plan/apply sequence; callers must serialize them.
func (s DictionaryStore) EditAttribute(
	ctx context.Context,
	positionID int64,
	attributeID int64,
	start time.Time,
	finish time.Time,
	value *string,
) error {

	started := time.Now()

	window, err := dictionary.NewInterval(start, finish)
	if err != nil {
		return err
	}

	dictionaryID, err := s.dictionaryIDForPosition(ctx, positionID)
	if err != nil {
		return err
	}

	if err = s.editTimeline(ctx, positionID, attributeID, window, value); err != nil {
		return err
	}

	if err = s.RebuildRelationsForPosition(ctx, positionID, dictionaryID); err != nil {
		return err
	}

	s.logOperation(opEditAttribute, started,
		logAttrPositionID, positionID,
		logAttrAttributeID, attributeID)

	return nil
}

// EditPosition applies a timeline edit for every supplied attribute of the
// position over the window derived from the START_DATE / FINISH_DATE
// pseudo-attributes (falling back to the dictionary's window), then
// re-derives the position's relations once.
func (s DictionaryStore) EditPosition(ctx context.Context, positionID int64, attrs []dictionary.Attr) error {
	started := time.Now()

	if len(attrs) == 0 {
		return errors.Join(dictionary.ErrValidation, dictionary.ErrEmptyAttributes)
	}

	attrMap := dictionary.AttrMap(attrs)

	dictionaryID, err := s.dictionaryIDForPosition(ctx, positionID)
	if err != nil {
		return err
	}

	window, found, err := dictionary.WindowFromAttrs(attrMap)
	if err != nil {
		return err
	}

	if !found {
		def, defErr := s.GetDictionary(ctx, dictionaryID)
		if defErr != nil {
			return defErr
		}

		window = def.Window()
	}

	attrIDs, err := s.attributeIDsByAltName(ctx, dictionaryID)
	if err != nil {
		return err
	}

	for _, name := range sortedKeys(attrMap) {
		attributeID, known := attrIDs[name]
		if !known {
			continue
		}

		value := dictionary.NormalizeValue(attrMap[name])

		if err = s.editTimeline(ctx, positionID, attributeID, window, value); err != nil {
			return err
		}
	}

	if err = s.RebuildRelationsForPosition(ctx, positionID, dictionaryID); err != nil {
		return err
	}

	s.logOperation(opEditPosition, started,
		logAttrPositionID, positionID,
		logAttrPeriodCount, len(attrMap))

	return nil
}

// editTimeline loads the period set of one (position, attribute) pair, plans
// the edit through the timeline value object, and applies the change set.
func (s DictionaryStore) editTimeline(
	ctx context.Context,
	positionID int64,
	attributeID int64,
	window dictionary.Interval,
	value *string,
) error {

	periods, err := s.fetchPeriods(ctx, positionID, attributeID)
	if err != nil {
		return err
	}

	changes := dictionary.NewTimeline(periods).Edit(window, value)

	return s.applyChangeSet(ctx, opEditAttribute, positionID, attributeID, changes)
}

// fetchPeriods loads all value periods of one (position, attribute) pair.
func (s DictionaryStore) fetchPeriods(ctx context.Context, positionID int64, attributeID int64) ([]dictionary.Period, error) {
	selectStmt := s.dialect().
		From(s.tables.data).
		Prepared(true).
		Select(colID, colStartDate, colFinishDate, colValue).
		Where(
			goqu.C(colIDPosition).Eq(positionID),
			goqu.C(colIDAttribute).Eq(attributeID),
		).
		Order(goqu.C(colStartDate).Asc())

	rows, err := s.query(ctx, opEditAttribute, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var periods []dictionary.Period

	for rows.Next() {
		var (
			p             dictionary.Period
			start, finish time.Time
		)

		if scanErr := rows.Scan(&p.ID, &start, &finish, &p.Value); scanErr != nil {
			return nil, s.scanFailure(scanErr)
		}

		p.Interval = dictionary.Interval{Start: dictionary.Day(start), Finish: dictionary.Day(finish)}
		periods = append(periods, p)
	}

	return periods, nil
}

// applyChangeSet persists one timeline change set: deletes, boundary updates,
// then inserts.
func (s DictionaryStore) applyChangeSet(
	ctx context.Context,
	op string,
	positionID int64,
	attributeID int64,
	changes dictionary.ChangeSet,
) error {

	if len(changes.DeleteIDs) > 0 {
		deleteStmt := s.dialect().
			Delete(s.tables.data).
			Prepared(true).
			Where(goqu.C(colID).In(changes.DeleteIDs))

		if _, err := s.exec(ctx, op, deleteStmt); err != nil {
			return err
		}
	}

	for _, update := range changes.Updates {
		updateStmt := s.dialect().
			Update(s.tables.data).
			Prepared(true).
			Set(goqu.Record{
				colStartDate:  update.Start,
				colFinishDate: update.Finish,
			}).
			Where(goqu.C(colID).Eq(update.PeriodID))

		if _, err := s.exec(ctx, op, updateStmt); err != nil {
			return err
		}
	}

	insertSQL, err := s.periodInsertSQL()
	if err != nil {
		return err
	}

	argSets := make([][]any, 0, len(changes.Inserts))
	for _, p := range changes.Inserts {
		argSets = append(argSets, []any{
			positionID, attributeID, p.Interval.Start, p.Interval.Finish, p.Value,
		})
	}

	return s.execMany(ctx, op, insertSQL, argSets)
}

// insertPosition creates one position row.
func (s DictionaryStore) insertPosition(ctx context.Context, dictionaryID int64) (int64, error) {
	insertStmt := s.dialect().
		Insert(s.tables.positions).
		Prepared(true).
		Cols(colIDDictionary).
		Vals(goqu.Vals{dictionaryID}).
		Returning(colID)

	return s.queryID(ctx, opCreatePosition, insertStmt)
}

// periodInsertSQL renders the parameterized period insert once; argument sets
// follow the column order.
func (s DictionaryStore) periodInsertSQL() (sqlQueryString, error) {
	insertStmt := s.dialect().
		Insert(s.tables.data).
		Prepared(true).
		Cols(colIDPosition, colIDAttribute, colStartDate, colFinishDate, colValue).
		Vals(goqu.Vals{0, 0, time.Time{}, time.Time{}, nil})

	sqlQuery, _, err := s.toSQL(insertStmt)

	return sqlQuery, err
}

// checkRequiredAttrs validates that every required attribute of the
// dictionary appears in the supplied map.
func (s DictionaryStore) checkRequiredAttrs(ctx context.Context, dictionaryID int64, attrMap map[string]string) error {
	required, err := s.requiredAltNames(ctx, dictionaryID)
	if err != nil {
		return err
	}

	var missing []string

	for _, name := range required {
		if _, ok := attrMap[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)

		return errors.Join(
			dictionary.ErrValidation,
			fmt.Errorf("%w: %v", dictionary.ErrMissingRequiredAttribute, missing),
		)
	}

	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
