package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

const (
	opCreateDictionary = "create_dictionary"
	opGetDictionary    = "get_dictionary"
	opListDictionaries = "list_dictionaries"
	opFindDictionaries = "find_dictionaries"
	opUpdateDictionary = "update_dictionary"
	opDeleteDictionary = "delete_dictionary"
	opStructure        = "dictionary_structure"
	opCreateAttribute  = "create_attribute"

	logAttrDictionaryID = "dictionary_id"
)

// CreateDictionary validates and stores a new dictionary, derives its status
// from today's date, and seeds the default attribute definitions over the
// dictionary's validity window.
func (s DictionaryStore) CreateDictionary(ctx context.Context, def dictionary.Definition) (int64, error) {
	started := time.Now()

	if err := def.Validate(); err != nil {
		return 0, err
	}

	existing, err := s.FindDictionaryByCode(ctx, def.Code)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		return 0, errors.Join(dictionary.ErrValidation, dictionary.ErrDuplicateDictionaryCode)
	}

	def.Status = def.StatusAsOf(time.Now())

	insertStmt := s.dialect().
		Insert(s.tables.dictionaries).
		Prepared(true).
		Cols(colName, colCode, colDescription, colStartDate, colFinishDate, colStatus, colType, colCreatedAt, colUpdatedAt).
		Vals(goqu.Vals{
			def.Name, def.Code, def.Description,
			dictionary.Day(def.StartDate), dictionary.Day(def.FinishDate),
			def.Status, def.Type,
			goqu.L("current_timestamp"), goqu.L("current_timestamp"),
		}).
		Returning(colID)

	dictionaryID, err := s.queryID(ctx, opCreateDictionary, insertStmt)
	if err != nil {
		return 0, err
	}

	if err = s.seedDefaultAttributes(ctx, dictionaryID, def.Window()); err != nil {
		return 0, err
	}

	s.logOperation(opCreateDictionary, started, logAttrDictionaryID, dictionaryID)

	return dictionaryID, nil
}

func (s DictionaryStore) seedDefaultAttributes(ctx context.Context, dictionaryID int64, window dictionary.Interval) error {
	insertSQL, err := s.attributeInsertSQL()
	if err != nil {
		return err
	}

	defs := dictionary.DefaultAttributeSet()
	argSets := make([][]any, 0, len(defs))

	for _, def := range defs {
		argSets = append(argSets, []any{
			dictionaryID, def.Name, def.AltName, def.Type, def.Required, def.Capacity,
			window.Start, window.Finish,
		})
	}

	return s.execMany(ctx, opCreateDictionary, insertSQL, argSets)
}

// attributeInsertSQL renders the parameterized attribute-definition insert
// once; argument sets follow the column order.
func (s DictionaryStore) attributeInsertSQL() (sqlQueryString, error) {
	insertStmt := s.dialect().
		Insert(s.tables.attributes).
		Prepared(true).
		Cols(colIDDictionary, colName, colAltName, colAttributeType, colRequired, colCapacity, colStartDate, colFinishDate).
		Vals(goqu.Vals{0, "", "", 0, false, 0, time.Time{}, time.Time{}})

	sqlQuery, _, err := s.toSQL(insertStmt)

	return sqlQuery, err
}

// GetDictionary loads one dictionary by id.
func (s DictionaryStore) GetDictionary(ctx context.Context, dictionaryID int64) (dictionary.Definition, error) {
	selectStmt := s.definitionSelect().Where(goqu.C(colID).Eq(dictionaryID))

	defs, err := s.queryDefinitions(ctx, opGetDictionary, selectStmt)
	if err != nil {
		return dictionary.Definition{}, err
	}

	if len(defs) == 0 {
		return dictionary.Definition{}, errors.Join(dictionary.ErrValidation, dictionary.ErrDictionaryNotFound)
	}

	return defs[0], nil
}

// ListDictionaries loads all dictionaries.
func (s DictionaryStore) ListDictionaries(ctx context.Context) ([]dictionary.Definition, error) {
	return s.queryDefinitions(ctx, opListDictionaries, s.definitionSelect().Order(goqu.C(colID).Asc()))
}

// FindDictionariesByName finds dictionaries whose name contains the search string.
func (s DictionaryStore) FindDictionariesByName(ctx context.Context, name string) ([]dictionary.Definition, error) {
	selectStmt := s.definitionSelect().
		Where(goqu.C(colName).Like("%" + name + "%")).
		Order(goqu.C(colID).Asc())

	return s.queryDefinitions(ctx, opFindDictionaries, selectStmt)
}

// FindDictionaryByCode finds the dictionary with an exactly matching code,
// or nil when there is none.
func (s DictionaryStore) FindDictionaryByCode(ctx context.Context, code string) (*dictionary.Definition, error) {
	selectStmt := s.definitionSelect().Where(goqu.C(colCode).Eq(code))

	defs, err := s.queryDefinitions(ctx, opFindDictionaries, selectStmt)
	if err != nil {
		return nil, err
	}

	if len(defs) == 0 {
		return nil, nil
	}

	return &defs[0], nil
}

// UpdateDictionary validates and stores new dictionary metadata, re-deriving
// the status from today's date.
func (s DictionaryStore) UpdateDictionary(ctx context.Context, dictionaryID int64, def dictionary.Definition) error {
	started := time.Now()

	if err := def.Validate(); err != nil {
		return err
	}

	if _, err := s.GetDictionary(ctx, dictionaryID); err != nil {
		return err
	}

	def.Status = def.StatusAsOf(time.Now())

	updateStmt := s.dialect().
		Update(s.tables.dictionaries).
		Prepared(true).
		Set(goqu.Record{
			colName:        def.Name,
			colCode:        def.Code,
			colDescription: def.Description,
			colStartDate:   dictionary.Day(def.StartDate),
			colFinishDate:  dictionary.Day(def.FinishDate),
			colStatus:      def.Status,
			colType:        def.Type,
			colUpdatedAt:   goqu.L("current_timestamp"),
		}).
		Where(goqu.C(colID).Eq(dictionaryID))

	if _, err := s.exec(ctx, opUpdateDictionary, updateStmt); err != nil {
		return err
	}

	s.logOperation(opUpdateDictionary, started, logAttrDictionaryID, dictionaryID)

	return nil
}

// DeleteDictionary removes a dictionary and its attribute definitions.
// Dictionaries that still own positions cannot be deleted.
func (s DictionaryStore) DeleteDictionary(ctx context.Context, dictionaryID int64) error {
	started := time.Now()

	if _, err := s.GetDictionary(ctx, dictionaryID); err != nil {
		return err
	}

	positionCount, err := s.countPositions(ctx, dictionaryID)
	if err != nil {
		return err
	}

	if positionCount > 0 {
		return errors.Join(dictionary.ErrValidation, dictionary.ErrDictionaryHasPositions)
	}

	deleteAttrsStmt := s.dialect().
		Delete(s.tables.attributes).
		Prepared(true).
		Where(goqu.C(colIDDictionary).Eq(dictionaryID))

	if _, err = s.exec(ctx, opDeleteDictionary, deleteAttrsStmt); err != nil {
		return err
	}

	deleteDictStmt := s.dialect().
		Delete(s.tables.dictionaries).
		Prepared(true).
		Where(goqu.C(colID).Eq(dictionaryID))

	if _, err = s.exec(ctx, opDeleteDictionary, deleteDictStmt); err != nil {
		return err
	}

	s.logOperation(opDeleteDictionary, started, logAttrDictionaryID, dictionaryID)

	return nil
}

// DictionaryStructure loads the attribute definitions of one dictionary.
func (s DictionaryStore) DictionaryStructure(ctx context.Context, dictionaryID int64) ([]dictionary.AttributeDefinition, error) {
	selectStmt := s.dialect().
		From(s.tables.attributes).
		Prepared(true).
		Select(colID, colIDDictionary, colName, colAltName, colAttributeType, colRequired, colCapacity, colStartDate, colFinishDate).
		Where(goqu.C(colIDDictionary).Eq(dictionaryID)).
		Order(goqu.C(colID).Asc())

	rows, err := s.query(ctx, opStructure, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var defs []dictionary.AttributeDefinition

	for rows.Next() {
		var (
			def           dictionary.AttributeDefinition
			altName       *string
			start, finish time.Time
		)

		scanErr := rows.Scan(
			&def.ID, &def.DictionaryID, &def.Name, &altName,
			&def.Type, &def.Required, &def.Capacity, &start, &finish,
		)
		if scanErr != nil {
			return nil, s.scanFailure(scanErr)
		}

		if altName != nil {
			def.AltName = *altName
		}

		def.Window = dictionary.Interval{Start: dictionary.Day(start), Finish: dictionary.Day(finish)}
		defs = append(defs, def)
	}

	return defs, nil
}

// CreateAttribute adds an attribute definition to a dictionary.
func (s DictionaryStore) CreateAttribute(ctx context.Context, def dictionary.AttributeDefinition) (int64, error) {
	if err := def.Validate(); err != nil {
		return 0, err
	}

	insertStmt := s.dialect().
		Insert(s.tables.attributes).
		Prepared(true).
		Cols(colIDDictionary, colName, colAltName, colAttributeType, colRequired, colCapacity, colStartDate, colFinishDate).
		Vals(goqu.Vals{
			def.DictionaryID, def.Name, def.AltName, def.Type, def.Required, def.Capacity,
			def.Window.Start, def.Window.Finish,
		}).
		Returning(colID)

	return s.queryID(ctx, opCreateAttribute, insertStmt)
}

func (s DictionaryStore) definitionSelect() *goqu.SelectDataset {
	return s.dialect().
		From(s.tables.dictionaries).
		Prepared(true).
		Select(colID, colName, colCode, colDescription, colStartDate, colFinishDate, colStatus, colType, colCreatedAt, colUpdatedAt)
}

func (s DictionaryStore) queryDefinitions(ctx context.Context, op string, builder sqlBuilder) ([]dictionary.Definition, error) {
	rows, err := s.query(ctx, op, builder)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var defs []dictionary.Definition

	for rows.Next() {
		var (
			def         dictionary.Definition
			description *string
		)

		scanErr := rows.Scan(
			&def.ID, &def.Name, &def.Code, &description,
			&def.StartDate, &def.FinishDate, &def.Status, &def.Type,
			&def.CreatedAt, &def.UpdatedAt,
		)
		if scanErr != nil {
			return nil, s.scanFailure(scanErr)
		}

		if description != nil {
			def.Description = *description
		}

		def.StartDate = dictionary.Day(def.StartDate)
		def.FinishDate = dictionary.Day(def.FinishDate)
		defs = append(defs, def)
	}

	return defs, nil
}

func (s DictionaryStore) countPositions(ctx context.Context, dictionaryID int64) (int64, error) {
	countStmt := s.dialect().
		From(s.tables.positions).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colIDDictionary).Eq(dictionaryID))

	return s.queryID(ctx, opDeleteDictionary, countStmt)
}

// attributeIDsByAltName loads the alt_name -> attribute id map of one
// dictionary; attributes without a semantic key are skipped.
func (s DictionaryStore) attributeIDsByAltName(ctx context.Context, dictionaryID int64) (map[string]int64, error) {
	selectStmt := s.dialect().
		From(s.tables.attributes).
		Prepared(true).
		Select(colID, colAltName).
		Where(
			goqu.C(colIDDictionary).Eq(dictionaryID),
			goqu.C(colAltName).IsNotNull(),
		)

	rows, err := s.query(ctx, opStructure, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	attrIDs := make(map[string]int64)

	for rows.Next() {
		var (
			id      int64
			altName string
		)

		if scanErr := rows.Scan(&id, &altName); scanErr != nil {
			return nil, s.scanFailure(scanErr)
		}

		attrIDs[altName] = id
	}

	return attrIDs, nil
}

// requiredAltNames loads the semantic keys of the required attributes of one dictionary.
func (s DictionaryStore) requiredAltNames(ctx context.Context, dictionaryID int64) ([]string, error) {
	selectStmt := s.dialect().
		From(s.tables.attributes).
		Prepared(true).
		Select(colAltName).
		Where(
			goqu.C(colIDDictionary).Eq(dictionaryID),
			goqu.C(colRequired).IsTrue(),
			goqu.C(colAltName).IsNotNull(),
		)

	rows, err := s.query(ctx, opStructure, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var names []string

	for rows.Next() {
		var name string
		if scanErr := rows.Scan(&name); scanErr != nil {
			return nil, s.scanFailure(scanErr)
		}

		names = append(names, name)
	}

	return names, nil
}

// dictionaryIDForPosition resolves the owning dictionary of a position.
func (s DictionaryStore) dictionaryIDForPosition(ctx context.Context, positionID int64) (int64, error) {
	selectStmt := s.dialect().
		From(s.tables.positions).
		Prepared(true).
		Select(colIDDictionary).
		Where(goqu.C(colID).Eq(positionID))

	rows, err := s.query(ctx, opStructure, selectStmt)
	if err != nil {
		return 0, err
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return 0, errors.Join(dictionary.ErrValidation, dictionary.ErrPositionNotFound)
	}

	var dictionaryID int64
	if scanErr := rows.Scan(&dictionaryID); scanErr != nil {
		return 0, s.scanFailure(scanErr)
	}

	return dictionaryID, nil
}
