package postgresengine

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"golang.org/x/sync/errgroup"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

const (
	opRebuildPositionRelations   = "rebuild_position_relations"
	opRebuildDictionaryRelations = "rebuild_dictionary_relations"

	logAttrRelationCount = "relation_count"
	logAttrPositionCount = "position_count"
)

// RebuildRelationsForPosition derives the parent relations of one position
// from its PARENT_CODE periods and replaces the stored set. For every
// PARENT_CODE period, each position of the same dictionary whose CODE period
// carries the referenced value and strictly overlaps it contributes one
// relation spanning the overlap.
func (s DictionaryStore) RebuildRelationsForPosition(ctx context.Context, positionID int64, dictionaryID int64) error {
	started := time.Now()

	deleteStmt := s.dialect().
		Delete(s.tables.relations).
		Prepared(true).
		Where(goqu.C(colIDPositions).Eq(positionID))

	if _, err := s.exec(ctx, opRebuildPositionRelations, deleteStmt); err != nil {
		return err
	}

	parentCodes, err := s.fetchAttributePeriods(ctx, positionID, dictionary.AttrParentCode)
	if err != nil {
		return err
	}

	relations := make([]dictionary.Relation, 0)

	if len(parentCodes) > 0 {
		candidates, candErr := s.fetchCodeCandidates(ctx, dictionaryID, parentCodes)
		if candErr != nil {
			return candErr
		}

		relations = dictionary.MatchRelations(positionID, parentCodes, candidates)
	}

	if err = s.insertRelations(ctx, relations); err != nil {
		return err
	}

	s.logOperation(opRebuildPositionRelations, started,
		logAttrPositionID, positionID,
		logAttrRelationCount, len(relations))

	return nil
}

// RebuildRelationsForDictionary rebuilds the relations of every position of
// the dictionary. Positions are processed concurrently with a bounded worker
// count; the first failure cancels the remaining work.
func (s DictionaryStore) RebuildRelationsForDictionary(ctx context.Context, dictionaryID int64) error {
	started := time.Now()

	selectStmt := s.dialect().
		From(s.tables.positions).
		Prepared(true).
		Select(colID).
		Where(goqu.C(colIDDictionary).Eq(dictionaryID)).
		Order(goqu.C(colID).Asc())

	positionIDs, err := s.queryIDs(ctx, opRebuildDictionaryRelations, selectStmt)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.rebuildConcurrency)

	for _, positionID := range positionIDs {
		group.Go(func() error {
			return s.RebuildRelationsForPosition(groupCtx, positionID, dictionaryID)
		})
	}

	if err = group.Wait(); err != nil {
		return err
	}

	s.logOperation(opRebuildDictionaryRelations, started,
		logAttrDictionaryID, dictionaryID,
		logAttrPositionCount, len(positionIDs))

	return nil
}

// fetchAttributePeriods loads the periods of one position for the attribute
// carrying the given alternative name.
func (s DictionaryStore) fetchAttributePeriods(ctx context.Context, positionID int64, altName string) ([]dictionary.Period, error) {
	selectStmt := s.dialect().
		From(goqu.T(s.tables.data).As("dd")).
		Prepared(true).
		Join(
			goqu.T(s.tables.attributes).As("da"),
			goqu.On(goqu.I("da.id").Eq(goqu.I("dd.id_attribute"))),
		).
		Select(
			goqu.I("dd.id"),
			goqu.I("dd.start_date"),
			goqu.I("dd.finish_date"),
			goqu.I("dd.value"),
		).
		Where(
			goqu.I("dd.id_position").Eq(positionID),
			goqu.I("da.alt_name").Eq(altName),
		).
		Order(goqu.I("dd.start_date").Asc())

	rows, err := s.query(ctx, opRebuildPositionRelations, selectStmt)
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

// fetchCodeCandidates loads the CODE periods of every position of the
// dictionary whose value matches one of the referenced parent codes.
func (s DictionaryStore) fetchCodeCandidates(
	ctx context.Context,
	dictionaryID int64,
	parentCodes []dictionary.Period,
) ([]dictionary.CodePeriod, error) {

	values := distinctValues(parentCodes)
	if len(values) == 0 {
		return nil, nil
	}

	selectStmt := s.dialect().
		From(goqu.T(s.tables.data).As("dd")).
		Prepared(true).
		Join(
			goqu.T(s.tables.attributes).As("da"),
			goqu.On(goqu.I("da.id").Eq(goqu.I("dd.id_attribute"))),
		).
		Join(
			goqu.T(s.tables.positions).As("dp"),
			goqu.On(goqu.I("dp.id").Eq(goqu.I("dd.id_position"))),
		).
		Select(
			goqu.I("dd.id_position"),
			goqu.I("dd.value"),
			goqu.I("dd.start_date"),
			goqu.I("dd.finish_date"),
		).
		Where(
			goqu.I("dp.id_dictionary").Eq(dictionaryID),
			goqu.I("da.alt_name").Eq(dictionary.AttrCode),
			goqu.I("dd.value").In(values),
		).
		Order(goqu.I("dd.id_position").Asc(), goqu.I("dd.start_date").Asc())

	rows, err := s.query(ctx, opRebuildPositionRelations, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var candidates []dictionary.CodePeriod

	for rows.Next() {
		var (
			c             dictionary.CodePeriod
			value         string
			start, finish time.Time
		)

		if scanErr := rows.Scan(&c.PositionID, &value, &start, &finish); scanErr != nil {
			return nil, s.scanFailure(scanErr)
		}

		c.Value = &value
		c.Interval = dictionary.Interval{Start: dictionary.Day(start), Finish: dictionary.Day(finish)}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// insertRelations writes the derived relation rows.
func (s DictionaryStore) insertRelations(ctx context.Context, relations []dictionary.Relation) error {
	if len(relations) == 0 {
		return nil
	}

	insertStmt := s.dialect().
		Insert(s.tables.relations).
		Prepared(true).
		Cols(colIDPositions, colIDParentPositions, colStartDate, colFinishDate).
		Vals(goqu.Vals{0, 0, time.Time{}, time.Time{}})

	sqlQuery, _, err := s.toSQL(insertStmt)
	if err != nil {
		return err
	}

	argSets := make([][]any, 0, len(relations))
	for _, r := range relations {
		argSets = append(argSets, []any{
			r.PositionID, r.ParentPositionID, r.Interval.Start, r.Interval.Finish,
		})
	}

	return s.execMany(ctx, opRebuildPositionRelations, sqlQuery, argSets)
}

func distinctValues(periods []dictionary.Period) []string {
	seen := make(map[string]struct{}, len(periods))
	values := make([]string, 0, len(periods))

	for _, p := range periods {
		if p.Value == nil {
			continue
		}

		if _, ok := seen[*p.Value]; ok {
			continue
		}

		seen[*p.Value] = struct{}{}
		values = append(values, *p.Value)
	}

	return values
}
