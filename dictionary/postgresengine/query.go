package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

const (
	opGetSnapshot        = "get_snapshot"
	opGetPositionsByCode = "get_positions_by_code"
	opGetPositionByID    = "get_position_by_id"
	opSearchPositions    = "search_positions"

	logAttrSnapshotDate  = "snapshot_date"
	logAttrSnapshotCount = "snapshot_count"
)

// GetSnapshot returns the state of every position of the dictionary as of
// the given day. A position appears when at least one of its value periods
// covers the day; attributes without a covering period resolve to null.
func (s DictionaryStore) GetSnapshot(ctx context.Context, dictionaryID int64, date time.Time) ([]dictionary.PositionSnapshot, error) {
	started := time.Now()
	day := dictionary.Day(date)

	snapshots, err := s.assembleSnapshots(ctx, opGetSnapshot, dictionaryID, day, s.anyPeriodExists(day))
	if err != nil {
		return nil, err
	}

	s.logOperation(opGetSnapshot, started,
		logAttrDictionaryID, dictionaryID,
		logAttrSnapshotDate, day.Format(dictionary.DateLayout),
		logAttrSnapshotCount, len(snapshots))

	return snapshots, nil
}

// GetPositionsByCode returns the positions whose CODE value as of the given
// day contains the code fragment.
func (s DictionaryStore) GetPositionsByCode(
	ctx context.Context,
	dictionaryID int64,
	code string,
	date time.Time,
) ([]dictionary.PositionSnapshot, error) {

	started := time.Now()
	day := dictionary.Day(date)

	restriction := s.attributeValueExists(day, dictionary.AttrCode, code)

	snapshots, err := s.assembleSnapshots(ctx, opGetPositionsByCode, dictionaryID, day, restriction)
	if err != nil {
		return nil, err
	}

	s.logOperation(opGetPositionsByCode, started,
		logAttrDictionaryID, dictionaryID,
		logAttrSnapshotDate, day.Format(dictionary.DateLayout),
		logAttrSnapshotCount, len(snapshots))

	return snapshots, nil
}

// GetPositionByID returns the state of one position as of the given day, or
// nil when the position has no value period covering the day.
func (s DictionaryStore) GetPositionByID(
	ctx context.Context,
	dictionaryID int64,
	positionID int64,
	date time.Time,
) (*dictionary.PositionSnapshot, error) {

	started := time.Now()
	day := dictionary.Day(date)

	restriction := goqu.And(
		goqu.I("pd.id").Eq(positionID),
		s.anyPeriodExists(day),
	)

	snapshots, err := s.assembleSnapshots(ctx, opGetPositionByID, dictionaryID, day, restriction)
	if err != nil {
		return nil, err
	}

	if len(snapshots) == 0 {
		return nil, nil
	}

	s.logOperation(opGetPositionByID, started,
		logAttrDictionaryID, dictionaryID,
		logAttrPositionID, positionID,
		logAttrSnapshotDate, day.Format(dictionary.DateLayout))

	return &snapshots[0], nil
}

// SearchPositions returns the positions where any attribute value as of the
// given day contains the search text.
func (s DictionaryStore) SearchPositions(
	ctx context.Context,
	dictionaryID int64,
	text string,
	date time.Time,
) ([]dictionary.PositionSnapshot, error) {

	started := time.Now()
	day := dictionary.Day(date)

	restriction := s.attributeValueExists(day, "", text)

	snapshots, err := s.assembleSnapshots(ctx, opSearchPositions, dictionaryID, day, restriction)
	if err != nil {
		return nil, err
	}

	s.logOperation(opSearchPositions, started,
		logAttrDictionaryID, dictionaryID,
		logAttrSnapshotDate, day.Format(dictionary.DateLayout),
		logAttrSnapshotCount, len(snapshots))

	return snapshots, nil
}

// assembleSnapshots runs the point-in-time snapshot query. The parent link of
// a position is the relation row covering the day with the smallest parent
// position id; the parent's CODE value as of the same day rides along. Every
// attribute of the dictionary contributes one entry per position, with a null
// value when no period covers the day.
func (s DictionaryStore) assembleSnapshots(
	ctx context.Context,
	op string,
	dictionaryID int64,
	day time.Time,
	restriction exp.Expression,
) ([]dictionary.PositionSnapshot, error) {

	parentLink := s.dialect().
		From(goqu.T(s.tables.relations).As("dr")).
		Select(
			goqu.I("dr.id_positions"),
			goqu.I("dr.id_parent_positions"),
		).
		Distinct(goqu.I("dr.id_positions")).
		Where(
			goqu.I("dr.start_date").Lte(day),
			goqu.I("dr.finish_date").Gte(day),
		).
		Order(goqu.I("dr.id_positions").Asc(), goqu.I("dr.id_parent_positions").Asc())

	codeAt := s.dialect().
		From(goqu.T(s.tables.data).As("dd")).
		Join(
			goqu.T(s.tables.attributes).As("da"),
			goqu.On(goqu.I("da.id").Eq(goqu.I("dd.id_attribute"))),
		).
		Select(
			goqu.I("dd.id_position").As("id_position"),
			goqu.I("dd.value").As("value"),
		).
		Where(
			goqu.I("da.alt_name").Eq(dictionary.AttrCode),
			goqu.I("dd.start_date").Lte(day),
			goqu.I("dd.finish_date").Gte(day),
		)

	positionData := s.dialect().
		From(goqu.T(s.tables.positions).As("dp")).
		LeftJoin(
			goqu.T("parent_link").As("pl"),
			goqu.On(goqu.I("pl.id_positions").Eq(goqu.I("dp.id"))),
		).
		LeftJoin(
			goqu.T("code_at").As("ca"),
			goqu.On(goqu.I("ca.id_position").Eq(goqu.I("pl.id_parent_positions"))),
		).
		Select(
			goqu.I("dp.id").As("id"),
			goqu.I("pl.id_parent_positions").As("parent_id"),
			goqu.I("ca.value").As("parent_code"),
		).
		Where(goqu.I("dp.id_dictionary").Eq(dictionaryID))

	selectStmt := s.dialect().
		From(goqu.T("position_data").As("pd")).
		Prepared(true).
		With("parent_link", parentLink).
		With("code_at", codeAt).
		With("position_data", positionData).
		Join(
			goqu.T(s.tables.attributes).As("da"),
			goqu.On(goqu.I("da.id_dictionary").Eq(dictionaryID)),
		).
		LeftJoin(
			goqu.T(s.tables.data).As("dd"),
			goqu.On(
				goqu.I("dd.id_position").Eq(goqu.I("pd.id")),
				goqu.I("dd.id_attribute").Eq(goqu.I("da.id")),
				goqu.I("dd.start_date").Lte(day),
				goqu.I("dd.finish_date").Gte(day),
			),
		).
		Select(
			goqu.I("pd.id"),
			goqu.I("pd.parent_id"),
			goqu.I("pd.parent_code"),
			goqu.L("json_agg(json_build_object('name', da.alt_name, 'value', dd.value) ORDER BY da.id)").As("attrs"),
		).
		Where(restriction).
		GroupBy(goqu.I("pd.id"), goqu.I("pd.parent_id"), goqu.I("pd.parent_code")).
		Order(goqu.I("pd.id").Asc())

	rows, err := s.query(ctx, op, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var snapshots []dictionary.PositionSnapshot

	for rows.Next() {
		var (
			snapshot dictionary.PositionSnapshot
			rawAttrs []byte
		)

		if scanErr := rows.Scan(&snapshot.PositionID, &snapshot.ParentID, &snapshot.ParentCode, &rawAttrs); scanErr != nil {
			return nil, s.scanFailure(scanErr)
		}

		attrs, decodeErr := dictionary.DecodeSnapshotAttrs(rawAttrs)
		if decodeErr != nil {
			return nil, errors.Join(dictionary.ErrStore, decodeErr)
		}

		snapshot.Attributes = attrs
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// anyPeriodExists restricts the snapshot to positions with at least one value
// period covering the day.
func (s DictionaryStore) anyPeriodExists(day time.Time) exp.Expression {
	subquery := s.dialect().
		From(goqu.T(s.tables.data).As("dx")).
		Select(goqu.L("1")).
		Where(
			goqu.I("dx.id_position").Eq(goqu.I("pd.id")),
			goqu.I("dx.start_date").Lte(day),
			goqu.I("dx.finish_date").Gte(day),
		)

	return goqu.L("EXISTS ?", subquery)
}

// attributeValueExists restricts the snapshot to positions carrying a value
// period covering the day whose value contains the fragment. An empty altName
// matches any attribute.
func (s DictionaryStore) attributeValueExists(day time.Time, altName string, fragment string) exp.Expression {
	conditions := []exp.Expression{
		goqu.I("dx.id_position").Eq(goqu.I("pd.id")),
		goqu.I("dx.start_date").Lte(day),
		goqu.I("dx.finish_date").Gte(day),
		goqu.I("dx.value").Like("%" + fragment + "%"),
	}

	subquery := s.dialect().
		From(goqu.T(s.tables.data).As("dx")).
		Select(goqu.L("1"))

	if altName != "" {
		subquery = subquery.Join(
			goqu.T(s.tables.attributes).As("ax"),
			goqu.On(goqu.I("ax.id").Eq(goqu.I("dx.id_attribute"))),
		)

		conditions = append(conditions, goqu.I("ax.alt_name").Eq(altName))
	}

	return goqu.L("EXISTS ?", subquery.Where(conditions...))
}
