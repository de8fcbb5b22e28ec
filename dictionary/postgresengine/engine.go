package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
	"github.com/refdata/temporal-dictionaries-go/dictionary/postgresengine/internal/adapters"
)

const (
	defaultTablePrefix        = "dictionary"
	defaultRebuildConcurrency = 8

	dialectPostgres = "postgres"

	logMsgSQLExecuted     = "executed sql for: "
	logMsgOperation       = "dictionary operation: "
	logMsgBuildSQLFailed  = "failed to build sql statement"
	logMsgStatementFailed = "statement execution failed"
	logMsgCloseRowsFailed = "failed to close database rows"
	logMsgScanRowFailed   = "failed to scan database row"
	logAttrError          = "error"
	logAttrQuery          = "query"
	logAttrDurationMS     = "duration_ms"
	logAttrOperation      = "operation"

	metricOperationDuration = "dictionary_operation_duration"
	metricOperationErrors   = "dictionary_operation_errors"
	labelOperation          = "operation"

	colID                = "id"
	colIDDictionary      = "id_dictionary"
	colIDPosition        = "id_position"
	colIDAttribute       = "id_attribute"
	colIDPositions       = "id_positions"
	colIDParentPositions = "id_parent_positions"
	colStartDate         = "start_date"
	colFinishDate        = "finish_date"
	colValue             = "value"
	colName              = "name"
	colAltName           = "alt_name"
	colCode              = "code"
	colDescription       = "description"
	colRequired          = "required"
	colCapacity          = "capacity"
	colAttributeType     = "id_attribute_type"
	colStatus            = "id_status"
	colType              = "id_type"
	colCreatedAt         = "created_at"
	colUpdatedAt         = "updated_at"
)

type sqlQueryString = string

// sqlBuilder is satisfied by every goqu dataset in prepared mode.
type sqlBuilder interface {
	ToSQL() (sql string, params []any, err error)
}

// tableNames holds the five tables of one dictionary schema, derived from a
// common prefix.
type tableNames struct {
	dictionaries string
	attributes   string
	positions    string
	data         string
	relations    string
}

func tablesForPrefix(prefix string) tableNames {
	return tableNames{
		dictionaries: prefix,
		attributes:   prefix + "_attribute",
		positions:    prefix + "_positions",
		data:         prefix + "_data",
		relations:    prefix + "_relations",
	}
}

// DictionaryStore is the PostgreSQL engine for versioned dictionaries.
// It owns the attribute timeline manager, the hierarchy resolver, the
// temporal query engine, and the batch import pipeline, all speaking to the
// database through a driver adapter with parameterized statements.
//
// The connection handle is constructor-injected; its lifecycle (open/close)
// belongs to the composing application.
type DictionaryStore struct {
	db                 adapters.DBAdapter
	tables             tableNames
	logger             dictionary.Logger
	metrics            dictionary.MetricsCollector
	rebuildConcurrency int
}

// NewDictionaryStoreFromPGXPool creates a new DictionaryStore using a pgx pool
// with optional configuration.
func NewDictionaryStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (DictionaryStore, error) {
	if db == nil {
		return DictionaryStore{}, dictionary.ErrNilDatabaseConnection
	}

	return newDictionaryStore(adapters.NewPGXAdapter(db), options...)
}

// NewDictionaryStoreFromSQLDB creates a new DictionaryStore using a sql.DB
// with optional configuration.
func NewDictionaryStoreFromSQLDB(db *sql.DB, options ...Option) (DictionaryStore, error) {
	if db == nil {
		return DictionaryStore{}, dictionary.ErrNilDatabaseConnection
	}

	return newDictionaryStore(adapters.NewSQLAdapter(db), options...)
}

// NewDictionaryStoreFromSQLX creates a new DictionaryStore using a sqlx.DB
// with optional configuration.
func NewDictionaryStoreFromSQLX(db *sqlx.DB, options ...Option) (DictionaryStore, error) {
	if db == nil {
		return DictionaryStore{}, dictionary.ErrNilDatabaseConnection
	}

	return newDictionaryStore(adapters.NewSQLXAdapter(db), options...)
}

func newDictionaryStore(db adapters.DBAdapter, options ...Option) (DictionaryStore, error) {
	ds := DictionaryStore{
		db:                 db,
		tables:             tablesForPrefix(defaultTablePrefix),
		rebuildConcurrency: defaultRebuildConcurrency,
	}

	for _, option := range options {
		if err := option(&ds); err != nil {
			return DictionaryStore{}, err
		}
	}

	return ds, nil
}

func (s DictionaryStore) dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// toSQL renders a prepared dataset, classifying render failures as store errors.
func (s DictionaryStore) toSQL(builder sqlBuilder) (sqlQueryString, []any, error) {
	sqlQuery, args, err := builder.ToSQL()
	if err != nil {
		if s.logger != nil {
			s.logger.Error(logMsgBuildSQLFailed, logAttrError, err.Error())
		}

		return "", nil, errors.Join(dictionary.ErrStore, dictionary.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}

// query executes a parameterized select and returns the rows.
func (s DictionaryStore) query(ctx context.Context, op string, builder sqlBuilder) (adapters.DBRows, error) {
	sqlQuery, args, err := s.toSQL(builder)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	s.logSQL(op, sqlQuery, time.Since(start))

	if queryErr != nil {
		return nil, s.storeFailure(op, sqlQuery, queryErr)
	}

	return rows, nil
}

// exec executes a parameterized statement and returns the affected row count.
func (s DictionaryStore) exec(ctx context.Context, op string, builder sqlBuilder) (int64, error) {
	sqlQuery, args, err := s.toSQL(builder)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery, args...)
	s.logSQL(op, sqlQuery, time.Since(start))

	if execErr != nil {
		return 0, s.storeFailure(op, sqlQuery, execErr)
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		return 0, s.storeFailure(op, sqlQuery, rowsErr)
	}

	return rowsAffected, nil
}

// execMany executes the same statement once per argument set through the
// adapter's batch path. Atomic only at this call's granularity.
func (s DictionaryStore) execMany(ctx context.Context, op string, sqlQuery sqlQueryString, argSets [][]any) error {
	if len(argSets) == 0 {
		return nil
	}

	start := time.Now()
	execErr := s.db.ExecMany(ctx, sqlQuery, argSets)
	s.logSQL(op, sqlQuery, time.Since(start))

	if execErr != nil {
		return s.storeFailure(op, sqlQuery, execErr)
	}

	return nil
}

// queryID executes a statement with a RETURNING id clause and scans the id.
func (s DictionaryStore) queryID(ctx context.Context, op string, builder sqlBuilder) (int64, error) {
	rows, err := s.query(ctx, op, builder)
	if err != nil {
		return 0, err
	}
	defer s.closeRows(rows)

	var id int64

	if !rows.Next() {
		return 0, errors.Join(dictionary.ErrStore, dictionary.ErrScanningRowFailed)
	}

	if scanErr := rows.Scan(&id); scanErr != nil {
		return 0, s.scanFailure(scanErr)
	}

	return id, nil
}

// queryIDs executes a statement returning a list of ids.
func (s DictionaryStore) queryIDs(ctx context.Context, op string, builder sqlBuilder) ([]int64, error) {
	rows, err := s.query(ctx, op, builder)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var ids []int64

	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, s.scanFailure(scanErr)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func (s DictionaryStore) storeFailure(op string, sqlQuery sqlQueryString, cause error) error {
	if s.logger != nil {
		s.logger.Error(logMsgStatementFailed, logAttrError, cause.Error(), logAttrOperation, op, logAttrQuery, sqlQuery)
	}

	if s.metrics != nil {
		s.metrics.IncrementCounter(metricOperationErrors, map[string]string{labelOperation: op})
	}

	return errors.Join(dictionary.ErrStore, cause)
}

func (s DictionaryStore) scanFailure(cause error) error {
	if s.logger != nil {
		s.logger.Error(logMsgScanRowFailed, logAttrError, cause.Error())
	}

	return errors.Join(dictionary.ErrStore, dictionary.ErrScanningRowFailed, cause)
}

// closeRows safely closes database rows and logs any errors.
func (s DictionaryStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// logSQL logs executed statements with timing at debug level if a logger is configured.
func (s DictionaryStore) logSQL(op string, sqlQuery sqlQueryString, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+op, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is
// configured, and records the duration metric.
func (s DictionaryStore) logOperation(op string, started time.Time, args ...any) {
	duration := time.Since(started)

	if s.logger != nil {
		logArgs := append([]any{logAttrDurationMS, durationToMilliseconds(duration)}, args...)
		s.logger.Info(logMsgOperation+op, logArgs...)
	}

	if s.metrics != nil {
		s.metrics.RecordDuration(metricOperationDuration, duration, map[string]string{labelOperation: op})
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
