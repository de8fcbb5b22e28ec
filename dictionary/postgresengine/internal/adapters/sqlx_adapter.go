package adapters

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a new SQLX adapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query executes a parameterized query using the sqlx.DB and returns wrapped rows.
func (s *SQLXAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a parameterized statement using the sqlx.DB and returns wrapped result.
func (s *SQLXAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// ExecMany executes the same statement once per argument set over a prepared statement.
func (s *SQLXAdapter) ExecMany(ctx context.Context, query string, argSets [][]any) error {
	stmt, err := s.db.PreparexContext(ctx, query)
	if err != nil {
		return err
	}

	for _, args := range argSets {
		if _, execErr := stmt.ExecContext(ctx, args...); execErr != nil {
			return errors.Join(execErr, stmt.Close())
		}
	}

	return stmt.Close()
}
