package adapters

import (
	"context"
	"database/sql"
	"errors"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query executes a parameterized query and returns wrapped rows.
func (s *SQLAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a parameterized statement and returns wrapped result.
func (s *SQLAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// ExecMany executes the same statement once per argument set over a prepared statement.
func (s *SQLAdapter) ExecMany(ctx context.Context, query string, argSets [][]any) error {
	stmt, err := s.db.PrepareContext(ctx, query)
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
