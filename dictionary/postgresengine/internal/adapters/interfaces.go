package adapters

import "context"

// DBAdapter defines the parameterized statement interface the engine needs.
// Caller values always travel as positional arguments, never inside the SQL text.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	ExecMany(ctx context.Context, query string, argSets [][]any) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
