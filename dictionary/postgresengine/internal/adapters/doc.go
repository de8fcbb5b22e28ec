// Package adapters provides database driver abstractions for the dictionary engine.
//
// This internal package wraps different PostgreSQL driver implementations
// (pgx, database/sql, sqlx) behind one parameterized-statement interface,
// so the engine stays driver-agnostic.
package adapters
