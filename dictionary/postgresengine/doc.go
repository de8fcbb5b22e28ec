// Package postgresengine provides a PostgreSQL implementation of the
// temporal dictionary engine.
//
// This package stores per-attribute value timelines, derives code-based
// hierarchy relations, and answers point-in-time queries using PostgreSQL as
// the storage backend, supporting multiple database adapters (pgx, sql.DB,
// sqlx).
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Gapless, non-overlapping value timelines per (position, attribute)
//   - Derived parent/child relations from CODE and PARENT_CODE periods
//   - Point-in-time snapshots with attribute aggregation in one query
//   - Batch import with bounded relation rebuild concurrency
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewDictionaryStoreFromPGXPool(db)
//
//	// With a table prefix and structured logging
//	store, _ := postgresengine.NewDictionaryStoreFromPGXPool(
//		db,
//		postgresengine.WithTablePrefix("refdata"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//
//	positionID, _ := store.CreatePosition(ctx, dictionaryID, attrs)
//	snapshot, _ := store.GetSnapshot(ctx, dictionaryID, asOf)
package postgresengine
