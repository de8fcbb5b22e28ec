// Package config provides PostgreSQL database configuration for dictionary
// engine testing.
//
// This package contains factory functions for creating database connections
// using the engine's supported PostgreSQL adapters (pgx.Pool, sql.DB, sqlx.DB)
// against a pre-configured test database DSN.
package config
