// Package helper provides test doubles for the dictionary engine's
// observability interfaces: a slog.Handler spy capturing log records and a
// MetricsCollector spy capturing metric calls.
package helper
