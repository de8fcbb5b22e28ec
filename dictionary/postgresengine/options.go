package postgresengine

import (
	"fmt"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
)

// Option defines a functional option for configuring DictionaryStore.
type Option func(*DictionaryStore) error

// WithTablePrefix sets the shared prefix of the five dictionary tables
// (prefix, prefix_attribute, prefix_positions, prefix_data, prefix_relations).
func WithTablePrefix(prefix string) Option {
	return func(ds *DictionaryStore) error {
		if prefix == "" {
			return dictionary.ErrEmptyTablePrefix
		}

		ds.tables = tablesForPrefix(prefix)

		return nil
	}
}

// WithLogger sets the logger for the DictionaryStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: operation summaries with durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that cause operation failures.
func WithLogger(logger dictionary.Logger) Option {
	return func(ds *DictionaryStore) error {
		ds.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the DictionaryStore.
// The collector receives operation durations and error counters.
func WithMetrics(collector dictionary.MetricsCollector) Option {
	return func(ds *DictionaryStore) error {
		ds.metrics = collector
		return nil
	}
}

// WithRebuildConcurrency bounds the fan-out of dictionary-wide relation
// rebuilds. Size it to the store's connection capacity; it must be at least 1.
func WithRebuildConcurrency(limit int) Option {
	return func(ds *DictionaryStore) error {
		if limit < 1 {
			return fmt.Errorf("rebuild concurrency must be at least 1, got %d", limit)
		}

		ds.rebuildConcurrency = limit

		return nil
	}
}
