package dictionary

import (
	"time"
)

// Logger interface for SQL statement logging, operation summaries, warnings,
// and error reporting. *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting engine performance and operational metrics.
// Implementations may bridge to any metrics backend; the engine never depends on one.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}
