package logger

import (
	"log/slog"
	"time"

	"github.com/gatekeep/shield/internal/domain/access"
)

// QueryLogger times one statement and logs it once it finishes. Access
// request ids grant entry to a channel, so they are shortened before logging.
type QueryLogger struct {
	operation string
	query     string
	args      []any
	start     time.Time
}

func NewQueryLogger(operation, query string, args ...any) *QueryLogger {
	return &QueryLogger{
		operation: operation,
		query:     query,
		args:      redact(args),
		start:     time.Now(),
	}
}

func (l *QueryLogger) Log(err error, rowsAffected int64) {
	attrs := []any{
		slog.String("type", "db"),
		slog.String("operation", l.operation),
		slog.String("query", l.query),
		slog.Any("args", l.args),
		slog.Duration("took", time.Since(l.start)),
	}

	if err != nil {
		slog.Error("Query failed", append(attrs, slog.Any("error", err))...)
		return
	}
	slog.Debug("Query executed", append(attrs, slog.Int64("affected_rows", rowsAffected))...)
}

func redact(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		if s, ok := arg.(string); ok && access.ValidID(s) {
			out[i] = access.ShortID(s)
			continue
		}
		out[i] = arg
	}
	return out
}
