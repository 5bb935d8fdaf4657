// Package store holds the diagnostics sinks for submission attempts.
package store

import (
	"context"
	"log/slog"

	"github.com/pi-senac-4/studybuddy-web/internal/form"
	"github.com/pi-senac-4/studybuddy-web/internal/models"
)

// LogRecorder writes attempts to a slog.Logger and nothing else.
type LogRecorder struct {
	logger *slog.Logger
}

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(ctx context.Context, a models.Attempt) error {
	level := slog.LevelInfo
	if a.Outcome != models.OutcomeSuccess {
		level = slog.LevelWarn
	}
	r.logger.LogAttrs(ctx, level, "submission attempt",
		slog.String("mode", string(a.Mode)),
		slog.String("email", a.Email),
		slog.String("outcome", string(a.Outcome)),
		slog.Int("status_code", a.StatusCode),
		slog.String("detail", a.Detail),
	)
	return nil
}

// Multi fans one attempt out to every recorder and returns the first error.
type Multi []form.Recorder

func (m Multi) Record(ctx context.Context, a models.Attempt) error {
	var first error
	for _, r := range m {
		if err := r.Record(ctx, a); err != nil && first == nil {
			first = err
		}
	}
	return first
}
