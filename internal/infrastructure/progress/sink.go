// Package progress provides ProgressSink implementations for callers that
// do not run a message bus.
package progress

import (
	"context"
	"log/slog"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// NopSink discards every checkpoint.
type NopSink struct{}

func (NopSink) Publish(context.Context, domain.ProgressEvent) error { return nil }

// LogSink writes checkpoints to the logger. The CLI uses it so batch runs
// stay observable without NATS.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(_ context.Context, event domain.ProgressEvent) error {
	s.logger.Info("progress",
		"file_id", event.FileID,
		"phase", event.Phase,
		"percent", event.Percent,
	)
	return nil
}
