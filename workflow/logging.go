package workflow

import (
	"context"
	"log/slog"
)

// Logger provides logging hooks for the attempt lifecycle.
type Logger interface {
	AttemptStarted(ctx context.Context, workflow, entityID string, from, to State, tctx Context)
	TransitionCommitted(ctx context.Context, record Record)
	AttemptRejected(ctx context.Context, workflow, entityID string, from, to State, err error)
	GuardDenied(ctx context.Context, workflow, guard string, from, to State, reason string)
	SinkFailed(ctx context.Context, record Record, err error)
}

// DefaultLogger implements Logger using slog.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger backed by slog.Default().
func NewDefaultLogger() *DefaultLogger {
	return NewLogger(nil)
}

// NewLogger creates a logger backed by the given slog logger. A nil logger
// falls back to slog.Default().
func NewLogger(logger *slog.Logger) *DefaultLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultLogger{
		logger: logger,
	}
}

func (l *DefaultLogger) AttemptStarted(
	ctx context.Context,
	workflow, entityID string,
	from, to State,
	tctx Context,
) {
	l.logger.InfoContext(ctx, "Transition attempt started",
		"workflow", workflow,
		"entity_id", entityID,
		"from", from,
		"to", to,
		"actor", tctx.Actor,
		"attempt_id", tctx.AttemptID,
	)
}

func (l *DefaultLogger) TransitionCommitted(ctx context.Context, record Record) {
	l.logger.InfoContext(ctx, "Transition committed",
		"workflow", record.Workflow,
		"entity_id", record.EntityID,
		"from", record.From,
		"to", record.To,
		"actor", record.Actor,
		"audit_id", record.ID,
		"sequence", record.Sequence,
	)
}

func (l *DefaultLogger) AttemptRejected(
	ctx context.Context,
	workflow, entityID string,
	from, to State,
	err error,
) {
	l.logger.WarnContext(ctx, "Transition attempt rejected",
		"workflow", workflow,
		"entity_id", entityID,
		"from", from,
		"to", to,
		"error", err,
	)
}

func (l *DefaultLogger) GuardDenied(
	ctx context.Context,
	workflow, guard string,
	from, to State,
	reason string,
) {
	l.logger.InfoContext(ctx, "Guard denied transition",
		"workflow", workflow,
		"guard", guard,
		"from", from,
		"to", to,
		"reason", reason,
	)
}

func (l *DefaultLogger) SinkFailed(ctx context.Context, record Record, err error) {
	l.logger.ErrorContext(ctx, "Audit sink failed after commit",
		"workflow", record.Workflow,
		"entity_id", record.EntityID,
		"audit_id", record.ID,
		"sequence", record.Sequence,
		"error", err,
	)
}
