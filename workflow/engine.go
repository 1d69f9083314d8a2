package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/atomic"
)

// Metric outcome constants.
const (
	outcomeCommitted   = "committed"
	outcomeTerminal    = "terminal"
	outcomeInvalid     = "invalid"
	outcomeGuardDenied = "guard_denied"
	outcomeError       = "error"
)

// Engine orchestrates transition attempts for one workflow. It is safe for
// concurrent use across entities; callers allowing concurrent attempts on
// the same entity must serialize them per entity identifier, since the
// read-evaluate-write sequence inside Attempt assumes the entity's state
// does not move underneath it.
type Engine struct {
	name     string
	table    *Table
	registry *Registry
	sink     Sink
	logger   Logger
	sequence atomic.Uint64
}

// NewEngine creates an engine from a configuration. Guard names referenced
// by the config are resolved against the catalog; a nil catalog is valid
// for configs that reference no guards.
func NewEngine(config *Config, catalog *Catalog) (*Engine, error) {
	table, err := NewTable(config)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()

	for _, transition := range config.Transitions {
		for _, name := range transition.Guards {
			if catalog == nil {
				return nil, WrapConfigError(config.Name, fmt.Errorf("%w: %s", ErrUnknownGuard, name))
			}

			guard, ok := catalog.Get(name)
			if !ok {
				return nil, WrapConfigError(config.Name, fmt.Errorf("%w: %s", ErrUnknownGuard, name))
			}

			err = registry.Register(transition.From, transition.To, guard)
			if err != nil {
				return nil, WrapConfigError(config.Name, err)
			}
		}
	}

	return &Engine{
		name:     config.Name,
		table:    table,
		registry: registry,
	}, nil
}

// Name returns the workflow name.
func (e *Engine) Name() string {
	return e.name
}

// Table returns the engine's transition table.
func (e *Engine) Table() *Table {
	return e.table
}

// RegisterGuard attaches a programmatic guard to a declared transition.
// Registration belongs to engine initialization; adding guards while
// attempts are in flight is not supported.
func (e *Engine) RegisterGuard(from, to State, guard Guard) error {
	if !e.table.IsValid(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrGuardEdgeUnknown, from, to)
	}

	return e.registry.Register(from, to, guard)
}

// SetSink sets the audit sink receiving one record per committed
// transition. A nil sink disables emission; the record is still returned in
// the Outcome.
func (e *Engine) SetSink(sink Sink) {
	e.sink = sink
}

// SetLogger sets the logger for attempt lifecycle events.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// Attempt tries to move the entity from its current state to the requested
// destination. On success the entity's state is mutated in place, exactly
// one audit record is produced, and the outcome carries both. Every failure
// is a deterministic rejection of this specific attempt: retrying with
// unchanged inputs yields the identical rejection, so the engine never
// retries internally.
func (e *Engine) Attempt(ctx context.Context, entity Entity, to State, tctx Context) (outcome Outcome, err error) {
	if entity == nil {
		return Outcome{}, ErrNilEntity
	}

	from := entity.CurrentState()

	ctx, span := startAttemptSpan(ctx, e.name, entity.EntityID(), from, to)

	start := time.Now()
	result := outcomeError

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, outcomeCommitted)
		}

		span.SetAttributes(attribute.String("outcome", result))
		span.End()

		attemptDuration.WithLabelValues(e.name, result).Observe(time.Since(start).Seconds())
		attemptsTotal.WithLabelValues(
			e.name, string(from), string(to), result, hashEntityID(entity.EntityID()),
		).Inc()
	}()

	if e.logger != nil {
		e.logger.AttemptStarted(ctx, e.name, entity.EntityID(), from, to, tctx)
	}

	// Terminal states are absolute: no transition out, regardless of the
	// requested destination or any guard configuration.
	if e.table.IsTerminal(from) {
		result = outcomeTerminal
		err = WrapTransitionError(from, to, ErrTerminalState)

		return e.reject(ctx, entity, from, to, err)
	}

	if !e.table.Known(from) {
		result = outcomeInvalid
		err = WrapTransitionError(from, to, ErrUnknownState)

		return e.reject(ctx, entity, from, to, err)
	}

	if !e.table.IsValid(from, to) {
		result = outcomeInvalid
		err = WrapTransitionError(from, to, ErrInvalidTransition)

		return e.reject(ctx, entity, from, to, err)
	}

	guardResult := e.evaluateGuards(ctx, entity, from, to, tctx)
	if !guardResult.Allowed {
		result = outcomeGuardDenied
		err = &GuardError{
			Guard:  guardResult.Guard,
			From:   from,
			To:     to,
			Reason: guardResult.Reason,
		}

		guardDenialsTotal.WithLabelValues(e.name, guardResult.Guard, string(from), string(to)).Inc()

		return e.reject(ctx, entity, from, to, err)
	}

	// Commit. From here on the attempt has succeeded; a sink failure is
	// reported alongside the outcome but does not undo the state change.
	entity.SetState(to)

	record := newRecord(e.name, e.sequence.Inc(), entity, from, to, tctx)

	outcome = Outcome{
		Workflow: e.name,
		EntityID: entity.EntityID(),
		From:     from,
		To:       to,
		Record:   record,
	}

	if e.sink != nil {
		sinkErr := e.sink.Record(ctx, record)
		if sinkErr != nil {
			outcome.SinkErr = sinkErr

			sinkFailuresTotal.WithLabelValues(e.name).Inc()

			if e.logger != nil {
				e.logger.SinkFailed(ctx, record, sinkErr)
			}
		}
	}

	if e.logger != nil {
		e.logger.TransitionCommitted(ctx, record)
	}

	result = outcomeCommitted

	return outcome, nil
}

// evaluateGuards runs the edge's guards inside a child span.
func (e *Engine) evaluateGuards(ctx context.Context, entity Entity, from, to State, tctx Context) GuardResult {
	ctx, span := startGuardSpan(ctx, e.name, from, to)
	defer span.End()

	result := e.registry.Evaluate(ctx, entity, from, to, tctx)

	span.SetAttributes(
		attribute.Bool("allowed", result.Allowed),
		attribute.Int("guards_checked", result.Checked),
	)

	if !result.Allowed {
		span.SetAttributes(
			attribute.String("denied_by", result.Guard),
			attribute.String("reason", result.Reason),
		)

		if e.logger != nil {
			e.logger.GuardDenied(ctx, e.name, result.Guard, from, to, result.Reason)
		}
	}

	return result
}

func (e *Engine) reject(ctx context.Context, entity Entity, from, to State, err error) (Outcome, error) {
	if e.logger != nil {
		e.logger.AttemptRejected(ctx, e.name, entity.EntityID(), from, to, err)
	}

	return Outcome{}, err
}
