package workflow

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "workflow"

// startAttemptSpan creates the root span for one transition attempt.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller (factory pattern)
func startAttemptSpan(
	ctx context.Context,
	workflow, entityID string,
	from, to State,
) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "workflow.attempt")
	span.SetAttributes(
		attribute.String("workflow", workflow),
		attribute.String("entity_id_hash", hashEntityID(entityID)),
		attribute.String("from_state", string(from)),
		attribute.String("to_state", string(to)),
	)

	return ctx, span
}

// startGuardSpan creates a child span for guard evaluation on one edge.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller (factory pattern)
func startGuardSpan(ctx context.Context, workflow string, from, to State) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "workflow.guards")
	span.SetAttributes(
		attribute.String("workflow", workflow),
		attribute.String("from_state", string(from)),
		attribute.String("to_state", string(to)),
	)

	return ctx, span
}
