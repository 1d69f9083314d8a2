// Package guards provides reusable, parameterized business-rule guards for
// workflow transitions. All builders return pure guards: thresholds and
// field accessors are supplied by the caller at construction, so the same
// rule can be configured differently per deployment.
package guards

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/amp-labs/amp-workflow/workflow"
)

// Amount extracts a numeric value from an entity, e.g. a loan amount.
type Amount func(entity workflow.Entity) float64

// Field extracts a string value from an entity.
type Field func(entity workflow.Entity) string

// AmountAtMost denies the transition when the extracted amount exceeds the
// limit.
func AmountAtMost(name string, limit float64, amount Amount) workflow.Guard {
	return workflow.NewGuard(name, func(
		_ context.Context, entity workflow.Entity, _, _ workflow.State, _ workflow.Context,
	) workflow.Decision {
		value := amount(entity)
		if value > limit {
			return workflow.Deny(fmt.Sprintf("amount %.2f exceeds limit %.2f", value, limit))
		}

		return workflow.Allow()
	})
}

// AmountAtLeast denies the transition when the extracted amount is below
// the minimum.
func AmountAtLeast(name string, minimum float64, amount Amount) workflow.Guard {
	return workflow.NewGuard(name, func(
		_ context.Context, entity workflow.Entity, _, _ workflow.State, _ workflow.Context,
	) workflow.Decision {
		value := amount(entity)
		if value < minimum {
			return workflow.Deny(fmt.Sprintf("amount %.2f is below minimum %.2f", value, minimum))
		}

		return workflow.Allow()
	})
}

// RequireActor permits the transition only when the attempt's actor is one
// of the allowed identities.
func RequireActor(name string, actors ...string) workflow.Guard {
	return workflow.NewGuard(name, func(
		_ context.Context, _ workflow.Entity, _, _ workflow.State, tctx workflow.Context,
	) workflow.Decision {
		if slices.Contains(actors, tctx.Actor) {
			return workflow.Allow()
		}

		return workflow.Deny(fmt.Sprintf("actor %q is not permitted to perform this transition", tctx.Actor))
	})
}

// ActorNot denies the transition when the attempt's actor matches the
// extracted identity, e.g. to ban self-approval.
func ActorNot(name string, owner Field) workflow.Guard {
	return workflow.NewGuard(name, func(
		_ context.Context, entity workflow.Entity, _, _ workflow.State, tctx workflow.Context,
	) workflow.Decision {
		if tctx.Actor != "" && tctx.Actor == owner(entity) {
			return workflow.Deny(fmt.Sprintf("actor %q cannot act on their own record", tctx.Actor))
		}

		return workflow.Allow()
	})
}

// RequireNotes denies the transition when the attempt carries no notes.
// Useful on rejection edges where a justification is mandatory.
func RequireNotes(name string) workflow.Guard {
	return workflow.NewGuard(name, func(
		_ context.Context, _ workflow.Entity, _, _ workflow.State, tctx workflow.Context,
	) workflow.Decision {
		if strings.TrimSpace(tctx.Notes) == "" {
			return workflow.Deny("notes are required for this transition")
		}

		return workflow.Allow()
	})
}

// FieldEquals permits the transition only when the extracted field has the
// expected value.
func FieldEquals(name string, want string, field Field) workflow.Guard {
	return workflow.NewGuard(name, func(
		_ context.Context, entity workflow.Entity, _, _ workflow.State, _ workflow.Context,
	) workflow.Decision {
		got := field(entity)
		if got != want {
			return workflow.Deny(fmt.Sprintf("expected %q, got %q", want, got))
		}

		return workflow.Allow()
	})
}

// Not inverts the inner guard: the transition is permitted exactly when
// the inner guard would deny it. The surfaced reason names the inner
// condition, since the inner guard produces no reason when it allows.
func Not(name string, inner workflow.Guard) workflow.Guard {
	return workflow.NewGuard(name, func(
		ctx context.Context, entity workflow.Entity, from, to workflow.State, tctx workflow.Context,
	) workflow.Decision {
		decision := inner.Check(ctx, entity, from, to, tctx)
		if decision.Allowed {
			return workflow.Deny(fmt.Sprintf("condition %q must not hold for this transition", inner.Name()))
		}

		return workflow.Allow()
	})
}

// AnyOf permits the transition when at least one of the inner guards
// allows it. On denial the surfaced reason joins the inner reasons.
func AnyOf(name string, inner ...workflow.Guard) workflow.Guard {
	return workflow.NewGuard(name, func(
		ctx context.Context, entity workflow.Entity, from, to workflow.State, tctx workflow.Context,
	) workflow.Decision {
		reasons := make([]string, 0, len(inner))

		for _, guard := range inner {
			decision := guard.Check(ctx, entity, from, to, tctx)
			if decision.Allowed {
				return workflow.Allow()
			}

			reasons = append(reasons, decision.Reason)
		}

		return workflow.Deny(strings.Join(reasons, "; "))
	})
}
