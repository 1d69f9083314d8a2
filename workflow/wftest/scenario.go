package wftest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-workflow/workflow"
)

// Step is one attempted transition in a scenario.
type Step struct {
	// Name labels the step in failure output; optional.
	Name string
	// To is the requested destination state.
	To workflow.State
	// Actor and Notes build the transition context.
	Actor string
	Notes string
	// WantErr is the sentinel the attempt must fail with; nil means the
	// attempt must commit.
	WantErr error
	// WantReason, when set, must appear in a guard denial's reason.
	WantReason string
}

// Scenario walks one entity through a sequence of attempts.
type Scenario struct {
	Engine *workflow.Engine
	Entity workflow.Entity
	Steps  []Step
}

// Run executes the scenario, asserting each step's outcome and that failed
// steps leave the entity's state untouched.
func (s Scenario) Run(t *testing.T) {
	t.Helper()

	for i, step := range s.Steps {
		name := step.Name
		if name == "" {
			name = string(s.Entity.CurrentState()) + " -> " + string(step.To)
		}

		before := s.Entity.CurrentState()
		tctx := workflow.NewContext(step.Actor, step.Notes)

		outcome, err := s.Engine.Attempt(t.Context(), s.Entity, step.To, tctx)

		if step.WantErr == nil {
			require.NoError(t, err, "step %d (%s)", i, name)
			assert.Equal(t, step.To, s.Entity.CurrentState(), "step %d (%s)", i, name)
			assert.Equal(t, before, outcome.From, "step %d (%s)", i, name)

			continue
		}

		require.ErrorIs(t, err, step.WantErr, "step %d (%s)", i, name)
		assert.Equal(t, before, s.Entity.CurrentState(),
			"step %d (%s): rejected attempt must not move the entity", i, name)

		if step.WantReason != "" {
			var guardErr *workflow.GuardError
			require.ErrorAs(t, err, &guardErr, "step %d (%s)", i, name)
			assert.Contains(t, guardErr.Reason, step.WantReason, "step %d (%s)", i, name)
		}
	}
}
