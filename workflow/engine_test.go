package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loanApplication is a minimal entity for testing.
type loanApplication struct {
	id     string
	state  State
	amount float64
}

func (l *loanApplication) EntityID() string {
	return l.id
}

func (l *loanApplication) CurrentState() State {
	return l.state
}

func (l *loanApplication) SetState(state State) {
	l.state = state
}

// failingSink always fails, simulating an unavailable audit store.
type failingSink struct {
	err error
}

func (s *failingSink) Record(_ context.Context, _ Record) error {
	return s.err
}

func loanConfig() *Config {
	return &Config{
		Name:           "loan_approval",
		States:         []State{"SUBMITTED", "VERIFICATION", "RISK_ASSESSMENT", "APPROVAL", "ALLOCATION", "COMPLETED", "REJECTED"},
		InitialState:   "SUBMITTED",
		TerminalStates: []State{"COMPLETED", "REJECTED"},
		Transitions: []TransitionConfig{
			{From: "SUBMITTED", To: "VERIFICATION"},
			{From: "SUBMITTED", To: "REJECTED"},
			{From: "VERIFICATION", To: "RISK_ASSESSMENT"},
			{From: "VERIFICATION", To: "REJECTED"},
			{From: "RISK_ASSESSMENT", To: "APPROVAL"},
			{From: "RISK_ASSESSMENT", To: "REJECTED"},
			{From: "APPROVAL", To: "ALLOCATION"},
			{From: "APPROVAL", To: "REJECTED"},
			{From: "ALLOCATION", To: "COMPLETED"},
		},
	}
}

func newLoanEngine(t *testing.T) *Engine {
	t.Helper()

	engine, err := NewEngine(loanConfig(), nil)
	require.NoError(t, err)

	return engine
}

func TestAttemptCommitsValidTransition(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)
	sink := NewMemorySink()
	engine.SetSink(sink)

	entity := &loanApplication{id: "loan-1", state: "SUBMITTED"}
	tctx := NewContext("officer-7", "documents complete")

	outcome, err := engine.Attempt(t.Context(), entity, "VERIFICATION", tctx)
	require.NoError(t, err)

	assert.Equal(t, State("VERIFICATION"), entity.CurrentState())
	assert.Equal(t, State("SUBMITTED"), outcome.From)
	assert.Equal(t, State("VERIFICATION"), outcome.To)
	assert.Equal(t, "loan-1", outcome.EntityID)
	require.NoError(t, outcome.SinkErr)

	// Exactly one audit record, carrying the context fields supplied.
	require.Equal(t, 1, sink.Len())

	record := sink.Records()[0]
	assert.Equal(t, "loan_approval", record.Workflow)
	assert.Equal(t, "loan-1", record.EntityID)
	assert.Equal(t, State("SUBMITTED"), record.From)
	assert.Equal(t, State("VERIFICATION"), record.To)
	assert.Equal(t, "officer-7", record.Actor)
	assert.Equal(t, "documents complete", record.Notes)
	assert.Equal(t, tctx.AttemptID, record.AttemptID)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, uint64(1), record.Sequence)
	assert.False(t, record.CommittedAt.IsZero())
}

func TestAttemptFromTerminalState(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)

	// Any destination fails from a terminal state, the state itself included.
	for _, destination := range []State{"VERIFICATION", "COMPLETED", "REJECTED"} {
		entity := &loanApplication{id: "loan-2", state: "REJECTED"}

		_, err := engine.Attempt(t.Context(), entity, destination, NewContext("officer-7", ""))
		require.ErrorIs(t, err, ErrTerminalState)

		var transitionErr *TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, State("REJECTED"), transitionErr.From)
		assert.Equal(t, destination, transitionErr.To)

		assert.Equal(t, State("REJECTED"), entity.CurrentState())
	}
}

func TestAttemptTerminalStateIgnoresGuards(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)

	evaluated := false
	err := engine.RegisterGuard("SUBMITTED", "VERIFICATION", NewGuard("tracking",
		func(_ context.Context, _ Entity, _, _ State, _ Context) Decision {
			evaluated = true

			return Allow()
		}))
	require.NoError(t, err)

	entity := &loanApplication{id: "loan-3", state: "COMPLETED"}

	_, err = engine.Attempt(t.Context(), entity, "VERIFICATION", NewContext("officer-7", ""))
	require.ErrorIs(t, err, ErrTerminalState)
	assert.False(t, evaluated)
}

func TestAttemptInvalidTransitionSkipsGuards(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)

	evaluated := false
	err := engine.RegisterGuard("SUBMITTED", "VERIFICATION", NewGuard("tracking",
		func(_ context.Context, _ Entity, _, _ State, _ Context) Decision {
			evaluated = true

			return Allow()
		}))
	require.NoError(t, err)

	entity := &loanApplication{id: "loan-4", state: "SUBMITTED"}

	// COMPLETED is not reachable directly from SUBMITTED.
	_, err = engine.Attempt(t.Context(), entity, "COMPLETED", NewContext("officer-7", ""))
	require.ErrorIs(t, err, ErrInvalidTransition)

	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, State("SUBMITTED"), transitionErr.From)
	assert.Equal(t, State("COMPLETED"), transitionErr.To)

	assert.False(t, evaluated)
	assert.Equal(t, State("SUBMITTED"), entity.CurrentState())
}

func TestAttemptGuardDenied(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)
	sink := NewMemorySink()
	engine.SetSink(sink)

	const limit = 100000.0

	err := engine.RegisterGuard("SUBMITTED", "VERIFICATION", NewGuard("amount_within_limit",
		func(_ context.Context, entity Entity, _, _ State, _ Context) Decision {
			loan, ok := entity.(*loanApplication)
			if !ok {
				return Deny("entity is not a loan application")
			}

			if loan.amount > limit {
				return Deny(fmt.Sprintf("amount %.2f exceeds limit %.2f", loan.amount, limit))
			}

			return Allow()
		}))
	require.NoError(t, err)

	entity := &loanApplication{id: "loan-5", state: "SUBMITTED", amount: 150000}

	_, err = engine.Attempt(t.Context(), entity, "VERIFICATION", NewContext("officer-7", ""))
	require.ErrorIs(t, err, ErrGuardDenied)

	var guardErr *GuardError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "amount_within_limit", guardErr.Guard)
	assert.Contains(t, guardErr.Reason, "exceeds limit 100000.00")

	// No partial mutation, no audit record.
	assert.Equal(t, State("SUBMITTED"), entity.CurrentState())
	assert.Equal(t, 0, sink.Len())
}

func TestAttemptReevaluatesAfterCommit(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)

	entity := &loanApplication{id: "loan-6", state: "SUBMITTED"}

	_, err := engine.Attempt(t.Context(), entity, "VERIFICATION", NewContext("officer-7", ""))
	require.NoError(t, err)

	// The second identical call is judged against the new current state,
	// where VERIFICATION -> VERIFICATION is not a declared transition.
	_, err = engine.Attempt(t.Context(), entity, "VERIFICATION", NewContext("officer-7", ""))
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, State("VERIFICATION"), entity.CurrentState())
}

func TestAttemptSinkFailureKeepsCommit(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)

	sinkErr := errors.New("audit store unavailable")
	engine.SetSink(&failingSink{err: sinkErr})

	entity := &loanApplication{id: "loan-7", state: "SUBMITTED"}

	outcome, err := engine.Attempt(t.Context(), entity, "VERIFICATION", NewContext("officer-7", ""))
	require.NoError(t, err)

	// The mutation stands even though emission failed.
	assert.Equal(t, State("VERIFICATION"), entity.CurrentState())
	require.ErrorIs(t, outcome.SinkErr, sinkErr)
	assert.Equal(t, State("VERIFICATION"), outcome.Record.To)
}

func TestAttemptNilEntity(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)

	_, err := engine.Attempt(t.Context(), nil, "VERIFICATION", NewContext("officer-7", ""))
	require.ErrorIs(t, err, ErrNilEntity)
}

func TestAttemptUnknownCurrentState(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)

	entity := &loanApplication{id: "loan-8", state: "LIMBO"}

	_, err := engine.Attempt(t.Context(), entity, "VERIFICATION", NewContext("officer-7", ""))
	require.ErrorIs(t, err, ErrUnknownState)
}

func TestAttemptSequenceIsMonotonic(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)
	sink := NewMemorySink()
	engine.SetSink(sink)

	entity := &loanApplication{id: "loan-9", state: "SUBMITTED"}

	path := []State{"VERIFICATION", "RISK_ASSESSMENT", "APPROVAL", "ALLOCATION", "COMPLETED"}
	for _, destination := range path {
		_, err := engine.Attempt(t.Context(), entity, destination, NewContext("officer-7", ""))
		require.NoError(t, err)
	}

	records := sink.Records()
	require.Len(t, records, len(path))

	for i, record := range records {
		assert.Equal(t, uint64(i+1), record.Sequence)
	}
}

func TestNewEngineUnknownGuardName(t *testing.T) {
	t.Parallel()

	config := loanConfig()
	config.Transitions[0].Guards = []string{"no_such_guard"}

	_, err := NewEngine(config, NewCatalog())
	require.ErrorIs(t, err, ErrUnknownGuard)

	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "loan_approval", configErr.Workflow)
}

func TestNewEngineResolvesCatalogGuards(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()
	require.NoError(t, catalog.Register(NewGuard("always_deny",
		func(_ context.Context, _ Entity, _, _ State, _ Context) Decision {
			return Deny("denied for testing")
		})))

	config := loanConfig()
	config.Transitions[0].Guards = []string{"always_deny"}

	engine, err := NewEngine(config, catalog)
	require.NoError(t, err)

	entity := &loanApplication{id: "loan-10", state: "SUBMITTED"}

	_, err = engine.Attempt(t.Context(), entity, "VERIFICATION", NewContext("officer-7", ""))
	require.ErrorIs(t, err, ErrGuardDenied)

	// The guarded edge denies; the unguarded rejection edge still works.
	_, err = engine.Attempt(t.Context(), entity, "REJECTED", NewContext("officer-7", ""))
	require.NoError(t, err)
	assert.Equal(t, State("REJECTED"), entity.CurrentState())
}

func TestRegisterGuardOnUndeclaredEdge(t *testing.T) {
	t.Parallel()

	engine := newLoanEngine(t)

	err := engine.RegisterGuard("SUBMITTED", "COMPLETED", NewGuard("misplaced",
		func(_ context.Context, _ Entity, _, _ State, _ Context) Decision {
			return Allow()
		}))
	require.ErrorIs(t, err, ErrGuardEdgeUnknown)
}
