package wftest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-workflow/workflow"
	"github.com/amp-labs/amp-workflow/workflow/guards"
	"github.com/amp-labs/amp-workflow/workflow/wftest"
)

func stubAmount(entity workflow.Entity) float64 {
	return entity.(*wftest.StubEntity).Amount //nolint:forcetypeassert // Test accessor
}

func newApprovalEngine(t *testing.T) *workflow.Engine {
	t.Helper()

	engine, err := workflow.NewBuilder("loan_approval").
		WithStates("SUBMITTED", "VERIFICATION", "APPROVAL", "COMPLETED", "REJECTED").
		WithInitialState("SUBMITTED").
		WithTerminalStates("COMPLETED", "REJECTED").
		AddGuardedTransition("SUBMITTED", "VERIFICATION",
			guards.AmountAtMost("amount_within_limit", 100000, stubAmount)).
		AddTransition("SUBMITTED", "REJECTED").
		AddTransition("VERIFICATION", "APPROVAL").
		AddTransition("VERIFICATION", "REJECTED").
		AddGuardedTransition("APPROVAL", "COMPLETED",
			guards.RequireActor("senior_officer_only", "officer-1")).
		AddTransition("APPROVAL", "REJECTED").
		Build()
	require.NoError(t, err)

	return engine
}

func TestScenarioHappyPath(t *testing.T) {
	t.Parallel()

	engine := newApprovalEngine(t)
	entity := wftest.NewStubEntity("loan-1", "SUBMITTED")
	entity.Amount = 50000

	wftest.Scenario{
		Engine: engine,
		Entity: entity,
		Steps: []wftest.Step{
			{To: "VERIFICATION", Actor: "officer-7"},
			{To: "APPROVAL", Actor: "officer-7"},
			{To: "COMPLETED", Actor: "officer-1"},
			{Name: "terminal is absolute", To: "VERIFICATION", Actor: "officer-1", WantErr: workflow.ErrTerminalState},
		},
	}.Run(t)
}

func TestScenarioGuardDenials(t *testing.T) {
	t.Parallel()

	engine := newApprovalEngine(t)
	entity := wftest.NewStubEntity("loan-2", "SUBMITTED")
	entity.Amount = 150000

	wftest.Scenario{
		Engine: engine,
		Entity: entity,
		Steps: []wftest.Step{
			{
				Name:       "over the limit",
				To:         "VERIFICATION",
				Actor:      "officer-7",
				WantErr:    workflow.ErrGuardDenied,
				WantReason: "exceeds limit",
			},
			{Name: "skipping ahead", To: "COMPLETED", Actor: "officer-7", WantErr: workflow.ErrInvalidTransition},
			{To: "REJECTED", Actor: "officer-7", Notes: "over product limit"},
		},
	}.Run(t)
}

func TestRecordingSink(t *testing.T) {
	t.Parallel()

	engine := newApprovalEngine(t)
	sink := wftest.NewRecordingSink()
	engine.SetSink(sink)

	entity := wftest.NewStubEntity("loan-3", "SUBMITTED")
	entity.Amount = 50000

	_, err := engine.Attempt(t.Context(), entity, "VERIFICATION", workflow.NewContext("officer-7", ""))
	require.NoError(t, err)
	require.Equal(t, 1, sink.Len())

	last, ok := sink.Last()
	require.True(t, ok)
	assert.Equal(t, workflow.State("VERIFICATION"), last.To)

	// Injected failure surfaces in the outcome but records keep the commit.
	sinkErr := errors.New("audit store down")
	sink.FailWith(sinkErr)

	outcome, err := engine.Attempt(t.Context(), entity, "APPROVAL", workflow.NewContext("officer-7", ""))
	require.NoError(t, err)
	require.ErrorIs(t, outcome.SinkErr, sinkErr)
	assert.Equal(t, workflow.State("APPROVAL"), entity.CurrentState())
	assert.Equal(t, 1, sink.Len())
}

func TestStubEntityFields(t *testing.T) {
	t.Parallel()

	entity := wftest.NewStubEntity("loan-4", "SUBMITTED")
	entity.Fields["product"] = "mortgage"

	assert.Equal(t, "mortgage", entity.Field("product"))
	assert.Empty(t, entity.Field("missing"))

	entity.SetState("VERIFICATION")
	assert.Equal(t, workflow.State("VERIFICATION"), entity.CurrentState())
	assert.Equal(t, "loan-4", entity.EntityID())
}
