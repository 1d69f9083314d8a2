// Package wftest provides fixtures and helpers for testing workflow
// engines and guards: a configurable stub entity, a recording audit sink
// with failure injection, and a scenario runner that walks an entity
// through a sequence of attempts asserting each outcome.
package wftest

import (
	"context"
	"sync"

	"github.com/amp-labs/amp-workflow/workflow"
)

// StubEntity is a configurable in-memory entity for tests.
type StubEntity struct {
	ID     string
	State  workflow.State
	Amount float64
	Owner  string
	Fields map[string]string
}

// NewStubEntity creates a stub entity in the given state.
func NewStubEntity(id string, state workflow.State) *StubEntity {
	return &StubEntity{
		ID:     id,
		State:  state,
		Fields: map[string]string{},
	}
}

func (e *StubEntity) EntityID() string {
	return e.ID
}

func (e *StubEntity) CurrentState() workflow.State {
	return e.State
}

func (e *StubEntity) SetState(state workflow.State) {
	e.State = state
}

// Field returns a named string field, empty when unset.
func (e *StubEntity) Field(name string) string {
	return e.Fields[name]
}

// RecordingSink records audit records and can be told to fail, for
// exercising the commit-stands-on-sink-failure contract.
type RecordingSink struct {
	mu      sync.Mutex
	records []workflow.Record
	failErr error
}

// NewRecordingSink creates an empty recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// FailWith makes subsequent Record calls return the given error. Passing
// nil restores normal behavior.
func (s *RecordingSink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failErr = err
}

func (s *RecordingSink) Record(_ context.Context, record workflow.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	s.records = append(s.records, record)

	return nil
}

// Records returns a copy of the records received so far.
func (s *RecordingSink) Records() []workflow.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]workflow.Record, len(s.records))
	copy(out, s.records)

	return out
}

// Last returns the most recent record.
func (s *RecordingSink) Last() (workflow.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return workflow.Record{}, false
	}

	return s.records[len(s.records)-1], true
}

// Len returns the number of records received so far.
func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
