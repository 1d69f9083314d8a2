package workflow

import (
	"time"

	"github.com/google/uuid"
)

// State is one discrete stage of an entity's lifecycle. The set of valid
// states is closed and declared at engine construction time; the engine
// attaches no meaning to the string beyond identity.
type State string

// Entity is any value that exposes a current state and a stable identifier.
// The engine mutates the state in place via SetState on a committed
// transition; persisting the change is the caller's responsibility.
type Entity interface {
	EntityID() string
	CurrentState() State
	SetState(state State)
}

// Context carries caller-supplied metadata for a single transition attempt.
// It is immutable once constructed.
type Context struct {
	AttemptID   string
	Actor       string
	Notes       string
	AttemptedAt time.Time
}

// NewContext creates a transition context for one attempt. The attempt ID
// and timestamp are assigned here so that two attempts by the same actor
// remain distinguishable in audit records.
func NewContext(actor, notes string) Context {
	return Context{
		AttemptID:   uuid.New().String(),
		Actor:       actor,
		Notes:       notes,
		AttemptedAt: time.Now(),
	}
}

// Outcome describes a committed transition.
type Outcome struct {
	Workflow string
	EntityID string
	From     State
	To       State
	Record   Record

	// SinkErr carries a sink failure that occurred after the state change
	// was committed. The state change stands; callers requiring atomicity
	// must coordinate persistence and audit emission in a shared
	// transaction boundary.
	SinkErr error
}
