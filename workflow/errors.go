package workflow

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrTerminalState indicates an attempt from a state with no outgoing
	// transitions. Terminal states are absolute: no guard configuration can
	// permit leaving one.
	ErrTerminalState = errors.New("entity is in a terminal state")
	// ErrInvalidTransition indicates a destination that is not reachable
	// from the source state per the transition table.
	ErrInvalidTransition = errors.New("transition is not permitted")
	// ErrGuardDenied indicates a structurally valid transition rejected by
	// a business-rule guard.
	ErrGuardDenied = errors.New("transition denied by guard")

	// ErrNilEntity indicates that a nil entity was passed to Attempt.
	ErrNilEntity = errors.New("entity is nil")

	// ErrConfigNameRequired indicates that a workflow name is required.
	ErrConfigNameRequired = errors.New("workflow name is required")
	// ErrStateRequired indicates that at least one state is required.
	ErrStateRequired = errors.New("at least one state is required")
	// ErrDuplicateState indicates that a state was declared twice.
	ErrDuplicateState = errors.New("duplicate state")
	// ErrInitialStateRequired indicates that an initial state is required.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrTerminalStatesRequired indicates that the workflow must declare at
	// least two terminal states (one completing, one rejecting).
	ErrTerminalStatesRequired = errors.New("at least two terminal states are required")
	// ErrInitialStateTerminal indicates that the initial state was also
	// declared terminal, leaving the workflow nothing to do.
	ErrInitialStateTerminal = errors.New("initial state cannot be terminal")
	// ErrUnknownState indicates a reference to a state outside the declared
	// universe.
	ErrUnknownState = errors.New("state is not in the declared universe")
	// ErrDeadEndState indicates a non-terminal state with no outgoing
	// transitions.
	ErrDeadEndState = errors.New("non-terminal state has no outgoing transitions")
	// ErrTerminalOutgoing indicates an outgoing transition declared on a
	// terminal state.
	ErrTerminalOutgoing = errors.New("terminal state has an outgoing transition")
	// ErrUnreachableState indicates a state with no path from the initial
	// state.
	ErrUnreachableState = errors.New("state is unreachable from the initial state")
	// ErrDuplicateTransition indicates the same (from, to) pair declared
	// twice.
	ErrDuplicateTransition = errors.New("duplicate transition")
	// ErrTransitionFromRequired indicates a transition without a source.
	ErrTransitionFromRequired = errors.New("transition from state is required")
	// ErrTransitionToRequired indicates a transition without a destination.
	ErrTransitionToRequired = errors.New("transition to state is required")

	// ErrUnknownGuard indicates a config reference to a guard name that is
	// not registered in the catalog.
	ErrUnknownGuard = errors.New("guard is not registered in the catalog")
	// ErrNilGuard indicates that a nil guard was registered.
	ErrNilGuard = errors.New("guard is nil")
	// ErrGuardEdgeUnknown indicates a guard registered on a (from, to) pair
	// that the transition table does not declare.
	ErrGuardEdgeUnknown = errors.New("guard registered on undeclared transition")
)

// ConfigError wraps a configuration defect detected at construction. The
// engine is unusable until the configuration is corrected.
type ConfigError struct {
	Workflow string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.Workflow == "" {
		return fmt.Sprintf("invalid workflow config: %v", e.Err)
	}

	return fmt.Sprintf("invalid workflow config %s: %v", e.Workflow, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransitionError wraps a rejected attempt with its source and destination
// so callers can present a precise message.
type TransitionError struct {
	From State
	To   State
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// GuardError wraps a guard denial with the denying guard's name and its
// human-readable reason. Reasons are written for end users and are safe to
// surface verbatim.
type GuardError struct {
	Guard  string
	From   State
	To     State
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("transition %s -> %s denied by guard %s: %s", e.From, e.To, e.Guard, e.Reason)
}

func (e *GuardError) Unwrap() error {
	return ErrGuardDenied
}

// WrapConfigError wraps an error as a configuration defect.
func WrapConfigError(workflow string, err error) error {
	if err == nil {
		return nil
	}

	return &ConfigError{
		Workflow: workflow,
		Err:      err,
	}
}

// WrapTransitionError wraps an error with transition context.
func WrapTransitionError(from, to State, err error) error {
	if err == nil {
		return nil
	}

	return &TransitionError{
		From: from,
		To:   to,
		Err:  err,
	}
}
