// Package workflow implements a guarded state-transition engine for driving
// business entities through a closed set of states.
//
// A workflow is declared once at startup: the state universe, an initial
// state, terminal states, and the set of allowed transitions between states.
// Business rules are attached to individual transitions as guards. At runtime
// the engine answers a single question per call: may this entity move from
// its current state to the requested state right now, and if so, commit the
// move and emit an audit record.
//
// The engine owns no storage and no transport. Entities are supplied per
// call, the caller persists the mutated entity, and audit records are handed
// to a caller-supplied Sink. Callers that allow concurrent attempts on the
// same entity must serialize them per entity identifier; the engine performs
// no locking across calls.
package workflow
