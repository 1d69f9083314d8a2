package workflow

import "context"

// Decision is the result of a single guard check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow permits the transition.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny vetoes the transition with a human-readable reason. Reasons are
// surfaced to callers verbatim, so write them for end users.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Guard is a named business-rule predicate attached to a transition edge.
// Guards must be pure with respect to engine state: no entity mutation, no
// side effects, so that evaluation stays deterministic and replayable.
type Guard interface {
	Name() string
	Check(ctx context.Context, entity Entity, from, to State, tctx Context) Decision
}

// GuardFunc is the signature of a guard predicate.
type GuardFunc func(ctx context.Context, entity Entity, from, to State, tctx Context) Decision

// NewGuard wraps a predicate function as a named guard.
func NewGuard(name string, fn GuardFunc) Guard {
	return &funcGuard{
		name: name,
		fn:   fn,
	}
}

type funcGuard struct {
	name string
	fn   GuardFunc
}

func (g *funcGuard) Name() string {
	return g.name
}

func (g *funcGuard) Check(ctx context.Context, entity Entity, from, to State, tctx Context) Decision {
	return g.fn(ctx, entity, from, to, tctx)
}

// GuardResult is the combined outcome of evaluating all guards on an edge.
type GuardResult struct {
	Allowed bool
	Guard   string // name of the denying guard, empty when allowed
	Reason  string
	Checked int // number of guards evaluated before the result was known
}

type edge struct {
	from State
	to   State
}

// Registry holds business-rule guards keyed by (from, to) edges. Guards on
// one edge are evaluated in registration order and must all pass for the
// transition to be permitted.
type Registry struct {
	guards map[edge][]Guard
}

// NewRegistry creates an empty guard registry.
func NewRegistry() *Registry {
	return &Registry{
		guards: make(map[edge][]Guard),
	}
}

// Register adds a guard to an edge. Multiple guards per edge are evaluated
// in registration order.
func (r *Registry) Register(from, to State, guard Guard) error {
	if guard == nil {
		return ErrNilGuard
	}

	key := edge{from: from, to: to}
	r.guards[key] = append(r.guards[key], guard)

	return nil
}

// Guards returns the guards registered on an edge in registration order.
func (r *Registry) Guards(from, to State) []Guard {
	key := edge{from: from, to: to}

	out := make([]Guard, len(r.guards[key]))
	copy(out, r.guards[key])

	return out
}

// Evaluate runs all guards for the edge, short-circuiting on the first
// denial. Which denial reason is surfaced when several guards would deny
// depends on registration order only; it is not a correctness guarantee.
func (r *Registry) Evaluate(ctx context.Context, entity Entity, from, to State, tctx Context) GuardResult {
	key := edge{from: from, to: to}

	checked := 0

	for _, guard := range r.guards[key] {
		checked++

		decision := guard.Check(ctx, entity, from, to, tctx)
		if !decision.Allowed {
			return GuardResult{
				Allowed: false,
				Guard:   guard.Name(),
				Reason:  decision.Reason,
				Checked: checked,
			}
		}
	}

	return GuardResult{
		Allowed: true,
		Checked: checked,
	}
}

// Catalog is a registry of guards by name, used to resolve guard references
// in workflow configurations. Applications register their business rules
// once at startup and refer to them by name in YAML.
type Catalog struct {
	guards map[string]Guard
}

// NewCatalog creates an empty guard catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		guards: make(map[string]Guard),
	}
}

// Register adds a guard to the catalog under its own name. Registering a
// second guard with the same name replaces the first.
func (c *Catalog) Register(guard Guard) error {
	if guard == nil {
		return ErrNilGuard
	}

	c.guards[guard.Name()] = guard

	return nil
}

// Get looks up a guard by name.
func (c *Catalog) Get(name string) (Guard, bool) {
	guard, ok := c.guards[name]

	return guard, ok
}
