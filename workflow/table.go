package workflow

import "slices"

// Table is the static transition table of one workflow: for every state,
// the set of states reachable directly from it. It answers structural
// validity only; business guards live in the Registry.
type Table struct {
	universe  map[State]bool
	terminals map[State]bool
	outgoing  map[State][]State
	initial   State
	states    []State
}

// NewTable builds a transition table from a validated configuration.
func NewTable(config *Config) (*Table, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	table := &Table{
		universe:  make(map[State]bool, len(config.States)),
		terminals: make(map[State]bool, len(config.TerminalStates)),
		outgoing:  make(map[State][]State, len(config.States)),
		initial:   config.InitialState,
		states:    slices.Clone(config.States),
	}

	for _, state := range config.States {
		table.universe[state] = true
	}

	for _, state := range config.TerminalStates {
		table.terminals[state] = true
	}

	for _, transition := range config.Transitions {
		table.outgoing[transition.From] = append(table.outgoing[transition.From], transition.To)
	}

	return table, nil
}

// IsValid reports whether the table permits a direct transition from source
// to destination, ignoring guards.
func (t *Table) IsValid(from, to State) bool {
	return slices.Contains(t.outgoing[from], to)
}

// Outgoing returns the configured destinations for a state in declaration
// order. Terminal states return an empty slice.
func (t *Table) Outgoing(from State) []State {
	return slices.Clone(t.outgoing[from])
}

// IsTerminal reports whether the state has no outgoing transitions by
// declaration.
func (t *Table) IsTerminal(state State) bool {
	return t.terminals[state]
}

// Known reports whether the state belongs to the declared universe.
func (t *Table) Known(state State) bool {
	return t.universe[state]
}

// Initial returns the declared initial state.
func (t *Table) Initial() State {
	return t.initial
}

// States returns the declared state universe in declaration order.
func (t *Table) States() []State {
	return slices.Clone(t.states)
}
