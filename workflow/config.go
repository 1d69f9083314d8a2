package workflow

import (
	"fmt"
	"io/fs"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config declares a workflow: its state universe, initial and terminal
// states, and the allowed transitions between states. Configs are assembled
// once at service startup and are effectively immutable afterwards.
type Config struct {
	Name           string             `json:"name"           yaml:"name"`
	States         []State            `json:"states"         yaml:"states"`
	InitialState   State              `json:"initialState"   yaml:"initialState"`
	TerminalStates []State            `json:"terminalStates" yaml:"terminalStates"`
	Transitions    []TransitionConfig `json:"transitions"    yaml:"transitions"`
}

// TransitionConfig declares one allowed transition. Guards lists the names
// of catalog guards attached to this edge, evaluated in the given order.
type TransitionConfig struct {
	From   State    `json:"from"   yaml:"from"`
	To     State    `json:"to"     yaml:"to"`
	Guards []string `json:"guards" yaml:"guards"`
}

// LoadConfig loads a workflow configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes loads a workflow configuration from YAML bytes.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigFromFS loads a configuration from a filesystem, typically an
// embed.FS carrying workflow declarations alongside the service binary.
func LoadConfigFromFS(fsys fs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS: %w", err)
	}

	return LoadConfigFromBytes(data)
}

// Validate checks that the configuration describes a well-formed workflow
// graph. Any defect found here is fatal: the engine must not be constructed
// from an invalid config.
func (c *Config) Validate() error {
	err := c.validate()
	if err != nil {
		return WrapConfigError(c.Name, err)
	}

	return nil
}

//nolint:cyclop // Validation is a flat sequence of independent checks.
func (c *Config) validate() error {
	if c.Name == "" {
		return ErrConfigNameRequired
	}

	if len(c.States) == 0 {
		return ErrStateRequired
	}

	universe := make(map[State]bool, len(c.States))

	for _, state := range c.States {
		if universe[state] {
			return fmt.Errorf("%w: %s", ErrDuplicateState, state)
		}

		universe[state] = true
	}

	if c.InitialState == "" {
		return ErrInitialStateRequired
	}

	if !universe[c.InitialState] {
		return fmt.Errorf("initial state: %w: %s", ErrUnknownState, c.InitialState)
	}

	if len(c.TerminalStates) < 2 {
		return ErrTerminalStatesRequired
	}

	terminals := make(map[State]bool, len(c.TerminalStates))

	for _, state := range c.TerminalStates {
		if !universe[state] {
			return fmt.Errorf("terminal state: %w: %s", ErrUnknownState, state)
		}

		if terminals[state] {
			return fmt.Errorf("terminal state: %w: %s", ErrDuplicateState, state)
		}

		terminals[state] = true
	}

	if terminals[c.InitialState] {
		return fmt.Errorf("%w: %s", ErrInitialStateTerminal, c.InitialState)
	}

	err := c.validateTransitions(universe, terminals)
	if err != nil {
		return err
	}

	// Every non-terminal state needs a way out, else it is a dead end.
	outgoing := make(map[State]bool, len(c.Transitions))
	for _, transition := range c.Transitions {
		outgoing[transition.From] = true
	}

	for _, state := range c.States {
		if !terminals[state] && !outgoing[state] {
			return fmt.Errorf("%w: %s", ErrDeadEndState, state)
		}
	}

	// Every state must be reachable from the initial state. This also
	// catches a terminal state that no rule ever targets.
	reachable := c.findReachableStates()

	for _, state := range c.States {
		if !reachable[state] {
			return fmt.Errorf("%w: %s", ErrUnreachableState, state)
		}
	}

	return nil
}

func (c *Config) validateTransitions(universe, terminals map[State]bool) error {
	type edgeKey struct {
		from State
		to   State
	}

	seen := make(map[edgeKey]bool, len(c.Transitions))

	for i, transition := range c.Transitions {
		if transition.From == "" {
			return fmt.Errorf("transition %d: %w", i, ErrTransitionFromRequired)
		}

		if transition.To == "" {
			return fmt.Errorf("transition %d: %w", i, ErrTransitionToRequired)
		}

		if !universe[transition.From] {
			return fmt.Errorf("transition %d: %w: %s", i, ErrUnknownState, transition.From)
		}

		if !universe[transition.To] {
			return fmt.Errorf("transition %d: %w: %s", i, ErrUnknownState, transition.To)
		}

		if terminals[transition.From] {
			return fmt.Errorf("transition %d: %w: %s -> %s",
				i, ErrTerminalOutgoing, transition.From, transition.To)
		}

		key := edgeKey{from: transition.From, to: transition.To}
		if seen[key] {
			return fmt.Errorf("transition %d: %w: %s -> %s",
				i, ErrDuplicateTransition, transition.From, transition.To)
		}

		seen[key] = true
	}

	return nil
}

// IsTerminal reports whether the config declares the state terminal.
func (c *Config) IsTerminal(state State) bool {
	return slices.Contains(c.TerminalStates, state)
}

// findReachableStates finds all states reachable from the initial state
// using BFS over the declared transitions.
func (c *Config) findReachableStates() map[State]bool {
	reachable := make(map[State]bool)
	reachable[c.InitialState] = true

	queue := []State{c.InitialState}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, transition := range c.Transitions {
			if transition.From == current && !reachable[transition.To] {
				reachable[transition.To] = true
				queue = append(queue, transition.To)
			}
		}
	}

	return reachable
}
