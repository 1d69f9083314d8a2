package workflow

// Builder provides a fluent API for constructing workflow engines in code,
// without a YAML declaration.
type Builder struct {
	config *Config
	guards []guardBinding
}

type guardBinding struct {
	from  State
	to    State
	guard Guard
}

// NewBuilder creates a workflow builder.
func NewBuilder(name string) *Builder {
	return &Builder{
		config: &Config{
			Name:        name,
			States:      []State{},
			Transitions: []TransitionConfig{},
		},
	}
}

// WithStates declares the state universe.
func (b *Builder) WithStates(states ...State) *Builder {
	b.config.States = append(b.config.States, states...)

	return b
}

// WithInitialState sets the initial state.
func (b *Builder) WithInitialState(state State) *Builder {
	b.config.InitialState = state

	return b
}

// WithTerminalStates declares the terminal states.
func (b *Builder) WithTerminalStates(states ...State) *Builder {
	b.config.TerminalStates = append(b.config.TerminalStates, states...)

	return b
}

// AddTransition declares an allowed transition.
func (b *Builder) AddTransition(from, to State) *Builder {
	b.config.Transitions = append(b.config.Transitions, TransitionConfig{
		From: from,
		To:   to,
	})

	return b
}

// AddGuardedTransition declares an allowed transition with guards attached,
// evaluated in the given order.
func (b *Builder) AddGuardedTransition(from, to State, guards ...Guard) *Builder {
	b.AddTransition(from, to)

	for _, guard := range guards {
		b.guards = append(b.guards, guardBinding{
			from:  from,
			to:    to,
			guard: guard,
		})
	}

	return b
}

// Guard attaches a guard to an already-declared transition.
func (b *Builder) Guard(from, to State, guard Guard) *Builder {
	b.guards = append(b.guards, guardBinding{
		from:  from,
		to:    to,
		guard: guard,
	})

	return b
}

// Build validates the configuration and constructs the engine.
func (b *Builder) Build() (*Engine, error) {
	engine, err := NewEngine(b.config, nil)
	if err != nil {
		return nil, err
	}

	for _, binding := range b.guards {
		err = engine.RegisterGuard(binding.from, binding.to, binding.guard)
		if err != nil {
			return nil, WrapConfigError(b.config.Name, err)
		}
	}

	return engine, nil
}
