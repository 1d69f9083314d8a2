package validator

import (
	"fmt"

	"github.com/amp-labs/amp-workflow/workflow"
)

// RuleResult contains both errors and warnings from a rule check.
type RuleResult struct {
	Errors   []Issue
	Warnings []Issue
}

// Rule defines a validation rule that checks a config for a specific class
// of issue.
type Rule interface {
	Name() string
	Check(config *workflow.Config) RuleResult
}

// DefaultRules returns the standard set of validation rules.
func DefaultRules() []Rule {
	return []Rule{
		&unreachableStateRule{},
		&deadEndStateRule{},
		&terminalOutgoingRule{},
		&noPathToTerminalRule{},
		&duplicateTransitionRule{},
		&namingConventionRule{},
	}
}

// unreachableStateRule finds states with no path from the initial state.
// This includes a declared terminal that no rule ever targets.
type unreachableStateRule struct{}

func (r *unreachableStateRule) Name() string {
	return "UnreachableState"
}

func (r *unreachableStateRule) Check(config *workflow.Config) RuleResult {
	var result RuleResult

	reachable := reachableFrom(config, config.InitialState)

	for _, state := range config.States {
		if !reachable[state] {
			result.Errors = append(result.Errors, Issue{
				Code: "UNREACHABLE_STATE",
				Message: fmt.Sprintf("state %s cannot be reached from initial state %s",
					state, config.InitialState),
				State: state,
			})
		}
	}

	return result
}

// deadEndStateRule finds non-terminal states without outgoing transitions.
type deadEndStateRule struct{}

func (r *deadEndStateRule) Name() string {
	return "DeadEndState"
}

func (r *deadEndStateRule) Check(config *workflow.Config) RuleResult {
	var result RuleResult

	outgoing := make(map[workflow.State]bool, len(config.Transitions))
	for _, transition := range config.Transitions {
		outgoing[transition.From] = true
	}

	for _, state := range config.States {
		if !config.IsTerminal(state) && !outgoing[state] {
			result.Errors = append(result.Errors, Issue{
				Code:    "DEAD_END_STATE",
				Message: fmt.Sprintf("non-terminal state %s has no outgoing transitions", state),
				State:   state,
			})
		}
	}

	return result
}

// terminalOutgoingRule finds transitions declared out of terminal states.
type terminalOutgoingRule struct{}

func (r *terminalOutgoingRule) Name() string {
	return "TerminalOutgoing"
}

func (r *terminalOutgoingRule) Check(config *workflow.Config) RuleResult {
	var result RuleResult

	for _, transition := range config.Transitions {
		if config.IsTerminal(transition.From) {
			result.Errors = append(result.Errors, Issue{
				Code: "TERMINAL_OUTGOING",
				Message: fmt.Sprintf("terminal state %s has an outgoing transition to %s",
					transition.From, transition.To),
				State: transition.From,
			})
		}
	}

	return result
}

// noPathToTerminalRule finds non-terminal states from which no terminal
// state can be reached; entities arriving there circulate forever.
type noPathToTerminalRule struct{}

func (r *noPathToTerminalRule) Name() string {
	return "NoPathToTerminal"
}

func (r *noPathToTerminalRule) Check(config *workflow.Config) RuleResult {
	var result RuleResult

	for _, state := range config.States {
		if config.IsTerminal(state) {
			continue
		}

		reachable := reachableFrom(config, state)

		found := false

		for _, terminal := range config.TerminalStates {
			if reachable[terminal] {
				found = true

				break
			}
		}

		if !found {
			result.Errors = append(result.Errors, Issue{
				Code:    "NO_PATH_TO_TERMINAL",
				Message: fmt.Sprintf("state %s cannot reach any terminal state", state),
				State:   state,
			})
		}
	}

	return result
}

// duplicateTransitionRule finds (from, to) pairs declared more than once.
type duplicateTransitionRule struct{}

func (r *duplicateTransitionRule) Name() string {
	return "DuplicateTransition"
}

func (r *duplicateTransitionRule) Check(config *workflow.Config) RuleResult {
	var result RuleResult

	type edge struct {
		from workflow.State
		to   workflow.State
	}

	seen := make(map[edge]bool, len(config.Transitions))

	for _, transition := range config.Transitions {
		key := edge{from: transition.From, to: transition.To}
		if seen[key] {
			result.Errors = append(result.Errors, Issue{
				Code: "DUPLICATE_TRANSITION",
				Message: fmt.Sprintf("transition %s -> %s is declared more than once",
					transition.From, transition.To),
				State: transition.From,
			})
		}

		seen[key] = true
	}

	return result
}

// namingConventionRule warns about state names that are not UPPER_SNAKE,
// the convention used for business states throughout this module.
type namingConventionRule struct{}

func (r *namingConventionRule) Name() string {
	return "NamingConvention"
}

func (r *namingConventionRule) Check(config *workflow.Config) RuleResult {
	var result RuleResult

	for _, state := range config.States {
		if !isUpperSnake(string(state)) {
			result.Warnings = append(result.Warnings, Issue{
				Code:    "NAMING_CONVENTION",
				Message: fmt.Sprintf("state %s is not UPPER_SNAKE_CASE", state),
				State:   state,
			})
		}
	}

	return result
}

func isUpperSnake(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}

	return true
}

// reachableFrom finds all states reachable from start using BFS.
func reachableFrom(config *workflow.Config, start workflow.State) map[workflow.State]bool {
	reachable := map[workflow.State]bool{start: true}

	queue := []workflow.State{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, transition := range config.Transitions {
			if transition.From == current && !reachable[transition.To] {
				reachable[transition.To] = true
				queue = append(queue, transition.To)
			}
		}
	}

	return reachable
}
