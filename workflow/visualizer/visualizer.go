// Package visualizer generates Mermaid state diagrams from workflow
// configurations, for documentation and config review.
package visualizer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/amp-labs/amp-workflow/workflow"
)

// Visualizer errors.
var (
	ErrConfigNil      = errors.New("config cannot be nil")
	ErrNoInitialState = errors.New("config must have an initial state")
)

// GenerateMermaid converts a workflow config to a Mermaid state diagram.
func GenerateMermaid(config *workflow.Config) (string, error) {
	return GenerateMermaidWithOptions(config, DefaultOptions())
}

// GenerateMermaidFromFile loads a config from a file and generates a
// Mermaid diagram.
func GenerateMermaidFromFile(path string) (string, error) {
	config, err := workflow.LoadConfig(path)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	return GenerateMermaid(config)
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
func GenerateMermaidWithOptions(config *workflow.Config, opts Options) (string, error) {
	if config == nil {
		return "", ErrConfigNil
	}

	if config.InitialState == "" {
		return "", ErrNoInitialState
	}

	var sb strings.Builder

	if opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	fmt.Fprintf(&sb, "stateDiagram-%s\n", opts.Direction)

	// Initial state marker
	fmt.Fprintf(&sb, "    [*] --> %s\n", config.InitialState)

	for _, transition := range config.Transitions {
		label := ""
		if opts.ShowGuards && len(transition.Guards) > 0 {
			label = " : " + strings.Join(transition.Guards, ", ")
		}

		fmt.Fprintf(&sb, "    %s --> %s%s\n", transition.From, transition.To, label)
	}

	// Terminal markers
	for _, terminal := range config.TerminalStates {
		fmt.Fprintf(&sb, "    %s --> [*]\n", terminal)
	}

	// Visited-path highlighting
	if len(opts.HighlightPath) > 0 {
		sb.WriteString("    classDef visited fill:#e1f5e1\n")

		for _, state := range opts.HighlightPath {
			fmt.Fprintf(&sb, "    class %s visited\n", state)
		}
	}

	if opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String(), nil
}

// WriteFile generates a diagram and writes it to a file.
func WriteFile(config *workflow.Config, path string, opts Options) error {
	diagram, err := GenerateMermaidWithOptions(config, opts)
	if err != nil {
		return err
	}

	err = os.WriteFile(path, []byte(diagram), 0o600)
	if err != nil {
		return fmt.Errorf("failed to write diagram: %w", err)
	}

	return nil
}
