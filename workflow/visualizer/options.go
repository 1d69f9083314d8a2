package visualizer

import "github.com/amp-labs/amp-workflow/workflow"

// Options configures diagram generation.
type Options struct {
	// Direction is the Mermaid layout direction suffix, "v2" for top-down.
	Direction string
	// ShowGuards annotates edges with their guard names.
	ShowGuards bool
	// HighlightPath marks the given states as visited.
	HighlightPath []workflow.State
	// Fenced wraps the diagram in a markdown code fence.
	Fenced bool
}

// DefaultOptions returns the standard diagram options.
func DefaultOptions() Options {
	return Options{
		Direction:  "v2",
		ShowGuards: true,
		Fenced:     true,
	}
}
