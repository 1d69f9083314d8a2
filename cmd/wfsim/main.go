// wfsim is an interactive workflow simulator. It loads a YAML workflow
// declaration, validates the graph, and walks a stub entity through it,
// prompting the operator for each transition and for every guard decision
// along the way. Each committed transition prints its audit record.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/amp-labs/amp-workflow/telemetry"
	"github.com/amp-labs/amp-workflow/workflow"
	"github.com/amp-labs/amp-workflow/workflow/validator"
	"github.com/amp-labs/amp-workflow/workflow/visualizer"
	"github.com/amp-labs/amp-workflow/workflow/wftest"
)

const quitChoice = "(quit)"

func main() {
	var (
		configPath   = flag.String("config", "", "path to the workflow YAML config")
		validateOnly = flag.Bool("validate", false, "validate the config and exit")
		vizOnly      = flag.Bool("viz", false, "print a mermaid diagram and exit")
		jsonLogs     = flag.Bool("json", false, "emit JSON logs")
		entityID     = flag.String("entity", "sim-1", "entity identifier for the simulated run")
	)

	flag.Parse()

	setupLogging(*jsonLogs)

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: wfsim -config <workflow.yaml> [-validate] [-viz]")
		os.Exit(2)
	}

	err := run(context.Background(), *configPath, *entityID, *validateOnly, *vizOnly)
	if err != nil {
		slog.Error("wfsim failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(jsonLogs bool) {
	var handler slog.Handler
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}

	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, configPath, entityID string, validateOnly, vizOnly bool) error {
	if validateOnly {
		result, err := validator.ValidateFile(configPath)
		if err != nil {
			return err
		}

		fmt.Println(result.String())

		if result.HasErrors() {
			return errors.New("validation failed")
		}

		return nil
	}

	config, err := workflow.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if vizOnly {
		diagram, err := visualizer.GenerateMermaid(config)
		if err != nil {
			return err
		}

		fmt.Println(diagram)

		return nil
	}

	telemetryConfig, err := telemetry.LoadConfigFromEnv()
	if err != nil {
		return err
	}

	err = telemetry.Initialize(ctx, telemetryConfig)
	if err != nil {
		return err
	}

	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	engine, err := buildEngine(config)
	if err != nil {
		return err
	}

	return simulate(ctx, engine, config, entityID)
}

// buildEngine resolves every guard name in the config to an interactive
// guard that asks the operator to allow or deny when evaluated.
func buildEngine(config *workflow.Config) (*workflow.Engine, error) {
	catalog := workflow.NewCatalog()

	seen := map[string]bool{}

	for _, transition := range config.Transitions {
		for _, name := range transition.Guards {
			if seen[name] {
				continue
			}

			seen[name] = true

			if err := catalog.Register(interactiveGuard(name)); err != nil {
				return nil, err
			}
		}
	}

	engine, err := workflow.NewEngine(config, catalog)
	if err != nil {
		return nil, err
	}

	engine.SetSink(workflow.NewSlogSink(slog.Default()))
	engine.SetLogger(workflow.NewDefaultLogger())

	return engine, nil
}

// interactiveGuard defers the guard decision to the operator.
func interactiveGuard(name string) workflow.Guard {
	return workflow.NewGuard(name,
		func(_ context.Context, entity workflow.Entity, from, to workflow.State, _ workflow.Context) workflow.Decision {
			prompt := promptui.Prompt{
				Label: fmt.Sprintf("guard %q on %s -> %s for %s, allow",
					name, from, to, entity.EntityID()),
				IsConfirm: true,
			}

			_, err := prompt.Run()
			if err != nil {
				return workflow.Deny(fmt.Sprintf("denied by operator via guard %s", name))
			}

			return workflow.Allow()
		})
}

func simulate(ctx context.Context, engine *workflow.Engine, config *workflow.Config, entityID string) error {
	entity := wftest.NewStubEntity(entityID, config.InitialState)

	fmt.Printf("simulating workflow %q, entity %s starting at %s\n",
		config.Name, entityID, config.InitialState)

	for {
		current := entity.CurrentState()

		if engine.Table().IsTerminal(current) {
			fmt.Printf("entity %s reached terminal state %s\n", entityID, current)

			return nil
		}

		to, quit, err := chooseDestination(engine, current)
		if err != nil {
			return err
		}

		if quit {
			return nil
		}

		actor, notes, err := promptContext()
		if err != nil {
			return err
		}

		outcome, err := engine.Attempt(ctx, entity, to, workflow.NewContext(actor, notes))
		if err != nil {
			fmt.Printf("rejected: %v\n", err)

			continue
		}

		printRecord(outcome.Record)

		if outcome.SinkErr != nil {
			fmt.Printf("audit sink error (transition stands): %v\n", outcome.SinkErr)
		}
	}
}

func chooseDestination(engine *workflow.Engine, current workflow.State) (workflow.State, bool, error) {
	outgoing := engine.Table().Outgoing(current)

	items := make([]string, 0, len(outgoing)+1)
	for _, state := range outgoing {
		items = append(items, string(state))
	}

	items = append(items, quitChoice)

	sel := promptui.Select{
		Label: fmt.Sprintf("current state %s, transition to", current),
		Items: items,
	}

	_, choice, err := sel.Run()
	if err != nil {
		return "", false, fmt.Errorf("selection aborted: %w", err)
	}

	if choice == quitChoice {
		return "", true, nil
	}

	return workflow.State(choice), false, nil
}

func promptContext() (string, string, error) {
	actorPrompt := promptui.Prompt{
		Label:   "actor",
		Default: "operator",
	}

	actor, err := actorPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("actor prompt aborted: %w", err)
	}

	notesPrompt := promptui.Prompt{
		Label: "notes (optional)",
	}

	notes, err := notesPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("notes prompt aborted: %w", err)
	}

	return actor, notes, nil
}

func printRecord(record workflow.Record) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		fmt.Printf("committed %s -> %s\n", record.From, record.To)

		return
	}

	fmt.Println(string(data))
}
