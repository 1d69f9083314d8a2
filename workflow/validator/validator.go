// Package validator provides rule-based diagnostics for workflow
// configurations. Unlike Config.Validate, which fails fast on the first
// defect, the validator collects every issue in one pass so a whole config
// can be repaired in a single edit cycle.
package validator

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amp-labs/amp-workflow/workflow"
)

// Result contains the results of validating a workflow config.
type Result struct {
	Valid    bool
	Errors   []Issue
	Warnings []Issue
}

// Issue describes one problem found in a config.
type Issue struct {
	Code    string // Issue code like "UNREACHABLE_STATE", "DEAD_END_STATE"
	Message string // Human-readable message
	State   workflow.State
}

// Validate runs the default rules against a config.
func Validate(config *workflow.Config) Result {
	return ValidateWithRules(config, DefaultRules())
}

// ValidateFile parses a config file and validates it. The file is decoded
// without the fail-fast construction checks so that diagnostics cover the
// whole graph even when construction would reject it.
func ValidateFile(path string) (Result, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return Result{}, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var config workflow.Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Result{
			Valid: false,
			Errors: []Issue{{
				Code:    "CONFIG_PARSE_FAILED",
				Message: fmt.Sprintf("Failed to parse config: %v", err),
			}},
		}, nil
	}

	return Validate(&config), nil
}

// ValidateWithRules validates using custom rules.
func ValidateWithRules(config *workflow.Config, rules []Rule) Result {
	result := Result{Valid: true}

	for _, rule := range rules {
		ruleResult := rule.Check(config)
		result.Errors = append(result.Errors, ruleResult.Errors...)
		result.Warnings = append(result.Warnings, ruleResult.Warnings...)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}

	return result
}

// ValidateStrict validates with warnings promoted to errors.
func ValidateStrict(config *workflow.Config) Result {
	result := Validate(config)

	result.Errors = append(result.Errors, result.Warnings...)
	result.Warnings = nil

	if len(result.Errors) > 0 {
		result.Valid = false
	}

	return result
}

// HasErrors returns true if the result has any errors.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if the result has any warnings.
func (r Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of the validation results.
func (r Result) String() string {
	if r.Valid && !r.HasWarnings() {
		return "configuration is valid"
	}

	var sb strings.Builder

	if !r.Valid {
		fmt.Fprintf(&sb, "configuration has %d error(s)\n", len(r.Errors))

		for _, issue := range r.Errors {
			writeIssue(&sb, issue)
		}
	} else {
		sb.WriteString("configuration is valid\n")
	}

	if r.HasWarnings() {
		fmt.Fprintf(&sb, "%d warning(s):\n", len(r.Warnings))

		for _, issue := range r.Warnings {
			writeIssue(&sb, issue)
		}
	}

	return sb.String()
}

func writeIssue(sb *strings.Builder, issue Issue) {
	fmt.Fprintf(sb, "  [%s] %s", issue.Code, issue.Message)

	if issue.State != "" {
		fmt.Fprintf(sb, " (state: %s)", issue.State)
	}

	sb.WriteString("\n")
}
