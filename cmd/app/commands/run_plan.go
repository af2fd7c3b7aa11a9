package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/allisson/planexec/internal/orchestrator"
	planDomain "github.com/allisson/planexec/internal/plan/domain"
	"github.com/allisson/planexec/internal/plan/intake"
)

// RunPlan parses an execution plan document from a file and runs it to a
// terminal state. The document format is selected by file extension: .yaml
// and .yml are parsed as YAML, anything else as JSON.
//
// Returns an error when the plan is rejected at intake or the execution ends
// in a non-completed terminal state, so callers get a nonzero exit code.
func RunPlan(
	ctx context.Context,
	executor orchestrator.Executor,
	logger *slog.Logger,
	writer io.Writer,
	path string,
	format string,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read plan file: %w", err)
	}

	plan, err := parsePlanDocument(path, data)
	if err != nil {
		return fmt.Errorf("plan rejected: %w", err)
	}

	logger.Info("executing plan",
		slog.String("user_id", plan.UserID()),
		slog.Int("steps", plan.StepCount()),
	)

	outcome, err := executor.Execute(ctx, plan)
	if err != nil {
		return fmt.Errorf("execution aborted: %w", err)
	}

	if format == "json" {
		if err := outputOutcomeJSON(writer, outcome); err != nil {
			return err
		}
	} else {
		outputOutcomeText(writer, outcome)
	}

	logger.Info("execution finished",
		slog.String("state", string(outcome.State)),
		slog.Int("step_results", len(outcome.StepResults)),
		slog.Int("audit_events", len(outcome.AuditTrail)),
	)

	if outcome.State != orchestrator.StateCompleted {
		return fmt.Errorf("execution ended in state %s: %s", outcome.State, outcome.FailureReason)
	}

	return nil
}

// parsePlanDocument picks the decoder by file extension.
func parsePlanDocument(path string, data []byte) (*planDomain.ExecutionPlan, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return intake.ParseYAML(data)
	default:
		return intake.ParseJSON(data)
	}
}

// outputOutcomeText outputs the execution outcome in human-readable text format.
func outputOutcomeText(writer io.Writer, outcome *orchestrator.Outcome) {
	_, _ = fmt.Fprintf(writer, "Plan Execution\n")
	_, _ = fmt.Fprintf(writer, "==============\n\n")
	_, _ = fmt.Fprintf(writer, "State:        %s\n", outcome.State)
	_, _ = fmt.Fprintf(writer, "Steps Run:    %d\n", len(outcome.StepResults))
	_, _ = fmt.Fprintf(writer, "Audit Events: %d\n", len(outcome.AuditTrail))
	if outcome.FailureReason != "" {
		_, _ = fmt.Fprintf(writer, "Reason:       %s\n", outcome.FailureReason)
	}
	_, _ = fmt.Fprintf(writer, "\n")

	for i, result := range outcome.StepResults {
		_, _ = fmt.Fprintf(writer, "Step %d result:\n", i)
		jsonBytes, err := json.MarshalIndent(result, "  ", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(writer, "  (unprintable: %v)\n", err)
			continue
		}
		_, _ = fmt.Fprintf(writer, "  %s\n", string(jsonBytes))
	}

	_, _ = fmt.Fprintf(writer, "Audit trail:\n")
	for _, event := range outcome.AuditTrail {
		line := fmt.Sprintf("  %s %s", event.Kind, event.Outcome)
		if event.Domain != "" {
			line += fmt.Sprintf(" %s.%s", event.Domain, event.Method)
		}
		if event.Reason != "" {
			line += fmt.Sprintf(" (%s)", event.Reason)
		}
		_, _ = fmt.Fprintln(writer, line)
	}
}

// outputOutcomeJSON outputs the execution outcome in JSON format.
func outputOutcomeJSON(writer io.Writer, outcome *orchestrator.Outcome) error {
	result := map[string]interface{}{
		"state":          outcome.State,
		"step_results":   outcome.StepResults,
		"audit_trail":    outcome.AuditTrail,
		"failure_reason": outcome.FailureReason,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
