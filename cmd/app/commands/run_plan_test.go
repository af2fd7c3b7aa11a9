package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/planexec/internal/orchestrator"
	planDomain "github.com/allisson/planexec/internal/plan/domain"
)

// mockExecutor is a testify mock for the plan executor.
type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(
	ctx context.Context,
	plan *planDomain.ExecutionPlan,
) (*orchestrator.Outcome, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orchestrator.Outcome), args.Error(1)
}

func writePlanFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validPlanJSON = `{
	"user_id": "user-1",
	"token_fingerprint": "fp-1234",
	"trigger_type": "manual",
	"steps": [{"domain": "echo", "method": "echo", "parameters": {"message": "hello"}}]
}`

const validPlanYAML = `user_id: user-1
token_fingerprint: fp-1234
trigger_type: manual
steps:
  - domain: echo
    method: echo
    parameters:
      message: hello
`

func TestRunPlan(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	completed := &orchestrator.Outcome{
		State:       orchestrator.StateCompleted,
		StepResults: []map[string]any{{"message": "hello"}},
	}

	t.Run("success-json-document", func(t *testing.T) {
		executor := &mockExecutor{}
		executor.On("Execute", ctx, mock.AnythingOfType("*domain.ExecutionPlan")).Return(completed, nil)

		path := writePlanFile(t, "plan.json", validPlanJSON)

		var out bytes.Buffer
		err := RunPlan(ctx, executor, logger, &out, path, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "completed")
		executor.AssertExpectations(t)
	})

	t.Run("success-yaml-document", func(t *testing.T) {
		executor := &mockExecutor{}
		executor.On("Execute", ctx, mock.AnythingOfType("*domain.ExecutionPlan")).Return(completed, nil)

		path := writePlanFile(t, "plan.yaml", validPlanYAML)

		var out bytes.Buffer
		err := RunPlan(ctx, executor, logger, &out, path, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, "completed", result["state"])
		executor.AssertExpectations(t)
	})

	t.Run("missing-file", func(t *testing.T) {
		err := RunPlan(ctx, nil, logger, nil, filepath.Join(t.TempDir(), "absent.json"), "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read plan file")
	})

	t.Run("schema-rejection", func(t *testing.T) {
		path := writePlanFile(t, "plan.json", `{"user_id": "user-1", "unknown_field": true}`)

		err := RunPlan(ctx, nil, logger, nil, path, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "plan rejected")
	})

	t.Run("denied-execution-fails-command", func(t *testing.T) {
		denied := &orchestrator.Outcome{
			State:         orchestrator.StateFailed,
			FailureReason: "scope violation",
		}

		executor := &mockExecutor{}
		executor.On("Execute", ctx, mock.AnythingOfType("*domain.ExecutionPlan")).Return(denied, nil)

		path := writePlanFile(t, "plan.json", validPlanJSON)

		var out bytes.Buffer
		err := RunPlan(ctx, executor, logger, &out, path, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "scope violation")
		require.Contains(t, out.String(), "failed")
		executor.AssertExpectations(t)
	})
}
