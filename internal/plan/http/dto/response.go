// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	auditDTO "github.com/allisson/planexec/internal/audit/http/dto"
	"github.com/allisson/planexec/internal/orchestrator"
)

// ExecutionResponse carries the terminal outcome of a plan execution: the
// state, every produced step result, the ordered audit trail, and the first
// failure's reason.
type ExecutionResponse struct {
	State         orchestrator.State        `json:"state"`
	StepResults   []map[string]any          `json:"step_results"`
	AuditTrail    []*auditDTO.EventResponse `json:"audit_trail"`
	FailureReason string                    `json:"failure_reason,omitempty"`
}

// NewExecutionResponse converts an execution outcome to its response.
func NewExecutionResponse(outcome *orchestrator.Outcome) *ExecutionResponse {
	trail := make([]*auditDTO.EventResponse, len(outcome.AuditTrail))
	for i, event := range outcome.AuditTrail {
		trail[i] = auditDTO.NewEventResponse(event)
	}

	stepResults := outcome.StepResults
	if stepResults == nil {
		stepResults = []map[string]any{}
	}

	return &ExecutionResponse{
		State:         outcome.State,
		StepResults:   stepResults,
		AuditTrail:    trail,
		FailureReason: outcome.FailureReason,
	}
}
