package intake

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	apperrors "github.com/allisson/planexec/internal/errors"
	planDomain "github.com/allisson/planexec/internal/plan/domain"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// ParseJSON decodes, validates, and builds a plan from a JSON document.
// Unknown fields reject the document.
func ParseJSON(data []byte) (*planDomain.ExecutionPlan, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var document PlanDocument
	if err := decoder.Decode(&document); err != nil {
		return nil, apperrors.Wrap(planDomain.ErrPlanSchema, err.Error())
	}

	return Build(&document)
}

// ParseYAML decodes, validates, and builds a plan from a YAML document.
// Unknown fields reject the document.
func ParseYAML(data []byte) (*planDomain.ExecutionPlan, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var document PlanDocument
	if err := decoder.Decode(&document); err != nil {
		return nil, apperrors.Wrap(planDomain.ErrPlanSchema, err.Error())
	}

	return Build(&document)
}

// Build validates a decoded plan document and constructs the immutable
// execution plan. The first violation rejects the whole document with
// ErrPlanSchema; a valid document is handed to the orchestrator as an opaque
// unit.
func Build(document *PlanDocument) (*planDomain.ExecutionPlan, error) {
	if err := document.Validate(); err != nil {
		return nil, apperrors.Wrap(planDomain.ErrPlanSchema, err.Error())
	}

	steps := make([]planDomain.DomainInvocation, len(document.Steps))
	for i, step := range document.Steps {
		steps[i] = planDomain.DomainInvocation{
			Domain:     step.Domain,
			Method:     step.Method,
			Parameters: step.Parameters,
		}
	}

	bindings := make([]planDomain.DataBinding, len(document.DataBindings))
	for i, binding := range document.DataBindings {
		bindings[i] = planDomain.DataBinding{
			SourceStep:   binding.SourceStep,
			SourcePath:   binding.SourcePath,
			TargetStep:   binding.TargetStep,
			TargetParam:  binding.TargetParam,
			ExpectedType: planDomain.ExpectedType(binding.ExpectedType),
		}
	}

	return planDomain.NewExecutionPlan(
		document.UserID,
		document.TokenFingerprint,
		tokenDomain.TriggerType(document.TriggerType),
		steps,
		bindings,
	)
}
