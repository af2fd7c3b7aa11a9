// Package domain defines the execution plan model.
//
// An execution plan is a fixed, ordered list of domain invocations plus the
// explicit data bindings that flow earlier step results into later step
// parameters. Plans are immutable after construction: step order is never
// reordered, branched, or looped during execution.
package domain

import (
	apperrors "github.com/allisson/planexec/internal/errors"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// DomainInvocation is one plan step: a method call against a named domain
// handler with a structural parameter mapping.
type DomainInvocation struct {
	Domain     string
	Method     string
	Parameters map[string]any
}

// DataBinding declares, at plan time, that a later step's parameter is
// populated from an earlier step's result. The value is extracted via a
// dotted path into the source step's result and checked against the declared
// expected type when the target step is reached.
type DataBinding struct {
	SourceStep   int
	SourcePath   string
	TargetStep   int
	TargetParam  string
	ExpectedType ExpectedType
}

// ExecutionPlan is an immutable, validated plan ready for execution. Fields
// are unexported and only reachable through copying accessors, so no caller
// can alter step order or parameters after construction.
type ExecutionPlan struct {
	userID           string
	tokenFingerprint string
	trigger          tokenDomain.TriggerType
	steps            []DomainInvocation
	bindings         []DataBinding
}

// NewExecutionPlan validates the structural invariants and builds an
// immutable plan. Steps and parameters are deep-copied, so later mutation of
// the caller's values cannot reach the plan. Violations return ErrPlanSchema
// (or a more specific error wrapping it for binding direction).
func NewExecutionPlan(
	userID string,
	tokenFingerprint string,
	trigger tokenDomain.TriggerType,
	steps []DomainInvocation,
	bindings []DataBinding,
) (*ExecutionPlan, error) {
	if userID == "" {
		return nil, apperrors.Wrap(ErrPlanSchema, "user_id is required")
	}
	if tokenFingerprint == "" {
		return nil, apperrors.Wrap(ErrPlanSchema, "token_fingerprint is required")
	}
	if !tokenDomain.IsKnownTriggerType(string(trigger)) {
		return nil, apperrors.Wrapf(ErrPlanSchema, "unknown trigger type %q", trigger)
	}
	if len(steps) == 0 {
		return nil, apperrors.Wrap(ErrPlanSchema, "plan must have at least one step")
	}

	copiedSteps := make([]DomainInvocation, len(steps))
	for i, step := range steps {
		if step.Domain == "" {
			return nil, apperrors.Wrapf(ErrPlanSchema, "step %d: domain is required", i)
		}
		if step.Method == "" {
			return nil, apperrors.Wrapf(ErrPlanSchema, "step %d: method is required", i)
		}

		params, err := DeepCopyParams(step.Parameters)
		if err != nil {
			return nil, apperrors.Wrapf(err, "step %d: parameters", i)
		}
		copiedSteps[i] = DomainInvocation{Domain: step.Domain, Method: step.Method, Parameters: params}
	}

	copiedBindings := make([]DataBinding, len(bindings))
	for i, binding := range bindings {
		if binding.SourceStep < 0 || binding.SourceStep >= len(steps) {
			return nil, apperrors.Wrapf(ErrPlanSchema, "binding %d: source_step %d out of range", i, binding.SourceStep)
		}
		if binding.TargetStep < 0 || binding.TargetStep >= len(steps) {
			return nil, apperrors.Wrapf(ErrPlanSchema, "binding %d: target_step %d out of range", i, binding.TargetStep)
		}
		if binding.TargetStep <= binding.SourceStep {
			return nil, apperrors.Wrapf(
				ErrBindingNotForward,
				"binding %d: target_step %d must be greater than source_step %d",
				i, binding.TargetStep, binding.SourceStep,
			)
		}
		if binding.SourcePath == "" {
			return nil, apperrors.Wrapf(ErrPlanSchema, "binding %d: source_path is required", i)
		}
		if binding.TargetParam == "" {
			return nil, apperrors.Wrapf(ErrPlanSchema, "binding %d: target_param is required", i)
		}
		if !IsKnownExpectedType(string(binding.ExpectedType)) {
			return nil, apperrors.Wrapf(ErrPlanSchema, "binding %d: unknown expected_type %q", i, binding.ExpectedType)
		}
		copiedBindings[i] = binding
	}

	return &ExecutionPlan{
		userID:           userID,
		tokenFingerprint: tokenFingerprint,
		trigger:          trigger,
		steps:            copiedSteps,
		bindings:         copiedBindings,
	}, nil
}

// UserID returns the identity asserting ownership of this plan.
func (e *ExecutionPlan) UserID() string {
	return e.userID
}

// TokenFingerprint returns the fingerprint of the capability token the plan
// executes under.
func (e *ExecutionPlan) TokenFingerprint() string {
	return e.tokenFingerprint
}

// Trigger returns how the execution was initiated.
func (e *ExecutionPlan) Trigger() tokenDomain.TriggerType {
	return e.trigger
}

// StepCount returns the number of steps in the plan.
func (e *ExecutionPlan) StepCount() int {
	return len(e.steps)
}

// Step returns a copy of step i with deep-copied parameters. Panics if i is
// out of range, matching slice semantics.
func (e *ExecutionPlan) Step(i int) DomainInvocation {
	step := e.steps[i]
	// Parameters were validated structural at construction; the copy cannot fail.
	params, _ := DeepCopyParams(step.Parameters)
	return DomainInvocation{Domain: step.Domain, Method: step.Method, Parameters: params}
}

// BindingsForTarget returns the bindings whose target is step i, in
// declaration order.
func (e *ExecutionPlan) BindingsForTarget(i int) []DataBinding {
	var matched []DataBinding
	for _, binding := range e.bindings {
		if binding.TargetStep == i {
			matched = append(matched, binding)
		}
	}
	return matched
}

// Bindings returns a copy of every data binding in declaration order.
func (e *ExecutionPlan) Bindings() []DataBinding {
	copied := make([]DataBinding, len(e.bindings))
	copy(copied, e.bindings)
	return copied
}
