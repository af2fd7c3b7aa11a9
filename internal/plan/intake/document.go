// Package intake validates externally supplied plan documents and builds
// immutable execution plans from them.
//
// Validation is a pure single pass over the document: the first violation
// rejects the document wholesale with no partial acceptance, and re-running
// intake on the same document always yields the same rejection. Intake never
// checks tokens, scopes, or resource limits; those belong exclusively to the
// orchestrator's gate pipeline.
package intake

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/planexec/internal/validation"
)

// StepDocument is one step of an externally supplied plan.
type StepDocument struct {
	Domain     string         `json:"domain" yaml:"domain"`
	Method     string         `json:"method" yaml:"method"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
}

// Validate checks if the step is structurally well-formed.
func (s StepDocument) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Domain, validation.Required, customValidation.NotBlank),
		validation.Field(&s.Method, validation.Required, customValidation.NotBlank),
		validation.Field(&s.Parameters, customValidation.StructuralValue{}),
	)
}

// BindingDocument is one data binding declaration of an externally supplied
// plan.
type BindingDocument struct {
	SourceStep   int    `json:"source_step" yaml:"source_step"`
	SourcePath   string `json:"source_path" yaml:"source_path"`
	TargetStep   int    `json:"target_step" yaml:"target_step"`
	TargetParam  string `json:"target_param" yaml:"target_param"`
	ExpectedType string `json:"expected_type" yaml:"expected_type"`
}

// Validate checks if the binding is structurally well-formed. Index range and
// the forward-flow constraint are enforced at plan construction, where the
// step count is known.
func (b BindingDocument) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.SourceStep, validation.Min(0)),
		validation.Field(&b.SourcePath, validation.Required, customValidation.NotBlank),
		validation.Field(&b.TargetStep, validation.Min(0)),
		validation.Field(&b.TargetParam, validation.Required, customValidation.NotBlank),
		validation.Field(&b.ExpectedType, validation.Required, customValidation.KnownExpectedType),
	)
}

// PlanDocument is the external representation of an execution plan, as
// consumed from the HTTP API or a plan file.
type PlanDocument struct {
	UserID           string            `json:"user_id" yaml:"user_id"`
	TokenFingerprint string            `json:"token_fingerprint" yaml:"token_fingerprint"`
	TriggerType      string            `json:"trigger_type" yaml:"trigger_type"`
	Steps            []StepDocument    `json:"steps" yaml:"steps"`
	DataBindings     []BindingDocument `json:"data_bindings,omitempty" yaml:"data_bindings,omitempty"`
}

// Validate checks if the plan document is structurally well-formed.
func (d *PlanDocument) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.UserID, validation.Required, customValidation.NotBlank),
		validation.Field(&d.TokenFingerprint, validation.Required, customValidation.NoWhitespace, customValidation.NotBlank),
		validation.Field(&d.TriggerType, validation.Required, customValidation.KnownTriggerType),
		validation.Field(&d.Steps, validation.Required, validation.Length(1, 0)),
		validation.Field(&d.DataBindings),
	)
}
