// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/planexec/internal/errors"
	planDomain "github.com/allisson/planexec/internal/plan/domain"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// KnownTriggerType validates that a string is one of the enumerated trigger types
var KnownTriggerType = validation.NewStringRuleWithError(
	tokenDomain.IsKnownTriggerType,
	validation.NewError("validation_trigger_type", "must be one of: manual, scheduled, webhook, api"),
)

// KnownExpectedType validates that a string is one of the enumerated binding types
var KnownExpectedType = validation.NewStringRuleWithError(
	planDomain.IsKnownExpectedType,
	validation.NewError("validation_expected_type", "must be one of: string, number, boolean, object, array, any"),
)

// StructuralValue validates that a value is representable as a plain
// structural value (maps, slices, strings, numbers, booleans, null) so it
// can be deep-copied for parameter isolation.
type StructuralValue struct{}

// Validate checks if the value is structural
func (s StructuralValue) Validate(value interface{}) error {
	if _, err := planDomain.DeepCopyValue(value); err != nil {
		return validation.NewError("validation_structural_value", "must be a structural value")
	}
	return nil
}
