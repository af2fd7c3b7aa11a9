package domain

import (
	apperrors "github.com/allisson/planexec/internal/errors"
)

var (
	// ErrPlanSchema indicates a plan document failed structural validation.
	// The document is rejected wholesale; no partial acceptance.
	ErrPlanSchema = apperrors.Wrap(apperrors.ErrInvalidInput, "plan schema violation")

	// ErrNonStructuralValue indicates a parameter value cannot be represented
	// as a plain structural value (maps, slices, strings, numbers, booleans,
	// null) and therefore cannot be isolated by deep copy.
	ErrNonStructuralValue = apperrors.Wrap(apperrors.ErrInvalidInput, "value is not structural")

	// ErrBindingNotForward indicates a data binding whose target step does not
	// come strictly after its source step. A schema violation: rejected at
	// plan construction, never at run time.
	ErrBindingNotForward = apperrors.Wrap(ErrPlanSchema, "data binding must flow strictly forward")

	// ErrBindingResolution indicates a binding's source path is absent from
	// the source step's result, or the extracted value does not match the
	// binding's expected type.
	ErrBindingResolution = apperrors.Wrap(apperrors.ErrInvalidInput, "binding resolution failed")
)
