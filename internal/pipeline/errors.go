package pipeline

import (
	apperrors "github.com/allisson/planexec/internal/errors"
)

var (
	// ErrScopeViolation indicates the target domain or method is outside the
	// token's scope.
	ErrScopeViolation = apperrors.Wrap(apperrors.ErrForbidden, "scope violation")

	// ErrResourceLimitExceeded indicates the token's invocation count or
	// per-window frequency limit is exhausted.
	ErrResourceLimitExceeded = apperrors.Wrap(apperrors.ErrForbidden, "resource limit exceeded")

	// ErrDataBoundaryViolation indicates the step's parameters could not be
	// isolated for the domain handler.
	ErrDataBoundaryViolation = apperrors.Wrap(apperrors.ErrForbidden, "data boundary violation")

	// ErrAuthorityBoundaryViolation indicates the requested method or the
	// isolated parameters match the forbidden-operation list.
	ErrAuthorityBoundaryViolation = apperrors.Wrap(apperrors.ErrForbidden, "authority boundary violation")
)
