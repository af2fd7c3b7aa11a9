package handler

import (
	apperrors "github.com/allisson/planexec/internal/errors"
)

var (
	// ErrUnknownDomain indicates no handler is registered for the requested
	// domain.
	ErrUnknownDomain = apperrors.Wrap(apperrors.ErrNotFound, "unknown domain")

	// ErrUnknownMethod indicates the handler does not implement the requested
	// method.
	ErrUnknownMethod = apperrors.Wrap(apperrors.ErrNotFound, "unknown method")

	// ErrDomainExecution indicates the handler failed while executing. The
	// in-flight plan aborts; there is no retry.
	ErrDomainExecution = apperrors.Wrap(apperrors.ErrAborted, "domain execution failed")
)
