package domain

import (
	"github.com/allisson/planexec/internal/errors"
)

// Audit log errors.
var (
	// ErrEventNotFound indicates no audit event exists for the given ID.
	ErrEventNotFound = errors.Wrap(errors.ErrNotFound, "audit event not found")

	// ErrWriteFailed indicates an append could not complete. The write is
	// fatal to the in-flight operation: a domain side effect must never be
	// considered to have happened without a successful audit write.
	ErrWriteFailed = errors.Wrap(errors.ErrUnavailable, "audit write failed")

	// ErrMissingReason indicates an event with a non-success outcome was
	// built without a human-readable reason.
	ErrMissingReason = errors.Wrap(errors.ErrInvalidInput, "audit event reason required for non-success outcome")

	// ErrChainBroken indicates the hash chain does not verify.
	ErrChainBroken = errors.New("audit chain broken")
)
