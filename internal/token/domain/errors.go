package domain

import (
	"github.com/allisson/planexec/internal/errors"
)

// Token validation and lifecycle errors.
var (
	// ErrTokenNotFound indicates no token exists for the given fingerprint.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrTokenRevoked indicates the token's revoked flag is set. Revoked
	// tokens fail validation regardless of any other property.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token revoked")

	// ErrTokenExpired indicates the token's expiry timestamp has passed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrUserMismatch indicates the caller's asserted identity does not match
	// the token's owning user.
	ErrUserMismatch = errors.Wrap(errors.ErrUnauthorized, "token does not belong to user")

	// ErrTriggerNotAllowed indicates the invocation's trigger type is not on
	// the token's allowed trigger list.
	ErrTriggerNotAllowed = errors.Wrap(errors.ErrUnauthorized, "trigger type not allowed for token")

	// ErrAlreadyRevoked indicates a revocation was attempted on a token whose
	// revoked flag is already set.
	ErrAlreadyRevoked = errors.Wrap(errors.ErrConflict, "token already revoked")

	// ErrFingerprintExists indicates a token with the same fingerprint is
	// already stored.
	ErrFingerprintExists = errors.Wrap(errors.ErrConflict, "token fingerprint already exists")

	// ErrWindowRequired indicates an issuance requested a per-window frequency
	// limit but no window could be resolved, neither from the input nor from
	// the application default. Such a token would carry an unenforceable cap.
	ErrWindowRequired = errors.Wrap(errors.ErrInvalidInput, "frequency limit requires a window")
)
