// Package usecase defines business logic interfaces for capability tokens.
package usecase

import (
	"context"
	"time"

	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// TokenRepository defines persistence operations for capability tokens.
// Scope and limits are immutable after Create; the only permitted mutations
// are the one-way revoked flag and the once-only first-used timestamp.
type TokenRepository interface {
	// Create stores a newly issued token.
	Create(ctx context.Context, token *tokenDomain.CapabilityToken) error

	// GetByFingerprint retrieves a token by its fingerprint.
	// Returns ErrTokenNotFound if no token matches.
	GetByFingerprint(ctx context.Context, fingerprint string) (*tokenDomain.CapabilityToken, error)

	// Revoke sets the revoked flag. Returns ErrTokenNotFound if no token
	// matches and ErrAlreadyRevoked if the flag is already set.
	Revoke(ctx context.Context, fingerprint string) error

	// MarkFirstUsed records the token's first successful validation time.
	// A no-op if the timestamp is already set.
	MarkFirstUsed(ctx context.Context, fingerprint string, usedAt time.Time) error
}

// TokenUseCase is the token authority surface: it issues and revokes tokens
// and validates them on behalf of the gate pipeline. Issuance policy itself
// (who may be granted what) lives outside the core.
type TokenUseCase interface {
	// Issue creates a new capability token and records a TOKEN_ISSUED audit
	// event. The plain token is only returned once.
	Issue(ctx context.Context, input *tokenDomain.IssueTokenInput) (*tokenDomain.IssueTokenOutput, error)

	// Revoke flips a token's revoked flag (one-way) and records a
	// TOKEN_REVOKED audit event.
	Revoke(ctx context.Context, fingerprint string) error

	// Get retrieves a token by fingerprint.
	Get(ctx context.Context, fingerprint string) (*tokenDomain.CapabilityToken, error)

	// Validate runs the ordered token checks for a proposed invocation:
	// existence, revocation, expiry, user match, trigger authorization. The
	// check is read-only; the caller records the outcome in the audit log.
	Validate(
		ctx context.Context,
		fingerprint, userID string,
		trigger tokenDomain.TriggerType,
	) (*tokenDomain.CapabilityToken, error)

	// MarkFirstUse records the token's first use, once, emitting a
	// TOKEN_FIRST_USED audit event. Subsequent calls are no-ops.
	MarkFirstUse(ctx context.Context, token *tokenDomain.CapabilityToken) error
}
