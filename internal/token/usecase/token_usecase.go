package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	auditUseCase "github.com/allisson/planexec/internal/audit/usecase"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
	tokenService "github.com/allisson/planexec/internal/token/service"
)

// tokenUseCase implements TokenUseCase.
type tokenUseCase struct {
	tokenRepo     TokenRepository
	tokenService  tokenService.TokenService
	recorder      auditUseCase.Recorder
	defaultWindow time.Duration
}

// NewTokenUseCase creates a TokenUseCase with the provided dependencies.
// defaultWindow is the sliding window applied to frequency-limited tokens
// issued without one.
func NewTokenUseCase(
	tokenRepo TokenRepository,
	service tokenService.TokenService,
	recorder auditUseCase.Recorder,
	defaultWindow time.Duration,
) TokenUseCase {
	return &tokenUseCase{
		tokenRepo:     tokenRepo,
		tokenService:  service,
		recorder:      recorder,
		defaultWindow: defaultWindow,
	}
}

// Issue creates a new capability token. A frequency-limited token issued
// without a window receives the application default window, so the stored
// limits are always enforceable as-is.
//
// The audit write for TOKEN_ISSUED happens before the token is persisted:
// an issuance that cannot be audited must not produce a usable credential.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *tokenDomain.IssueTokenInput,
) (*tokenDomain.IssueTokenOutput, error) {
	limits := input.Limits
	if limits.MaxPerWindow > 0 && limits.Window == 0 {
		limits.Window = t.defaultWindow
	}
	// A frequency cap without a window cannot be enforced
	if limits.MaxPerWindow > 0 && limits.Window == 0 {
		return nil, tokenDomain.ErrWindowRequired
	}

	plainToken, fingerprint, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	token := &tokenDomain.CapabilityToken{
		ID:              uuid.Must(uuid.NewV7()),
		Fingerprint:     fingerprint,
		UserID:          input.UserID,
		Scope:           input.Scope,
		AllowedTriggers: input.AllowedTriggers,
		Limits:          limits,
		Revoked:         false,
		IssuedAt:        time.Now().UTC(),
		ExpiresAt:       input.ExpiresAt,
	}

	if _, err := t.recorder.Record(ctx, &auditUseCase.EventInput{
		Kind:             auditDomain.TokenIssued,
		UserID:           input.UserID,
		TokenFingerprint: fingerprint,
		Outcome:          auditDomain.OutcomeSuccess,
	}); err != nil {
		return nil, err
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &tokenDomain.IssueTokenOutput{
		ID:          token.ID,
		PlainToken:  plainToken,
		Fingerprint: fingerprint,
	}, nil
}

// Revoke flips the token's revoked flag, one-way, and records TOKEN_REVOKED.
func (t *tokenUseCase) Revoke(ctx context.Context, fingerprint string) error {
	token, err := t.tokenRepo.GetByFingerprint(ctx, fingerprint)
	if err != nil {
		return err
	}
	if token.Revoked {
		return tokenDomain.ErrAlreadyRevoked
	}

	if err := t.tokenRepo.Revoke(ctx, fingerprint); err != nil {
		return err
	}

	_, err = t.recorder.Record(ctx, &auditUseCase.EventInput{
		Kind:             auditDomain.TokenRevoked,
		UserID:           token.UserID,
		TokenFingerprint: fingerprint,
		Outcome:          auditDomain.OutcomeSuccess,
	})
	return err
}

// Get retrieves a token by fingerprint.
func (t *tokenUseCase) Get(ctx context.Context, fingerprint string) (*tokenDomain.CapabilityToken, error) {
	return t.tokenRepo.GetByFingerprint(ctx, fingerprint)
}

// Validate runs the ordered, short-circuiting token checks for a proposed
// invocation. Read-only: the caller records the outcome.
//
// Check order: an unknown fingerprint fails at load; a revoked token fails
// regardless of any other property; then expiry, user match, and trigger
// authorization.
func (t *tokenUseCase) Validate(
	ctx context.Context,
	fingerprint, userID string,
	trigger tokenDomain.TriggerType,
) (*tokenDomain.CapabilityToken, error) {
	token, err := t.tokenRepo.GetByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, err
	}

	if token.Revoked {
		return nil, tokenDomain.ErrTokenRevoked
	}

	if token.IsExpired(time.Now().UTC()) {
		return nil, tokenDomain.ErrTokenExpired
	}

	if token.UserID != userID {
		return nil, tokenDomain.ErrUserMismatch
	}

	if !token.AllowsTrigger(trigger) {
		return nil, tokenDomain.ErrTriggerNotAllowed
	}

	return token, nil
}

// MarkFirstUse records a token's maiden use, once.
func (t *tokenUseCase) MarkFirstUse(ctx context.Context, token *tokenDomain.CapabilityToken) error {
	if token.FirstUsedAt != nil {
		return nil
	}

	usedAt := time.Now().UTC()
	if err := t.tokenRepo.MarkFirstUsed(ctx, token.Fingerprint, usedAt); err != nil {
		return err
	}
	token.FirstUsedAt = &usedAt

	_, err := t.recorder.Record(ctx, &auditUseCase.EventInput{
		Kind:             auditDomain.TokenFirstUsed,
		UserID:           token.UserID,
		TokenFingerprint: token.Fingerprint,
		Outcome:          auditDomain.OutcomeSuccess,
	})
	return err
}
