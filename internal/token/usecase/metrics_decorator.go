package usecase

import (
	"context"
	"time"

	"github.com/allisson/planexec/internal/metrics"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *tokenDomain.IssueTokenInput,
) (*tokenDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tokens", "token_issue", status)
	t.metrics.RecordDuration(ctx, "tokens", "token_issue", time.Since(start), status)

	return output, err
}

// Revoke records metrics for token revocation.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, fingerprint string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, fingerprint)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tokens", "token_revoke", status)
	t.metrics.RecordDuration(ctx, "tokens", "token_revoke", time.Since(start), status)

	return err
}

// Get records metrics for token retrieval.
func (t *tokenUseCaseWithMetrics) Get(
	ctx context.Context,
	fingerprint string,
) (*tokenDomain.CapabilityToken, error) {
	start := time.Now()
	token, err := t.next.Get(ctx, fingerprint)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tokens", "token_get", status)
	t.metrics.RecordDuration(ctx, "tokens", "token_get", time.Since(start), status)

	return token, err
}

// Validate records metrics for the token validation gate.
func (t *tokenUseCaseWithMetrics) Validate(
	ctx context.Context,
	fingerprint, userID string,
	trigger tokenDomain.TriggerType,
) (*tokenDomain.CapabilityToken, error) {
	start := time.Now()
	token, err := t.next.Validate(ctx, fingerprint, userID, trigger)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tokens", "token_validate", status)
	t.metrics.RecordDuration(ctx, "tokens", "token_validate", time.Since(start), status)

	return token, err
}

// MarkFirstUse records metrics for maiden-use marking.
func (t *tokenUseCaseWithMetrics) MarkFirstUse(ctx context.Context, token *tokenDomain.CapabilityToken) error {
	start := time.Now()
	err := t.next.MarkFirstUse(ctx, token)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tokens", "token_mark_first_use", status)
	t.metrics.RecordDuration(ctx, "tokens", "token_mark_first_use", time.Since(start), status)

	return err
}
