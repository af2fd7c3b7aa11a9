package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	"github.com/allisson/planexec/internal/metrics"
)

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// List records metrics for audit log listing.
func (a *auditLogUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	start := time.Now()
	events, err := a.next.List(ctx, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "event_list", status)
	a.metrics.RecordDuration(ctx, "audit", "event_list", time.Since(start), status)

	return events, err
}

// Count records metrics for audit log counting.
func (a *auditLogUseCaseWithMetrics) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := a.next.Count(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "event_count", status)
	a.metrics.RecordDuration(ctx, "audit", "event_count", time.Since(start), status)

	return count, err
}

// VerifyChain records metrics for full-chain verification.
func (a *auditLogUseCaseWithMetrics) VerifyChain(ctx context.Context) (int, error) {
	start := time.Now()
	verified, err := a.next.VerifyChain(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "chain_verify", status)
	a.metrics.RecordDuration(ctx, "audit", "chain_verify", time.Since(start), status)

	return verified, err
}
