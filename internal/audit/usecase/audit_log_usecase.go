package usecase

import (
	"context"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	apperrors "github.com/allisson/planexec/internal/errors"
)

// verifyPageSize is the page size used when streaming the log during chain
// verification.
const verifyPageSize = 500

// auditLogUseCase implements AuditLogUseCase for forensic consumers.
type auditLogUseCase struct {
	eventRepo EventRepository
}

// NewAuditLogUseCase creates an AuditLogUseCase backed by the given repository.
func NewAuditLogUseCase(eventRepo EventRepository) AuditLogUseCase {
	return &auditLogUseCase{eventRepo: eventRepo}
}

// List retrieves events in append order with pagination.
func (a *auditLogUseCase) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	events, err := a.eventRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

// Count returns the total number of events.
func (a *auditLogUseCase) Count(ctx context.Context) (int64, error) {
	count, err := a.eventRepo.Count(ctx)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}
	return count, nil
}

// VerifyChain streams the whole log in append order and verifies the hash
// chain incrementally. The chain provides tamper-evidence only: it detects
// post-hoc edits to history, it does not prove who wrote an event.
func (a *auditLogUseCase) VerifyChain(ctx context.Context) (int, error) {
	verifier := auditDomain.NewChainVerifier()
	offset := 0

	for {
		events, err := a.eventRepo.List(ctx, offset, verifyPageSize)
		if err != nil {
			return verifier.Verified(), apperrors.Wrap(err, "failed to list audit events")
		}
		if len(events) == 0 {
			return verifier.Verified(), nil
		}

		for _, event := range events {
			if err := verifier.Next(event); err != nil {
				return verifier.Verified(), err
			}
		}

		offset += len(events)
	}
}
