// Package usecase defines business logic interfaces for the audit log.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
)

// EventRepository defines persistence operations for audit events. The store
// is append-only: implementations expose no update or delete operation, and
// List must return events in append order.
type EventRepository interface {
	// Create appends a new event. The event's Hash and PrevHash are already
	// computed by the recorder.
	Create(ctx context.Context, event *auditDomain.Event) error

	// Last retrieves the most recently appended event.
	// Returns ErrEventNotFound when the log is empty.
	Last(ctx context.Context) (*auditDomain.Event, error)

	// List retrieves events in append order with pagination.
	List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error)

	// Count returns the total number of events.
	Count(ctx context.Context) (int64, error)
}

// EventInput carries the caller-supplied fields of an audit event. The
// recorder fills in the ID, timestamp, and hash linkage.
type EventInput struct {
	Kind             auditDomain.EventKind
	UserID           string
	TokenFingerprint string
	Domain           string
	Method           string
	Outcome          auditDomain.Outcome
	Reason           string
	Metadata         map[string]any
}

// Recorder appends hash-linked events to the audit log. Implementations must
// serialize appends so PrevHash linkage is never computed against a stale
// tail. Any append failure is ErrWriteFailed and must abort the caller's
// in-flight operation (fail-closed).
type Recorder interface {
	Record(ctx context.Context, input *EventInput) (*auditDomain.Event, error)
}

// AuditLogUseCase exposes the audit log to forensic consumers.
type AuditLogUseCase interface {
	// List retrieves events in append order with pagination.
	List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error)

	// Count returns the total number of events.
	Count(ctx context.Context) (int64, error)

	// VerifyChain recomputes every event hash and checks the prev-hash
	// linkage across the whole log. Returns the number of verified events,
	// and ErrChainBroken (with the failing index) on the first break.
	VerifyChain(ctx context.Context) (int, error)
}
