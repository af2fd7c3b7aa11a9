package usecase

import (
	"errors"
	"sync"
	"time"

	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	apperrors "github.com/allisson/planexec/internal/errors"
)

// recorder implements Recorder with a single-writer append protocol: a mutex
// serializes appends and the tail hash is cached between them, so PrevHash is
// never computed against a stale tail even when multiple orchestrator
// instances share one log.
type recorder struct {
	eventRepo EventRepository

	mu         sync.Mutex
	tailHash   string
	tailLoaded bool
}

// NewRecorder creates a Recorder backed by the given repository.
func NewRecorder(eventRepo EventRepository) Recorder {
	return &recorder{eventRepo: eventRepo}
}

// Record builds, seals, and appends a new audit event. The event links to the
// current tail (or the genesis value for an empty log). A failed append
// leaves the cached tail untouched and returns ErrWriteFailed: the caller
// must treat the in-flight operation as aborted.
func (r *recorder) Record(ctx context.Context, input *EventInput) (*auditDomain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.tailLoaded {
		if err := r.loadTail(ctx); err != nil {
			return nil, err
		}
	}

	// Microsecond precision matches the storage timestamp columns, so the
	// stamped value is exactly what a later verification will read back.
	event := &auditDomain.Event{
		ID:               uuid.Must(uuid.NewV7()),
		Kind:             input.Kind,
		Timestamp:        time.Now().UTC().Truncate(time.Microsecond),
		UserID:           input.UserID,
		TokenFingerprint: input.TokenFingerprint,
		Domain:           input.Domain,
		Method:           input.Method,
		Outcome:          input.Outcome,
		Reason:           input.Reason,
		Metadata:         input.Metadata,
		PrevHash:         r.tailHash,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	hash, err := event.ContentHash()
	if err != nil {
		return nil, apperrors.Wrap(auditDomain.ErrWriteFailed, err.Error())
	}
	event.Hash = hash

	if err := r.eventRepo.Create(ctx, event); err != nil {
		return nil, apperrors.Wrap(auditDomain.ErrWriteFailed, err.Error())
	}

	r.tailHash = event.Hash
	return event, nil
}

// loadTail initializes the cached tail hash from the repository.
func (r *recorder) loadTail(ctx context.Context) error {
	last, err := r.eventRepo.Last(ctx)
	if err != nil {
		if errors.Is(err, auditDomain.ErrEventNotFound) {
			r.tailHash = auditDomain.GenesisHash
			r.tailLoaded = true
			return nil
		}
		return apperrors.Wrap(auditDomain.ErrWriteFailed, err.Error())
	}

	r.tailHash = last.Hash
	r.tailLoaded = true
	return nil
}
