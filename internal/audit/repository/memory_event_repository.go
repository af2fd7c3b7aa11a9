// Package repository implements audit event persistence.
package repository

import (
	"context"
	"sync"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
)

// MemoryEventRepository implements the append-only event store in process
// memory. Used for single-process deployments and tests. Events are never
// updated or removed.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events []*auditDomain.Event
}

// NewMemoryEventRepository creates an empty in-memory event store.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{}
}

// Create appends a new event.
func (m *MemoryEventRepository) Create(_ context.Context, event *auditDomain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

// Last retrieves the most recently appended event.
func (m *MemoryEventRepository) Last(_ context.Context) (*auditDomain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.events) == 0 {
		return nil, auditDomain.ErrEventNotFound
	}
	return m.events[len(m.events)-1], nil
}

// List retrieves events in append order with pagination.
func (m *MemoryEventRepository) List(_ context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(m.events) || limit <= 0 {
		return []*auditDomain.Event{}, nil
	}

	end := offset + limit
	if end > len(m.events) {
		end = len(m.events)
	}

	// Return a copied slice so callers cannot reorder the log
	page := make([]*auditDomain.Event, end-offset)
	copy(page, m.events[offset:end])
	return page, nil
}

// Count returns the total number of events.
func (m *MemoryEventRepository) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.events)), nil
}
