package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/planexec/internal/errors"
)

// SchedulerHandler manages a simple in-process event calendar. It keeps its
// own state only; nothing outside this handler can reach it.
type SchedulerHandler struct {
	mu     sync.Mutex
	events []map[string]any
}

// NewSchedulerHandler creates the scheduler domain handler.
func NewSchedulerHandler() *SchedulerHandler {
	return &SchedulerHandler{}
}

// Name returns the domain name.
func (s *SchedulerHandler) Name() string {
	return "scheduler"
}

// Methods returns the implemented method names.
func (s *SchedulerHandler) Methods() []string {
	return []string{"create_event", "list_events"}
}

// Invoke dispatches to the requested method.
func (s *SchedulerHandler) Invoke(
	_ context.Context,
	method string,
	params map[string]any,
) (map[string]any, error) {
	switch method {
	case "create_event":
		return s.createEvent(params)
	case "list_events":
		return s.listEvents(), nil
	default:
		return nil, apperrors.Wrapf(ErrUnknownMethod, "method %q", method)
	}
}

func (s *SchedulerHandler) createEvent(params map[string]any) (map[string]any, error) {
	title, err := stringParam(params, "title")
	if err != nil {
		return nil, err
	}

	event := map[string]any{
		"event_id":   uuid.Must(uuid.NewV7()).String(),
		"title":      title,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if description, ok := params["description"].(string); ok {
		event["description"] = description
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()

	return event, nil
}

func (s *SchedulerHandler) listEvents() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]any, len(s.events))
	for i, event := range s.events {
		copied := make(map[string]any, len(event))
		for key, value := range event {
			copied[key] = value
		}
		events[i] = copied
	}

	return map[string]any{"events": events, "count": len(events)}
}
