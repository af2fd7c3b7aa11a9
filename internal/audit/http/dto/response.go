// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
)

// EventResponse is the external representation of an audit event.
type EventResponse struct {
	ID               uuid.UUID             `json:"id"`
	Kind             auditDomain.EventKind `json:"kind"`
	Timestamp        time.Time             `json:"timestamp"`
	UserID           string                `json:"user_id"`
	TokenFingerprint string                `json:"token_fingerprint"`
	Domain           string                `json:"domain,omitempty"`
	Method           string                `json:"method,omitempty"`
	Outcome          auditDomain.Outcome   `json:"outcome"`
	Reason           string                `json:"reason,omitempty"`
	Metadata         map[string]any        `json:"metadata,omitempty"`
	Hash             string                `json:"hash"`
	PrevHash         string                `json:"prev_hash"`
}

// NewEventResponse converts an audit event to its response.
func NewEventResponse(event *auditDomain.Event) *EventResponse {
	return &EventResponse{
		ID:               event.ID,
		Kind:             event.Kind,
		Timestamp:        event.Timestamp,
		UserID:           event.UserID,
		TokenFingerprint: event.TokenFingerprint,
		Domain:           event.Domain,
		Method:           event.Method,
		Outcome:          event.Outcome,
		Reason:           event.Reason,
		Metadata:         event.Metadata,
		Hash:             event.Hash,
		PrevHash:         event.PrevHash,
	}
}

// ListEventsResponse carries a page of audit events.
type ListEventsResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int64            `json:"total"`
	Offset int              `json:"offset"`
	Limit  int              `json:"limit"`
}

// VerifyChainResponse carries the result of a full-chain verification.
type VerifyChainResponse struct {
	ChainIntact    bool   `json:"chain_intact"`
	VerifiedEvents int    `json:"verified_events"`
	Reason         string `json:"reason,omitempty"`
}
