package dto

import (
	"time"

	"github.com/google/uuid"

	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// IssueTokenResponse carries the result of a token issuance.
// The plain token appears here once and is never retrievable again.
type IssueTokenResponse struct {
	ID          uuid.UUID `json:"id"`
	PlainToken  string    `json:"plain_token"`
	Fingerprint string    `json:"fingerprint"`
}

// NewIssueTokenResponse converts an issuance output to its response.
func NewIssueTokenResponse(output *tokenDomain.IssueTokenOutput) *IssueTokenResponse {
	return &IssueTokenResponse{
		ID:          output.ID,
		PlainToken:  output.PlainToken,
		Fingerprint: output.Fingerprint,
	}
}

// TokenResponse is the external representation of a capability token.
// It never includes the plain token.
type TokenResponse struct {
	ID              uuid.UUID                   `json:"id"`
	Fingerprint     string                      `json:"fingerprint"`
	UserID          string                      `json:"user_id"`
	Scope           []tokenDomain.ScopeDocument `json:"scope"`
	AllowedTriggers []tokenDomain.TriggerType   `json:"allowed_triggers"`
	MaxInvocations  int                         `json:"max_invocations"`
	MaxPerWindow    int                         `json:"max_per_window"`
	WindowSeconds   int64                       `json:"window_seconds"`
	Revoked         bool                        `json:"revoked"`
	IssuedAt        time.Time                   `json:"issued_at"`
	ExpiresAt       *time.Time                  `json:"expires_at,omitempty"`
	FirstUsedAt     *time.Time                  `json:"first_used_at,omitempty"`
}

// NewTokenResponse converts a capability token to its response.
func NewTokenResponse(token *tokenDomain.CapabilityToken) *TokenResponse {
	return &TokenResponse{
		ID:              token.ID,
		Fingerprint:     token.Fingerprint,
		UserID:          token.UserID,
		Scope:           token.Scope,
		AllowedTriggers: token.AllowedTriggers,
		MaxInvocations:  token.Limits.MaxInvocations,
		MaxPerWindow:    token.Limits.MaxPerWindow,
		WindowSeconds:   int64(token.Limits.Window / time.Second),
		Revoked:         token.Revoked,
		IssuedAt:        token.IssuedAt,
		ExpiresAt:       token.ExpiresAt,
		FirstUsedAt:     token.FirstUsedAt,
	}
}
