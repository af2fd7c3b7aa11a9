// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	tokenDomain "github.com/allisson/planexec/internal/token/domain"
	customValidation "github.com/allisson/planexec/internal/validation"
)

// ScopeDocumentRequest declares one domain and its allowed methods.
type ScopeDocumentRequest struct {
	Domain  string   `json:"domain"`
	Methods []string `json:"methods"`
}

// Validate checks if the scope document is valid.
func (r ScopeDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Domain, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Methods, validation.Required, validation.Length(1, 0)),
	)
}

// IssueTokenRequest contains the parameters for issuing a capability token.
type IssueTokenRequest struct {
	UserID          string                 `json:"user_id"`
	Scope           []ScopeDocumentRequest `json:"scope"`
	AllowedTriggers []string               `json:"allowed_triggers"`
	MaxInvocations  int                    `json:"max_invocations"`
	MaxPerWindow    int                    `json:"max_per_window"`
	WindowSeconds   int64                  `json:"window_seconds"`
	ExpiresAt       *time.Time             `json:"expires_at,omitempty"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Scope, validation.Required, validation.Length(1, 0)),
		validation.Field(&r.AllowedTriggers,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(customValidation.KnownTriggerType),
		),
		validation.Field(&r.MaxInvocations, validation.Min(0)),
		validation.Field(&r.MaxPerWindow, validation.Min(0)),
		validation.Field(&r.WindowSeconds, validation.Min(int64(0))),
	)
}

// ToInput converts the request to the token use case input.
func (r *IssueTokenRequest) ToInput() *tokenDomain.IssueTokenInput {
	scope := make([]tokenDomain.ScopeDocument, len(r.Scope))
	for i, document := range r.Scope {
		scope[i] = tokenDomain.ScopeDocument{Domain: document.Domain, Methods: document.Methods}
	}

	triggers := make([]tokenDomain.TriggerType, len(r.AllowedTriggers))
	for i, trigger := range r.AllowedTriggers {
		triggers[i] = tokenDomain.TriggerType(trigger)
	}

	return &tokenDomain.IssueTokenInput{
		UserID:          r.UserID,
		Scope:           scope,
		AllowedTriggers: triggers,
		Limits: tokenDomain.ResourceLimits{
			MaxInvocations: r.MaxInvocations,
			MaxPerWindow:   r.MaxPerWindow,
			Window:         time.Duration(r.WindowSeconds) * time.Second,
		},
		ExpiresAt: r.ExpiresAt,
	}
}
