package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ScopeDocument grants access to a set of methods on a single target domain.
// The method list supports a "*" wildcard that matches every method the
// domain exposes.
type ScopeDocument struct {
	Domain  string   `json:"domain"`  // Target domain name (e.g., "textanalysis")
	Methods []string `json:"methods"` // Allowed method names ("*" matches all)
}

// ResourceLimits caps how often a token may be used.
type ResourceLimits struct {
	// MaxInvocations is the total number of successful invocations the token
	// may perform over its lifetime. Zero means unlimited.
	MaxInvocations int `json:"max_invocations"`

	// MaxPerWindow is the number of invocations allowed within Window.
	// Zero means unlimited.
	MaxPerWindow int `json:"max_per_window"`

	// Window is the sliding window for MaxPerWindow. When zero, the
	// application default window applies.
	Window time.Duration `json:"window"`
}

// CapabilityToken is a scoped, revocable credential authorizing a bounded set
// of domain/method invocations. Issued once by the token authority; the core
// consumes it read-only. Only the revoked flag may change after issuance, and
// only from false to true.
type CapabilityToken struct {
	ID              uuid.UUID       // Unique identifier (UUIDv7)
	Fingerprint     string          // SHA-256 hex of the plain token (never the plain token itself)
	UserID          string          // Owning user identity
	Scope           []ScopeDocument // Allowed domains and per-domain methods
	AllowedTriggers []TriggerType   // Trigger types that may initiate executions
	Limits          ResourceLimits  // Invocation count and frequency caps
	Revoked         bool            // One-way flag; set via revocation only
	IssuedAt        time.Time
	ExpiresAt       *time.Time // Optional expiry (nil means the token never expires)
	FirstUsedAt     *time.Time // Set once, on the token's first successful validation
}

// AllowsDomain reports whether the token's scope covers the target domain.
func (t *CapabilityToken) AllowsDomain(domain string) bool {
	if domain == "" {
		return false
	}
	for _, scope := range t.Scope {
		if scope.Domain == domain {
			return true
		}
	}
	return false
}

// AllowsMethod reports whether the token's scope covers the method on the
// target domain. Both the domain and the method must match; a "*" entry in a
// scope's method list matches any method on that domain.
func (t *CapabilityToken) AllowsMethod(domain, method string) bool {
	if domain == "" || method == "" {
		return false
	}
	for _, scope := range t.Scope {
		if scope.Domain != domain {
			continue
		}
		if slices.Contains(scope.Methods, "*") {
			return true
		}
		if slices.Contains(scope.Methods, method) {
			return true
		}
	}
	return false
}

// AllowsTrigger reports whether the trigger type is on the token's allow-list.
func (t *CapabilityToken) AllowsTrigger(trigger TriggerType) bool {
	return slices.Contains(t.AllowedTriggers, trigger)
}

// IsExpired reports whether the token's expiry has passed at the given time.
// Tokens without an expiry never expire.
func (t *CapabilityToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

// IssueTokenInput contains the parameters for issuing a new capability token.
type IssueTokenInput struct {
	UserID          string
	Scope           []ScopeDocument
	AllowedTriggers []TriggerType
	Limits          ResourceLimits
	ExpiresAt       *time.Time
}

// IssueTokenOutput contains the result of issuing a token.
// SECURITY: the plain token is only returned once; the store keeps only its
// fingerprint.
type IssueTokenOutput struct {
	ID          uuid.UUID
	PlainToken  string
	Fingerprint string
}
