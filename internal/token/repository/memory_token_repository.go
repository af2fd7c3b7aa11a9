// Package repository implements capability token persistence.
package repository

import (
	"context"
	"sync"
	"time"

	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// MemoryTokenRepository implements the token store in process memory.
// Used for single-process deployments and tests.
type MemoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*tokenDomain.CapabilityToken
}

// NewMemoryTokenRepository creates an empty in-memory token store.
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{
		tokens: make(map[string]*tokenDomain.CapabilityToken),
	}
}

// Create stores a newly issued token.
func (m *MemoryTokenRepository) Create(_ context.Context, token *tokenDomain.CapabilityToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tokens[token.Fingerprint]; exists {
		return tokenDomain.ErrFingerprintExists
	}

	stored := cloneToken(token)
	m.tokens[token.Fingerprint] = stored
	return nil
}

// GetByFingerprint retrieves a token by its fingerprint.
func (m *MemoryTokenRepository) GetByFingerprint(
	_ context.Context,
	fingerprint string,
) (*tokenDomain.CapabilityToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, exists := m.tokens[fingerprint]
	if !exists {
		return nil, tokenDomain.ErrTokenNotFound
	}
	return cloneToken(token), nil
}

// Revoke sets the revoked flag, one-way.
func (m *MemoryTokenRepository) Revoke(_ context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, exists := m.tokens[fingerprint]
	if !exists {
		return tokenDomain.ErrTokenNotFound
	}
	if token.Revoked {
		return tokenDomain.ErrAlreadyRevoked
	}

	token.Revoked = true
	return nil
}

// MarkFirstUsed records the token's first use, once.
func (m *MemoryTokenRepository) MarkFirstUsed(_ context.Context, fingerprint string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, exists := m.tokens[fingerprint]
	if !exists {
		return tokenDomain.ErrTokenNotFound
	}
	if token.FirstUsedAt != nil {
		return nil
	}

	token.FirstUsedAt = &usedAt
	return nil
}

// cloneToken deep-copies a token so callers can never mutate stored scope or
// limits through a shared reference.
func cloneToken(token *tokenDomain.CapabilityToken) *tokenDomain.CapabilityToken {
	clone := *token

	clone.Scope = make([]tokenDomain.ScopeDocument, len(token.Scope))
	for i, scope := range token.Scope {
		methods := make([]string, len(scope.Methods))
		copy(methods, scope.Methods)
		clone.Scope[i] = tokenDomain.ScopeDocument{Domain: scope.Domain, Methods: methods}
	}

	clone.AllowedTriggers = make([]tokenDomain.TriggerType, len(token.AllowedTriggers))
	copy(clone.AllowedTriggers, token.AllowedTriggers)

	if token.ExpiresAt != nil {
		expiresAt := *token.ExpiresAt
		clone.ExpiresAt = &expiresAt
	}
	if token.FirstUsedAt != nil {
		firstUsedAt := *token.FirstUsedAt
		clone.FirstUsedAt = &firstUsedAt
	}

	return &clone
}
