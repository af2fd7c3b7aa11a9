package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

func buildToken(fingerprint string) *tokenDomain.CapabilityToken {
	return &tokenDomain.CapabilityToken{
		ID:          uuid.Must(uuid.NewV7()),
		Fingerprint: fingerprint,
		UserID:      "user-1",
		Scope: []tokenDomain.ScopeDocument{
			{Domain: "textanalysis", Methods: []string{"analyze"}},
		},
		AllowedTriggers: []tokenDomain.TriggerType{tokenDomain.ManualTrigger},
		Limits:          tokenDomain.ResourceLimits{MaxInvocations: 5, MaxPerWindow: 2, Window: time.Minute},
		IssuedAt:        time.Now().UTC(),
	}
}

func TestMemoryTokenRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreateAndGet", func(t *testing.T) {
		repo := NewMemoryTokenRepository()
		token := buildToken("fp-1")

		require.NoError(t, repo.Create(ctx, token))

		got, err := repo.GetByFingerprint(ctx, "fp-1")
		require.NoError(t, err)
		assert.Equal(t, token.ID, got.ID)
		assert.Equal(t, token.Scope, got.Scope)
	})

	t.Run("Error_DuplicateFingerprint", func(t *testing.T) {
		repo := NewMemoryTokenRepository()
		require.NoError(t, repo.Create(ctx, buildToken("fp-1")))

		err := repo.Create(ctx, buildToken("fp-1"))
		assert.ErrorIs(t, err, tokenDomain.ErrFingerprintExists)
	})

	t.Run("Error_UnknownFingerprint", func(t *testing.T) {
		repo := NewMemoryTokenRepository()

		_, err := repo.GetByFingerprint(ctx, "missing")
		assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
	})

	t.Run("Success_StoredTokenIsolatedFromCaller", func(t *testing.T) {
		repo := NewMemoryTokenRepository()
		token := buildToken("fp-1")
		require.NoError(t, repo.Create(ctx, token))

		// Mutating the caller's copy must not affect the stored token
		token.Scope[0].Methods[0] = "mutated"
		token.Revoked = true

		got, err := repo.GetByFingerprint(ctx, "fp-1")
		require.NoError(t, err)
		assert.Equal(t, "analyze", got.Scope[0].Methods[0])
		assert.False(t, got.Revoked)
	})

	t.Run("Success_RevokeIsOneWay", func(t *testing.T) {
		repo := NewMemoryTokenRepository()
		require.NoError(t, repo.Create(ctx, buildToken("fp-1")))

		require.NoError(t, repo.Revoke(ctx, "fp-1"))

		got, err := repo.GetByFingerprint(ctx, "fp-1")
		require.NoError(t, err)
		assert.True(t, got.Revoked)

		err = repo.Revoke(ctx, "fp-1")
		assert.ErrorIs(t, err, tokenDomain.ErrAlreadyRevoked)
	})

	t.Run("Error_RevokeUnknownToken", func(t *testing.T) {
		repo := NewMemoryTokenRepository()
		assert.ErrorIs(t, repo.Revoke(ctx, "missing"), tokenDomain.ErrTokenNotFound)
	})

	t.Run("Success_MarkFirstUsedOnce", func(t *testing.T) {
		repo := NewMemoryTokenRepository()
		require.NoError(t, repo.Create(ctx, buildToken("fp-1")))

		first := time.Now().UTC()
		require.NoError(t, repo.MarkFirstUsed(ctx, "fp-1", first))

		// Second mark is a no-op
		later := first.Add(time.Hour)
		require.NoError(t, repo.MarkFirstUsed(ctx, "fp-1", later))

		got, err := repo.GetByFingerprint(ctx, "fp-1")
		require.NoError(t, err)
		require.NotNil(t, got.FirstUsedAt)
		assert.Equal(t, first, *got.FirstUsedAt)
	})
}
