package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
)

func buildEvent(t *testing.T, prevHash string) *auditDomain.Event {
	t.Helper()

	event := &auditDomain.Event{
		ID:               uuid.Must(uuid.NewV7()),
		Kind:             auditDomain.ExecutionCompleted,
		Timestamp:        time.Now().UTC(),
		UserID:           "user-1",
		TokenFingerprint: "fingerprint",
		Domain:           "textanalysis",
		Method:           "analyze",
		Outcome:          auditDomain.OutcomeSuccess,
		PrevHash:         prevHash,
	}
	hash, err := event.ContentHash()
	require.NoError(t, err)
	event.Hash = hash
	return event
}

func TestMemoryEventRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EmptyLog", func(t *testing.T) {
		repo := NewMemoryEventRepository()

		_, err := repo.Last(ctx)
		assert.ErrorIs(t, err, auditDomain.ErrEventNotFound)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		events, err := repo.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Success_AppendPreservesOrder", func(t *testing.T) {
		repo := NewMemoryEventRepository()

		first := buildEvent(t, auditDomain.GenesisHash)
		second := buildEvent(t, first.Hash)
		third := buildEvent(t, second.Hash)

		for _, event := range []*auditDomain.Event{first, second, third} {
			require.NoError(t, repo.Create(ctx, event))
		}

		last, err := repo.Last(ctx)
		require.NoError(t, err)
		assert.Equal(t, third.ID, last.ID)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		events, err := repo.List(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, first.ID, events[0].ID)
		assert.Equal(t, second.ID, events[1].ID)
		assert.Equal(t, third.ID, events[2].ID)

		assert.NoError(t, auditDomain.VerifyChain(events))
	})

	t.Run("Success_Pagination", func(t *testing.T) {
		repo := NewMemoryEventRepository()

		prev := auditDomain.GenesisHash
		for i := 0; i < 5; i++ {
			event := buildEvent(t, prev)
			require.NoError(t, repo.Create(ctx, event))
			prev = event.Hash
		}

		page, err := repo.List(ctx, 2, 2)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		tail, err := repo.List(ctx, 4, 10)
		require.NoError(t, err)
		assert.Len(t, tail, 1)

		beyond, err := repo.List(ctx, 10, 10)
		require.NoError(t, err)
		assert.Empty(t, beyond)
	})
}
