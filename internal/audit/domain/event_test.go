package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(kind EventKind, prevHash string) *Event {
	event := &Event{
		ID:               uuid.Must(uuid.NewV7()),
		Kind:             kind,
		Timestamp:        time.Now().UTC(),
		UserID:           "user-1",
		TokenFingerprint: "fingerprint",
		Domain:           "textanalysis",
		Method:           "analyze",
		Outcome:          OutcomeSuccess,
		PrevHash:         prevHash,
	}
	hash, err := event.ContentHash()
	if err != nil {
		panic(err)
	}
	event.Hash = hash
	return event
}

func TestEvent_ContentHash(t *testing.T) {
	t.Run("Success_Deterministic", func(t *testing.T) {
		event := newTestEvent(TokenValidation, GenesisHash)

		first, err := event.ContentHash()
		require.NoError(t, err)
		second, err := event.ContentHash()
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, first, 64)
	})

	t.Run("Success_FieldChangesHash", func(t *testing.T) {
		event := newTestEvent(TokenValidation, GenesisHash)
		original, err := event.ContentHash()
		require.NoError(t, err)

		event.Reason = "changed"
		changed, err := event.ContentHash()
		require.NoError(t, err)

		assert.NotEqual(t, original, changed)
	})

	t.Run("Success_PrevHashChangesHash", func(t *testing.T) {
		event := newTestEvent(TokenValidation, GenesisHash)
		original, err := event.ContentHash()
		require.NoError(t, err)

		event.PrevHash = "1111111111111111111111111111111111111111111111111111111111111111"
		changed, err := event.ContentHash()
		require.NoError(t, err)

		assert.NotEqual(t, original, changed)
	})

	t.Run("Success_SubMicrosecondPrecisionIgnored", func(t *testing.T) {
		// Database timestamp columns keep microseconds, so anything finer
		// must not participate in the hash.
		event := newTestEvent(TokenValidation, GenesisHash)
		event.Timestamp = time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC)
		original, err := event.ContentHash()
		require.NoError(t, err)

		event.Timestamp = event.Timestamp.Truncate(time.Microsecond)
		truncated, err := event.ContentHash()
		require.NoError(t, err)

		assert.Equal(t, original, truncated)
	})

	t.Run("Success_MicrosecondChangeChangesHash", func(t *testing.T) {
		event := newTestEvent(TokenValidation, GenesisHash)
		original, err := event.ContentHash()
		require.NoError(t, err)

		event.Timestamp = event.Timestamp.Add(time.Microsecond)
		changed, err := event.ContentHash()
		require.NoError(t, err)

		assert.NotEqual(t, original, changed)
	})

	t.Run("Success_NilAndEmptyMetadataDiffer", func(t *testing.T) {
		event := newTestEvent(TokenValidation, GenesisHash)
		event.Metadata = nil
		withNil, err := event.ContentHash()
		require.NoError(t, err)

		event.Metadata = map[string]any{"step": 1}
		withValue, err := event.ContentHash()
		require.NoError(t, err)

		assert.NotEqual(t, withNil, withValue)
	})
}

func TestEvent_Validate(t *testing.T) {
	t.Run("Success_WithSuccessOutcome", func(t *testing.T) {
		event := newTestEvent(ScopeCheck, GenesisHash)
		assert.NoError(t, event.Validate())
	})

	t.Run("Success_DeniedWithReason", func(t *testing.T) {
		event := newTestEvent(ScopeCheck, GenesisHash)
		event.Outcome = OutcomeDenied
		event.Reason = "domain not in token scope"
		assert.NoError(t, event.Validate())
	})

	t.Run("Error_DeniedWithoutReason", func(t *testing.T) {
		event := newTestEvent(ScopeCheck, GenesisHash)
		event.Outcome = OutcomeDenied
		event.Reason = "  "
		assert.ErrorIs(t, event.Validate(), ErrMissingReason)
	})

	t.Run("Error_FailedWithoutReason", func(t *testing.T) {
		event := newTestEvent(OperationAborted, GenesisHash)
		event.Outcome = OutcomeFailed
		assert.ErrorIs(t, event.Validate(), ErrMissingReason)
	})
}

func TestVerifyChain(t *testing.T) {
	buildChain := func(n int) []*Event {
		events := make([]*Event, 0, n)
		prev := GenesisHash
		for i := 0; i < n; i++ {
			event := newTestEvent(ExecutionCompleted, prev)
			events = append(events, event)
			prev = event.Hash
		}
		return events
	}

	t.Run("Success_EmptyChain", func(t *testing.T) {
		assert.NoError(t, VerifyChain(nil))
	})

	t.Run("Success_IntactChain", func(t *testing.T) {
		assert.NoError(t, VerifyChain(buildChain(5)))
	})

	t.Run("Error_MutatedEventField", func(t *testing.T) {
		events := buildChain(5)
		events[2].Reason = "tampered"
		assert.ErrorIs(t, VerifyChain(events), ErrChainBroken)
	})

	t.Run("Error_MutatedHash", func(t *testing.T) {
		events := buildChain(3)
		events[1].Hash = "2222222222222222222222222222222222222222222222222222222222222222"
		assert.ErrorIs(t, VerifyChain(events), ErrChainBroken)
	})

	t.Run("Error_RemovedEvent", func(t *testing.T) {
		events := buildChain(4)
		// Drop the second event; linkage from event 1 to event 2 breaks
		spliced := append([]*Event{events[0]}, events[2:]...)
		assert.ErrorIs(t, VerifyChain(spliced), ErrChainBroken)
	})

	t.Run("Error_FirstEventNotGenesis", func(t *testing.T) {
		events := buildChain(2)
		assert.ErrorIs(t, VerifyChain(events[1:]), ErrChainBroken)
	})
}
