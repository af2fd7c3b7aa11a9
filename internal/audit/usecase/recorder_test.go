package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	auditRepository "github.com/allisson/planexec/internal/audit/repository"
)

// mockEventRepository is a mock implementation of EventRepository for testing.
type mockEventRepository struct {
	mock.Mock
}

func (m *mockEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepository) Last(ctx context.Context) (*auditDomain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.Event), args.Error(1)
}

func (m *mockEventRepository) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Event), args.Error(1)
}

func (m *mockEventRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func successInput() *EventInput {
	return &EventInput{
		Kind:             auditDomain.ExecutionCompleted,
		UserID:           "user-1",
		TokenFingerprint: "fingerprint",
		Domain:           "textanalysis",
		Method:           "analyze",
		Outcome:          auditDomain.OutcomeSuccess,
	}
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FirstEventLinksToGenesis", func(t *testing.T) {
		repo := auditRepository.NewMemoryEventRepository()
		recorder := NewRecorder(repo)

		event, err := recorder.Record(ctx, successInput())
		require.NoError(t, err)

		assert.Equal(t, auditDomain.GenesisHash, event.PrevHash)
		assert.NotEmpty(t, event.Hash)
		assert.False(t, event.Timestamp.IsZero())

		computed, err := event.ContentHash()
		require.NoError(t, err)
		assert.Equal(t, computed, event.Hash)
	})

	t.Run("Success_EventsChainInOrder", func(t *testing.T) {
		repo := auditRepository.NewMemoryEventRepository()
		recorder := NewRecorder(repo)

		first, err := recorder.Record(ctx, successInput())
		require.NoError(t, err)
		second, err := recorder.Record(ctx, successInput())
		require.NoError(t, err)

		assert.Equal(t, first.Hash, second.PrevHash)

		events, err := repo.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.NoError(t, auditDomain.VerifyChain(events))
	})

	t.Run("Success_ChainVerifiesAfterStorageTimestampRounding", func(t *testing.T) {
		repo := auditRepository.NewMemoryEventRepository()
		recorder := NewRecorder(repo)

		for i := 0; i < 3; i++ {
			event, err := recorder.Record(ctx, successInput())
			require.NoError(t, err)
			// Stamps carry nothing finer than the storage columns keep
			assert.Zero(t, event.Timestamp.Nanosecond()%int(time.Microsecond))
		}

		events, err := repo.List(ctx, 0, 10)
		require.NoError(t, err)

		// Simulate the round trip through a database column that keeps
		// microsecond precision, then verify the chain over what came back
		for _, event := range events {
			event.Timestamp = event.Timestamp.Truncate(time.Microsecond)
		}
		assert.NoError(t, auditDomain.VerifyChain(events))
	})

	t.Run("Success_ResumesFromExistingTail", func(t *testing.T) {
		repo := auditRepository.NewMemoryEventRepository()

		// First recorder writes two events, then a second recorder picks up
		// the tail from storage
		firstRecorder := NewRecorder(repo)
		_, err := firstRecorder.Record(ctx, successInput())
		require.NoError(t, err)
		tail, err := firstRecorder.Record(ctx, successInput())
		require.NoError(t, err)

		secondRecorder := NewRecorder(repo)
		next, err := secondRecorder.Record(ctx, successInput())
		require.NoError(t, err)
		assert.Equal(t, tail.Hash, next.PrevHash)

		events, err := repo.List(ctx, 0, 10)
		require.NoError(t, err)
		assert.NoError(t, auditDomain.VerifyChain(events))
	})

	t.Run("Error_MissingReasonForDeniedOutcome", func(t *testing.T) {
		repo := auditRepository.NewMemoryEventRepository()
		recorder := NewRecorder(repo)

		input := successInput()
		input.Outcome = auditDomain.OutcomeDenied
		input.Reason = ""

		_, err := recorder.Record(ctx, input)
		assert.ErrorIs(t, err, auditDomain.ErrMissingReason)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Error_AppendFailureIsWriteFailure", func(t *testing.T) {
		mockRepo := &mockEventRepository{}
		mockRepo.On("Last", ctx).Return(nil, auditDomain.ErrEventNotFound).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(assert.AnError).Once()

		recorder := NewRecorder(mockRepo)

		_, err := recorder.Record(ctx, successInput())
		assert.ErrorIs(t, err, auditDomain.ErrWriteFailed)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error_FailedAppendDoesNotAdvanceTail", func(t *testing.T) {
		mockRepo := &mockEventRepository{}
		mockRepo.On("Last", ctx).Return(nil, auditDomain.ErrEventNotFound).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(assert.AnError).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil).Once()

		recorder := NewRecorder(mockRepo)

		_, err := recorder.Record(ctx, successInput())
		require.ErrorIs(t, err, auditDomain.ErrWriteFailed)

		// Retry still links to genesis because the failed append never happened
		event, err := recorder.Record(ctx, successInput())
		require.NoError(t, err)
		assert.Equal(t, auditDomain.GenesisHash, event.PrevHash)
		mockRepo.AssertExpectations(t)
	})
}
