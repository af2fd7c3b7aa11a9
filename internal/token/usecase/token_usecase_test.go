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
	auditUseCase "github.com/allisson/planexec/internal/audit/usecase"
	apperrors "github.com/allisson/planexec/internal/errors"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
	tokenRepository "github.com/allisson/planexec/internal/token/repository"
	tokenService "github.com/allisson/planexec/internal/token/service"
)

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, token *tokenDomain.CapabilityToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepository) GetByFingerprint(
	ctx context.Context,
	fingerprint string,
) (*tokenDomain.CapabilityToken, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.CapabilityToken), args.Error(1)
}

func (m *mockTokenRepository) Revoke(ctx context.Context, fingerprint string) error {
	args := m.Called(ctx, fingerprint)
	return args.Error(0)
}

func (m *mockTokenRepository) MarkFirstUsed(ctx context.Context, fingerprint string, usedAt time.Time) error {
	args := m.Called(ctx, fingerprint, usedAt)
	return args.Error(0)
}

type tokenFixture struct {
	useCase   TokenUseCase
	eventRepo *auditRepository.MemoryEventRepository
}

func newTokenFixture() *tokenFixture {
	eventRepo := auditRepository.NewMemoryEventRepository()
	return &tokenFixture{
		useCase: NewTokenUseCase(
			tokenRepository.NewMemoryTokenRepository(),
			tokenService.NewTokenService(),
			auditUseCase.NewRecorder(eventRepo),
			30*time.Second,
		),
		eventRepo: eventRepo,
	}
}

func (f *tokenFixture) issue(t *testing.T, input *tokenDomain.IssueTokenInput) *tokenDomain.IssueTokenOutput {
	t.Helper()
	output, err := f.useCase.Issue(context.Background(), input)
	require.NoError(t, err)
	return output
}

func (f *tokenFixture) events(t *testing.T) []*auditDomain.Event {
	t.Helper()
	events, err := f.eventRepo.List(context.Background(), 0, 100)
	require.NoError(t, err)
	return events
}

func issueInput() *tokenDomain.IssueTokenInput {
	return &tokenDomain.IssueTokenInput{
		UserID: "user-1",
		Scope: []tokenDomain.ScopeDocument{
			{Domain: "textanalysis", Methods: []string{"analyze"}},
		},
		AllowedTriggers: []tokenDomain.TriggerType{tokenDomain.ManualTrigger},
		Limits:          tokenDomain.ResourceLimits{MaxInvocations: 5, MaxPerWindow: 2, Window: time.Minute},
	}
}

func TestTokenUseCase_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		fixture := newTokenFixture()

		output := fixture.issue(t, issueInput())
		assert.NotEmpty(t, output.PlainToken)
		assert.NotEmpty(t, output.Fingerprint)

		token, err := fixture.useCase.Get(ctx, output.Fingerprint)
		require.NoError(t, err)
		assert.Equal(t, "user-1", token.UserID)
		assert.False(t, token.Revoked)
		assert.Nil(t, token.FirstUsedAt)

		events := fixture.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.TokenIssued, events[0].Kind)
		assert.Equal(t, output.Fingerprint, events[0].TokenFingerprint)
	})

	t.Run("Success_DefaultWindowAppliedWhenMissing", func(t *testing.T) {
		fixture := newTokenFixture()

		input := issueInput()
		input.Limits = tokenDomain.ResourceLimits{MaxPerWindow: 2}
		output := fixture.issue(t, input)

		// The fixture's default window fills in for the missing one
		token, err := fixture.useCase.Get(ctx, output.Fingerprint)
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, token.Limits.Window)
	})

	t.Run("Success_ExplicitWindowKept", func(t *testing.T) {
		fixture := newTokenFixture()

		input := issueInput()
		input.Limits = tokenDomain.ResourceLimits{MaxPerWindow: 2, Window: 5 * time.Minute}
		output := fixture.issue(t, input)

		token, err := fixture.useCase.Get(ctx, output.Fingerprint)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, token.Limits.Window)
	})

	t.Run("Error_FrequencyLimitWithoutAnyWindow", func(t *testing.T) {
		useCase := NewTokenUseCase(
			tokenRepository.NewMemoryTokenRepository(),
			tokenService.NewTokenService(),
			auditUseCase.NewRecorder(auditRepository.NewMemoryEventRepository()),
			0,
		)

		input := issueInput()
		input.Limits = tokenDomain.ResourceLimits{MaxPerWindow: 2}

		_, err := useCase.Issue(ctx, input)
		assert.ErrorIs(t, err, tokenDomain.ErrWindowRequired)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_AuditWriteFailureBlocksIssuance", func(t *testing.T) {
		tokenRepo := &mockTokenRepository{}
		recorder := auditUseCase.NewRecorder(&failingEventRepository{})
		useCase := NewTokenUseCase(tokenRepo, tokenService.NewTokenService(), recorder, 30*time.Second)

		_, err := useCase.Issue(ctx, issueInput())
		assert.ErrorIs(t, err, auditDomain.ErrWriteFailed)

		// The token must never be persisted when the audit write fails
		tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTokenUseCase_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		fixture := newTokenFixture()
		output := fixture.issue(t, issueInput())

		require.NoError(t, fixture.useCase.Revoke(ctx, output.Fingerprint))

		token, err := fixture.useCase.Get(ctx, output.Fingerprint)
		require.NoError(t, err)
		assert.True(t, token.Revoked)

		events := fixture.events(t)
		require.Len(t, events, 2)
		assert.Equal(t, auditDomain.TokenRevoked, events[1].Kind)
	})

	t.Run("Error_AlreadyRevoked", func(t *testing.T) {
		fixture := newTokenFixture()
		output := fixture.issue(t, issueInput())
		require.NoError(t, fixture.useCase.Revoke(ctx, output.Fingerprint))

		err := fixture.useCase.Revoke(ctx, output.Fingerprint)
		assert.ErrorIs(t, err, tokenDomain.ErrAlreadyRevoked)

		// No second TOKEN_REVOKED event
		assert.Len(t, fixture.events(t), 2)
	})

	t.Run("Error_UnknownFingerprint", func(t *testing.T) {
		fixture := newTokenFixture()
		err := fixture.useCase.Revoke(ctx, "missing")
		assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
	})
}

func TestTokenUseCase_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		fixture := newTokenFixture()
		output := fixture.issue(t, issueInput())

		token, err := fixture.useCase.Validate(ctx, output.Fingerprint, "user-1", tokenDomain.ManualTrigger)
		require.NoError(t, err)
		assert.Equal(t, output.Fingerprint, token.Fingerprint)

		// Validation is read-only: only the issuance event exists
		assert.Len(t, fixture.events(t), 1)
	})

	t.Run("Error_UnknownFingerprint", func(t *testing.T) {
		fixture := newTokenFixture()

		_, err := fixture.useCase.Validate(ctx, "missing", "user-1", tokenDomain.ManualTrigger)
		assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
	})

	t.Run("Error_RevokedBeatsEveryOtherCheck", func(t *testing.T) {
		fixture := newTokenFixture()
		output := fixture.issue(t, issueInput())
		require.NoError(t, fixture.useCase.Revoke(ctx, output.Fingerprint))

		// Wrong user and wrong trigger too, but revocation must win
		_, err := fixture.useCase.Validate(ctx, output.Fingerprint, "someone-else", tokenDomain.WebhookTrigger)
		assert.ErrorIs(t, err, tokenDomain.ErrTokenRevoked)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		fixture := newTokenFixture()
		input := issueInput()
		expiresAt := time.Now().UTC().Add(-time.Minute)
		input.ExpiresAt = &expiresAt
		output := fixture.issue(t, input)

		_, err := fixture.useCase.Validate(ctx, output.Fingerprint, "user-1", tokenDomain.ManualTrigger)
		assert.ErrorIs(t, err, tokenDomain.ErrTokenExpired)
	})

	t.Run("Error_UserMismatch", func(t *testing.T) {
		fixture := newTokenFixture()
		output := fixture.issue(t, issueInput())

		_, err := fixture.useCase.Validate(ctx, output.Fingerprint, "someone-else", tokenDomain.ManualTrigger)
		assert.ErrorIs(t, err, tokenDomain.ErrUserMismatch)
	})

	t.Run("Error_TriggerNotAllowed", func(t *testing.T) {
		fixture := newTokenFixture()
		output := fixture.issue(t, issueInput())

		_, err := fixture.useCase.Validate(ctx, output.Fingerprint, "user-1", tokenDomain.ScheduledTrigger)
		assert.ErrorIs(t, err, tokenDomain.ErrTriggerNotAllowed)
	})
}

func TestTokenUseCase_MarkFirstUse(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FirstUseRecordedOnce", func(t *testing.T) {
		fixture := newTokenFixture()
		output := fixture.issue(t, issueInput())

		token, err := fixture.useCase.Get(ctx, output.Fingerprint)
		require.NoError(t, err)

		require.NoError(t, fixture.useCase.MarkFirstUse(ctx, token))
		require.NotNil(t, token.FirstUsedAt)

		// A second call with the refreshed token is a no-op
		require.NoError(t, fixture.useCase.MarkFirstUse(ctx, token))

		events := fixture.events(t)
		require.Len(t, events, 2)
		assert.Equal(t, auditDomain.TokenFirstUsed, events[1].Kind)
	})
}

// failingEventRepository rejects every append.
type failingEventRepository struct{}

func (f *failingEventRepository) Create(context.Context, *auditDomain.Event) error {
	return apperrors.ErrUnavailable
}

func (f *failingEventRepository) Last(context.Context) (*auditDomain.Event, error) {
	return nil, auditDomain.ErrEventNotFound
}

func (f *failingEventRepository) List(context.Context, int, int) ([]*auditDomain.Event, error) {
	return nil, nil
}

func (f *failingEventRepository) Count(context.Context) (int64, error) {
	return 0, nil
}
