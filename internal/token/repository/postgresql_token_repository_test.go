package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

var tokenColumns = []string{
	"id", "fingerprint", "user_id", "scope", "allowed_triggers",
	"max_invocations", "max_per_window", "window_seconds",
	"revoked", "issued_at", "expires_at", "first_used_at",
}

func TestPostgreSQLTokenRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLTokenRepository(db)
	token := buildToken("fp-1")

	mock.ExpectExec(`INSERT INTO tokens`).
		WithArgs(
			token.ID,
			token.Fingerprint,
			token.UserID,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			token.Limits.MaxInvocations,
			token.Limits.MaxPerWindow,
			int64(60),
			token.Revoked,
			token.IssuedAt,
			nil,
			nil,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), token)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTokenRepository_GetByFingerprint(t *testing.T) {
	t.Run("Success_RoundTripsScopeAndLimits", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLTokenRepository(db)
		token := buildToken("fp-1")

		mock.ExpectQuery(`SELECT .+ FROM tokens WHERE fingerprint`).
			WithArgs("fp-1").
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow(
				token.ID,
				token.Fingerprint,
				token.UserID,
				[]byte(`[{"domain":"textanalysis","methods":["analyze"]}]`),
				[]byte(`["manual"]`),
				token.Limits.MaxInvocations,
				token.Limits.MaxPerWindow,
				int64(60),
				false,
				token.IssuedAt,
				nil,
				nil,
			))

		got, err := repo.GetByFingerprint(context.Background(), "fp-1")
		require.NoError(t, err)
		assert.Equal(t, token.ID, got.ID)
		assert.Equal(t, token.Scope, got.Scope)
		assert.Equal(t, []tokenDomain.TriggerType{tokenDomain.ManualTrigger}, got.AllowedTriggers)
		assert.Equal(t, time.Minute, got.Limits.Window)
		assert.Nil(t, got.ExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_UnknownFingerprint", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectQuery(`SELECT .+ FROM tokens WHERE fingerprint`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(tokenColumns))

		_, err = repo.GetByFingerprint(context.Background(), "missing")
		assert.ErrorIs(t, err, tokenDomain.ErrTokenNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLTokenRepository_Revoke(t *testing.T) {
	t.Run("Success_SetsRevokedFlag", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLTokenRepository(db)

		mock.ExpectExec(`UPDATE tokens SET revoked = TRUE`).
			WithArgs("fp-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Revoke(context.Background(), "fp-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_AlreadyRevoked", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLTokenRepository(db)
		token := buildToken("fp-1")

		mock.ExpectExec(`UPDATE tokens SET revoked = TRUE`).
			WithArgs("fp-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Disambiguation lookup finds the (already revoked) token
		mock.ExpectQuery(`SELECT .+ FROM tokens WHERE fingerprint`).
			WithArgs("fp-1").
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow(
				token.ID,
				token.Fingerprint,
				token.UserID,
				[]byte(`[]`),
				[]byte(`[]`),
				0, 0, int64(0),
				true,
				token.IssuedAt,
				nil,
				nil,
			))

		err = repo.Revoke(context.Background(), "fp-1")
		assert.ErrorIs(t, err, tokenDomain.ErrAlreadyRevoked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLTokenRepository_MarkFirstUsed(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLTokenRepository(db)
	usedAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE tokens SET first_used_at`).
		WithArgs(usedAt, "fp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkFirstUsed(context.Background(), "fp-1", usedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
