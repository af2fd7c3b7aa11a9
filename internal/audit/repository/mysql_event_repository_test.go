package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
)

func TestMySQLEventRepository_Create(t *testing.T) {
	t.Run("Success_InsertEventWithBinaryUUID", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewMySQLEventRepository(db)
		event := buildEvent(t, auditDomain.GenesisHash)

		id, err := event.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO audit_events`).
			WithArgs(
				id,
				string(event.Kind),
				event.Timestamp,
				event.UserID,
				event.TokenFingerprint,
				event.Domain,
				event.Method,
				string(event.Outcome),
				event.Reason,
				nil,
				event.Hash,
				event.PrevHash,
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Create(context.Background(), event)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLEventRepository_Last(t *testing.T) {
	columns := []string{
		"id", "kind", "created_at", "user_id", "token_fingerprint",
		"domain", "method", "outcome", "reason", "metadata", "hash", "prev_hash",
	}

	t.Run("Success_DecodesBinaryUUID", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewMySQLEventRepository(db)
		event := buildEvent(t, auditDomain.GenesisHash)

		id, err := event.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT .+ FROM audit_events ORDER BY seq DESC`).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				id,
				string(event.Kind),
				event.Timestamp,
				event.UserID,
				event.TokenFingerprint,
				event.Domain,
				event.Method,
				string(event.Outcome),
				event.Reason,
				nil,
				event.Hash,
				event.PrevHash,
			))

		got, err := repo.Last(context.Background())
		require.NoError(t, err)
		assert.Equal(t, event.ID, got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_EmptyLog", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewMySQLEventRepository(db)

		mock.ExpectQuery(`SELECT .+ FROM audit_events ORDER BY seq DESC`).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err = repo.Last(context.Background())
		assert.ErrorIs(t, err, auditDomain.ErrEventNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
