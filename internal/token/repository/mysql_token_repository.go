package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/planexec/internal/database"
	apperrors "github.com/allisson/planexec/internal/errors"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// MySQLTokenRepository implements capability token persistence for MySQL.
// Uses BINARY(16) for UUID storage; scope and triggers are JSON columns.
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a MySQL-backed token store.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// Create stores a newly issued token.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *tokenDomain.CapabilityToken) error {
	querier := database.GetTx(ctx, m.db)

	scopeJSON, err := json.Marshal(token.Scope)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token scope")
	}

	triggersJSON, err := json.Marshal(token.AllowedTriggers)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token triggers")
	}

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	query := `INSERT INTO tokens
			  (id, fingerprint, user_id, scope, allowed_triggers, max_invocations, max_per_window, window_seconds, revoked, issued_at, expires_at, first_used_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.Fingerprint,
		token.UserID,
		scopeJSON,
		triggersJSON,
		token.Limits.MaxInvocations,
		token.Limits.MaxPerWindow,
		int64(token.Limits.Window/time.Second),
		token.Revoked,
		token.IssuedAt,
		token.ExpiresAt,
		token.FirstUsedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}

	return nil
}

// GetByFingerprint retrieves a token by its fingerprint.
func (m *MySQLTokenRepository) GetByFingerprint(
	ctx context.Context,
	fingerprint string,
) (*tokenDomain.CapabilityToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, fingerprint, user_id, scope, allowed_triggers, max_invocations, max_per_window, window_seconds, revoked, issued_at, expires_at, first_used_at
			  FROM tokens
			  WHERE fingerprint = ?`

	var token tokenDomain.CapabilityToken
	var idBinary, scopeJSON, triggersJSON []byte
	var windowSeconds int64
	var expiresAt, firstUsedAt sql.NullTime

	err := querier.QueryRowContext(ctx, query, fingerprint).Scan(
		&idBinary,
		&token.Fingerprint,
		&token.UserID,
		&scopeJSON,
		&triggersJSON,
		&token.Limits.MaxInvocations,
		&token.Limits.MaxPerWindow,
		&windowSeconds,
		&token.Revoked,
		&token.IssuedAt,
		&expiresAt,
		&firstUsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokenDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}

	id, err := uuid.FromBytes(idBinary)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	token.ID = id

	if err := json.Unmarshal(scopeJSON, &token.Scope); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token scope")
	}
	if err := json.Unmarshal(triggersJSON, &token.AllowedTriggers); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token triggers")
	}

	token.Limits.Window = time.Duration(windowSeconds) * time.Second
	if expiresAt.Valid {
		token.ExpiresAt = &expiresAt.Time
	}
	if firstUsedAt.Valid {
		token.FirstUsedAt = &firstUsedAt.Time
	}

	return &token, nil
}

// Revoke sets the revoked flag, one-way.
func (m *MySQLTokenRepository) Revoke(ctx context.Context, fingerprint string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE tokens SET revoked = TRUE WHERE fingerprint = ? AND revoked = FALSE`,
		fingerprint,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke token")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read revoke result")
	}
	if affected == 0 {
		if _, getErr := m.GetByFingerprint(ctx, fingerprint); getErr != nil {
			return getErr
		}
		return tokenDomain.ErrAlreadyRevoked
	}

	return nil
}

// MarkFirstUsed records the token's first use, once.
func (m *MySQLTokenRepository) MarkFirstUsed(
	ctx context.Context,
	fingerprint string,
	usedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(
		ctx,
		`UPDATE tokens SET first_used_at = ? WHERE fingerprint = ? AND first_used_at IS NULL`,
		usedAt,
		fingerprint,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark token first use")
	}

	return nil
}
