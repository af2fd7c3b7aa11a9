package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/allisson/planexec/internal/database"
	apperrors "github.com/allisson/planexec/internal/errors"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// PostgreSQLTokenRepository implements capability token persistence for
// PostgreSQL. Scope and allowed triggers are stored as JSONB; the only
// mutable columns are revoked and first_used_at.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a PostgreSQL-backed token store.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create stores a newly issued token.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *tokenDomain.CapabilityToken) error {
	querier := database.GetTx(ctx, p.db)

	scopeJSON, err := json.Marshal(token.Scope)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token scope")
	}

	triggersJSON, err := json.Marshal(token.AllowedTriggers)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token triggers")
	}

	query := `INSERT INTO tokens
			  (id, fingerprint, user_id, scope, allowed_triggers, max_invocations, max_per_window, window_seconds, revoked, issued_at, expires_at, first_used_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		token.ID,
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
func (p *PostgreSQLTokenRepository) GetByFingerprint(
	ctx context.Context,
	fingerprint string,
) (*tokenDomain.CapabilityToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, fingerprint, user_id, scope, allowed_triggers, max_invocations, max_per_window, window_seconds, revoked, issued_at, expires_at, first_used_at
			  FROM tokens
			  WHERE fingerprint = $1`

	var token tokenDomain.CapabilityToken
	var scopeJSON, triggersJSON []byte
	var windowSeconds int64
	var expiresAt, firstUsedAt sql.NullTime

	err := querier.QueryRowContext(ctx, query, fingerprint).Scan(
		&token.ID,
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
func (p *PostgreSQLTokenRepository) Revoke(ctx context.Context, fingerprint string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE tokens SET revoked = TRUE WHERE fingerprint = $1 AND revoked = FALSE`,
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
		// Either unknown or already revoked; disambiguate for the caller
		if _, getErr := p.GetByFingerprint(ctx, fingerprint); getErr != nil {
			return getErr
		}
		return tokenDomain.ErrAlreadyRevoked
	}

	return nil
}

// MarkFirstUsed records the token's first use, once.
func (p *PostgreSQLTokenRepository) MarkFirstUsed(
	ctx context.Context,
	fingerprint string,
	usedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(
		ctx,
		`UPDATE tokens SET first_used_at = $1 WHERE fingerprint = $2 AND first_used_at IS NULL`,
		usedAt,
		fingerprint,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark token first use")
	}

	return nil
}
