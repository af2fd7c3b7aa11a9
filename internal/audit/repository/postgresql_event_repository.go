package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	"github.com/allisson/planexec/internal/database"
	apperrors "github.com/allisson/planexec/internal/errors"
)

// PostgreSQLEventRepository implements audit event persistence for PostgreSQL.
// The table carries a monotonic sequence column so append order survives
// round-trips; rows are only ever inserted.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a PostgreSQL-backed event store.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create appends a new audit event. Uses transaction support via
// database.GetTx(). Handles nil metadata as database NULL.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	var metadataJSON []byte
	var err error

	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit event metadata")
		}
	}

	query := `INSERT INTO audit_events
			  (id, kind, created_at, user_id, token_fingerprint, domain, method, outcome, reason, metadata, hash, prev_hash)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.Kind),
		event.Timestamp,
		event.UserID,
		event.TokenFingerprint,
		event.Domain,
		event.Method,
		string(event.Outcome),
		event.Reason,
		metadataJSON,
		event.Hash,
		event.PrevHash,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}

	return nil
}

// Last retrieves the most recently appended event.
func (p *PostgreSQLEventRepository) Last(ctx context.Context) (*auditDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, kind, created_at, user_id, token_fingerprint, domain, method, outcome, reason, metadata, hash, prev_hash
			  FROM audit_events
			  ORDER BY seq DESC
			  LIMIT 1`

	event, err := scanEvent(querier.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get last audit event")
	}

	return event, nil
}

// List retrieves events in append order with pagination.
func (p *PostgreSQLEventRepository) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, kind, created_at, user_id, token_fingerprint, domain, method, outcome, reason, metadata, hash, prev_hash
			  FROM audit_events
			  ORDER BY seq ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}

// Count returns the total number of events.
func (p *PostgreSQLEventRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}

	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent scans one audit event row in the shared column order.
func scanEvent(row rowScanner) (*auditDomain.Event, error) {
	var event auditDomain.Event
	var kind, outcome string
	var metadataJSON []byte

	err := row.Scan(
		&event.ID,
		&kind,
		&event.Timestamp,
		&event.UserID,
		&event.TokenFingerprint,
		&event.Domain,
		&event.Method,
		&outcome,
		&event.Reason,
		&metadataJSON,
		&event.Hash,
		&event.PrevHash,
	)
	if err != nil {
		return nil, err
	}

	event.Kind = auditDomain.EventKind(kind)
	event.Outcome = auditDomain.Outcome(outcome)

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
			return nil, err
		}
	}

	return &event, nil
}
