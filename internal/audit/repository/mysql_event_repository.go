package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	"github.com/allisson/planexec/internal/database"
	apperrors "github.com/allisson/planexec/internal/errors"
)

// MySQLEventRepository implements audit event persistence for MySQL.
// Uses BINARY(16) for UUID storage and an AUTO_INCREMENT sequence column to
// preserve append order; rows are only ever inserted.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a MySQL-backed event store.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create appends a new audit event. Uses transaction support via
// database.GetTx(). Handles nil metadata as database NULL.
func (m *MySQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	var metadataJSON []byte
	var err error

	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit event metadata")
		}
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	query := `INSERT INTO audit_events
			  (id, kind, created_at, user_id, token_fingerprint, domain, method, outcome, reason, metadata, hash, prev_hash)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLEventRepository) Last(ctx context.Context) (*auditDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, kind, created_at, user_id, token_fingerprint, domain, method, outcome, reason, metadata, hash, prev_hash
			  FROM audit_events
			  ORDER BY seq DESC
			  LIMIT 1`

	event, err := scanMySQLEvent(querier.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get last audit event")
	}

	return event, nil
}

// List retrieves events in append order with pagination.
func (m *MySQLEventRepository) List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, kind, created_at, user_id, token_fingerprint, domain, method, outcome, reason, metadata, hash, prev_hash
			  FROM audit_events
			  ORDER BY seq ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		event, err := scanMySQLEvent(rows)
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
func (m *MySQLEventRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}

	return count, nil
}

// scanMySQLEvent scans one audit event row, decoding the BINARY(16) UUID.
func scanMySQLEvent(row rowScanner) (*auditDomain.Event, error) {
	var event auditDomain.Event
	var idBinary []byte
	var kind, outcome string
	var metadataJSON []byte

	err := row.Scan(
		&idBinary,
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

	id, err := uuid.FromBytes(idBinary)
	if err != nil {
		return nil, err
	}
	event.ID = id

	event.Kind = auditDomain.EventKind(kind)
	event.Outcome = auditDomain.Outcome(outcome)

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
			return nil, err
		}
	}

	return &event, nil
}
