// Package postgres persists audit records in PostgreSQL. Old/new value
// maps are stored as JSONB; the per-entity threshold is enforced by
// Prune, which deletes everything older than the newest N records.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"trail/pkg/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema creates the audit_records table. Kept here instead of a
// migration tool so embedded deployments can bootstrap themselves.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id              UUID PRIMARY KEY,
	event           TEXT NOT NULL,
	auditable_type  TEXT NOT NULL,
	auditable_id    TEXT NOT NULL,
	old_values      JSONB NOT NULL DEFAULT '{}',
	new_values      JSONB NOT NULL DEFAULT '{}',
	user_id         TEXT,
	url             TEXT NOT NULL DEFAULT '',
	ip_address      TEXT NOT NULL DEFAULT '',
	user_agent      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_records_auditable_idx
	ON audit_records (auditable_type, auditable_id, created_at DESC);
`

// EnsureSchema applies Schema. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, record audit.Record) error {
	oldValues, err := json.Marshal(record.Old)
	if err != nil {
		return fmt.Errorf("marshal old values: %w", err)
	}
	newValues, err := json.Marshal(record.New)
	if err != nil {
		return fmt.Errorf("marshal new values: %w", err)
	}

	query := `
		INSERT INTO audit_records (
			id, event, auditable_type, auditable_id,
			old_values, new_values, user_id, url, ip_address, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		string(record.Event),
		record.AuditableType,
		record.AuditableID,
		oldValues,
		newValues,
		record.UserID,
		record.URL,
		record.IPAddress,
		record.UserAgent,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Prune deletes all but the newest records for one entity.
func (s *Store) Prune(ctx context.Context, auditableType, auditableID string, keep int) error {
	if keep <= 0 {
		return nil
	}
	query := `
		DELETE FROM audit_records
		WHERE auditable_type = $1 AND auditable_id = $2
		AND id NOT IN (
			SELECT id FROM audit_records
			WHERE auditable_type = $1 AND auditable_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		)
	`
	if _, err := s.db.ExecContext(ctx, query, auditableType, auditableID, keep); err != nil {
		return fmt.Errorf("prune audit records: %w", err)
	}
	return nil
}

// ListByAuditable returns an entity's records, oldest first.
func (s *Store) ListByAuditable(ctx context.Context, auditableType, auditableID string) ([]audit.Record, error) {
	query := `
		SELECT id, event, auditable_type, auditable_id,
			   old_values, new_values, user_id, url, ip_address, user_agent, created_at
		FROM audit_records
		WHERE auditable_type = $1 AND auditable_id = $2
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, auditableType, auditableID)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]audit.Record, error) {
	var records []audit.Record

	for rows.Next() {
		var (
			record    audit.Record
			event     string
			oldValues []byte
			newValues []byte
			userID    sql.NullString
			recordID  uuid.UUID
		)

		err := rows.Scan(
			&recordID,
			&event,
			&record.AuditableType,
			&record.AuditableID,
			&oldValues,
			&newValues,
			&userID,
			&record.URL,
			&record.IPAddress,
			&record.UserAgent,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		record.ID = recordID
		record.Event = audit.Event(event)
		if err := json.Unmarshal(oldValues, &record.Old); err != nil {
			return nil, fmt.Errorf("unmarshal old values: %w", err)
		}
		if err := json.Unmarshal(newValues, &record.New); err != nil {
			return nil, fmt.Errorf("unmarshal new values: %w", err)
		}
		if userID.Valid {
			record.UserID = &userID.String
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
