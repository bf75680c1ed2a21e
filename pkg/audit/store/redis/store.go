// Package redis keeps a bounded trail of audit records per entity in a
// Redis list. LPUSH + LTRIM make the retention threshold a natural fit.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trail/pkg/audit"
)

const keyPrefix = "trail:audits:"

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(auditableType, auditableID string) string {
	return keyPrefix + auditableType + ":" + auditableID
}

// Append pushes the record to the head of the entity's list, so index 0
// is always the newest record.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	if err := s.client.LPush(ctx, key(record.AuditableType, record.AuditableID), payload).Err(); err != nil {
		return fmt.Errorf("lpush audit record: %w", err)
	}
	return nil
}

// Prune trims the entity's list to the newest records.
func (s *Store) Prune(ctx context.Context, auditableType, auditableID string, keep int) error {
	if keep <= 0 {
		return nil
	}
	if err := s.client.LTrim(ctx, key(auditableType, auditableID), 0, int64(keep-1)).Err(); err != nil {
		return fmt.Errorf("ltrim audit records: %w", err)
	}
	return nil
}

// ListByAuditable returns an entity's records, oldest first.
func (s *Store) ListByAuditable(ctx context.Context, auditableType, auditableID string) ([]audit.Record, error) {
	payloads, err := s.client.LRange(ctx, key(auditableType, auditableID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange audit records: %w", err)
	}

	records := make([]audit.Record, 0, len(payloads))
	// LRANGE yields newest first; walk backwards for chronological order.
	for i := len(payloads) - 1; i >= 0; i-- {
		var record audit.Record
		if err := json.Unmarshal([]byte(payloads[i]), &record); err != nil {
			return nil, fmt.Errorf("unmarshal audit record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}
