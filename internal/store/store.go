package store

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Stable key contract for stored collections. Renaming a key breaks
// compatibility with existing data sets.
const (
	KeyInvoices     = "billd:invoices"
	KeyProducts     = "billd:products"
	KeySettings     = "billd:settings"
	KeyTransactions = "billd:inventory_transactions"
	KeyAlerts       = "billd:stock_alerts"
)

// Store is the key-value persistence gateway. Collections are stored as whole
// JSON documents under fixed keys; every mutation is a read-full, compute,
// write-full cycle by a single logical writer.
type Store struct {
	client *redis.Client
	log    zerolog.Logger
}

// New constructs a Store around the provided redis client.
func New(client *redis.Client, log zerolog.Logger) *Store {
	return &Store{client: client, log: log}
}

// GetJSON loads the document at key into dst, reporting whether it existed.
// A missing key is not an error. A stored document that no longer parses is
// treated as missing: the caller gets an empty collection and the corruption
// is logged, never surfaced.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding malformed stored document")
		return false, nil
	}
	return true, nil
}

// SetJSON serialises v and stores it at key. Write failures are surfaced to
// the caller.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// SetJSONMulti writes several documents in one transactional pipeline so a
// logical action touching multiple collections cannot partially apply.
func (s *Store) SetJSONMulti(ctx context.Context, entries map[string]any) error {
	pipe := s.client.TxPipeline()
	for key, v := range entries {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		pipe.Set(ctx, key, data, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// Ping probes the underlying connection. Used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
