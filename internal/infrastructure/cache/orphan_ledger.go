package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultOrphanLedgerKey is the sorted set holding image ids that could not be released.
const DefaultOrphanLedgerKey = "directory:orphaned_images"

// OrphanEntry describes one external image that may have been left behind.
type OrphanEntry struct {
	ExternalID string    `json:"external_id"`
	Reason     string    `json:"reason"`
	EmployeeID string    `json:"employee_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// OrphanLedger records external image ids whose best-effort release failed,
// so an operator can sweep them later. Entries are scored by time and keyed
// by external id, so recording the same id twice keeps a single entry.
type OrphanLedger struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewOrphanLedger(client *redis.Client, key string) *OrphanLedger {
	if key == "" {
		key = DefaultOrphanLedgerKey
	}
	return &OrphanLedger{client: client, key: key, now: time.Now}
}

// Record stores the entry. Callers treat failures as log-only.
func (l *OrphanLedger) Record(ctx context.Context, entry OrphanEntry) error {
	if entry.ExternalID == "" {
		return fmt.Errorf("orphan entry without external id")
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = l.now().UTC()
	}

	details, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode orphan entry: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.ZAdd(ctx, l.key, redis.Z{
		Score:  float64(entry.RecordedAt.Unix()),
		Member: entry.ExternalID,
	})
	pipe.HSet(ctx, l.detailsKey(), entry.ExternalID, details)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record orphaned image %s: %w", entry.ExternalID, err)
	}
	return nil
}

// List returns up to limit entries, oldest first.
func (l *OrphanLedger) List(ctx context.Context, limit int64) ([]OrphanEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	ids, err := l.client.ZRange(ctx, l.key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list orphaned images: %w", err)
	}
	if len(ids) == 0 {
		return []OrphanEntry{}, nil
	}

	raw, err := l.client.HMGet(ctx, l.detailsKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load orphan details: %w", err)
	}

	entries := make([]OrphanEntry, 0, len(ids))
	for i, id := range ids {
		entry := OrphanEntry{ExternalID: id}
		if s, ok := raw[i].(string); ok {
			_ = json.Unmarshal([]byte(s), &entry)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Resolve removes an id once the blob has been dealt with.
func (l *OrphanLedger) Resolve(ctx context.Context, externalID string) error {
	pipe := l.client.TxPipeline()
	pipe.ZRem(ctx, l.key, externalID)
	pipe.HDel(ctx, l.detailsKey(), externalID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("resolve orphaned image %s: %w", externalID, err)
	}
	return nil
}

func (l *OrphanLedger) Count(ctx context.Context) (int64, error) {
	return l.client.ZCard(ctx, l.key).Result()
}

func (l *OrphanLedger) detailsKey() string {
	return l.key + ":details"
}
