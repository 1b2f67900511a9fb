package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLedger(t *testing.T) (*OrphanLedger, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOrphanLedger(client, ""), s
}

func TestOrphanLedgerRecordAndList(t *testing.T) {
	ledger, _ := setupTestLedger(t)
	ctx := context.Background()

	older := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	require.NoError(t, ledger.Record(ctx, OrphanEntry{ExternalID: "employees/b.jpg", Reason: "compensate_create", RecordedAt: newer}))
	require.NoError(t, ledger.Record(ctx, OrphanEntry{ExternalID: "employees/a.jpg", Reason: "release_on_delete", EmployeeID: "emp-1", RecordedAt: older}))

	entries, err := ledger.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "employees/a.jpg", entries[0].ExternalID)
	assert.Equal(t, "release_on_delete", entries[0].Reason)
	assert.Equal(t, "emp-1", entries[0].EmployeeID)
	assert.Equal(t, "employees/b.jpg", entries[1].ExternalID)
}

func TestOrphanLedgerRecordSameIDTwiceKeepsOneEntry(t *testing.T) {
	ledger, _ := setupTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, OrphanEntry{ExternalID: "employees/x.png", Reason: "first"}))
	require.NoError(t, ledger.Record(ctx, OrphanEntry{ExternalID: "employees/x.png", Reason: "second"}))

	count, err := ledger.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	entries, err := ledger.List(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "second", entries[0].Reason)
}

func TestOrphanLedgerResolve(t *testing.T) {
	ledger, s := setupTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, OrphanEntry{ExternalID: "employees/y.jpg", Reason: "release_superseded"}))
	require.NoError(t, ledger.Resolve(ctx, "employees/y.jpg"))

	count, err := ledger.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.False(t, s.Exists(DefaultOrphanLedgerKey+":details"))
}

func TestOrphanLedgerRejectsEmptyID(t *testing.T) {
	ledger, _ := setupTestLedger(t)
	assert.Error(t, ledger.Record(context.Background(), OrphanEntry{Reason: "nothing"}))
}

func TestOrphanLedgerListEmpty(t *testing.T) {
	ledger, _ := setupTestLedger(t)
	entries, err := ledger.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
