package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hferreira23/batchwatch/internal/idgen"
	"github.com/hferreira23/batchwatch/internal/pagination"
	"github.com/hferreira23/batchwatch/internal/testutil"
)

// Integration tests against a real PostgreSQL. Skipped unless POSTGRES_URL is set.

func TestPostgresStoreReadingPagination(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()
	batchID := "batch_pg_page"

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		r := &SensorReading{
			ID:           idgen.WithPrefix("rdg_"),
			BatchID:      batchID,
			TemperatureC: 4.0,
			RecordedAt:   base.Add(time.Duration(i) * time.Minute),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.CreateReading(ctx, r))
	}

	// First page: newest 3, plus the extra row signalling more.
	rows, err := store.ListReadings(ctx, batchID, nil, 3)
	require.NoError(t, err)
	items, next, hasMore := pagination.ComputePage(rows, 3, func(r *SensorReading) (time.Time, string) {
		return r.RecordedAt, r.ID
	})
	assert.Len(t, items, 3)
	assert.True(t, hasMore)
	assert.True(t, items[0].RecordedAt.After(items[2].RecordedAt))

	cursor, err := pagination.Decode(next)
	require.NoError(t, err)

	// Second page: the remaining 2.
	rows, err = store.ListReadings(ctx, batchID, cursor, 3)
	require.NoError(t, err)
	items, _, hasMore = pagination.ComputePage(rows, 3, func(r *SensorReading) (time.Time, string) {
		return r.RecordedAt, r.ID
	})
	assert.Len(t, items, 2)
	assert.False(t, hasMore)
}

func TestPostgresStoreReadingOrder(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()
	batchID := "batch_pg_order"

	base := time.Now().UTC().Truncate(time.Microsecond)
	temps := []float64{3.0, 4.0, 5.0}
	for i, temp := range temps {
		r := &SensorReading{
			ID:           idgen.WithPrefix("rdg_"),
			BatchID:      batchID,
			TemperatureC: temp,
			RecordedAt:   base.Add(time.Duration(i) * time.Minute),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.CreateReading(ctx, r))
	}

	all, err := store.AllReadings(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Oldest first
	assert.Equal(t, 3.0, all[0].TemperatureC)
	assert.Equal(t, 5.0, all[2].TemperatureC)

	recent, err := store.RecentReadings(ctx, batchID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// Newest first
	assert.Equal(t, 5.0, recent[0].TemperatureC)
}
