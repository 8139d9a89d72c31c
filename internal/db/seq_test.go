package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmtukut/propabridge-2/internal/utils"
)

func TestNextSequence(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_db_seq", "counters")
	ctx := context.Background()

	first, err := NextSequence(ctx, database, "listings")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := NextSequence(ctx, database, "listings")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	// Independent sequences don't interfere.
	other, err := NextSequence(ctx, database, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestNextSequence_Concurrent(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_db_seq_concurrent", "counters")
	ctx := context.Background()

	const n = 20
	results := make(chan int64, n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		go func() {
			id, err := NextSequence(ctx, database, "listings")
			results <- id
			errs <- err
		}()
	}

	seen := make(map[int64]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
		id := <-results
		assert.False(t, seen[id], "sequence value %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
