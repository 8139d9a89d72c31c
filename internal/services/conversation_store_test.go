package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmtukut/propabridge-2/internal/models"
	"github.com/mmtukut/propabridge-2/internal/nlp"
	"github.com/mmtukut/propabridge-2/internal/utils"
)

func TestRedisConversationStore_RoundTrip(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: utils.GetTestRedisAddr()})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })

	store := NewRedisConversationStore(rdb)
	ctx := context.Background()
	phone := "+2348099990000"
	rdb.Del(ctx, "chat:"+phone)

	// Absent conversation loads empty, not as an error.
	loaded, err := store.Load(ctx, phone)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	exchanges := []models.Exchange{
		{Query: "2 bed in wuse", Reply: "found 3", At: time.Now().UTC().Truncate(time.Second)},
		{Query: "cheaper?", Reply: "found 1", At: time.Now().UTC().Truncate(time.Second)},
	}
	require.NoError(t, store.Save(ctx, phone, exchanges))

	loaded, err = store.Load(ctx, phone)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "2 bed in wuse", loaded[0].Query)
	assert.Equal(t, "found 1", loaded[1].Reply)

	ttl, err := rdb.TTL(ctx, "chat:"+phone).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisConversationStore_TrimsToWindow(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: utils.GetTestRedisAddr()})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })

	store := NewRedisConversationStore(rdb)
	ctx := context.Background()
	phone := "+2348099990001"
	rdb.Del(ctx, "chat:"+phone)

	var exchanges []models.Exchange
	for i := 0; i < nlp.MaxHistoryExchanges+3; i++ {
		exchanges = append(exchanges, models.Exchange{Query: fmt.Sprintf("q%d", i)})
	}
	require.NoError(t, store.Save(ctx, phone, exchanges))

	loaded, err := store.Load(ctx, phone)
	require.NoError(t, err)
	require.Len(t, loaded, nlp.MaxHistoryExchanges)
	// Oldest entries were dropped.
	assert.Equal(t, "q3", loaded[0].Query)
}
