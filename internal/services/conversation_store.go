package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmtukut/propabridge-2/internal/models"
	"github.com/mmtukut/propabridge-2/internal/nlp"
)

// IConversationStore persists the short rolling chat context per phone
// number. Implementations hold at most nlp.MaxHistoryExchanges exchanges.
type IConversationStore interface {
	Load(ctx context.Context, phone string) ([]models.Exchange, error)
	Save(ctx context.Context, phone string, exchanges []models.Exchange) error
}

const conversationTTL = 24 * time.Hour

// redisConversationStore implements IConversationStore over Redis.
type redisConversationStore struct {
	rdb *redis.Client
}

// NewRedisConversationStore creates a conversation store backed by Redis.
func NewRedisConversationStore(rdb *redis.Client) IConversationStore {
	return &redisConversationStore{rdb: rdb}
}

func conversationKey(phone string) string {
	return fmt.Sprintf("chat:%s", phone)
}

// Load returns the stored exchanges for a phone, oldest first. An absent key
// is an empty conversation, not an error.
func (s *redisConversationStore) Load(ctx context.Context, phone string) ([]models.Exchange, error) {
	data, err := s.rdb.Get(ctx, conversationKey(phone)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load conversation for %s: %w", phone, err)
	}

	var exchanges []models.Exchange
	if err := json.Unmarshal(data, &exchanges); err != nil {
		return nil, fmt.Errorf("failed to decode conversation for %s: %w", phone, err)
	}
	return exchanges, nil
}

// Save stores the exchanges, trimmed to the rolling window, with a TTL so
// stale conversations age out.
func (s *redisConversationStore) Save(ctx context.Context, phone string, exchanges []models.Exchange) error {
	if len(exchanges) > nlp.MaxHistoryExchanges {
		exchanges = exchanges[len(exchanges)-nlp.MaxHistoryExchanges:]
	}
	data, err := json.Marshal(exchanges)
	if err != nil {
		return fmt.Errorf("failed to encode conversation for %s: %w", phone, err)
	}
	if err := s.rdb.Set(ctx, conversationKey(phone), data, conversationTTL).Err(); err != nil {
		return fmt.Errorf("failed to store conversation for %s: %w", phone, err)
	}
	return nil
}
