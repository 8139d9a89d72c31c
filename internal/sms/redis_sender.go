package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSender implements the Sender interface by storing messages in Redis.
// Used when MOCK_SERVICES is enabled so tests can fetch the OTP that "was
// sent" instead of hitting a gateway.
type RedisSender struct {
	client *redis.Client
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client) Sender {
	return &RedisSender{client: client}
}

// Send stores a representation of the SMS in Redis under mocksms:<phone>.
func (s *RedisSender) Send(ctx context.Context, phone, message string) error {
	data := map[string]interface{}{
		"to":      phone,
		"message": message,
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal mock SMS: %w", err)
	}

	key := fmt.Sprintf("mocksms:%s", phone)
	if err := s.client.Set(ctx, key, jsonData, 10*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to store mock SMS in Redis: %w", err)
	}
	return nil
}
