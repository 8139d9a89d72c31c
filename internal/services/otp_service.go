package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mmtukut/propabridge-2/internal/auth"
	"github.com/mmtukut/propabridge-2/internal/config"
)

// OTPDeliverer hands a generated code off for delivery. The production
// implementation enqueues a background SMS task.
type OTPDeliverer interface {
	DeliverOTP(ctx context.Context, phone, message string) error
}

// IOTPService defines the interface for one-time code issuance and
// verification. Codes live in Redis, bcrypt-hashed, for OtpTTL.
type IOTPService interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (bool, error)
}

// otpService implements IOTPService.
type otpService struct {
	rdb       *redis.Client
	cfg       *config.Config
	deliverer OTPDeliverer
}

// NewOTPService creates a new OTPService.
func NewOTPService(rdb *redis.Client, cfg *config.Config, deliverer OTPDeliverer) IOTPService {
	return &otpService{rdb: rdb, cfg: cfg, deliverer: deliverer}
}

func otpKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}

// RequestOTP generates a fresh code for the phone number, stores its hash
// with a TTL and hands the cleartext code off for delivery. A repeat request
// replaces any outstanding code.
func (s *otpService) RequestOTP(ctx context.Context, phone string) error {
	code, err := auth.GenerateOTP(s.cfg.OtpLength)
	if err != nil {
		return fmt.Errorf("failed to generate OTP for %s: %w", phone, err)
	}

	hash, err := auth.HashOTP(code)
	if err != nil {
		return fmt.Errorf("failed to hash OTP for %s: %w", phone, err)
	}

	if err := s.rdb.Set(ctx, otpKey(phone), hash, s.cfg.OtpTTL).Err(); err != nil {
		return fmt.Errorf("failed to store OTP for %s: %w", phone, err)
	}

	message := fmt.Sprintf("Your %s verification code is %s. It expires in %d minutes.",
		s.cfg.AppName, code, int(s.cfg.OtpTTL.Minutes()))
	if err := s.deliverer.DeliverOTP(ctx, phone, message); err != nil {
		// Don't leave a code that was never delivered lying around.
		_ = s.rdb.Del(ctx, otpKey(phone)).Err()
		return fmt.Errorf("failed to deliver OTP to %s: %w", phone, err)
	}
	return nil
}

// VerifyOTP checks a submitted code. A successful verification consumes the
// code; an expired or absent code verifies as false, not as an error.
func (s *otpService) VerifyOTP(ctx context.Context, phone, code string) (bool, error) {
	hash, err := s.rdb.Get(ctx, otpKey(phone)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read OTP for %s: %w", phone, err)
	}

	if !auth.CheckOTP(hash, code) {
		return false, nil
	}

	if err := s.rdb.Del(ctx, otpKey(phone)).Err(); err != nil {
		return false, fmt.Errorf("failed to consume OTP for %s: %w", phone, err)
	}
	return true, nil
}
