package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPPurpose namespaces one-time codes by flow.
type OTPPurpose string

const (
	OTPPurposeEmailVerification OTPPurpose = "email_verification_otp"
	OTPPurposePasswordReset     OTPPurpose = "password_reset_otp"
)

// OTPStore persists short-lived one-time codes keyed by purpose and email.
type OTPStore interface {
	Put(ctx context.Context, purpose OTPPurpose, email, code string, ttl time.Duration) error
	Get(ctx context.Context, purpose OTPPurpose, email string) (string, error)
	Delete(ctx context.Context, purpose OTPPurpose, email string) error
}

// ErrOTPNotFound is returned when no code exists for the purpose/email pair.
var ErrOTPNotFound = errors.New("otp not found")

type redisOTPStore struct {
	client *redis.Client
}

// NewOTPStore returns a Redis-backed implementation.
func NewOTPStore(client *redis.Client) OTPStore {
	return &redisOTPStore{client: client}
}

func (s *redisOTPStore) Put(ctx context.Context, purpose OTPPurpose, email, code string, ttl time.Duration) error {
	return s.client.SetEx(ctx, otpKey(purpose, email), code, ttl).Err()
}

func (s *redisOTPStore) Get(ctx context.Context, purpose OTPPurpose, email string) (string, error) {
	code, err := s.client.Get(ctx, otpKey(purpose, email)).Result()
	if err == redis.Nil {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, purpose OTPPurpose, email string) error {
	return s.client.Del(ctx, otpKey(purpose, email)).Err()
}

func otpKey(purpose OTPPurpose, email string) string {
	return fmt.Sprintf("%s:%s", purpose, email)
}
