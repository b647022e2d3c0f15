// Package otp implements the email verification codes used by the
// forget-password flow. Codes live in an injected key-value store with
// per-key expiry (Redis in production), so the lifecycle is explicit
// and survives running multiple API instances. Durability across a
// store wipe is deliberately not a goal.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	// Lifetime is how long an issued code stays valid.
	Lifetime = 10 * time.Minute

	// retention keeps the record around past expiry so a late verify
	// can answer "expired" instead of "not found" before eviction.
	retention = 2 * Lifetime
)

var (
	ErrNotFound = errors.New("OTP not found")
	ErrExpired  = errors.New("OTP has expired")
	ErrInvalid  = errors.New("Invalid OTP")
)

// KV is the minimal key-value contract the service needs. Get returns
// (nil, nil) for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Mailer delivers the code to the user. Email transport is an external
// collaborator; the service only depends on this boundary.
type Mailer interface {
	SendOTP(email, code string) error
}

type record struct {
	Code   string    `json:"code"`
	Expiry time.Time `json:"expiry"`
}

// Service issues and verifies one-time codes. At most one live code
// exists per email; issuing overwrites any prior one.
type Service struct {
	kv        KV
	mailer    Mailer
	keyPrefix string

	// now is swappable for tests.
	now func() time.Time
}

func NewService(kv KV, mailer Mailer, keyPrefix string) *Service {
	return &Service{
		kv:        kv,
		mailer:    mailer,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (s *Service) key(email string) string {
	return s.keyPrefix + email
}

// generateCode returns a 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue creates a code for the email, stores it and mails it out.
func (s *Service) Issue(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	rec := record{
		Code:   code,
		Expiry: s.now().Add(Lifetime),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := s.kv.Set(ctx, s.key(email), data, retention); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	return s.mailer.SendOTP(email, code)
}

// Verify checks the supplied code. A wrong code leaves the record in
// place so the user may retry; expiry and success both consume it.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	data, err := s.kv.Get(ctx, s.key(email))
	if err != nil {
		return err
	}
	if data == nil {
		return ErrNotFound
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	if s.now().After(rec.Expiry) {
		s.kv.Delete(ctx, s.key(email))
		return ErrExpired
	}

	if rec.Code != code {
		return ErrInvalid
	}

	return s.kv.Delete(ctx, s.key(email))
}
