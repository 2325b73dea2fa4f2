package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aryaveer-14/civic-mind/models"
	"github.com/Aryaveer-14/civic-mind/utils"
)

// ConsumeStatus is the outcome of an OTP consume attempt.
type ConsumeStatus int

const (
	ConsumeOK ConsumeStatus = iota
	ConsumeNotFound
	ConsumeExpired
	ConsumeMismatch
)

// PendingStore holds registrations awaiting OTP verification, keyed by
// phone. Pending entries never touch the document store; they live here
// until verified or expired.
type PendingStore interface {
	// Put stores or replaces the pending registration for its phone.
	Put(ctx context.Context, pending *models.PendingRegistration) error
	// Refresh replaces the OTP hash and window on an existing entry.
	// Returns the updated entry, or ErrOTPNotFound when nothing is pending.
	Refresh(ctx context.Context, phone, otpHash string, issuedAt, expiresAt time.Time) (*models.PendingRegistration, error)
	// Consume atomically verifies and removes the entry for phone. Expired
	// entries are evicted and reported as ConsumeExpired; a wrong code
	// leaves the entry in place for retry.
	Consume(ctx context.Context, phone, otp string) (*models.PendingRegistration, ConsumeStatus, error)
}

/* ---- in-process ---- */

// MemoryPendingStore keeps pending registrations in a mutex-guarded map.
type MemoryPendingStore struct {
	mu      sync.Mutex
	pending map[string]models.PendingRegistration
}

func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{pending: make(map[string]models.PendingRegistration)}
}

func (s *MemoryPendingStore) Put(ctx context.Context, pending *models.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[pending.Phone] = *pending
	return nil
}

func (s *MemoryPendingStore) Refresh(ctx context.Context, phone, otpHash string, issuedAt, expiresAt time.Time) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[phone]
	if !ok {
		return nil, ErrOTPNotFound
	}
	entry.OTPHash = otpHash
	entry.IssuedAt = issuedAt
	entry.ExpiresAt = expiresAt
	s.pending[phone] = entry
	return &entry, nil
}

func (s *MemoryPendingStore) Consume(ctx context.Context, phone, otp string) (*models.PendingRegistration, ConsumeStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[phone]
	if !ok {
		return nil, ConsumeNotFound, nil
	}
	if entry.Expired(time.Now()) {
		delete(s.pending, phone)
		return nil, ConsumeExpired, nil
	}
	if !utils.CheckOTP(otp, entry.OTPHash) {
		return nil, ConsumeMismatch, nil
	}
	delete(s.pending, phone)
	return &entry, ConsumeOK, nil
}

/* ---- redis ---- */

const (
	otpKeyPrefix  = "otp:"
	otpLockPrefix = "otp_lock:"
	otpLockTTL    = 5 * time.Second
)

// RedisPendingStore keeps pending registrations in Redis so verification
// survives restarts and works across replicas. Consume serializes per phone
// with a short SetNX lock.
type RedisPendingStore struct {
	client *redis.Client
}

func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

func (s *RedisPendingStore) Put(ctx context.Context, pending *models.PendingRegistration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to encode pending registration: %w", err)
	}
	ttl := time.Until(pending.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, otpKeyPrefix+pending.Phone, payload, ttl).Err()
}

func (s *RedisPendingStore) Refresh(ctx context.Context, phone, otpHash string, issuedAt, expiresAt time.Time) (*models.PendingRegistration, error) {
	entry, err := s.get(ctx, phone)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrOTPNotFound
	}
	entry.OTPHash = otpHash
	entry.IssuedAt = issuedAt
	entry.ExpiresAt = expiresAt
	if err := s.Put(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *RedisPendingStore) Consume(ctx context.Context, phone, otp string) (*models.PendingRegistration, ConsumeStatus, error) {
	lockKey := otpLockPrefix + phone
	locked := false
	for attempt := 0; attempt < 3; attempt++ {
		ok, err := s.client.SetNX(ctx, lockKey, "1", otpLockTTL).Result()
		if err != nil {
			return nil, ConsumeNotFound, fmt.Errorf("failed to acquire OTP lock: %w", err)
		}
		if ok {
			locked = true
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !locked {
		// Another verify for this phone is in flight; treat as consumed.
		return nil, ConsumeNotFound, nil
	}
	defer s.client.Del(ctx, lockKey)

	entry, err := s.get(ctx, phone)
	if err != nil {
		return nil, ConsumeNotFound, err
	}
	if entry == nil {
		return nil, ConsumeNotFound, nil
	}
	if entry.Expired(time.Now()) {
		s.client.Del(ctx, otpKeyPrefix+phone)
		return nil, ConsumeExpired, nil
	}
	if !utils.CheckOTP(otp, entry.OTPHash) {
		return nil, ConsumeMismatch, nil
	}
	if err := s.client.Del(ctx, otpKeyPrefix+phone).Err(); err != nil {
		return nil, ConsumeNotFound, fmt.Errorf("failed to consume OTP: %w", err)
	}
	return entry, ConsumeOK, nil
}

func (s *RedisPendingStore) get(ctx context.Context, phone string) (*models.PendingRegistration, error) {
	payload, err := s.client.Get(ctx, otpKeyPrefix+phone).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending registration: %w", err)
	}
	var entry models.PendingRegistration
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode pending registration: %w", err)
	}
	return &entry, nil
}
