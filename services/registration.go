package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Aryaveer-14/civic-mind/models"
	"github.com/Aryaveer-14/civic-mind/storage"
	"github.com/Aryaveer-14/civic-mind/utils"
)

// OTPValidity is how long a one-time code stays usable.
const OTPValidity = 10 * time.Minute

// uniquenessTimeout bounds the duplicate-check queries in durable mode.
const uniquenessTimeout = 3 * time.Second

// RegistrationService owns the OTP-gated signup flow and login. Pending
// registrations live in the pending store until verified; the user row is
// only written on a successful verify.
type RegistrationService struct {
	store   storage.Store
	pending PendingStore
	sms     SMSSender
}

func NewRegistrationService(store storage.Store, pending PendingStore, sms SMSSender) *RegistrationService {
	return &RegistrationService{store: store, pending: pending, sms: sms}
}

// RegisterInput carries the signup fields after handler-level validation.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Age      int
	Locality string
}

// OTPIssued reports a dispatched code. DebugOTP is set only when the SMS
// transport is running in console mode.
type OTPIssued struct {
	Phone     string
	TempID    string
	ExpiresAt time.Time
	DebugOTP  string
}

// Register checks uniqueness (email before phone), stores a pending
// registration with a hashed OTP, and dispatches the code over SMS.
// Re-registering the same phone overwrites the previous pending entry.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*OTPIssued, error) {
	checkCtx, cancel := context.WithTimeout(ctx, uniquenessTimeout)
	defer cancel()

	emailTaken, err := s.store.EmailExists(checkCtx, in.Email)
	if err != nil {
		if !isTimeout(err) {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		log.Printf("⚠️ Email uniqueness check timed out for %s, proceeding", in.Email)
	}
	if emailTaken {
		return nil, ErrDuplicateEmail
	}

	phoneTaken, err := s.store.PhoneExists(checkCtx, in.Phone)
	if err != nil {
		if !isTimeout(err) {
			return nil, fmt.Errorf("failed to check phone uniqueness: %w", err)
		}
		log.Printf("⚠️ Phone uniqueness check timed out for %s, proceeding", in.Phone)
	}
	if phoneTaken {
		return nil, ErrDuplicatePhone
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashOTP(otp)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP: %w", err)
	}

	now := time.Now()
	pending := &models.PendingRegistration{
		Phone:     in.Phone,
		OTPHash:   hash,
		Email:     in.Email,
		Name:      in.Name,
		Age:       in.Age,
		Locality:  in.Locality,
		TempID:    uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(OTPValidity),
	}
	if err := s.pending.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to store pending registration: %w", err)
	}

	s.dispatchOTP(ctx, in.Phone, otp)

	issued := &OTPIssued{Phone: in.Phone, TempID: pending.TempID, ExpiresAt: pending.ExpiresAt}
	if s.sms.Degraded() {
		issued.DebugOTP = otp
	}
	return issued, nil
}

// Resend regenerates the code for an existing pending registration and
// resets its expiry window.
func (s *RegistrationService) Resend(ctx context.Context, phone string) (*OTPIssued, error) {
	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashOTP(otp)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP: %w", err)
	}

	now := time.Now()
	pending, err := s.pending.Refresh(ctx, phone, hash, now, now.Add(OTPValidity))
	if err != nil {
		return nil, err
	}

	s.dispatchOTP(ctx, phone, otp)

	issued := &OTPIssued{Phone: phone, TempID: pending.TempID, ExpiresAt: pending.ExpiresAt}
	if s.sms.Degraded() {
		issued.DebugOTP = otp
	}
	return issued, nil
}

// Verify consumes the pending registration for phone. On a correct code the
// entry is atomically removed and a verified user is created; at most one
// concurrent verify can win.
func (s *RegistrationService) Verify(ctx context.Context, phone, otp string) (*models.User, error) {
	pending, status, err := s.pending.Consume(ctx, phone, otp)
	if err != nil {
		return nil, err
	}
	switch status {
	case ConsumeNotFound:
		return nil, ErrOTPNotFound
	case ConsumeExpired:
		return nil, ErrOTPExpired
	case ConsumeMismatch:
		return nil, ErrOTPMismatch
	}

	user := &models.User{
		ID:         uuid.New().String(),
		Email:      pending.Email,
		Name:       pending.Name,
		Phone:      pending.Phone,
		Age:        pending.Age,
		Locality:   pending.Locality,
		VerifiedAt: time.Now(),
	}
	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate auth token: %w", err)
	}
	user.AuthToken = token

	if err := s.store.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ User %s verified and registered", user.ID)
	return user, nil
}

// Login returns the user for email along with their stored token.
func (s *RegistrationService) Login(email string) (*models.User, error) {
	user, err := s.store.UserByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UserByID exposes profile lookup for the user routes.
func (s *RegistrationService) UserByID(id string) (*models.User, error) {
	user, err := s.store.UserByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// dispatchOTP sends the code with a bounded deadline. Delivery failure is
// logged but never fails the registration; the user can always resend.
func (s *RegistrationService) dispatchOTP(ctx context.Context, phone, otp string) {
	smsCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	body := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", otp)
	if err := s.sms.Send(smsCtx, phone, body); err != nil {
		log.Printf("❌ Failed to send OTP to %s: %v", phone, err)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
