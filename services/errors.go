package services

import "errors"

// Sentinel errors surfaced to the route layer. Handlers map these to HTTP
// statuses; anything else is treated as an internal failure.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicatePhone = errors.New("phone number already registered")

	ErrOTPNotFound = errors.New("no pending registration for this number")
	ErrOTPExpired  = errors.New("OTP expired")
	ErrOTPMismatch = errors.New("invalid OTP")

	ErrUserNotFound      = errors.New("user not found")
	ErrComplaintNotFound = errors.New("complaint not found")

	ErrRatingOutOfRange = errors.New("rating must be between 0 and 5")
)
