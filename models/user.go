package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a verified citizen account. Users are only ever created by a
// successful OTP verification; email and phone are unique across the
// whole population.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	Email      string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	Phone      string    `json:"contact_number" gorm:"size:20;uniqueIndex;not null"`
	Age        int       `json:"age"`
	Locality   string    `json:"locality" gorm:"size:255"`
	AuthToken  string    `json:"-" gorm:"size:512"` // Hidden from JSON
	VerifiedAt time.Time `json:"verified_at"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// PendingRegistration is the ephemeral registration state keyed by phone.
// It never touches the document store: it lives in the pending store
// (in-process map or redis) until verified or expired, whichever first.
type PendingRegistration struct {
	Phone     string    `json:"contact_number"`
	OTPHash   string    `json:"otp_hash"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Locality  string    `json:"locality"`
	TempID    string    `json:"temp_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the registration window has closed.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
