package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SuggestionRating is one user's star rating on a suggestion.
type SuggestionRating struct {
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
}

// RatingList is stored as a JSONB column. Order is preserved; the invariant
// is at most one entry per user_id (re-rating replaces in place).
type RatingList []SuggestionRating

// Value implements driver.Valuer for JSONB storage.
func (r RatingList) Value() (driver.Value, error) {
	if r == nil {
		r = RatingList{}
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB storage.
func (r *RatingList) Scan(value interface{}) error {
	if value == nil {
		*r = RatingList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported type for RatingList: %T", value)
	}
}

// Suggestion is a peer-submitted solution for a complaint. Rating is the
// arithmetic mean of all entries in Ratings; HelpfulCount counts entries
// with rating >= 3. Both are recomputed on every rate call.
type Suggestion struct {
	ID           string     `json:"id" gorm:"primaryKey;size:64"`
	ComplaintID  string     `json:"complaint_id" gorm:"size:64;index;not null"`
	UserID       string     `json:"user_id" gorm:"size:64;not null"`
	Text         string     `json:"suggestion_text" gorm:"type:text;not null"`
	Ratings      RatingList `json:"ratings" gorm:"type:jsonb"`
	Rating       float64    `json:"rating"`
	HelpfulCount int        `json:"helpful_count"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Suggestion model
func (Suggestion) TableName() string {
	return "suggestions"
}

// BeforeCreate is a GORM hook that runs before creating a suggestion
func (s *Suggestion) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Recompute refreshes the derived Rating and HelpfulCount from Ratings.
func (s *Suggestion) Recompute() {
	if len(s.Ratings) == 0 {
		s.Rating = 0
		s.HelpfulCount = 0
		return
	}
	sum := 0
	helpful := 0
	for _, r := range s.Ratings {
		sum += r.Rating
		if r.Rating >= 3 {
			helpful++
		}
	}
	s.Rating = float64(sum) / float64(len(s.Ratings))
	s.HelpfulCount = helpful
}
