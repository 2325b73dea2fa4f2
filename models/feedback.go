package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a satisfaction signal for a complaint. IssueType and
// Department are snapshotted from the complaint's decision at write time so
// historical stats stay stable. Multiple rows per complaint accumulate.
type Feedback struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	ComplaintID string    `json:"complaint_id" gorm:"size:64;index;not null"`
	Satisfied   bool      `json:"satisfied"`
	IssueType   string    `json:"issue_type" gorm:"size:255"`
	Department  string    `json:"department" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets custom table name
func (Feedback) TableName() string { return "feedback" }

// BeforeCreate is a GORM hook that runs before creating a feedback entry
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// IssueTypeStats is the per-issue-type satisfaction breakdown.
type IssueTypeStats struct {
	IssueType              string  `json:"issue_type"`
	Satisfied              int     `json:"satisfied"`
	NotSatisfied           int     `json:"not_satisfied"`
	Total                  int     `json:"total"`
	SatisfiedPercentage    float64 `json:"satisfied_percentage"`
	NotSatisfiedPercentage float64 `json:"not_satisfied_percentage"`
}

// OverallStats is the aggregate satisfaction summary.
type OverallStats struct {
	Total                  int     `json:"total"`
	Satisfied              int     `json:"satisfied"`
	NotSatisfied           int     `json:"not_satisfied"`
	SatisfiedPercentage    float64 `json:"satisfied_percentage"`
	NotSatisfiedPercentage float64 `json:"not_satisfied_percentage"`
}

// StatsReport is the full stats payload.
type StatsReport struct {
	Overall     OverallStats     `json:"overall"`
	ByIssueType []IssueTypeStats `json:"by_issue_type"`
}
