package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Decision priority levels
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Decision risk levels
const (
	RiskSafety      = "Safety"
	RiskHealth      = "Health"
	RiskEnvironment = "Environment"
	RiskLow         = "Low"
)

// Analysis modes recorded on a complaint
const (
	ModeGemini   = "gemini-vision"
	ModeFallback = "fallback"
)

// Decision is the structured output of classifying a complaint. It is
// embedded in the complaint row; IssueType is the join key for similarity
// search and defaults to Problem when the classifier omits it.
type Decision struct {
	Problem       string  `json:"problem" gorm:"type:text"`
	Area          string  `json:"area" gorm:"size:255;index"`
	Solution      string  `json:"solution" gorm:"type:text"`
	AuthorityName string  `json:"concerned_authority" gorm:"size:255"`
	ContactInfo   string  `json:"contact_information" gorm:"type:text"`
	Priority      string  `json:"priority" gorm:"size:20"`
	RiskLevel     string  `json:"risk_level" gorm:"size:20"`
	IssueType     string  `json:"issue_type" gorm:"size:255;index"`
	ImageAnalysis *string `json:"image_analysis" gorm:"type:text"`
}

// Complaint is an analyzed civic complaint. Immutable after creation;
// feedback and suggestions reference it by ID.
type Complaint struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	UserID    string    `json:"user_id" gorm:"size:64;index;not null"`
	RawText   string    `json:"complaint_text" gorm:"type:text"`
	HasMedia  bool      `json:"has_image"`
	MediaKind string    `json:"media_kind" gorm:"size:20"`
	MediaURL  *string   `json:"media_url" gorm:"size:512"`
	Decision  Decision  `json:"ai_decision" gorm:"embedded"`
	Mode      string    `json:"ai_mode" gorm:"size:30"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for the Complaint model
func (Complaint) TableName() string {
	return "complaints"
}

// BeforeCreate is a GORM hook that runs before creating a complaint
func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
