package models

import (
	"time"

	"github.com/lib/pq"
)

// AuthorityRecord is a canonical civic-authority contact entry, keyed by
// normalized name + normalized area. Aliases allow lookup under the loose
// names the classifier produces. Contact fields are pointers so an upsert
// can merge: non-nil overwrites, nil preserves the prior value.
type AuthorityRecord struct {
	ID          string         `json:"id" gorm:"primaryKey;size:255"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Department  string         `json:"department" gorm:"size:255"`
	Phone       *string        `json:"phone" gorm:"size:50"`
	Email       *string        `json:"email" gorm:"size:255"`
	Website     *string        `json:"website" gorm:"size:255"`
	Address     *string        `json:"address" gorm:"size:512"`
	OfficeHours *string        `json:"office_hours" gorm:"size:255"`
	Area        string         `json:"area" gorm:"size:255"`
	Aliases     pq.StringArray `json:"aliases" gorm:"type:text[]"`

	NameNormalized    string         `json:"-" gorm:"size:255;index"`
	AreaNormalized    string         `json:"-" gorm:"size:255;index"`
	AliasesNormalized pq.StringArray `json:"-" gorm:"type:text[]"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the AuthorityRecord model
func (AuthorityRecord) TableName() string {
	return "authorities"
}
