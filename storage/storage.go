// Package storage defines the persistence port for the civic-mind backend
// and its two backends: Postgres (GORM) when DB_URL is configured, and an
// in-process store with identical query semantics otherwise. Nothing outside
// this package branches on the backend in use.
package storage

import (
	"context"
	"errors"

	"github.com/Aryaveer-14/civic-mind/models"
)

// ErrNotFound is returned for point lookups that match nothing.
var ErrNotFound = errors.New("storage: record not found")

// SimilarLimit caps similarity-search results.
const SimilarLimit = 10

// Store is the storage port. Both backends must satisfy the same
// consistency expectations: per-record atomic writes, newest-first history
// ordering, and exact-match equality filters.
type Store interface {
	// Users
	CreateUser(user *models.User) error
	UserByID(id string) (*models.User, error)
	UserByEmail(email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)

	// Complaints
	CreateComplaint(complaint *models.Complaint) error
	ComplaintByID(id string) (*models.Complaint, error)
	ComplaintsByUser(userID string) ([]models.Complaint, error)
	SimilarComplaints(issueType, area, excludeUserID string) ([]models.Complaint, error)

	// Feedback
	CreateFeedback(feedback *models.Feedback) error
	AllFeedback() ([]models.Feedback, error)

	// Suggestions
	CreateSuggestion(suggestion *models.Suggestion) error
	SuggestionByID(id string) (*models.Suggestion, error)
	UpdateSuggestion(suggestion *models.Suggestion) error
	SuggestionsByComplaint(complaintID string) ([]models.Suggestion, error)

	// Authorities
	UpsertAuthority(record *models.AuthorityRecord) (string, error)
	FindAuthority(nameNormalized, areaNormalized string) (*models.AuthorityRecord, error)

	// Name reports the backend kind for the health endpoint.
	Name() string
}
