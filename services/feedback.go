package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/Aryaveer-14/civic-mind/models"
	"github.com/Aryaveer-14/civic-mind/storage"
)

// FeedbackService records satisfaction signals and peer suggestions and
// aggregates them into the public stats report.
type FeedbackService struct {
	store storage.Store
}

func NewFeedbackService(store storage.Store) *FeedbackService {
	return &FeedbackService{store: store}
}

// RecordFeedback stores one satisfaction signal. Issue type and department
// are snapshotted from the complaint's decision so later directory edits do
// not rewrite history; both default to "Unknown" when the complaint is gone.
func (f *FeedbackService) RecordFeedback(complaintID string, satisfied bool) (*models.Feedback, error) {
	issueType := "Unknown"
	department := "Unknown"

	complaint, err := f.store.ComplaintByID(complaintID)
	if err == nil {
		if complaint.Decision.IssueType != "" {
			issueType = complaint.Decision.IssueType
		}
		if complaint.Decision.AuthorityName != "" {
			department = complaint.Decision.AuthorityName
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load complaint: %w", err)
	}

	feedback := &models.Feedback{
		ComplaintID: complaintID,
		Satisfied:   satisfied,
		IssueType:   issueType,
		Department:  department,
	}
	if err := f.store.CreateFeedback(feedback); err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}
	return feedback, nil
}

// AddSuggestion stores a peer suggestion with zeroed rating aggregates.
func (f *FeedbackService) AddSuggestion(complaintID, userID, text string) (*models.Suggestion, error) {
	suggestion := &models.Suggestion{
		ComplaintID: complaintID,
		UserID:      userID,
		Text:        text,
		Ratings:     models.RatingList{},
	}
	if err := f.store.CreateSuggestion(suggestion); err != nil {
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}
	return suggestion, nil
}

// ListSuggestions returns a complaint's suggestions, most helpful first.
func (f *FeedbackService) ListSuggestions(complaintID string) ([]models.Suggestion, error) {
	return f.store.SuggestionsByComplaint(complaintID)
}

// Rate upserts the caller's rating on a suggestion and recomputes its
// aggregates. Ratings are integers in [0, 5]; re-rating replaces the
// caller's previous entry in place.
func (f *FeedbackService) Rate(suggestionID, userID string, rating int) (*models.Suggestion, error) {
	if rating < 0 || rating > 5 {
		return nil, ErrRatingOutOfRange
	}

	suggestion, err := f.store.SuggestionByID(suggestionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion: %w", err)
	}

	replaced := false
	for i := range suggestion.Ratings {
		if suggestion.Ratings[i].UserID == userID {
			suggestion.Ratings[i].Rating = rating
			replaced = true
			break
		}
	}
	if !replaced {
		suggestion.Ratings = append(suggestion.Ratings, models.SuggestionRating{UserID: userID, Rating: rating})
	}
	suggestion.Recompute()

	if err := f.store.UpdateSuggestion(suggestion); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}
	return suggestion, nil
}

// Stats aggregates all feedback into overall and per-issue-type
// satisfaction counts with zero-safe percentages.
func (f *FeedbackService) Stats() (*models.StatsReport, error) {
	rows, err := f.store.AllFeedback()
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	report := &models.StatsReport{ByIssueType: []models.IssueTypeStats{}}
	byType := make(map[string]*models.IssueTypeStats)
	var order []string

	for _, row := range rows {
		report.Overall.Total++
		entry, ok := byType[row.IssueType]
		if !ok {
			entry = &models.IssueTypeStats{IssueType: row.IssueType}
			byType[row.IssueType] = entry
			order = append(order, row.IssueType)
		}
		entry.Total++
		if row.Satisfied {
			report.Overall.Satisfied++
			entry.Satisfied++
		} else {
			report.Overall.NotSatisfied++
			entry.NotSatisfied++
		}
	}

	report.Overall.SatisfiedPercentage = percentage(report.Overall.Satisfied, report.Overall.Total)
	report.Overall.NotSatisfiedPercentage = percentage(report.Overall.NotSatisfied, report.Overall.Total)

	for _, issueType := range order {
		entry := byType[issueType]
		entry.SatisfiedPercentage = percentage(entry.Satisfied, entry.Total)
		entry.NotSatisfiedPercentage = percentage(entry.NotSatisfied, entry.Total)
		report.ByIssueType = append(report.ByIssueType, *entry)
	}

	log.Printf("📊 Stats computed over %d feedback entries", report.Overall.Total)
	return report, nil
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
