package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Aryaveer-14/civic-mind/models"
)

// Memory is the in-process fallback backend, used when no DB_URL is
// configured or the database is unreachable at startup. Each collection has
// its own writer lock; query semantics mirror the Postgres backend.
type Memory struct {
	usersMu sync.RWMutex
	users   []models.User

	complaintsMu sync.RWMutex
	complaints   []models.Complaint

	feedbackMu sync.RWMutex
	feedback   []models.Feedback

	suggestionsMu sync.RWMutex
	suggestions   []models.Suggestion

	authoritiesMu sync.RWMutex
	authorities   []models.AuthorityRecord
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string { return "in-memory" }

/* ---- users ---- */

func (m *Memory) CreateUser(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	m.users = append(m.users, *user)
	return nil
}

func (m *Memory) UserByID(id string) (*models.User, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UserByEmail(email string) (*models.User, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) EmailExists(ctx context.Context, email string) (bool, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	for i := range m.users {
		if m.users[i].Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) PhoneExists(ctx context.Context, phone string) (bool, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	for i := range m.users {
		if m.users[i].Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

/* ---- complaints ---- */

func (m *Memory) CreateComplaint(complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.New().String()
	}
	m.complaintsMu.Lock()
	defer m.complaintsMu.Unlock()
	m.complaints = append(m.complaints, *complaint)
	return nil
}

func (m *Memory) ComplaintByID(id string) (*models.Complaint, error) {
	m.complaintsMu.RLock()
	defer m.complaintsMu.RUnlock()
	for i := range m.complaints {
		if m.complaints[i].ID == id {
			c := m.complaints[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ComplaintsByUser(userID string) ([]models.Complaint, error) {
	m.complaintsMu.RLock()
	defer m.complaintsMu.RUnlock()
	var out []models.Complaint
	for i := range m.complaints {
		if m.complaints[i].UserID == userID {
			out = append(out, m.complaints[i])
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) SimilarComplaints(issueType, area, excludeUserID string) ([]models.Complaint, error) {
	m.complaintsMu.RLock()
	defer m.complaintsMu.RUnlock()
	var out []models.Complaint
	for i := range m.complaints {
		c := &m.complaints[i]
		if c.Decision.IssueType == issueType && c.Decision.Area == area && c.UserID != excludeUserID {
			out = append(out, *c)
		}
	}
	sortNewestFirst(out)
	if len(out) > SimilarLimit {
		out = out[:SimilarLimit]
	}
	return out, nil
}

func sortNewestFirst(complaints []models.Complaint) {
	sort.SliceStable(complaints, func(i, j int) bool {
		return complaints[i].CreatedAt.After(complaints[j].CreatedAt)
	})
}

/* ---- feedback ---- */

func (m *Memory) CreateFeedback(feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	m.feedbackMu.Lock()
	defer m.feedbackMu.Unlock()
	m.feedback = append(m.feedback, *feedback)
	return nil
}

func (m *Memory) AllFeedback() ([]models.Feedback, error) {
	m.feedbackMu.RLock()
	defer m.feedbackMu.RUnlock()
	out := make([]models.Feedback, len(m.feedback))
	copy(out, m.feedback)
	return out, nil
}

/* ---- suggestions ---- */

func (m *Memory) CreateSuggestion(suggestion *models.Suggestion) error {
	if suggestion.ID == "" {
		suggestion.ID = uuid.New().String()
	}
	m.suggestionsMu.Lock()
	defer m.suggestionsMu.Unlock()
	m.suggestions = append(m.suggestions, *suggestion)
	return nil
}

func (m *Memory) SuggestionByID(id string) (*models.Suggestion, error) {
	m.suggestionsMu.RLock()
	defer m.suggestionsMu.RUnlock()
	for i := range m.suggestions {
		if m.suggestions[i].ID == id {
			s := m.suggestions[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateSuggestion(suggestion *models.Suggestion) error {
	m.suggestionsMu.Lock()
	defer m.suggestionsMu.Unlock()
	for i := range m.suggestions {
		if m.suggestions[i].ID == suggestion.ID {
			m.suggestions[i] = *suggestion
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) SuggestionsByComplaint(complaintID string) ([]models.Suggestion, error) {
	m.suggestionsMu.RLock()
	defer m.suggestionsMu.RUnlock()
	var out []models.Suggestion
	for i := range m.suggestions {
		if m.suggestions[i].ComplaintID == complaintID {
			out = append(out, m.suggestions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HelpfulCount > out[j].HelpfulCount
	})
	return out, nil
}

/* ---- authorities ---- */

func (m *Memory) UpsertAuthority(record *models.AuthorityRecord) (string, error) {
	m.authoritiesMu.Lock()
	defer m.authoritiesMu.Unlock()
	for i := range m.authorities {
		if m.authorities[i].ID == record.ID {
			existing := m.authorities[i]
			mergeAuthority(&existing, record)
			m.authorities[i] = existing
			*record = existing
			return record.ID, nil
		}
	}
	m.authorities = append(m.authorities, *record)
	return record.ID, nil
}

func (m *Memory) FindAuthority(nameNormalized, areaNormalized string) (*models.AuthorityRecord, error) {
	m.authoritiesMu.RLock()
	defer m.authoritiesMu.RUnlock()

	areaMatches := func(r *models.AuthorityRecord) bool {
		return areaNormalized == "" || r.AreaNormalized == areaNormalized
	}

	for i := range m.authorities {
		r := &m.authorities[i]
		if r.NameNormalized == nameNormalized && areaMatches(r) {
			found := *r
			return &found, nil
		}
	}
	for i := range m.authorities {
		r := &m.authorities[i]
		if !areaMatches(r) {
			continue
		}
		for _, alias := range r.AliasesNormalized {
			if alias == nameNormalized {
				found := *r
				return &found, nil
			}
		}
	}
	return nil, ErrNotFound
}

// mergeAuthority applies merge semantics: incoming non-nil contact fields
// overwrite, nil fields preserve the prior value; name/department/area and
// aliases follow last-write-wins when non-empty.
func mergeAuthority(existing, incoming *models.AuthorityRecord) {
	if incoming.Name != "" {
		existing.Name = incoming.Name
		existing.NameNormalized = incoming.NameNormalized
	}
	if incoming.Department != "" {
		existing.Department = incoming.Department
	}
	if incoming.Area != "" || incoming.AreaNormalized != "" {
		existing.Area = incoming.Area
		existing.AreaNormalized = incoming.AreaNormalized
	}
	if incoming.Phone != nil {
		existing.Phone = incoming.Phone
	}
	if incoming.Email != nil {
		existing.Email = incoming.Email
	}
	if incoming.Website != nil {
		existing.Website = incoming.Website
	}
	if incoming.Address != nil {
		existing.Address = incoming.Address
	}
	if incoming.OfficeHours != nil {
		existing.OfficeHours = incoming.OfficeHours
	}
	if len(incoming.Aliases) > 0 {
		existing.Aliases = incoming.Aliases
		existing.AliasesNormalized = incoming.AliasesNormalized
	}
}

// normalizeKey is shared by tests to assert key construction matches the
// service layer.
func normalizeKey(name, area string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "__" + strings.ToLower(strings.TrimSpace(area))
}
