package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Aryaveer-14/civic-mind/models"
	"github.com/Aryaveer-14/civic-mind/storage"
)

// AuthorityService maintains the authority contact directory and enriches
// classifier decisions with canonical contact details.
type AuthorityService struct {
	store storage.Store
}

func NewAuthorityService(store storage.Store) *AuthorityService {
	return &AuthorityService{store: store}
}

// Normalize collapses an authority name or area for matching.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AuthorityInput is the upsert payload after handler validation.
type AuthorityInput struct {
	Name        string   `json:"name" binding:"required"`
	Department  string   `json:"department"`
	Area        string   `json:"area"`
	Phone       *string  `json:"phone"`
	Email       *string  `json:"email"`
	Website     *string  `json:"website"`
	Address     *string  `json:"address"`
	OfficeHours *string  `json:"office_hours"`
	Aliases     []string `json:"aliases"`
}

// Upsert creates or merges the directory entry keyed by normalized
// name + area. Non-nil contact fields overwrite; nil fields preserve the
// stored value.
func (a *AuthorityService) Upsert(in AuthorityInput) (*models.AuthorityRecord, error) {
	nameN := Normalize(in.Name)
	areaN := Normalize(in.Area)

	aliasesN := make([]string, 0, len(in.Aliases))
	for _, alias := range in.Aliases {
		if n := Normalize(alias); n != "" {
			aliasesN = append(aliasesN, n)
		}
	}

	record := &models.AuthorityRecord{
		ID:                nameN + "__" + areaN,
		Name:              strings.TrimSpace(in.Name),
		Department:        in.Department,
		Area:              strings.TrimSpace(in.Area),
		Phone:             in.Phone,
		Email:             in.Email,
		Website:           in.Website,
		Address:           in.Address,
		OfficeHours:       in.OfficeHours,
		Aliases:           in.Aliases,
		NameNormalized:    nameN,
		AreaNormalized:    areaN,
		AliasesNormalized: aliasesN,
	}

	if _, err := a.store.UpsertAuthority(record); err != nil {
		return nil, fmt.Errorf("failed to upsert authority: %w", err)
	}
	log.Printf("✅ Authority directory updated: %s", record.ID)
	return record, nil
}

// Lookup finds the entry for an authority name, constrained to the given
// area when one is known. Returns nil on a clean miss.
func (a *AuthorityService) Lookup(name, area string) (*models.AuthorityRecord, error) {
	record, err := a.store.FindAuthority(Normalize(name), Normalize(area))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Enrich replaces the decision's authority name and contact details with
// directory data when a match exists. A miss or lookup failure leaves the
// decision untouched.
func (a *AuthorityService) Enrich(decision *models.Decision) {
	record, err := a.Lookup(decision.AuthorityName, decision.Area)
	if err != nil {
		log.Printf("⚠️ Authority lookup failed for %q: %v", decision.AuthorityName, err)
		return
	}
	if record == nil {
		return
	}

	decision.AuthorityName = record.Name

	var parts []string
	if record.Phone != nil && *record.Phone != "" {
		parts = append(parts, "Phone: "+*record.Phone)
	}
	if record.Email != nil && *record.Email != "" {
		parts = append(parts, "Email: "+*record.Email)
	}
	if record.Website != nil && *record.Website != "" {
		parts = append(parts, "Website: "+*record.Website)
	}
	if len(parts) > 0 {
		decision.ContactInfo = strings.Join(parts, "; ")
	}
}
