package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryaveer-14/civic-mind/models"
	"github.com/Aryaveer-14/civic-mind/storage"
)

func str(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	assert.Equal(t, "municipal public works", Normalize("  Municipal Public Works "))
	assert.Equal(t, "", Normalize("   "))
}

func TestAuthorityUpsertAndLookup(t *testing.T) {
	svc := NewAuthorityService(storage.NewMemory())

	record, err := svc.Upsert(AuthorityInput{
		Name:    "Municipal Public Works",
		Area:    "Sector 12",
		Phone:   str("1800-100-100"),
		Aliases: []string{"Public Works Dept", "PWD"},
	})
	require.NoError(t, err)
	assert.Equal(t, "municipal public works__sector 12", record.ID)

	found, err := svc.Lookup("MUNICIPAL PUBLIC WORKS", "sector 12")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Municipal Public Works", found.Name)

	// Alias lookup, case-insensitive.
	found, err = svc.Lookup("pwd", "Sector 12")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Municipal Public Works", found.Name)

	// Clean miss returns nil, nil.
	found, err = svc.Lookup("unknown body", "sector 12")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAuthorityUpsertMergesContacts(t *testing.T) {
	svc := NewAuthorityService(storage.NewMemory())

	_, err := svc.Upsert(AuthorityInput{
		Name:  "Electricity Board",
		Area:  "sector 4",
		Phone: str("1912"),
		Email: str("eb@city.gov"),
	})
	require.NoError(t, err)

	// Second write carries only a website; phone and email survive.
	_, err = svc.Upsert(AuthorityInput{
		Name:    "Electricity Board",
		Area:    "sector 4",
		Website: str("https://eb.city.gov"),
	})
	require.NoError(t, err)

	found, err := svc.Lookup("electricity board", "sector 4")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.Phone)
	assert.Equal(t, "1912", *found.Phone)
	require.NotNil(t, found.Email)
	require.NotNil(t, found.Website)
}

func TestEnrich(t *testing.T) {
	svc := NewAuthorityService(storage.NewMemory())

	_, err := svc.Upsert(AuthorityInput{
		Name:    "Water Supply & Sewerage Board",
		Area:    "sector 7",
		Phone:   str("1916"),
		Website: str("https://water.city.gov"),
		Aliases: []string{"Water Board"},
	})
	require.NoError(t, err)

	decision := models.Decision{
		AuthorityName: "water board",
		Area:          "Sector 7",
		ContactInfo:   "call the helpline",
	}
	svc.Enrich(&decision)

	assert.Equal(t, "Water Supply & Sewerage Board", decision.AuthorityName)
	assert.Equal(t, "Phone: 1916; Website: https://water.city.gov", decision.ContactInfo)
}

func TestEnrichMissLeavesDecisionUntouched(t *testing.T) {
	svc := NewAuthorityService(storage.NewMemory())

	decision := models.Decision{
		AuthorityName: "Municipal Office",
		Area:          "Unknown",
		ContactInfo:   "call the helpline",
	}
	svc.Enrich(&decision)

	assert.Equal(t, "Municipal Office", decision.AuthorityName)
	assert.Equal(t, "call the helpline", decision.ContactInfo)
}
