package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aryaveer-14/civic-mind/models"
)

func TestFallbackPothole(t *testing.T) {
	d := Fallback("There is a huge pothole near sector 12 market", false)

	assert.Equal(t, "Municipal Public Works", d.AuthorityName)
	assert.Equal(t, models.PriorityMedium, d.Priority)
	assert.Equal(t, models.RiskSafety, d.RiskLevel)
	assert.Equal(t, "sector 12 market", d.Area)
	assert.Equal(t, "File a road maintenance request with exact location and photos.", d.Solution)
	assert.Nil(t, d.ImageAnalysis)
}

func TestFallbackAuthorityRules(t *testing.T) {
	cases := []struct {
		text      string
		authority string
	}{
		{"garbage piling up for weeks", "Municipal Sanitation Department"},
		{"water leak flooding the lane", "Water Supply & Sewerage Board"},
		{"streetlight not working at night", "Electricity Board"},
		{"loud noise from the factory", "Pollution Control Board"},
		{"theft reported twice this month", "Local Police Station"},
		{"something unclassifiable happened", "Municipal Office"},
	}
	for _, tc := range cases {
		d := Fallback(tc.text, false)
		assert.Equal(t, tc.authority, d.AuthorityName, "text: %s", tc.text)
	}
}

func TestFallbackFirstRuleWins(t *testing.T) {
	// "road" (rule 1) beats "garbage" (rule 2) even though both appear.
	d := Fallback("garbage dumped on the road", false)
	assert.Equal(t, "Municipal Public Works", d.AuthorityName)
}

func TestFallbackMediaEscalation(t *testing.T) {
	d := Fallback("broken bench", true)
	assert.Equal(t, models.PriorityHigh, d.Priority)
	if assert.NotNil(t, d.ImageAnalysis) {
		assert.Contains(t, *d.ImageAnalysis, "fallback")
	}

	// Media with no text still yields a complete decision.
	d = Fallback("", true)
	assert.Equal(t, "Issue evidenced in attached image", d.Problem)
	assert.Equal(t, "Unknown", d.Area)
	assert.Equal(t, "Municipal Office", d.AuthorityName)
}

func TestFallbackRiskKeywords(t *testing.T) {
	assert.Equal(t, models.RiskHealth, Fallback("sewage overflow in the colony", false).RiskLevel)
	assert.Equal(t, models.RiskHealth, Fallback("pipe leak everywhere", false).RiskLevel)
	assert.Equal(t, models.RiskLow, Fallback("noise at night", false).RiskLevel)
}

func TestFallbackProblemTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	d := Fallback(long, false)
	assert.Len(t, []rune(d.Problem), 160)
}

func TestFallbackAreaDefault(t *testing.T) {
	d := Fallback("garbage everywhere", false)
	assert.Equal(t, "Unknown", d.Area)

	d = Fallback("garbage in block B9 near the park", false)
	assert.True(t, strings.HasPrefix(d.Area, "block b9"))
}
