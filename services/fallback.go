package services

import (
	"regexp"
	"strings"

	"github.com/Aryaveer-14/civic-mind/models"
)

// fallbackRule maps complaint keywords to the responsible authority. Rules
// are evaluated in order; the first matching keyword wins.
type fallbackRule struct {
	keywords  []string
	authority string
}

var fallbackRules = []fallbackRule{
	{[]string{"pothole", "road", "street"}, "Municipal Public Works"},
	{[]string{"garbage", "trash", "waste"}, "Municipal Sanitation Department"},
	{[]string{"water", "leak", "sewage"}, "Water Supply & Sewerage Board"},
	{[]string{"electric", "streetlight", "power"}, "Electricity Board"},
	{[]string{"noise", "pollution", "air"}, "Pollution Control Board"},
	{[]string{"crime", "theft", "police"}, "Local Police Station"},
}

const defaultAuthority = "Municipal Office"

var fallbackSolutions = map[string]string{
	"Electricity Board":               "Report to Electricity Board helpline and share pole/location details.",
	"Municipal Sanitation Department": "Request immediate garbage pickup and schedule regular cleaning.",
	"Municipal Public Works":          "File a road maintenance request with exact location and photos.",
}

const defaultSolution = "Submit a formal complaint to the concerned authority and attach evidence."

var areaPattern = regexp.MustCompile(`\b(sector\s*\d+|road|marg|nagar|colony|block\s*[a-z0-9]+|phase\s*\d+)\b[\w\s-]*`)

// Fallback classifies a complaint with deterministic keyword rules. It is
// used whenever the AI stage is unavailable, errors, or returns malformed
// output, so it must always produce a complete decision.
func Fallback(text string, hasMedia bool) models.Decision {
	lower := strings.ToLower(text)

	authority := defaultAuthority
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				authority = rule.authority
				break
			}
		}
		if authority != defaultAuthority {
			break
		}
	}

	area := "Unknown"
	if match := areaPattern.FindString(lower); match != "" {
		area = strings.TrimSpace(match)
	}

	problem := truncateRunes(text, 160)
	if problem == "" {
		if hasMedia {
			problem = "Issue evidenced in attached image"
		} else {
			problem = "General civic issue"
		}
	}

	solution := defaultSolution
	if s, ok := fallbackSolutions[authority]; ok {
		solution = s
	}

	priority := models.PriorityMedium
	if hasMedia {
		priority = models.PriorityHigh
	}

	risk := models.RiskLow
	switch {
	case strings.Contains(lower, "leak") || strings.Contains(lower, "sewage"):
		risk = models.RiskHealth
	case strings.Contains(lower, "pothole"):
		risk = models.RiskSafety
	}

	decision := models.Decision{
		Problem:       problem,
		Area:          area,
		Solution:      solution,
		AuthorityName: authority,
		ContactInfo:   "Visit local office or call city helpline (dial 100/102 where applicable).",
		Priority:      priority,
		RiskLevel:     risk,
		IssueType:     problem,
	}
	if hasMedia {
		note := "Image received; AI quota exceeded, used fallback analysis."
		decision.ImageAnalysis = &note
	}
	return decision
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
