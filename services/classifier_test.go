package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryaveer-14/civic-mind/models"
)

func geminiStub(t *testing.T, status int, candidateText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			body := map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{
						"parts": []map[string]string{{"text": candidateText}},
					}},
				},
			}
			writeJSON(t, w, body)
			return
		}
		writeJSON(t, w, map[string]interface{}{"error": map[string]string{"message": "quota exceeded"}})
	}))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClassifyUsesGeminiDecision(t *testing.T) {
	candidate := "Here is the analysis:\n" +
		`{"problem":"Pothole on main road","area":"sector 12","solution":"Repair the road",` +
		`"concerned_authority":"Municipal Public Works","contact_information":"1800-100-100",` +
		`"priority":"High","risk_level":"Safety","image_analysis":null}`
	srv := geminiStub(t, http.StatusOK, candidate)
	defer srv.Close()

	c := NewClassifier("test-key", srv.URL)
	decision, mode := c.Classify(context.Background(), "pothole on main road", nil, "")

	assert.Equal(t, models.ModeGemini, mode)
	assert.Equal(t, "Municipal Public Works", decision.AuthorityName)
	assert.Equal(t, "Pothole on main road", decision.Problem)
	assert.Equal(t, models.PriorityHigh, decision.Priority)
}

func TestClassifyFallsBackOnAPIError(t *testing.T) {
	srv := geminiStub(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	c := NewClassifier("test-key", srv.URL)
	decision, mode := c.Classify(context.Background(), "garbage everywhere", nil, "")

	assert.Equal(t, models.ModeFallback, mode)
	assert.Equal(t, "Municipal Sanitation Department", decision.AuthorityName)
}

func TestClassifyFallsBackOnMalformedOutput(t *testing.T) {
	srv := geminiStub(t, http.StatusOK, "sorry, I cannot help with that")
	defer srv.Close()

	c := NewClassifier("test-key", srv.URL)
	decision, mode := c.Classify(context.Background(), "water leak in nagar street", nil, "")

	assert.Equal(t, models.ModeFallback, mode)
	assert.Equal(t, "Water Supply & Sewerage Board", decision.AuthorityName)
	assert.Equal(t, models.RiskHealth, decision.RiskLevel)
}

func TestClassifyWithoutAPIKey(t *testing.T) {
	c := NewClassifier("", "http://unused.invalid")
	assert.False(t, c.Enabled())

	decision, mode := c.Classify(context.Background(), "crime in the colony", nil, "")
	assert.Equal(t, models.ModeFallback, mode)
	assert.Equal(t, "Local Police Station", decision.AuthorityName)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{`prefix {"a":"}"} suffix`, `{"a":"}"}`},
		{"no json here", ""},
		{`{"unbalanced":`, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extractJSON(tc.in), "input: %s", tc.in)
	}
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", mimeTypeFor("photo.PNG"))
	assert.Equal(t, "image/gif", mimeTypeFor("anim.gif"))
	assert.Equal(t, "image/webp", mimeTypeFor("pic.webp"))
	assert.Equal(t, "image/jpeg", mimeTypeFor("pic.jpg"))
	assert.Equal(t, "image/jpeg", mimeTypeFor(""))
}
