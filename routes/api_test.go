package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryaveer-14/civic-mind/config"
	"github.com/Aryaveer-14/civic-mind/services"
	"github.com/Aryaveer-14/civic-mind/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Load()
	m.Run()
}

func newTestRouter() *gin.Engine {
	store := storage.NewMemory()
	pending := services.NewMemoryPendingStore()
	sms := &services.ConsoleSender{}
	classifier := services.NewClassifier("", "")

	return NewRouter(Deps{
		Store:        store,
		Registration: services.NewRegistrationService(store, pending, sms),
		Classifier:   classifier,
		Authorities:  services.NewAuthorityService(store),
		Feedback:     services.NewFeedbackService(store),
		Media:        services.NewMediaService(),
		SMS:          sms,
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func registerAndVerify(t *testing.T, router *gin.Engine, email, phone string) string {
	t.Helper()
	w, resp := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"email":          email,
		"name":           "Asha",
		"contact_number": phone,
		"age":            29,
		"locality":       "sector 12",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	otp, _ := resp["otp"].(string)
	require.Len(t, otp, 6, "console SMS mode must expose the OTP")

	w, resp = doJSON(t, router, http.MethodPost, "/verify-otp", gin.H{
		"contact_number": phone,
		"otp":            otp,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, resp["token"])
	userID, _ := resp["user_id"].(string)
	require.NotEmpty(t, userID)
	return userID
}

func TestHealthAndRoot(t *testing.T) {
	router := newTestRouter()

	w, resp := doJSON(t, router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Civic Backend API Running", resp["message"])

	w, resp = doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svcs := resp["services"].(map[string]interface{})
	assert.Equal(t, "in-memory", svcs["database"])
	assert.Equal(t, "console", svcs["sms"])
	assert.Equal(t, "disabled", svcs["ai"])
}

func TestRegistrationFlow(t *testing.T) {
	router := newTestRouter()

	userID := registerAndVerify(t, router, "asha@example.com", "+911111111111")

	// Duplicate email is rejected before the phone check.
	w, resp := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"email":          "asha@example.com",
		"name":           "Other",
		"contact_number": "+912222222222",
		"age":            40,
		"locality":       "sector 9",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", resp["error"])

	// Login returns the stored token.
	w, resp = doJSON(t, router, http.MethodPost, "/login", gin.H{"email": "asha@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, resp["user_id"])
	assert.NotEmpty(t, resp["token"])

	w, _ = doJSON(t, router, http.MethodPost, "/login", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Profile lookup.
	w, resp = doJSON(t, router, http.MethodGet, "/user/"+userID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "asha@example.com", user["email"])

	w, _ = doJSON(t, router, http.MethodGet, "/user/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyErrors(t *testing.T) {
	router := newTestRouter()

	w, resp := doJSON(t, router, http.MethodPost, "/verify-otp", gin.H{
		"contact_number": "+913333333333",
		"otp":            "123456",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "OTP not found")

	w, resp = doJSON(t, router, http.MethodPost, "/register", gin.H{
		"email":          "v@example.com",
		"name":           "V",
		"contact_number": "+913333333333",
		"age":            30,
		"locality":       "sector 1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	otp := resp["otp"].(string)

	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}
	w, resp = doJSON(t, router, http.MethodPost, "/verify-otp", gin.H{
		"contact_number": "+913333333333",
		"otp":            wrong,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "Invalid OTP")
}

func TestComplaintLifecycle(t *testing.T) {
	router := newTestRouter()
	reporter := registerAndVerify(t, router, "reporter@example.com", "+914444444444")
	neighbor := registerAndVerify(t, router, "neighbor@example.com", "+915555555555")

	// No user: 401. No content: 400.
	w, _ := doJSON(t, router, http.MethodPost, "/analyze", gin.H{"text": "pothole"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = doJSON(t, router, http.MethodPost, "/analyze", gin.H{"user_id": reporter})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	text := "Huge pothole near sector 12"
	w, resp := doJSON(t, router, http.MethodPost, "/analyze", gin.H{
		"user_id": reporter,
		"text":    text,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "fallback", resp["mode"])
	complaintID := resp["complaint_id"].(string)
	decision := resp["ai_decision"].(map[string]interface{})
	assert.Equal(t, "Municipal Public Works", decision["concerned_authority"])
	assert.Equal(t, "Medium", decision["priority"])
	issueType := decision["issue_type"].(string)
	area := decision["area"].(string)
	assert.Equal(t, text, issueType)

	// A second complaint with the same text lands in the same bucket.
	w, _ = doJSON(t, router, http.MethodPost, "/analyze", gin.H{"user_id": neighbor, "text": text})
	require.Equal(t, http.StatusOK, w.Code)

	// History is scoped per user.
	w, resp = doJSON(t, router, http.MethodGet, "/user/"+reporter+"/complaints", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["total"])

	// Similar problems exclude the requester's own complaint.
	query := fmt.Sprintf("/similar-problems?issue_type=%s&area=%s&user_id=%s",
		urlEncode(issueType), urlEncode(area), reporter)
	w, resp = doJSON(t, router, http.MethodGet, query, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), resp["total"])
	problems := resp["problems"].([]interface{})
	first := problems[0].(map[string]interface{})
	assert.Equal(t, neighbor, first["user_id"])

	w, _ = doJSON(t, router, http.MethodGet, "/similar-problems?issue_type=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Feedback and stats.
	w, _ = doJSON(t, router, http.MethodPost, "/feedback", gin.H{
		"complaint_id": complaintID,
		"satisfied":    true,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	overall := resp["overall"].(map[string]interface{})
	assert.Equal(t, float64(1), overall["total"])
	assert.Equal(t, float64(100), overall["satisfied_percentage"])
}

func TestAuthorityEnrichmentOverAPI(t *testing.T) {
	router := newTestRouter()
	reporter := registerAndVerify(t, router, "r@example.com", "+916666666666")

	w, resp := doJSON(t, router, http.MethodPost, "/authorities/upsert", gin.H{
		"name":    "Municipal Public Works",
		"area":    "sector 12",
		"phone":   "1800-100-100",
		"email":   "works@city.gov",
		"aliases": []string{"PWD"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "municipal public works__sector 12", resp["id"])

	w, resp = doJSON(t, router, http.MethodPost, "/analyze", gin.H{
		"user_id": reporter,
		"text":    "deep pothole in sector 12",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decision := resp["ai_decision"].(map[string]interface{})
	assert.Equal(t, "Municipal Public Works", decision["concerned_authority"])
	assert.Equal(t, "Phone: 1800-100-100; Email: works@city.gov", decision["contact_information"])

	w, _ = doJSON(t, router, http.MethodPost, "/authorities/upsert", gin.H{"area": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestionFlow(t *testing.T) {
	router := newTestRouter()
	reporter := registerAndVerify(t, router, "s@example.com", "+917777777777")

	w, resp := doJSON(t, router, http.MethodPost, "/analyze", gin.H{
		"user_id": reporter,
		"text":    "garbage pileup in block A3",
	})
	require.Equal(t, http.StatusOK, w.Code)
	complaintID := resp["complaint_id"].(string)

	w, resp = doJSON(t, router, http.MethodPost, "/suggestions", gin.H{
		"complaint_id":    complaintID,
		"user_id":         "helper-1",
		"suggestion_text": "Call the sanitation office on Mondays",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	suggestionID := resp["suggestion_id"].(string)

	// Legacy field names still accepted.
	w, _ = doJSON(t, router, http.MethodPost, "/suggestions", gin.H{
		"complaint_id": complaintID,
		"suggested_by": "helper-2",
		"text":         "Escalate to the ward councillor",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, router, http.MethodPost, "/suggestions/"+suggestionID+"/rate", gin.H{
		"user_id": "voter-1",
		"rating":  5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), resp["rating"])
	assert.Equal(t, float64(1), resp["helpful_count"])

	// Re-rating replaces the previous vote.
	w, resp = doJSON(t, router, http.MethodPost, "/suggestions/"+suggestionID+"/rate", gin.H{
		"user_id": "voter-1",
		"rating":  2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["rating"])
	assert.Equal(t, float64(0), resp["helpful_count"])

	w, resp = doJSON(t, router, http.MethodPost, "/suggestions/"+suggestionID+"/rate", gin.H{
		"user_id": "voter-1",
		"rating":  9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "between 0 and 5")

	w, _ = doJSON(t, router, http.MethodPost, "/suggestions/missing/rate", gin.H{
		"user_id": "voter-1",
		"rating":  3,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = doJSON(t, router, http.MethodGet, "/suggestions/"+complaintID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["total"])
}

func urlEncode(s string) string {
	return url.QueryEscape(s)
}
