package routes

import (
	"encoding/base64"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Aryaveer-14/civic-mind/models"
	"github.com/Aryaveer-14/civic-mind/services"
	"github.com/Aryaveer-14/civic-mind/storage"
)

// maxUploadBytes caps complaint image size at 8 MB.
const maxUploadBytes = 8 << 20

// AnalyzeJSONRequest is the non-multipart /analyze payload. The image, if
// any, arrives base64-encoded.
type AnalyzeJSONRequest struct {
	UserID      string `json:"user_id"`
	Text        string `json:"text"`
	ImageBase64 string `json:"image_base64"`
	Filename    string `json:"filename"`
}

// ComplaintHandler serves the analyze pipeline and complaint queries.
type ComplaintHandler struct {
	store       storage.Store
	classifier  *services.Classifier
	authorities *services.AuthorityService
	media       *services.MediaService
}

func NewComplaintHandler(store storage.Store, classifier *services.Classifier, authorities *services.AuthorityService, media *services.MediaService) *ComplaintHandler {
	return &ComplaintHandler{store: store, classifier: classifier, authorities: authorities, media: media}
}

// RegisterComplaintRoutes registers complaint routes
func RegisterComplaintRoutes(router *gin.RouterGroup, h *ComplaintHandler) {
	router.POST("/analyze", h.analyze)
	router.GET("/user/:user_id/complaints", h.userComplaints)
	router.GET("/similar-problems", h.similarProblems)
}

func (h *ComplaintHandler) analyze(c *gin.Context) {
	log.Println("📨 /analyze request received")

	userID, text, imageData, filename, ok := h.parseAnalyzeInput(c)
	if !ok {
		return
	}

	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "User ID is required. Please log in first.",
		})
		return
	}
	if text == "" && len(imageData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Complaint text or image is required",
		})
		return
	}

	decision, mode := h.classifier.Classify(c.Request.Context(), text, imageData, filename)
	h.authorities.Enrich(&decision)
	if decision.IssueType == "" {
		decision.IssueType = decision.Problem
	}

	complaint := &models.Complaint{
		UserID:   userID,
		RawText:  text,
		HasMedia: len(imageData) > 0,
		Decision: decision,
		Mode:     mode,
	}
	if len(imageData) > 0 {
		complaint.MediaKind = mediaKind(filename)
		url, err := h.media.Upload(c.Request.Context(), imageData, filename)
		if err != nil {
			log.Printf("⚠️ Media upload failed, saving complaint without URL: %v", err)
		} else {
			complaint.MediaURL = url
		}
	}

	if err := h.store.CreateComplaint(complaint); err != nil {
		log.Printf("❌ Failed to save complaint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Analysis failed"})
		return
	}
	log.Printf("✅ Complaint %s saved (%s)", complaint.ID, mode)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"complaint_id": complaint.ID,
		"ai_decision":  complaint.Decision,
		"mode":         mode,
	})
}

// parseAnalyzeInput accepts either a multipart form with an "image" file or
// a JSON body with base64 image data. It writes the error response itself
// when the payload is unreadable.
func (h *ComplaintHandler) parseAnalyzeInput(c *gin.Context) (userID, text string, imageData []byte, filename string, ok bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		userID = c.PostForm("user_id")
		text = c.PostForm("text")

		file, header, err := c.Request.FormFile("image")
		if err == nil {
			defer file.Close()
			imageData, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Failed to read uploaded image"})
				return "", "", nil, "", false
			}
			filename = header.Filename
		}
		return userID, text, imageData, filename, true
	}

	var req AnalyzeJSONRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return "", "", nil, "", false
	}
	if req.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			log.Printf("⚠️ Ignoring undecodable base64 image: %v", err)
		} else {
			imageData = data
		}
	}
	return req.UserID, req.Text, imageData, req.Filename, true
}

func (h *ComplaintHandler) userComplaints(c *gin.Context) {
	userID := c.Param("user_id")

	complaints, err := h.store.ComplaintsByUser(userID)
	if err != nil {
		log.Printf("❌ Failed to fetch complaints for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch user complaints"})
		return
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user_id":    userID,
		"total":      len(complaints),
		"complaints": complaints,
	})
}

func (h *ComplaintHandler) similarProblems(c *gin.Context) {
	issueType := c.Query("issue_type")
	area := c.Query("area")
	userID := c.Query("user_id")

	if issueType == "" || area == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "issue_type and area are required",
		})
		return
	}

	problems, err := h.store.SimilarComplaints(issueType, area, userID)
	if err != nil {
		log.Printf("❌ Similar problems query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch similar problems"})
		return
	}
	if problems == nil {
		problems = []models.Complaint{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"total":    len(problems),
		"problems": problems,
	})
}

func mediaKind(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}
