package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aryaveer-14/civic-mind/models"
	"github.com/Aryaveer-14/civic-mind/services"
	"github.com/Aryaveer-14/civic-mind/storage"
)

// FeedbackRequest records one satisfaction signal
type FeedbackRequest struct {
	ComplaintID string `json:"complaint_id" binding:"required"`
	Satisfied   *bool  `json:"satisfied" binding:"required"`
}

// SuggestionRequest submits a peer suggestion
type SuggestionRequest struct {
	ComplaintID    string `json:"complaint_id" binding:"required"`
	UserID         string `json:"user_id"`
	SuggestedBy    string `json:"suggested_by"`
	SuggestionText string `json:"suggestion_text"`
	Text           string `json:"text"`
}

// RateRequest rates a suggestion
type RateRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Rating *int   `json:"rating" binding:"required"`
}

// FeedbackHandler serves feedback, stats and suggestions.
type FeedbackHandler struct {
	feedback *services.FeedbackService
}

func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// RegisterFeedbackRoutes registers feedback and suggestion routes
func RegisterFeedbackRoutes(router *gin.RouterGroup, h *FeedbackHandler) {
	router.POST("/feedback", h.recordFeedback)
	router.GET("/stats", h.stats)
	router.POST("/suggestions", h.addSuggestion)
	router.GET("/suggestions/:complaint_id", h.listSuggestions)
	router.POST("/suggestions/:suggestion_id/rate", h.rateSuggestion)
}

func (h *FeedbackHandler) recordFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "complaint_id and satisfied are required",
		})
		return
	}

	if _, err := h.feedback.RecordFeedback(req.ComplaintID, *req.Satisfied); err != nil {
		log.Printf("❌ Failed to save feedback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save feedback"})
		return
	}

	log.Printf("✅ Feedback saved for complaint: %s", req.ComplaintID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *FeedbackHandler) stats(c *gin.Context) {
	report, err := h.feedback.Stats()
	if err != nil {
		log.Printf("❌ Stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *FeedbackHandler) addSuggestion(c *gin.Context) {
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "complaint_id, user_id, and suggestion_text are required",
		})
		return
	}

	// Legacy payloads used text / suggested_by.
	text := req.SuggestionText
	if text == "" {
		text = req.Text
	}
	userID := req.UserID
	if userID == "" {
		userID = req.SuggestedBy
	}
	if text == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "complaint_id, user_id, and suggestion_text are required",
		})
		return
	}

	suggestion, err := h.feedback.AddSuggestion(req.ComplaintID, userID, text)
	if err != nil {
		log.Printf("❌ Failed to submit suggestion: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to submit suggestion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"suggestion_id": suggestion.ID,
		"suggestion":    suggestion,
	})
}

func (h *FeedbackHandler) listSuggestions(c *gin.Context) {
	complaintID := c.Param("complaint_id")

	suggestions, err := h.feedback.ListSuggestions(complaintID)
	if err != nil {
		log.Printf("❌ Failed to fetch suggestions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch suggestions"})
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"complaint_id": complaintID,
		"total":        len(suggestions),
		"suggestions":  suggestions,
	})
}

func (h *FeedbackHandler) rateSuggestion(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "user_id and rating (0-5) are required",
		})
		return
	}

	suggestion, err := h.feedback.Rate(c.Param("suggestion_id"), req.UserID, *req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRatingOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "rating must be between 0 and 5"})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Suggestion not found"})
		default:
			log.Printf("❌ Failed to rate suggestion: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to rate suggestion"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"rating":        suggestion.Rating,
		"helpful_count": suggestion.HelpfulCount,
	})
}
