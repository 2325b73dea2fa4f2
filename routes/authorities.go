package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aryaveer-14/civic-mind/services"
)

// AuthorityHandler serves the authority contact directory.
type AuthorityHandler struct {
	authorities *services.AuthorityService
}

func NewAuthorityHandler(authorities *services.AuthorityService) *AuthorityHandler {
	return &AuthorityHandler{authorities: authorities}
}

// RegisterAuthorityRoutes registers authority directory routes
func RegisterAuthorityRoutes(router *gin.RouterGroup, h *AuthorityHandler) {
	router.POST("/authorities/upsert", h.upsert)
}

func (h *AuthorityHandler) upsert(c *gin.Context) {
	var req services.AuthorityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "name is required"})
		return
	}

	record, err := h.authorities.Upsert(req)
	if err != nil {
		log.Printf("❌ Upsert authority failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to upsert authority"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": record.ID})
}
