package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Aryaveer-14/civic-mind/middleware"
	"github.com/Aryaveer-14/civic-mind/services"
	"github.com/Aryaveer-14/civic-mind/storage"
)

// Deps carries the wired services shared by all route groups.
type Deps struct {
	Store        storage.Store
	Registration *services.RegistrationService
	Classifier   *services.Classifier
	Authorities  *services.AuthorityService
	Feedback     *services.FeedbackService
	Media        *services.MediaService
	SMS          services.SMSSender
}

// NewRouter assembles the full HTTP surface. Paths are mounted at the root
// so existing clients keep working.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	startedAt := time.Now()

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Civic Backend API Running",
			"version": "1.0.0",
			"status":  "healthy",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		smsMode := "twilio"
		if deps.SMS.Degraded() {
			smsMode = "console"
		}
		aiMode := "gemini"
		if !deps.Classifier.Enabled() {
			aiMode = "disabled"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"database": deps.Store.Name(),
				"sms":      smsMode,
				"ai":       aiMode,
			},
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
		})
	})

	authGroup := router.Group("/")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	RegisterAuthRoutes(authGroup, NewAuthHandler(deps.Registration))

	api := router.Group("/")
	RegisterComplaintRoutes(api, NewComplaintHandler(deps.Store, deps.Classifier, deps.Authorities, deps.Media))
	RegisterAuthorityRoutes(api, NewAuthorityHandler(deps.Authorities))
	RegisterFeedbackRoutes(api, NewFeedbackHandler(deps.Feedback))

	return router
}
