package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Aryaveer-14/civic-mind/config"
	"github.com/Aryaveer-14/civic-mind/routes"
	"github.com/Aryaveer-14/civic-mind/services"
	"github.com/Aryaveer-14/civic-mind/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using environment variables")
	}

	config.Load()
	gin.SetMode(config.AppConfig.Server.GinMode)

	store := selectStore()
	pending := selectPendingStore()

	sms := services.NewSMSSender()
	classifier := services.NewClassifier(config.AppConfig.Gemini.APIKey, config.AppConfig.Gemini.BaseURL)
	if classifier.Enabled() {
		log.Println("🤖 Gemini analysis enabled")
	} else {
		log.Println("⚠️ GEMINI_API_KEY not set, using fallback analysis only")
	}

	deps := routes.Deps{
		Store:        store,
		Registration: services.NewRegistrationService(store, pending, sms),
		Classifier:   classifier,
		Authorities:  services.NewAuthorityService(store),
		Feedback:     services.NewFeedbackService(store),
		Media:        services.NewMediaService(),
		SMS:          sms,
	}

	router := routes.NewRouter(deps)

	port := config.AppConfig.Server.Port
	log.Printf("🚀 Server starting on port %s (storage: %s)", port, store.Name())
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// selectStore prefers Postgres when DB_URL is set, falling back to the
// in-memory backend so the service stays usable without a database.
func selectStore() storage.Store {
	dbURL := config.AppConfig.Database.URL
	if dbURL == "" {
		log.Println("⚠️ DB_URL not set, using in-memory storage")
		return storage.NewMemory()
	}

	store, err := storage.NewPostgres(dbURL)
	if err != nil {
		log.Printf("⚠️ Database unavailable, using in-memory storage: %v", err)
		return storage.NewMemory()
	}
	return store
}

// selectPendingStore keeps OTP state in Redis when REDIS_ADDR is set so
// verification works across replicas and restarts.
func selectPendingStore() services.PendingStore {
	addr := config.AppConfig.Redis.Addr
	if addr == "" {
		return services.NewMemoryPendingStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.AppConfig.Redis.Password,
	})
	log.Printf("✅ Using Redis pending-registration store at %s", addr)
	return services.NewRedisPendingStore(client)
}
