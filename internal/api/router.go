package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mmtukut/propabridge-2/internal/api/handlers"
	"github.com/mmtukut/propabridge-2/internal/api/middleware"
	"github.com/mmtukut/propabridge-2/internal/config"
	"github.com/mmtukut/propabridge-2/internal/match"
	"github.com/mmtukut/propabridge-2/internal/nlp"
	"github.com/mmtukut/propabridge-2/internal/services"
	"github.com/mmtukut/propabridge-2/internal/storage"
	"github.com/mmtukut/propabridge-2/internal/tasks"
	"github.com/mmtukut/propabridge-2/internal/wa"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, enqueuer *tasks.Enqueuer) *gin.Engine {
	// Initialize services needed by API handlers HERE
	userService := services.NewUserService(db)
	listingService := services.NewListingService(db, cfg)
	otpService := services.NewOTPService(rdb, cfg, enqueuer)

	scorer := match.NewScorer(match.Config{
		MinScore:            cfg.MinMatchScore,
		ResponsivenessScore: cfg.ResponsivenessScore,
	})
	extractor := nlp.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	searchService := services.NewSearchService(listingService, scorer, extractor, cfg.CoarseFetchLimit)

	conversationStore := services.NewRedisConversationStore(rdb)
	waClient := wa.NewClient(cfg)
	chatService := services.NewChatService(searchService, conversationStore, waClient, cfg.DefaultSearchLimit)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	restAuthHandler := handlers.NewRestAuthHandler(otpService, userService, cfg)
	restUserHandler := handlers.NewRestUserHandler(userService)
	restListingHandler := handlers.NewRestListingHandler(listingService, s3StorageService, enqueuer)
	restSearchHandler := handlers.NewRestSearchHandler(searchService, cfg)
	webhookHandler := handlers.NewWebhookHandler(chatService, cfg)

	v1 := r.Group("/v1")
	{
		// Public routes
		v1.POST("/auth/otp/request", restAuthHandler.RequestOTP)
		v1.POST("/auth/otp/verify", restAuthHandler.VerifyOTP)

		v1.GET("/listing/search", restSearchHandler.SearchListings)
		v1.GET("/listing/:id", middleware.OptionalAuthMiddleware(cfg.JwtSecret), restListingHandler.GetListingByID)

		v1.GET("/webhook/whatsapp", webhookHandler.Verify)
		v1.POST("/webhook/whatsapp", webhookHandler.Receive)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/user/me", restUserHandler.GetMe)
			authRequired.PATCH("/user/me", restUserHandler.UpdateMe)
			authRequired.GET("/user/me/listing", restListingHandler.GetMyListings)

			authRequired.POST("/listing", restListingHandler.CreateListing)
			authRequired.PATCH("/listing/:id", restListingHandler.UpdateListing)
			authRequired.POST("/listing/:id/deactivate", restListingHandler.DeactivateListing)
			authRequired.POST("/listing/:id/reactivate", restListingHandler.ReactivateListing)
			authRequired.POST("/listing/:id/image/presign", restListingHandler.PresignImageUpload)
			authRequired.POST("/listing/:id/image/confirm", restListingHandler.ConfirmImageUpload)
		}

		// Admin routes
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.POST("/listing/:id/approve", restListingHandler.ApproveListing)
			adminRequired.POST("/listing/:id/reject", restListingHandler.RejectListing)
			adminRequired.DELETE("/listing/:id", restListingHandler.DeleteListing)
		}
	}

	return r
}
