package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voyago/backend/config"
	"github.com/voyago/backend/internal/api"
	"github.com/voyago/backend/internal/middleware"
)

// Setup configures the application routes
func Setup(
	cfg *config.Config,
	db *gorm.DB,
	recommendHandler *api.RecommendHandler,
	recommendationHandler *api.RecommendationHandler,
	rateLimiter *middleware.RateLimiter,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Any uncaught panic becomes the generic processing error; the detail
	// stays in the server log.
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered in handler", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server processing error"})
	}))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoints (no rate limit)
	health := api.NewHealthHandler(db)
	router.GET("/health", health)
	router.GET("/api/health", health)

	var rateLimit gin.HandlerFunc
	if rateLimiter != nil {
		rateLimit = rateLimiter.Middleware()
	}

	recommendHandler.RegisterRoutes(router, rateLimit)

	v1 := router.Group("/api/v1")
	recommendationHandler.RegisterRoutes(v1, rateLimit)

	return router
}
