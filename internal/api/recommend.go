package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/service"
)

// RecommendHandler serves the raw recommendation endpoint: preferences in,
// generated destination out, nothing persisted.
type RecommendHandler struct {
	generator service.GeminiGenerator
	logger    *zap.Logger
}

// NewRecommendHandler creates a new RecommendHandler instance
func NewRecommendHandler(generator service.GeminiGenerator, logger *zap.Logger) *RecommendHandler {
	return &RecommendHandler{
		generator: generator,
		logger:    logger,
	}
}

// RegisterRoutes registers the recommendation endpoint. rateLimit may be
// nil when Redis is unavailable.
func (h *RecommendHandler) RegisterRoutes(router *gin.Engine, rateLimit gin.HandlerFunc) {
	if rateLimit != nil {
		router.POST("/api/recommend", rateLimit, h.Recommend)
		return
	}
	router.POST("/api/recommend", h.Recommend)
}

// Recommend handles POST /api/recommend
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Body parse failures get a distinguishing log line but the same
		// generic answer as any other internal fault.
		h.logger.Error("failed to parse request body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "server processing error"})
		return
	}

	if missing := missingFields(req); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		})
		return
	}

	idea, err := h.generator.Generate(c.Request.Context(), req.toPreferences())
	if err != nil {
		writeGenerationError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, RecommendationResponse{
		City:           idea.City,
		Country:        idea.Country,
		Recommendation: idea.Recommendation,
	})
}

// missingFields returns the names of absent preference fields in a stable
// order. Server validation is authoritative regardless of what a client
// checked locally.
func missingFields(req PreferenceRequest) []string {
	var missing []string
	if req.Username == "" {
		missing = append(missing, "username")
	}
	if req.Age == "" {
		missing = append(missing, "age")
	}
	if req.Style == "" {
		missing = append(missing, "style")
	}
	if req.Activity == "" {
		missing = append(missing, "activity")
	}
	return missing
}

// writeGenerationError maps generator failures to their contracted 500
// bodies. Known classes carry their own outward message; anything
// unclassified is logged and answered generically so internal detail never
// leaks to the caller.
func writeGenerationError(c *gin.Context, logger *zap.Logger, err error) {
	known := []error{
		service.ErrMissingAPIKey,
		service.ErrUpstream,
		service.ErrNoContent,
		service.ErrBadJSON,
		service.ErrMissingCity,
		service.ErrMissingCountry,
		service.ErrMissingRecommendation,
	}
	for _, class := range known {
		if errors.Is(err, class) {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: class.Error()})
			return
		}
	}

	logger.Error("unclassified generation failure", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "server processing error"})
}
