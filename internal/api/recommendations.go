package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/service"
	"github.com/voyago/backend/internal/timeline"
)

// RecommendationHandler serves the persisted submission flow and the live
// timeline, the server-side home of what the browser form used to do.
type RecommendationHandler struct {
	service  service.IRecommendationService
	hub      *timeline.Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewRecommendationHandler creates a new RecommendationHandler instance
func NewRecommendationHandler(svc service.IRecommendationService, hub *timeline.Hub, allowedOrigins []string, logger *zap.Logger) *RecommendationHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &RecommendationHandler{
		service: svc,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

// RegisterRoutes registers the recommendation routes. rateLimit guards the
// submission route only and may be nil when Redis is unavailable.
func (h *RecommendationHandler) RegisterRoutes(router *gin.RouterGroup, rateLimit gin.HandlerFunc) {
	recs := router.Group("/recommendations")
	{
		if rateLimit != nil {
			recs.POST("", rateLimit, h.Submit)
		} else {
			recs.POST("", h.Submit)
		}
		recs.GET("", h.List)
		recs.GET("/ws", h.Subscribe)
	}
}

// Submit handles POST /api/v1/recommendations: validate, generate, persist
// and fan out to subscribers.
func (h *RecommendationHandler) Submit(c *gin.Context) {
	var req PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("failed to parse request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	record, err := h.service.Submit(c.Request.Context(), req.toPreferences())
	if err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{
				Error:  "invalid preferences",
				Fields: verrs,
			})
			return
		}
		writeGenerationError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// List handles GET /api/v1/recommendations: the timeline snapshot, newest
// first, for clients that want a one-shot read instead of a subscription.
func (h *RecommendationHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list recommendations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load recommendations"})
		return
	}

	c.JSON(http.StatusOK, timeline.NewSnapshot(records))
}

// Subscribe handles GET /api/v1/recommendations/ws: upgrades to a live
// timeline subscription. The fresh subscriber receives the current snapshot
// immediately, then a replacement snapshot on every change.
func (h *RecommendationHandler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := timeline.NewClient(h.hub, conn, h.logger)

	records, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load initial timeline", zap.Error(err))
	} else {
		client.Queue(timeline.Message{
			Type: timeline.MessageTypeTimeline,
			Data: timeline.NewSnapshot(records),
		})
	}

	client.Start()
}
