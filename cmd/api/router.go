package api

import (
	"net/http"

	"classnest-backend/internal/call"
	"classnest-backend/internal/notification"
	notifrepo "classnest-backend/internal/notification/repository"
	tokenusecase "classnest-backend/internal/token/usecase"
	"classnest-backend/pkg/config"
	"classnest-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

// NewHandler builds the gin engine with all routes registered.
func NewHandler(
	tokenStore *tokenusecase.Store,
	records notifrepo.RecordRepository,
	notifService *notification.Service,
	presenter *call.Presenter,
	sseManager *sse.Manager,
	cfg *config.Config,
) *Handler {
	h := &Handler{
		engine:       gin.Default(),
		tokenStore:   tokenStore,
		records:      records,
		notifService: notifService,
		presenter:    presenter,
		sseManager:   sseManager,
		cfg:          cfg,
	}
	h.setupRoutes()
	return h
}

// Start runs the HTTP server.
func (h *Handler) Start(addr string) error {
	return h.engine.Run(addr)
}

// Engine exposes the router for tests.
func (h *Handler) Engine() *gin.Engine {
	return h.engine
}

func (h *Handler) setupRoutes() {
	api := h.engine.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE endpoint
		api.GET("/events", AuthMiddleware(h.cfg.JWTSecret), func(c *gin.Context) {
			userID := c.GetString("userID")
			h.sseManager.ServeHTTP(c, userID)
		})

		// Device token routes (protected)
		tokens := api.Group("/tokens")
		tokens.Use(AuthMiddleware(h.cfg.JWTSecret))
		{
			tokens.POST("/register", h.RegisterToken)
			tokens.DELETE("", h.UnregisterToken)
			tokens.GET("/:userID", RequireRole("service"), h.LookupToken)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(AuthMiddleware(h.cfg.JWTSecret))
		{
			notifications.GET("", h.ListNotifications)
			notifications.PATCH("/:id/read", h.MarkNotificationRead)
			notifications.POST("/send", h.SendNotification)
			notifications.POST("/schedule", h.ScheduleNotification)
		}

		// Call presentation routes (protected) - hand-off from the calling feature
		calls := api.Group("/calls")
		calls.Use(AuthMiddleware(h.cfg.JWTSecret))
		{
			calls.POST("", h.IncomingCall)
			calls.POST("/:id/action", h.CallAction)
			calls.POST("/:id/end", h.EndCall)
		}
	}
}
