package api

import (
	"net/http"
	"strconv"
	"time"

	"classnest-backend/internal/call"
	"classnest-backend/internal/notification"
	notifdomain "classnest-backend/internal/notification/domain"
	notifrepo "classnest-backend/internal/notification/repository"
	tokendomain "classnest-backend/internal/token/domain"
	tokenusecase "classnest-backend/internal/token/usecase"
	"classnest-backend/pkg/config"
	"classnest-backend/pkg/platform"
	"classnest-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

// Handler wires the HTTP surface to the notification subsystem.
type Handler struct {
	engine       *gin.Engine
	tokenStore   *tokenusecase.Store
	records      notifrepo.RecordRepository
	notifService *notification.Service
	presenter    *call.Presenter
	sseManager   *sse.Manager
	cfg          *config.Config
}

type registerTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Kind     string `json:"kind"`
	Platform string `json:"platform"`
}

type deleteTokenRequest struct {
	Kind string `json:"kind"`
}

type sendRequest struct {
	UserID    string            `json:"user_id" binding:"required"`
	Title     string            `json:"title" binding:"required"`
	Message   string            `json:"message"`
	RelatedID string            `json:"related_id"`
	Data      map[string]string `json:"data"`
}

type scheduleRequest struct {
	UserID       string    `json:"user_id" binding:"required"`
	Type         string    `json:"type" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	Message      string    `json:"message"`
	RelatedID    string    `json:"related_id"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
}

type incomingCallRequest struct {
	CallID         string `json:"call_id" binding:"required"`
	CalleeID       string `json:"callee_id" binding:"required"`
	CallerID       string `json:"caller_id" binding:"required"`
	CallerName     string `json:"caller_name"`
	CallerPhotoURL string `json:"caller_photo_url"`
	IsVideo        bool   `json:"is_video"`
}

type callActionRequest struct {
	Action string `json:"action" binding:"required"`
}

func tokenKind(s string) tokendomain.Kind {
	if s == string(tokendomain.KindVoIP) {
		return tokendomain.KindVoIP
	}
	return tokendomain.KindPush
}

// RegisterToken persists the caller's device token.
func (h *Handler) RegisterToken(c *gin.Context) {
	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plat := req.Platform
	if plat == "" {
		plat = h.cfg.Platform
	}

	userID := c.GetString("userID")
	if err := h.tokenStore.SaveToken(c.Request.Context(), userID, req.Token, tokenKind(req.Kind), string(platform.Parse(plat))); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}

// UnregisterToken clears the caller's token on sign-out.
func (h *Handler) UnregisterToken(c *gin.Context) {
	var req deleteTokenRequest
	_ = c.ShouldBindJSON(&req)

	userID := c.GetString("userID")
	if err := h.tokenStore.DeleteToken(c.Request.Context(), userID, tokenKind(req.Kind)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// LookupToken is the read path for out-of-process senders.
func (h *Handler) LookupToken(c *gin.Context) {
	userID := c.Param("userID")
	kind := tokenKind(c.Query("kind"))

	token, err := h.tokenStore.LookupToken(c.Request.Context(), userID, kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up token"})
		return
	}
	if token == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no token registered"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "kind": kind, "token": token})
}

// ListNotifications returns the caller's notification history, newest first.
func (h *Handler) ListNotifications(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	userID := c.GetString("userID")
	records, err := h.records.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	if records == nil {
		records = []notifdomain.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": records})
}

// MarkNotificationRead flips one record to read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.records.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// SendNotification delivers an immediate notification to a user. Used by
// internal feature services (grading, assignments) and always succeeds from
// the caller's perspective; delivery problems only show up in logs.
func (h *Handler) SendNotification(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.notifService.SendImmediate(c.Request.Context(), req.UserID, req.Title, req.Message, req.RelatedID, req.Data)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// ScheduleNotification records an intended future reminder.
func (h *Handler) ScheduleNotification(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	typ := notifdomain.RecordType(req.Type)
	switch typ {
	case notifdomain.TypeEventReminder, notifdomain.TypeAssignmentReminder, notifdomain.TypeScheduled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown notification type"})
		return
	}

	id := h.notifService.ScheduleReminder(c.Request.Context(), req.UserID, typ, req.Title, req.Message, req.RelatedID, req.ScheduledFor)
	if id == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule notification"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "status": "scheduled"})
}

// IncomingCall is the hand-off point from the calling feature: it presents
// the call to the callee. Presentation failures degrade silently, so the
// response only acknowledges the hand-off.
func (h *Handler) IncomingCall(c *gin.Context) {
	var req incomingCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.presenter.ShowIncomingCall(c.Request.Context(), call.Session{
		ID:             req.CallID,
		CalleeID:       req.CalleeID,
		CallerID:       req.CallerID,
		CallerName:     req.CallerName,
		CallerPhotoURL: req.CallerPhotoURL,
		IsVideo:        req.IsVideo,
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "ringing", "call_id": req.CallID})
}

// CallAction relays an accept/decline/timeout/end event from the device.
func (h *Handler) CallAction(c *gin.Context) {
	var req callActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.presenter.HandleAction(c.Request.Context(), call.ActionEvent{
		CallID: c.Param("id"),
		Action: call.Action(req.Action),
	})
	c.JSON(http.StatusOK, gin.H{"status": "handled"})
}

// EndCall tears down the call presentation explicitly.
func (h *Handler) EndCall(c *gin.Context) {
	h.presenter.EndCall(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}
