package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/middleware"
	"github.com/aura-webinar/qna/internal/models"
	"github.com/aura-webinar/qna/pkg/response"
)

// Realtime events published to the event room.
const (
	EventChatMessage        = "chat_message"
	EventChatMessageDeleted = "chat_message_deleted"
	EventUserModerated      = "chat_user_moderated"
)

// BanChecker rejects users banned globally or from the event.
type BanChecker interface {
	Check(eventID, userID string) error
}

// Notifier pushes realtime events to an event room.
type Notifier interface {
	PublishToEvent(eventID, event string, payload interface{})
}

// PostRequest is the body for POST /api/chat/:event_id.
type PostRequest struct {
	Text string `json:"text" binding:"required"`
}

// MuteRequest is the body for the mute endpoint.
type MuteRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"required"`
}

// Handler handles chat and chat-moderation endpoints.
type Handler struct {
	store    *Store
	abuse    *Abuse
	bans     BanChecker
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a chat handler.
func NewHandler(store *Store, abuse *Abuse, bans BanChecker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, abuse: abuse, bans: bans, logger: logger, now: time.Now}
}

// SetNotifier sets the realtime publisher.
func (h *Handler) SetNotifier(n Notifier) {
	h.notifier = n
}

// SetClock overrides the time source used for mute expiry.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// List handles GET /api/chat/:event_id.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.store.List(c.Param("event_id")))
}

// Post handles POST /api/chat/:event_id. Ban, expel and mute checks run before the message is stored.
func (h *Handler) Post(c *gin.Context) {
	eventID := c.Param("event_id")
	userID := c.GetString(middleware.ContextUserID)

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "text required")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		response.BadRequest(c, "text required")
		return
	}
	if len([]rune(text)) > models.MaxMessageLength {
		response.BadRequest(c, fmt.Sprintf("text exceeds max length %d", models.MaxMessageLength))
		return
	}

	now := h.now()
	if h.bans != nil {
		if err := h.bans.Check(eventID, userID); err != nil {
			response.Error(c, err)
			return
		}
	}
	if err := h.abuse.CheckCanPost(eventID, userID, now); err != nil {
		response.Error(c, err)
		return
	}

	msg := h.store.Post(eventID, userID, text, now)
	h.publish(eventID, EventChatMessage, msg)
	response.Created(c, msg)
}

// DeleteMessage handles DELETE /api/mod/chat/:event_id/messages/:message_id.
func (h *Handler) DeleteMessage(c *gin.Context) {
	eventID, id := c.Param("event_id"), c.Param("message_id")
	if !h.store.Delete(eventID, id) {
		response.NotFound(c, "message not found")
		return
	}
	h.logAction(c, "chat message deleted", eventID, "", zap.String("message_id", id))
	h.publish(eventID, EventChatMessageDeleted, gin.H{"id": id})
	response.OK(c, gin.H{"id": id, "deleted": true})
}

// Mute handles POST /api/mod/chat/user/:event_id/:user_id/mute.
func (h *Handler) Mute(c *gin.Context) {
	eventID, userID := c.Param("event_id"), c.Param("user_id")
	var req MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DurationMinutes <= 0 {
		response.BadRequest(c, "duration_minutes must be a positive integer")
		return
	}
	expiry, err := h.abuse.Mute(eventID, userID, time.Duration(req.DurationMinutes)*time.Minute, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logAction(c, "chat user muted", eventID, userID, zap.Time("muted_until", expiry))
	h.respondStatus(c, eventID, userID)
}

// Unmute handles DELETE /api/mod/chat/user/:event_id/:user_id/mute.
func (h *Handler) Unmute(c *gin.Context) {
	eventID, userID := c.Param("event_id"), c.Param("user_id")
	h.abuse.Unmute(eventID, userID)
	h.logAction(c, "chat user unmuted", eventID, userID)
	h.respondStatus(c, eventID, userID)
}

// Expel handles POST /api/mod/chat/user/:event_id/:user_id/expel.
func (h *Handler) Expel(c *gin.Context) {
	eventID, userID := c.Param("event_id"), c.Param("user_id")
	h.abuse.Expel(eventID, userID)
	h.logAction(c, "chat user expelled", eventID, userID)
	h.respondStatus(c, eventID, userID)
}

// ClearExpulsion handles DELETE /api/mod/chat/user/:event_id/:user_id/expel.
func (h *Handler) ClearExpulsion(c *gin.Context) {
	eventID, userID := c.Param("event_id"), c.Param("user_id")
	if !h.abuse.ClearExpulsion(eventID, userID) {
		response.Error(c, apperr.NotFound("user is not expelled"))
		return
	}
	h.logAction(c, "chat expulsion cleared", eventID, userID)
	h.respondStatus(c, eventID, userID)
}

// Status handles GET /api/mod/chat/user/:event_id/:user_id.
func (h *Handler) Status(c *gin.Context) {
	response.OK(c, h.abuse.Status(c.Param("event_id"), c.Param("user_id"), h.now()))
}

func (h *Handler) respondStatus(c *gin.Context, eventID, userID string) {
	st := h.abuse.Status(eventID, userID, h.now())
	h.publish(eventID, EventUserModerated, st)
	response.OK(c, st)
}

func (h *Handler) publish(eventID, event string, payload interface{}) {
	if h.notifier != nil {
		h.notifier.PublishToEvent(eventID, event, payload)
	}
}

func (h *Handler) logAction(c *gin.Context, msg, eventID, userID string, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.String("actor_id", c.GetString(middleware.ContextUserID)),
	}, extra...)
	h.logger.Info(msg, fields...)
}
