package bans

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/internal/middleware"
	"github.com/aura-webinar/qna/internal/models"
	"github.com/aura-webinar/qna/pkg/response"
)

// BanRequest is the body for ban endpoints. An empty body bans permanently.
type BanRequest struct {
	Type   models.BanType `json:"type"`
	Hours  int            `json:"hours"`
	Reason string         `json:"reason"`
}

// Staff reports whether a user moderates an event.
type Staff interface {
	CanModerate(id auth.Identity, eventID string) bool
}

// Handler handles ban endpoints for moderators and admins. Routes with an
// :event_id ban from that event only; routes without one ban globally.
type Handler struct {
	registry *Registry
	staff    Staff
	logger   *zap.Logger
}

// NewHandler creates a bans handler. A nil staff lets moderators ban anyone
// from their event.
func NewHandler(registry *Registry, staff Staff, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registry: registry, staff: staff, logger: logger}
}

// Ban handles POST /api/mod/users/:event_id/:user_id/ban and POST /api/admin/users/:user_id/ban.
func (h *Handler) Ban(c *gin.Context) {
	eventID, userID := c.Param("event_id"), c.Param("user_id")
	if eventID != Global && h.staff != nil && h.staff.CanModerate(auth.Identity{UserID: userID}, eventID) {
		response.Forbidden(c, "cannot ban event staff")
		return
	}
	var req BanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	duration, msg := req.duration()
	if msg != "" {
		response.BadRequest(c, msg)
		return
	}
	actor := c.GetString(middleware.ContextUserID)
	ban, err := h.registry.Ban(eventID, userID, duration, req.Reason, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("user banned",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.String("actor_id", actor),
		zap.String("type", string(ban.Type)),
	)
	response.OK(c, ban)
}

// Unban handles the matching unban routes.
func (h *Handler) Unban(c *gin.Context) {
	eventID, userID := c.Param("event_id"), c.Param("user_id")
	if !h.registry.Unban(eventID, userID) {
		response.NotFound(c, "user is not banned")
		return
	}
	h.logger.Info("user unbanned",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.String("actor_id", c.GetString(middleware.ContextUserID)),
	)
	response.OK(c, gin.H{"event_id": eventID, "user_id": userID, "banned": false})
}

func (r BanRequest) duration() (time.Duration, string) {
	switch r.Type {
	case "":
		if r.Hours < 0 {
			return 0, "hours must not be negative"
		}
		return time.Duration(r.Hours) * time.Hour, ""
	case models.BanPermanent:
		return 0, ""
	case models.BanTemporary:
		if r.Hours <= 0 {
			return 0, "temporary ban requires positive hours"
		}
		return time.Duration(r.Hours) * time.Hour, ""
	default:
		return 0, "invalid ban type: " + string(r.Type)
	}
}
