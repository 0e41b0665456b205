package roles

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/middleware"
	"github.com/aura-webinar/qna/internal/models"
	"github.com/aura-webinar/qna/pkg/response"
)

// RoleRequest is the body for add_role / remove_role.
type RoleRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// GlobalRoleRequest is the body for POST /api/admin/users/:user_id/role.
type GlobalRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// Handler handles role management endpoints.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a roles handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// List handles GET /api/organizer/event/:event_id/roles.
func (h *Handler) List(c *gin.Context) {
	eventID := c.Param("event_id")
	response.OK(c, gin.H{"event_id": eventID, "roles": h.store.ListByEvent(eventID)})
}

// Add handles POST /api/organizer/event/:event_id/add_role.
func (h *Handler) Add(c *gin.Context) {
	eventID := c.Param("event_id")
	req, role, ok := bindEventRole(c)
	if !ok {
		return
	}
	created := h.store.Assign(req.UserID, eventID, role)
	h.logAction(c, "role added", eventID, req.UserID, role)
	response.OK(c, gin.H{"event_id": eventID, "user_id": req.UserID, "role": role, "created": created})
}

// Remove handles POST /api/organizer/event/:event_id/remove_role.
func (h *Handler) Remove(c *gin.Context) {
	eventID := c.Param("event_id")
	req, role, ok := bindEventRole(c)
	if !ok {
		return
	}
	if !h.store.Revoke(req.UserID, eventID, role) {
		response.NotFound(c, "role assignment not found")
		return
	}
	h.logAction(c, "role removed", eventID, req.UserID, role)
	response.OK(c, gin.H{"event_id": eventID, "user_id": req.UserID, "role": role})
}

// SetGlobal handles POST /api/admin/users/:user_id/role.
func (h *Handler) SetGlobal(c *gin.Context) {
	userID := c.Param("user_id")
	var req GlobalRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "role required")
		return
	}
	role := models.Role(req.Role)
	if role != models.RoleAdmin && role != models.RoleAttendee {
		response.BadRequest(c, "global role must be admin or attendee")
		return
	}
	h.store.SetGlobal(userID, role)
	h.logAction(c, "global role changed", "", userID, role)
	response.OK(c, gin.H{"user_id": userID, "role": role})
}

func bindEventRole(c *gin.Context) (RoleRequest, models.Role, bool) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "user_id and role required")
		return req, "", false
	}
	role := models.Role(req.Role)
	if !role.Valid() || role == models.RoleAdmin {
		response.BadRequest(c, "invalid event role: "+req.Role)
		return req, "", false
	}
	return req, role, true
}

func (h *Handler) logAction(c *gin.Context, msg, eventID, userID string, role models.Role) {
	h.logger.Info(msg,
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("actor_id", c.GetString(middleware.ContextUserID)),
	)
}
