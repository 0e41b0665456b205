package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/pkg/response"
)

// Gate answers per-event authorization questions.
type Gate interface {
	CanModerate(id auth.Identity, eventID string) bool
	CanManageRoles(id auth.Identity, eventID string) bool
	IsAdmin(id auth.Identity) bool
}

// RequireEventModerator allows callers who may moderate the event named by the route param.
func RequireEventModerator(gate Gate, param string) gin.HandlerFunc {
	return requireEvent(param, gate.CanModerate)
}

// RequireRoleManager allows the event organizer or an admin.
func RequireRoleManager(gate Gate, param string) gin.HandlerFunc {
	return requireEvent(param, gate.CanManageRoles)
}

// RequireAdmin allows global admins only.
func RequireAdmin(gate Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if !gate.IsAdmin(id) {
			response.Forbidden(c, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireEvent(param string, allow func(auth.Identity, string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		eventID := c.Param(param)
		if eventID == "" {
			response.BadRequest(c, param+" is required")
			c.Abort()
			return
		}
		if !allow(id, eventID) {
			response.Forbidden(c, "insufficient permissions for this event")
			c.Abort()
			return
		}
		c.Next()
	}
}
