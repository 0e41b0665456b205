package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for the global user role in gin context.
	ContextUserRole = "user_role"
)

// JWT returns a middleware that validates JWT and sets user claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		claims, ok := parseBearer(jwtService, header)
		if !ok {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalJWT sets user claims when a valid token is present and never rejects.
func OptionalJWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(jwtService, c.GetHeader("Authorization")); ok {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// IdentityFrom returns the caller identity set by JWT or OptionalJWT.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		return auth.Identity{}, false
	}
	return auth.Identity{UserID: userID, Role: c.GetString(ContextUserRole)}, true
}

func parseBearer(jwtService *auth.JWTService, header string) (*auth.Claims, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := jwtService.Validate(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserRole, claims.Role)
}
