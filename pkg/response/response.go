package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aura-webinar/qna/internal/apperr"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	fail(c, http.StatusBadRequest, err)
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	fail(c, http.StatusUnauthorized, err)
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	fail(c, http.StatusForbidden, err)
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	fail(c, http.StatusNotFound, err)
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	fail(c, http.StatusConflict, err)
}

// TooManyRequests sends 429.
func TooManyRequests(c *gin.Context, err string) {
	fail(c, http.StatusTooManyRequests, err)
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	fail(c, http.StatusInternalServerError, err)
}

// Error sends the status matching the kind of err.
func Error(c *gin.Context, err error) {
	fail(c, StatusOf(err), apperr.MessageOf(err))
}

// StatusOf maps an application error to its HTTP status.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindRateLimit:
		return http.StatusTooManyRequests
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, err string) {
	c.JSON(status, Body{Success: false, Error: err})
}
