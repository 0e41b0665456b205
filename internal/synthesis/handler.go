package synthesis

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/middleware"
	"github.com/aura-webinar/qna/pkg/response"
)

// EditRequest is the body for the edit endpoint.
type EditRequest struct {
	Text string `json:"text"`
}

// Handler exposes synthesis to the audience, speakers and moderators.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a synthesis handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /synthesized_questions?session_id=.
func (h *Handler) List(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}
	h.respondList(c, sessionID)
}

// TriggerSummarization handles GET /trigger_summarization.
func (h *Handler) TriggerSummarization(c *gin.Context) {
	n, err := h.svc.SummarizeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"status": "ok", "sessions": n})
}

// ModeratorList handles GET /api/mod/questions/synthesized/:session_id (includes unapproved items).
func (h *Handler) ModeratorList(c *gin.Context) {
	h.respondList(c, c.Param("session_id"))
}

// Regenerate handles POST /api/mod/questions/synthesize/:session_id.
func (h *Handler) Regenerate(c *gin.Context) {
	sessionID := c.Param("session_id")
	items, err := h.svc.Regenerate(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("synthesis regeneration forced",
		zap.String("event_id", sessionID),
		zap.String("actor_id", c.GetString(middleware.ContextUserID)),
	)
	response.OK(c, gin.H{"session_id": sessionID, "questions": items})
}

// Approve handles POST /api/mod/questions/synthesized/:session_id/approve/:question_id.
func (h *Handler) Approve(c *gin.Context) {
	sessionID, id := c.Param("session_id"), c.Param("question_id")
	if err := h.svc.ApproveSynthesized(sessionID, id); err != nil {
		response.Error(c, err)
		return
	}
	h.logDecision(c, "synthesized question approved", sessionID, id)
	response.OK(c, gin.H{"id": id, "approved": true})
}

// Reject handles POST /api/mod/questions/synthesized/:session_id/reject/:question_id.
func (h *Handler) Reject(c *gin.Context) {
	sessionID, id := c.Param("session_id"), c.Param("question_id")
	if err := h.svc.RejectSynthesized(sessionID, id); err != nil {
		response.Error(c, err)
		return
	}
	h.logDecision(c, "synthesized question rejected", sessionID, id)
	response.OK(c, gin.H{"id": id, "approved": false})
}

// Edit handles POST /api/mod/questions/synthesized/:session_id/edit/:question_id.
func (h *Handler) Edit(c *gin.Context) {
	sessionID, id := c.Param("session_id"), c.Param("question_id")
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		response.BadRequest(c, "text is required")
		return
	}
	text := strings.TrimSpace(req.Text)
	if err := h.svc.EditSynthesized(sessionID, id, text); err != nil {
		response.Error(c, err)
		return
	}
	h.logDecision(c, "synthesized question edited", sessionID, id)
	response.OK(c, gin.H{"id": id, "text": text})
}

// Audience handles GET /api/audience/questions/synthesized/:session_id.
func (h *Handler) Audience(c *gin.Context) {
	sessionID := c.Param("session_id")
	items, err := h.svc.AudienceQuestions(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"session_id": sessionID, "questions": items})
}

// Clusters handles GET /api/mod/questions/clusters/:event_id?threshold=.
func (h *Handler) Clusters(c *gin.Context) {
	eventID := c.Param("event_id")
	threshold := h.svc.clusterer.Threshold
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v >= 1 {
			response.BadRequest(c, "threshold must be a number between 0 and 1")
			return
		}
		threshold = v
	}
	clusters, err := h.svc.Clusters(c.Request.Context(), eventID, threshold)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"event_id": eventID, "threshold": threshold, "clusters": clusters})
}

func (h *Handler) respondList(c *gin.Context, sessionID string) {
	items, err := h.svc.GetSynthesis(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"session_id": sessionID, "questions": items})
}

func (h *Handler) logDecision(c *gin.Context, msg, sessionID, id string) {
	h.logger.Info(msg,
		zap.String("event_id", sessionID),
		zap.String("synthesized_id", id),
		zap.String("actor_id", c.GetString(middleware.ContextUserID)),
	)
}
