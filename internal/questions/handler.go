package questions

import (
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/internal/middleware"
	"github.com/aura-webinar/qna/internal/models"
	"github.com/aura-webinar/qna/pkg/response"
)

// EventQuestionSubmitted is published to the event's moderator room for each new question.
const EventQuestionSubmitted = "question_submitted"

// SubmitRequest is the body for POST /questions.
type SubmitRequest struct {
	UserID    string                `json:"user_id"`
	SessionID string                `json:"session_id"`
	Text      string                `json:"text"`
	Status    models.QuestionStatus `json:"status"`
}

// ActionRequest is the optional body for POST /api/mod/question/:question_id/:action.
type ActionRequest struct {
	TargetID string `json:"target_id"`
}

// BanChecker rejects users banned globally or from the event.
type BanChecker interface {
	Check(eventID, userID string) error
}

// Moderators decides whether a caller may moderate an event.
type Moderators interface {
	CanModerate(id auth.Identity, eventID string) bool
}

// Handler handles question submission, triage and speaker endpoints.
type Handler struct {
	store    Store
	triage   *Service
	bans     BanChecker
	gate     Moderators
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates a questions handler.
func NewHandler(store Store, triage *Service, bans BanChecker, gate Moderators, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, triage: triage, bans: bans, gate: gate, logger: logger}
}

// SetNotifier sets the realtime publisher.
func (h *Handler) SetNotifier(n Notifier) {
	h.notifier = n
}

// Submit handles POST /questions (audience asks a question).
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	// An authenticated caller always submits as itself; the body user_id
	// only names anonymous submitters.
	if id, ok := middleware.IdentityFrom(c); ok {
		if req.UserID != "" && req.UserID != id.UserID {
			response.Forbidden(c, "user_id does not match the authenticated user")
			return
		}
		req.UserID = id.UserID
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}

	if req.UserID != "" && h.bans != nil {
		if err := h.bans.Check(req.SessionID, req.UserID); err != nil {
			response.Error(c, err)
			return
		}
	}
	errs := models.ValidateQuestion(req.UserID, req.SessionID, req.Text, req.Status)
	if len(errs) == 0 && req.Status != models.StatusPending && req.Status != models.StatusApproved {
		errs = append(errs, "status must be pending or approved on submission")
	}
	if len(errs) > 0 {
		response.BadRequest(c, strings.Join(errs, "; "))
		return
	}

	q := &models.Question{
		ID:        uuid.New(),
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Text:      strings.TrimSpace(req.Text),
		Status:    req.Status,
		Timestamp: time.Now().UTC(),
	}
	if err := h.store.Submit(c.Request.Context(), q); err != nil {
		h.logger.Error("submit question", zap.Error(err), zap.String("event_id", q.SessionID))
		response.Error(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.PublishToModerators(q.SessionID, EventQuestionSubmitted, q)
	}
	response.Created(c, q)
}

// ListForModerator handles GET /api/mod/questions/:event_id (every question, any status).
func (h *Handler) ListForModerator(c *gin.Context) {
	list, err := h.store.ListBySession(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"questions": list})
}

// Action handles POST /api/mod/question/:question_id/:action.
func (h *Handler) Action(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	var req ActionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	var target *uuid.UUID
	if req.TargetID != "" {
		t, err := uuid.Parse(req.TargetID)
		if err != nil {
			response.BadRequest(c, "invalid target_id")
			return
		}
		target = &t
	}

	q, err := h.store.Get(c.Request.Context(), questionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, _ := middleware.IdentityFrom(c)
	if !h.gate.CanModerate(id, q.SessionID) {
		response.Forbidden(c, "insufficient permissions for this event")
		return
	}

	updated, err := h.triage.Triage(c.Request.Context(), id.UserID, questionID, Action(c.Param("action")), target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, updated)
}

// ListForSpeaker handles GET /api/speaker/questions/:event_id (approved questions by time).
func (h *Handler) ListForSpeaker(c *gin.Context) {
	all, err := h.store.ListBySession(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	approved := make([]models.Question, 0, len(all))
	for _, q := range all {
		if q.Status == models.StatusApproved {
			approved = append(approved, q)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		return approved[i].Timestamp.Before(approved[j].Timestamp)
	})
	response.OK(c, gin.H{"questions": approved})
}
