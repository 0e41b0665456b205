package questions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/models"
)

// Action is a moderator triage action on a question.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionDelete    Action = "delete"
	ActionMerge     Action = "merge"
	ActionExcludeAI Action = "exclude_ai"
	ActionIncludeAI Action = "include_ai"
)

// EventQuestionTriaged is published to the event's moderator room after a triage action.
const EventQuestionTriaged = "question_triaged"

var transitions = map[models.QuestionStatus][]models.QuestionStatus{
	models.StatusPending:  {models.StatusApproved, models.StatusDeleted, models.StatusMerged},
	models.StatusApproved: {models.StatusDeleted, models.StatusMerged},
}

// CanTransition reports whether a question may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to models.QuestionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Notifier pushes realtime events to the moderators of an event.
// Raw questions never go to the public audience room.
type Notifier interface {
	PublishToModerators(eventID, event string, payload interface{})
}

// Service applies triage actions to stored questions.
type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a triage service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// SetNotifier sets the realtime publisher.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Triage applies action to the question. target is required for merge only.
func (s *Service) Triage(ctx context.Context, actorID string, questionID uuid.UUID, action Action, target *uuid.UUID) (*models.Question, error) {
	q, err := s.store.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionApprove:
		err = s.transition(ctx, q, models.StatusApproved, nil)
	case ActionDelete:
		err = s.transition(ctx, q, models.StatusDeleted, nil)
	case ActionMerge:
		err = s.merge(ctx, q, target)
	case ActionExcludeAI, ActionIncludeAI:
		err = s.setExclude(ctx, q, action == ActionExcludeAI)
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown action: %s", action))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("question triaged",
		zap.String("event_id", q.SessionID),
		zap.String("question_id", q.ID.String()),
		zap.String("action", string(action)),
		zap.String("status", string(q.Status)),
		zap.String("actor_id", actorID),
	)
	if s.notifier != nil {
		s.notifier.PublishToModerators(q.SessionID, EventQuestionTriaged, q)
	}
	return q, nil
}

func (s *Service) transition(ctx context.Context, q *models.Question, to models.QuestionStatus, mergedInto *uuid.UUID) error {
	if !CanTransition(q.Status, to) {
		return apperr.Conflict(fmt.Sprintf("cannot move question from %s to %s", q.Status, to))
	}
	if q.Status == to {
		return nil
	}
	if err := s.store.UpdateStatus(ctx, q.ID, q.Status, to, mergedInto); err != nil {
		return err
	}
	q.Status = to
	q.MergedInto = mergedInto
	return nil
}

func (s *Service) merge(ctx context.Context, q *models.Question, target *uuid.UUID) error {
	if target == nil || *target == uuid.Nil {
		return apperr.Validation("merge requires target_id")
	}
	if *target == q.ID {
		return apperr.Validation("cannot merge a question into itself")
	}
	t, err := s.store.Get(ctx, *target)
	if err != nil {
		return err
	}
	if t.SessionID != q.SessionID {
		return apperr.Validation("merge target belongs to another event")
	}
	if t.Status == models.StatusDeleted || t.Status == models.StatusMerged {
		return apperr.Conflict(fmt.Sprintf("merge target is %s", t.Status))
	}
	if q.Status == models.StatusMerged {
		return apperr.Conflict("question is already merged")
	}
	return s.transition(ctx, q, models.StatusMerged, target)
}

func (s *Service) setExclude(ctx context.Context, q *models.Question, exclude bool) error {
	if !openStatus(q.Status) {
		return errClosed(q.Status)
	}
	if q.ExcludeFromAI == exclude {
		return nil
	}
	if err := s.store.SetExcludeFromAI(ctx, q.ID, exclude); err != nil {
		return err
	}
	q.ExcludeFromAI = exclude
	return nil
}
