package questions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/models"
)

// Store persists questions. ListBySession returns submission order.
type Store interface {
	Submit(ctx context.Context, q *models.Question) error
	Get(ctx context.Context, id uuid.UUID) (*models.Question, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Question, error)
	// UpdateStatus moves the question to status to only while it is still in
	// status from; otherwise it fails with a Conflict and changes nothing.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.QuestionStatus, mergedInto *uuid.UUID) error
	// SetExcludeFromAI fails with a Conflict unless the question is pending or approved.
	SetExcludeFromAI(ctx context.Context, id uuid.UUID, exclude bool) error
	// Sessions lists sessions that have at least one approved question not excluded from synthesis.
	Sessions(ctx context.Context) ([]string, error)
}

func openStatus(s models.QuestionStatus) bool {
	return s == models.StatusPending || s == models.StatusApproved
}

func errStatusChanged(from, now models.QuestionStatus) error {
	return apperr.Conflict(fmt.Sprintf("question status changed from %s to %s", from, now))
}

func errClosed(s models.QuestionStatus) error {
	return apperr.Conflict(fmt.Sprintf("cannot change AI exclusion on a %s question", s))
}
