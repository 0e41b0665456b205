package questions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/models"
)

// Repository handles question persistence in PostgreSQL.
// The questions table is owned by the platform's migrations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const questionColumns = `id, user_id, session_id, text, status, created_at, exclude_from_ai, merged_into`

// Submit inserts a new question.
func (r *Repository) Submit(ctx context.Context, q *models.Question) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	const query = `INSERT INTO questions (id, user_id, session_id, text, status, created_at, exclude_from_ai)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, q.ID, q.UserID, q.SessionID, q.Text, string(q.Status), q.Timestamp, q.ExcludeFromAI)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// Get returns a question by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	q, err := scanQuestion(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// ListBySession returns a session's questions in submission order.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE session_id = $1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	out := make([]models.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// UpdateStatus sets the triage status and merge target if the row is still in status from.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.QuestionStatus, mergedInto *uuid.UUID) error {
	const query = `UPDATE questions SET status = $3, merged_into = $4 WHERE id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, query, id, string(from), string(to), mergedInto)
	if err != nil {
		return fmt.Errorf("update question status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.status(ctx, id)
		if err != nil {
			return err
		}
		return errStatusChanged(from, current)
	}
	return nil
}

// SetExcludeFromAI flips the synthesis exclusion flag on a pending or approved question.
func (r *Repository) SetExcludeFromAI(ctx context.Context, id uuid.UUID, exclude bool) error {
	const query = `UPDATE questions SET exclude_from_ai = $2 WHERE id = $1 AND status IN ('pending', 'approved')`
	tag, err := r.pool.Exec(ctx, query, id, exclude)
	if err != nil {
		return fmt.Errorf("update exclude_from_ai: %w", err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.status(ctx, id)
		if err != nil {
			return err
		}
		return errClosed(current)
	}
	return nil
}

func (r *Repository) status(ctx context.Context, id uuid.UUID) (models.QuestionStatus, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM questions WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.NotFound("question not found")
	}
	if err != nil {
		return "", fmt.Errorf("get question status: %w", err)
	}
	return models.QuestionStatus(status), nil
}

// Sessions lists sessions with at least one approved question that feeds synthesis.
func (r *Repository) Sessions(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT session_id FROM questions
		WHERE status = 'approved' AND NOT exclude_from_ai ORDER BY session_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect sessions: %w", err)
	}
	return ids, nil
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	var status string
	err := row.Scan(&q.ID, &q.UserID, &q.SessionID, &q.Text, &status, &q.Timestamp, &q.ExcludeFromAI, &q.MergedInto)
	if err != nil {
		return nil, err
	}
	q.Status = models.QuestionStatus(status)
	q.Timestamp = q.Timestamp.UTC()
	return &q, nil
}
