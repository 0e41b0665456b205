package questions

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/models"
)

// MemoryStore keeps questions in process, in submission order.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*models.Question
	order []uuid.UUID
}

// NewMemoryStore creates an empty in-memory question store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[uuid.UUID]*models.Question)}
}

func (s *MemoryStore) Submit(_ context.Context, q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if _, exists := s.byID[q.ID]; exists {
		return apperr.Conflict("question already exists")
	}
	cp := *q
	s.byID[q.ID] = &cp
	s.order = append(s.order, q.ID)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.byID[id]
	if !ok {
		return nil, apperr.NotFound("question not found")
	}
	cp := *q
	return &cp, nil
}

func (s *MemoryStore) ListBySession(_ context.Context, sessionID string) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Question, 0)
	for _, id := range s.order {
		if q := s.byID[id]; q.SessionID == sessionID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.QuestionStatus, mergedInto *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.byID[id]
	if !ok {
		return apperr.NotFound("question not found")
	}
	if q.Status != from {
		return errStatusChanged(from, q.Status)
	}
	q.Status = to
	q.MergedInto = mergedInto
	return nil
}

func (s *MemoryStore) SetExcludeFromAI(_ context.Context, id uuid.UUID, exclude bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.byID[id]
	if !ok {
		return apperr.NotFound("question not found")
	}
	if !openStatus(q.Status) {
		return errClosed(q.Status)
	}
	q.ExcludeFromAI = exclude
	return nil
}

func (s *MemoryStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, q := range s.byID {
		if q.SynthesisInput() {
			seen[q.SessionID] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
