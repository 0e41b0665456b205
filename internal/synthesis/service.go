package synthesis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/models"
)

// Realtime events. The audience room only ever receives approved items from
// the latest synthesis; the moderator room gets the full list.
const (
	EventSynthesisUpdated    = "synthesis_updated"
	EventSynthesizedApproved = "synthesized_approved"
)

// QuestionSource reads questions owned by the question store.
type QuestionSource interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Question, error)
	Sessions(ctx context.Context) ([]string, error)
}

// Notifier pushes realtime events to an event's audience and moderator rooms.
type Notifier interface {
	PublishToEvent(eventID, event string, payload interface{})
	PublishToModerators(eventID, event string, payload interface{})
}

// Service produces and moderates synthesized questions per session.
type Service struct {
	questions QuestionSource
	clusterer *Clusterer
	generator *Generator
	cache     *Cache
	tracker   *Tracker
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the synthesis pipeline.
func NewService(questions QuestionSource, clusterer *Clusterer, generator *Generator, logger *zap.Logger) *Service {
	if clusterer == nil {
		clusterer = NewClusterer(nil, DefaultClusterThreshold)
	}
	if generator == nil {
		generator = NewGenerator(nil, GeneratorOptions{}, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		questions: questions,
		clusterer: clusterer,
		generator: generator,
		cache:     NewCache(),
		tracker:   NewTracker(),
		logger:    logger,
		now:       time.Now,
	}
}

// SetNotifier sets the realtime publisher for audience updates.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// GetSynthesis returns the current synthesized questions for a session,
// regenerating only when the approved input set changed.
func (s *Service) GetSynthesis(ctx context.Context, sessionID string) ([]models.SynthesizedQuestion, error) {
	if sessionID == "" {
		return nil, apperr.Validation("session_id is required")
	}
	unlock := s.cache.lockSession(sessionID)
	defer unlock()

	input, err := s.input(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fingerprint := Fingerprint(input)
	if entry, ok := s.cache.Lookup(sessionID, fingerprint); ok {
		return s.tracker.Overlay(sessionID, entry.Questions), nil
	}

	clusters := s.clusterer.Cluster(input)
	texts := s.generator.Generate(ctx, clusters)
	items := make([]models.SynthesizedQuestion, len(texts))
	anchors := make([]string, len(texts))
	for i, text := range texts {
		items[i] = models.SynthesizedQuestion{ID: models.SynthesizedID(sessionID, i), SessionID: sessionID, Text: text}
		if i < len(clusters) {
			anchors[i] = clusters[i][0].ID.String()
		}
	}
	s.tracker.Seed(sessionID, items, anchors)
	s.cache.Put(models.SynthesisCacheEntry{
		SessionID:   sessionID,
		ApprovedIDs: fingerprint,
		Questions:   items,
		GeneratedAt: s.now().UTC(),
	})
	s.logger.Info("synthesis regenerated",
		zap.String("event_id", sessionID),
		zap.Int("questions", len(input)),
		zap.Int("clusters", len(clusters)),
		zap.Int("synthesized", len(items)),
	)
	out := s.tracker.Overlay(sessionID, items)
	if s.notifier != nil {
		s.notifier.PublishToModerators(sessionID, EventSynthesisUpdated, out)
		s.notifier.PublishToEvent(sessionID, EventSynthesisUpdated, s.tracker.ApprovedIn(sessionID, items))
	}
	return out, nil
}

// Regenerate discards the cached entry and synthesizes again.
func (s *Service) Regenerate(ctx context.Context, sessionID string) ([]models.SynthesizedQuestion, error) {
	s.cache.Drop(sessionID)
	return s.GetSynthesis(ctx, sessionID)
}

// SummarizeAll synthesizes every session with approved questions and
// returns how many succeeded.
func (s *Service) SummarizeAll(ctx context.Context) (int, error) {
	sessions, err := s.questions.Sessions(ctx)
	if err != nil {
		return 0, apperr.Internal("list sessions", err)
	}
	done := 0
	for _, id := range sessions {
		if _, err := s.GetSynthesis(ctx, id); err != nil {
			s.logger.Error("summarization failed", zap.String("event_id", id), zap.Error(err))
			continue
		}
		done++
	}
	return done, nil
}

// ApproveSynthesized makes a synthesized question visible to the audience.
func (s *Service) ApproveSynthesized(sessionID, id string) error {
	if !s.tracker.Approve(sessionID, id) {
		return apperr.NotFound("synthesized question not found")
	}
	s.publishAudience(sessionID)
	return nil
}

// RejectSynthesized hides a synthesized question from the audience.
func (s *Service) RejectSynthesized(sessionID, id string) error {
	if !s.tracker.Reject(sessionID, id) {
		return apperr.NotFound("synthesized question not found")
	}
	s.publishAudience(sessionID)
	return nil
}

// EditSynthesized replaces the text of a synthesized question.
func (s *Service) EditSynthesized(sessionID, id, text string) error {
	if text == "" {
		return apperr.Validation("text is required")
	}
	if !s.tracker.Edit(sessionID, id, text) {
		return apperr.NotFound("synthesized question not found")
	}
	s.publishAudience(sessionID)
	return nil
}

// AudienceQuestions returns items that are both in the latest synthesis and approved.
func (s *Service) AudienceQuestions(ctx context.Context, sessionID string) ([]models.SynthesizedQuestion, error) {
	items, err := s.GetSynthesis(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.SynthesizedQuestion, 0, len(items))
	for _, q := range items {
		if q.Approved {
			out = append(out, q)
		}
	}
	return out, nil
}

// audience returns the approved items of the cached synthesis without
// regenerating. No cached entry means nothing is visible yet.
func (s *Service) audience(sessionID string) []models.SynthesizedQuestion {
	unlock := s.cache.lockSession(sessionID)
	defer unlock()
	entry, ok := s.cache.Get(sessionID)
	if !ok {
		return []models.SynthesizedQuestion{}
	}
	return s.tracker.ApprovedIn(sessionID, entry.Questions)
}

// Clusters groups the session's synthesis input at the given threshold.
// A threshold outside (0,1) uses the service default.
func (s *Service) Clusters(ctx context.Context, sessionID string, threshold float64) ([][]models.Question, error) {
	input, err := s.input(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c := s.clusterer
	if threshold > 0 && threshold < 1 {
		c = NewClusterer(s.clusterer.Similarity, threshold)
	}
	return c.Cluster(input), nil
}

func (s *Service) input(ctx context.Context, sessionID string) ([]models.Question, error) {
	all, err := s.questions.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list questions for %s", sessionID), err)
	}
	out := make([]models.Question, 0, len(all))
	for _, q := range all {
		if q.SynthesisInput() {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Service) publishAudience(sessionID string) {
	if s.notifier != nil {
		s.notifier.PublishToEvent(sessionID, EventSynthesizedApproved, s.audience(sessionID))
	}
}
