package chat

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/aura-webinar/qna/internal/models"
)

// Store keeps chat messages per event in post order.
type Store struct {
	mu       sync.RWMutex
	messages map[string][]models.ChatMessage
	entropy  *ulid.MonotonicEntropy
}

// NewStore creates an empty message store.
func NewStore() *Store {
	return &Store{
		messages: make(map[string][]models.ChatMessage),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Post appends a message, assigning its id and timestamp.
func (s *Store) Post(eventID, userID, text string, now time.Time) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := models.ChatMessage{
		ID:        ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		EventID:   eventID,
		UserID:    userID,
		Text:      text,
		Timestamp: now.UTC(),
	}
	s.messages[eventID] = append(s.messages[eventID], msg)
	return msg
}

// List returns the event's messages oldest first.
func (s *Store) List(eventID string) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, len(s.messages[eventID]))
	copy(out, s.messages[eventID])
	return out
}

// Delete removes a message. It reports false when the id is unknown for the event.
func (s *Store) Delete(eventID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[eventID]
	for i, m := range msgs {
		if m.ID == id {
			s.messages[eventID] = append(msgs[:i:i], msgs[i+1:]...)
			return true
		}
	}
	return false
}
