package roles

import (
	"sort"
	"sync"

	"github.com/aura-webinar/qna/internal/models"
)

// Store holds per-event role assignments and global user roles.
type Store struct {
	mu     sync.RWMutex
	events map[string]map[models.RoleAssignment]struct{}
	global map[string]models.Role
}

// NewStore creates an empty role store.
func NewStore() *Store {
	return &Store{
		events: make(map[string]map[models.RoleAssignment]struct{}),
		global: make(map[string]models.Role),
	}
}

// Assign adds (user, event, role). It reports false when the triple already exists.
func (s *Store) Assign(userID, eventID string, role models.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.RoleAssignment{UserID: userID, EventID: eventID, Role: role}
	set, ok := s.events[eventID]
	if !ok {
		set = make(map[models.RoleAssignment]struct{})
		s.events[eventID] = set
	}
	if _, exists := set[a]; exists {
		return false
	}
	set[a] = struct{}{}
	return true
}

// Revoke removes (user, event, role). It reports false when nothing was removed.
func (s *Store) Revoke(userID, eventID string, role models.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.RoleAssignment{UserID: userID, EventID: eventID, Role: role}
	if _, ok := s.events[eventID][a]; !ok {
		return false
	}
	delete(s.events[eventID], a)
	return true
}

// Has reports whether the user holds role in the event.
func (s *Store) Has(userID, eventID string, role models.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.events[eventID][models.RoleAssignment{UserID: userID, EventID: eventID, Role: role}]
	return ok
}

// ListByEvent returns the event's assignments sorted by user then role.
func (s *Store) ListByEvent(eventID string) []models.RoleAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RoleAssignment, 0, len(s.events[eventID]))
	for a := range s.events[eventID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Role < out[j].Role
	})
	return out
}

// SetGlobal sets the user's global role. RoleAttendee clears it.
func (s *Store) SetGlobal(userID string, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role == models.RoleAttendee {
		delete(s.global, userID)
		return
	}
	s.global[userID] = role
}

// Global returns the user's global role, RoleAttendee when none is set.
func (s *Store) Global(userID string) models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.global[userID]; ok {
		return r
	}
	return models.RoleAttendee
}
