package bans

import (
	"sync"
	"time"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/models"
)

// Global is the scope of platform-wide bans.
const Global = ""

type banKey struct {
	eventID string
	userID  string
}

// Registry tracks banned users per scope: one event, or Global.
// Temporary bans lapse on their own.
type Registry struct {
	mu   sync.RWMutex
	bans map[banKey]models.Ban
	now  func() time.Time
}

// NewRegistry creates an empty ban registry.
func NewRegistry() *Registry {
	return &Registry{bans: make(map[banKey]models.Ban), now: time.Now}
}

// Ban records a ban in the given scope. A zero duration bans permanently.
func (r *Registry) Ban(eventID, userID string, duration time.Duration, reason, bannedBy string) (models.Ban, error) {
	if userID == "" {
		return models.Ban{}, apperr.Validation("user_id is required")
	}
	if duration < 0 {
		return models.Ban{}, apperr.Validation("ban duration must not be negative")
	}
	now := r.now().UTC()
	b := models.Ban{EventID: eventID, UserID: userID, Type: models.BanPermanent, Reason: reason, BannedBy: bannedBy, BannedAt: now}
	if duration > 0 {
		until := now.Add(duration)
		b.Type = models.BanTemporary
		b.Until = &until
	}
	r.mu.Lock()
	r.bans[banKey{eventID, userID}] = b
	r.mu.Unlock()
	return b, nil
}

// Unban lifts the ban in exactly this scope. It reports false when there was none.
func (r *Registry) Unban(eventID, userID string) bool {
	k := banKey{eventID, userID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bans[k]; !ok {
		return false
	}
	delete(r.bans, k)
	return true
}

// Active returns the ban in force in exactly this scope at now.
func (r *Registry) Active(eventID, userID string, now time.Time) (models.Ban, bool) {
	k := banKey{eventID, userID}
	r.mu.RLock()
	b, ok := r.bans[k]
	r.mu.RUnlock()
	if !ok {
		return models.Ban{}, false
	}
	if !b.ActiveAt(now) {
		r.mu.Lock()
		if cur, ok := r.bans[k]; ok && !cur.ActiveAt(now) {
			delete(r.bans, k)
		}
		r.mu.Unlock()
		return models.Ban{}, false
	}
	return b, true
}

// IsBanned reports whether the user is banned in the event, either by a
// global ban or by one scoped to that event.
func (r *Registry) IsBanned(eventID, userID string, now time.Time) bool {
	if _, ok := r.Active(Global, userID, now); ok {
		return true
	}
	if eventID == Global {
		return false
	}
	_, ok := r.Active(eventID, userID, now)
	return ok
}

// Check returns an authorization error when the user is banned in the event right now.
func (r *Registry) Check(eventID, userID string) error {
	if userID == "" {
		return nil
	}
	if r.IsBanned(eventID, userID, r.now()) {
		return apperr.Forbidden("user is banned")
	}
	return nil
}
