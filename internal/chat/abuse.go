package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/aura-webinar/qna/internal/apperr"
)

// State is a user's chat standing within one event.
type State string

const (
	StateActive   State = "active"
	StateMuted    State = "muted"
	StateExpelled State = "expelled"
)

// Status reports a user's chat standing.
type Status struct {
	EventID    string     `json:"event_id"`
	UserID     string     `json:"user_id"`
	State      State      `json:"state"`
	MutedUntil *time.Time `json:"muted_until,omitempty"`
}

type memberKey struct {
	eventID string
	userID  string
}

// Abuse holds per-event mute and expel records.
// Mutes lapse at their expiry; expulsion has no expiry.
type Abuse struct {
	mu       sync.Mutex
	mutes    map[memberKey]time.Time
	expelled map[memberKey]struct{}
}

// NewAbuse creates an empty abuse tracker.
func NewAbuse() *Abuse {
	return &Abuse{
		mutes:    make(map[memberKey]time.Time),
		expelled: make(map[memberKey]struct{}),
	}
}

// Mute silences the user in the event until now+d and returns the expiry.
func (a *Abuse) Mute(eventID, userID string, d time.Duration, now time.Time) (time.Time, error) {
	if d <= 0 {
		return time.Time{}, apperr.Validation("mute duration must be positive")
	}
	expiry := now.Add(d).UTC()
	a.mu.Lock()
	a.mutes[memberKey{eventID, userID}] = expiry
	a.mu.Unlock()
	return expiry, nil
}

// Unmute lifts a mute. It reports false when no mute was recorded.
func (a *Abuse) Unmute(eventID, userID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := memberKey{eventID, userID}
	if _, ok := a.mutes[k]; !ok {
		return false
	}
	delete(a.mutes, k)
	return true
}

// Expel removes the user from the event chat for good.
func (a *Abuse) Expel(eventID, userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := memberKey{eventID, userID}
	a.expelled[k] = struct{}{}
	delete(a.mutes, k)
}

// ClearExpulsion resets an expulsion. It reports false when the user was not expelled.
func (a *Abuse) ClearExpulsion(eventID, userID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := memberKey{eventID, userID}
	if _, ok := a.expelled[k]; !ok {
		return false
	}
	delete(a.expelled, k)
	return true
}

// Status returns the user's standing at now.
func (a *Abuse) Status(eventID, userID string, now time.Time) Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusLocked(eventID, userID, now)
}

// CheckCanPost fails with an authorization error while the user is expelled or muted.
func (a *Abuse) CheckCanPost(eventID, userID string, now time.Time) error {
	a.mu.Lock()
	st := a.statusLocked(eventID, userID, now)
	a.mu.Unlock()
	switch st.State {
	case StateExpelled:
		return apperr.Forbidden("user is expelled from this event")
	case StateMuted:
		return apperr.Forbidden(fmt.Sprintf("user is muted until %s", st.MutedUntil.Format(time.RFC3339)))
	}
	return nil
}

func (a *Abuse) statusLocked(eventID, userID string, now time.Time) Status {
	k := memberKey{eventID, userID}
	st := Status{EventID: eventID, UserID: userID, State: StateActive}
	if _, ok := a.expelled[k]; ok {
		st.State = StateExpelled
		return st
	}
	if expiry, ok := a.mutes[k]; ok {
		if now.Before(expiry) {
			st.State = StateMuted
			st.MutedUntil = &expiry
			return st
		}
		delete(a.mutes, k)
	}
	return st
}
