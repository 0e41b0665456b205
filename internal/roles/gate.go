package roles

import (
	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/internal/models"
)

// Gate decides who may moderate an event.
type Gate struct {
	store *Store
}

// NewGate creates a gate over the role store.
func NewGate(store *Store) *Gate {
	return &Gate{store: store}
}

// IsEventModerator reports whether the user holds the moderator role for exactly this event.
func (g *Gate) IsEventModerator(userID, eventID string) bool {
	if userID == "" || eventID == "" {
		return false
	}
	return g.store.Has(userID, eventID, models.RoleModerator)
}

// IsAdmin reports a global admin, from the token claim or the role store.
func (g *Gate) IsAdmin(id auth.Identity) bool {
	if id.UserID == "" {
		return false
	}
	return models.Role(id.Role) == models.RoleAdmin || g.store.Global(id.UserID) == models.RoleAdmin
}

// IsOrganizer reports whether the user organizes the event.
func (g *Gate) IsOrganizer(userID, eventID string) bool {
	if userID == "" || eventID == "" {
		return false
	}
	return g.store.Has(userID, eventID, models.RoleOrganizer)
}

// CanModerate allows event moderators, the event organizer, and admins.
func (g *Gate) CanModerate(id auth.Identity, eventID string) bool {
	return g.IsEventModerator(id.UserID, eventID) || g.IsOrganizer(id.UserID, eventID) || g.IsAdmin(id)
}

// CanManageRoles allows the event organizer and admins.
func (g *Gate) CanManageRoles(id auth.Identity, eventID string) bool {
	return g.IsOrganizer(id.UserID, eventID) || g.IsAdmin(id)
}
