package models

// Role is an event-scoped or global role.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleModerator Role = "moderator"
	RoleOrganizer Role = "organizer"
	RoleSpeaker   Role = "speaker"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAttendee, RoleModerator, RoleOrganizer, RoleSpeaker, RoleAdmin:
		return true
	}
	return false
}

// RoleAssignment links a user to an event with a role.
type RoleAssignment struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
	Role    Role   `json:"role"`
}
