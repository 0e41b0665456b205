package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/internal/models"
)

func TestGate(t *testing.T) {
	store := NewStore()
	store.Assign("mod", "e1", models.RoleModerator)
	store.Assign("org", "e1", models.RoleOrganizer)
	store.Assign("spk", "e1", models.RoleSpeaker)
	store.SetGlobal("boss", models.RoleAdmin)
	gate := NewGate(store)

	cases := []struct {
		name      string
		id        auth.Identity
		event     string
		moderator bool
		moderate  bool
		manage    bool
	}{
		{name: "moderator own event", id: auth.Identity{UserID: "mod"}, event: "e1", moderator: true, moderate: true},
		{name: "moderator other event", id: auth.Identity{UserID: "mod"}, event: "e2"},
		{name: "organizer", id: auth.Identity{UserID: "org"}, event: "e1", moderate: true, manage: true},
		{name: "speaker", id: auth.Identity{UserID: "spk"}, event: "e1"},
		{name: "stored admin", id: auth.Identity{UserID: "boss"}, event: "e9", moderate: true, manage: true},
		{name: "token admin", id: auth.Identity{UserID: "x", Role: "admin"}, event: "e9", moderate: true, manage: true},
		{name: "anonymous", id: auth.Identity{}, event: "e1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.moderator, gate.IsEventModerator(tc.id.UserID, tc.event))
			assert.Equal(t, tc.moderate, gate.CanModerate(tc.id, tc.event))
			assert.Equal(t, tc.manage, gate.CanManageRoles(tc.id, tc.event))
		})
	}
}

func TestStoreAssignIsUniqueAndRevocable(t *testing.T) {
	store := NewStore()
	assert.True(t, store.Assign("u1", "e1", models.RoleModerator))
	assert.False(t, store.Assign("u1", "e1", models.RoleModerator))
	assert.True(t, store.Assign("u1", "e1", models.RoleSpeaker))
	assert.Len(t, store.ListByEvent("e1"), 2)

	assert.True(t, store.Revoke("u1", "e1", models.RoleModerator))
	assert.False(t, store.Revoke("u1", "e1", models.RoleModerator))
	assert.Equal(t, []models.RoleAssignment{{UserID: "u1", EventID: "e1", Role: models.RoleSpeaker}}, store.ListByEvent("e1"))
	assert.Empty(t, store.ListByEvent("nope"))
}

func TestStoreGlobalRole(t *testing.T) {
	store := NewStore()
	assert.Equal(t, models.RoleAttendee, store.Global("u1"))
	store.SetGlobal("u1", models.RoleAdmin)
	assert.Equal(t, models.RoleAdmin, store.Global("u1"))
	store.SetGlobal("u1", models.RoleAttendee)
	assert.Equal(t, models.RoleAttendee, store.Global("u1"))
}
