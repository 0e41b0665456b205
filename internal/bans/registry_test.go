package bans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/qna/internal/apperr"
	"github.com/aura-webinar/qna/internal/models"
)

func TestTemporaryBanLapses(t *testing.T) {
	r := NewRegistry()
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return start }

	b, err := r.Ban(Global, "u1", 2*time.Hour, "spam", "mod")
	require.NoError(t, err)
	assert.Equal(t, models.BanTemporary, b.Type)

	assert.True(t, r.IsBanned("e1", "u1", start.Add(time.Hour)))
	assert.False(t, r.IsBanned("e1", "u1", start.Add(2*time.Hour)))
	assert.False(t, r.Unban(Global, "u1"), "lapsed ban is cleared on read")
}

func TestPermanentBan(t *testing.T) {
	r := NewRegistry()
	b, err := r.Ban(Global, "u1", 0, "", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.BanPermanent, b.Type)
	assert.Nil(t, b.Until)
	assert.True(t, r.IsBanned("e1", "u1", time.Now().Add(24*365*time.Hour)))

	err = r.Check("e1", "u1")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	assert.True(t, r.Unban(Global, "u1"))
	assert.NoError(t, r.Check("e1", "u1"))
}

func TestBanValidation(t *testing.T) {
	r := NewRegistry()
	_, err := r.Ban("e1", "", 0, "", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = r.Ban("e1", "u1", -time.Second, "", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.False(t, r.IsBanned("e1", "u1", time.Now()))
}

func TestEventBanStaysInItsEvent(t *testing.T) {
	r := NewRegistry()
	b, err := r.Ban("e1", "u1", 0, "spam", "mod1")
	require.NoError(t, err)
	assert.Equal(t, "e1", b.EventID)

	now := time.Now()
	assert.True(t, r.IsBanned("e1", "u1", now))
	assert.False(t, r.IsBanned("e2", "u1", now))
	assert.False(t, r.IsBanned(Global, "u1", now))
	assert.NoError(t, r.Check("e2", "u1"))
	assert.True(t, apperr.Is(r.Check("e1", "u1"), apperr.KindAuthorization))
}

func TestGlobalBanCoversEveryEvent(t *testing.T) {
	r := NewRegistry()
	_, err := r.Ban(Global, "u1", 0, "", "admin")
	require.NoError(t, err)

	assert.Error(t, r.Check("e1", "u1"))
	assert.Error(t, r.Check("e2", "u1"))

	assert.False(t, r.Unban("e1", "u1"), "an event unban does not lift a global ban")
	assert.Error(t, r.Check("e1", "u1"))
	assert.True(t, r.Unban(Global, "u1"))
	assert.NoError(t, r.Check("e1", "u1"))
}

func TestBanRequestDuration(t *testing.T) {
	d, msg := BanRequest{Type: models.BanTemporary, Hours: 3}.duration()
	assert.Empty(t, msg)
	assert.Equal(t, 3*time.Hour, d)

	_, msg = BanRequest{Type: models.BanTemporary}.duration()
	assert.NotEmpty(t, msg)

	d, msg = BanRequest{}.duration()
	assert.Empty(t, msg)
	assert.Zero(t, d)

	_, msg = BanRequest{Type: "forever"}.duration()
	assert.NotEmpty(t, msg)
}
