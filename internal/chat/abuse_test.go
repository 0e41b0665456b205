package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/qna/internal/apperr"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestMuteExpires(t *testing.T) {
	a := NewAbuse()
	expiry, err := a.Mute("e1", "u1", 10*time.Minute, t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(10*time.Minute), expiry)

	err = a.CheckCanPost("e1", "u1", t0.Add(9*time.Minute))
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	assert.Equal(t, StateMuted, a.Status("e1", "u1", t0).State)

	assert.NoError(t, a.CheckCanPost("e1", "u1", expiry))
	assert.Equal(t, StateActive, a.Status("e1", "u1", expiry).State)
	assert.False(t, a.Unmute("e1", "u1"), "stale mute cleared on read")
}

func TestMuteIsPerEvent(t *testing.T) {
	a := NewAbuse()
	_, err := a.Mute("e1", "u1", time.Hour, t0)
	require.NoError(t, err)
	assert.NoError(t, a.CheckCanPost("e2", "u1", t0))
}

func TestMuteRejectsNonPositiveDuration(t *testing.T) {
	a := NewAbuse()
	_, err := a.Mute("e1", "u1", 0, t0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, StateActive, a.Status("e1", "u1", t0).State)
}

func TestExpelIsPermanent(t *testing.T) {
	a := NewAbuse()
	_, err := a.Mute("e1", "u1", time.Minute, t0)
	require.NoError(t, err)
	a.Expel("e1", "u1")

	for _, at := range []time.Time{t0, t0.Add(time.Hour), t0.Add(365 * 24 * time.Hour)} {
		err := a.CheckCanPost("e1", "u1", at)
		assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	}
	assert.Equal(t, StateExpelled, a.Status("e1", "u1", t0).State)

	assert.True(t, a.ClearExpulsion("e1", "u1"))
	assert.NoError(t, a.CheckCanPost("e1", "u1", t0))
	assert.False(t, a.ClearExpulsion("e1", "u1"))
}
