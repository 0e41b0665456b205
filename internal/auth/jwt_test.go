package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	token, err := svc.Generate("u1", "admin")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Role: "admin"}, claims.Identity())
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("other", time.Hour).Generate("u1", "")
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("secret", time.Hour).Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
