package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("access", "refresh", 15*time.Minute, 7*24*time.Hour)

	tok, err := m.GenerateAccessToken(42, "ana@example.com", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	m := NewManager("access", "refresh", time.Minute, time.Hour)

	refresh, _, err := m.GenerateRefreshToken(1, "tid-1")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	claims, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "tid-1", claims.ID)
}

func TestExpiredToken(t *testing.T) {
	m := NewManager("access", "refresh", time.Minute, time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	tok, err := m.GenerateAccessToken(1, "x@example.com", "user")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGarbageToken(t *testing.T) {
	m := NewManager("access", "refresh", time.Minute, time.Hour)
	_, err := m.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
