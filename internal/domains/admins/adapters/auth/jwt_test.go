package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestJWTManager_RoundTrip(t *testing.T) {
	m, err := NewJWTManager(JWTConfig{Issuer: "gifting-api", Secret: secret, TTL: time.Hour})
	require.NoError(t, err)

	token, exp, err := m.Issue("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	subject, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m, err := NewJWTManager(JWTConfig{Secret: secret, TTL: time.Minute})
	require.NoError(t, err)
	issued := time.Now().Add(-2 * time.Hour)
	m.WithClock(func() time.Time { return issued })
	token, _, err := m.Issue("admin")
	require.NoError(t, err)

	m.WithClock(time.Now)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m, err := NewJWTManager(JWTConfig{Issuer: "gifting-api", Secret: secret})
	require.NoError(t, err)
	other, err := NewJWTManager(JWTConfig{Issuer: "gifting-api", Secret: "ffffffffffffffffffffffffffffffff"})
	require.NoError(t, err)

	token, _, err := other.Issue("admin")
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.Error(t, err)

	wrongIssuer, err := NewJWTManager(JWTConfig{Issuer: "someone-else", Secret: secret})
	require.NoError(t, err)
	token, _, err = wrongIssuer.Issue("admin")
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.Error(t, err)

	_, err = m.Verify("not-a-token")
	assert.Error(t, err)
}

func TestNewJWTManager_RequiresStrongSecret(t *testing.T) {
	_, err := NewJWTManager(JWTConfig{Secret: "short"})
	assert.Error(t, err)
}
