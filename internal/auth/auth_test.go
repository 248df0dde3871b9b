package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, now func() time.Time) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret-key-for-testing", 24*time.Hour, 15*time.Minute)
	require.NoError(t, err)
	return m.WithClock(now)
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	m, err := NewTokenManager("", time.Hour, time.Minute)

	assert.Nil(t, m)
	assert.Error(t, err)
}

func TestSession_RoundTrip(t *testing.T) {
	m := newTestManager(t, time.Now)

	token, err := m.GenerateSession("user-1", "alice")
	require.NoError(t, err)

	claims, err := m.ValidateSession(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestSession_Expired(t *testing.T) {
	issued := time.Now().Add(-25 * time.Hour)
	token, err := newTestManager(t, func() time.Time { return issued }).GenerateSession("user-1", "alice")
	require.NoError(t, err)

	_, err = newTestManager(t, time.Now).ValidateSession(token)

	assert.Error(t, err)
}

func TestSession_WrongSecret(t *testing.T) {
	token, err := newTestManager(t, time.Now).GenerateSession("user-1", "alice")
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret", time.Hour, time.Minute)
	require.NoError(t, err)

	_, err = other.ValidateSession(token)
	assert.Error(t, err)
}

func TestSession_RejectsResetToken(t *testing.T) {
	m := newTestManager(t, time.Now)
	reset, _, err := m.GenerateReset("user-1")
	require.NoError(t, err)

	_, err = m.ValidateSession(reset)

	assert.Error(t, err)
}

func TestReset_RejectsSessionToken(t *testing.T) {
	m := newTestManager(t, time.Now)
	session, err := m.GenerateSession("user-1", "alice")
	require.NoError(t, err)

	_, err = m.ParseReset(session)

	assert.Error(t, err)
}

func TestReset_ExpiryAndUniqueness(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := newTestManager(t, func() time.Time { return now })

	first, expiresAt, err := m.GenerateReset("user-1")
	require.NoError(t, err)
	second, _, err := m.GenerateReset("user-1")
	require.NoError(t, err)

	assert.Equal(t, now.Add(15*time.Minute), expiresAt)
	assert.NotEqual(t, first, second)

	claims, err := m.ParseReset(first)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestReset_ParseIgnoresElapsedExpiry(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	m := newTestManager(t, func() time.Time { return issued })
	token, _, err := m.GenerateReset("user-1")
	require.NoError(t, err)

	claims, err := newTestManager(t, time.Now).ParseReset(token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestReset_Malformed(t *testing.T) {
	m := newTestManager(t, time.Now)

	_, err := m.ParseReset("not-a-jwt")
	assert.Error(t, err)

	token, _, err := m.GenerateReset("user-1")
	require.NoError(t, err)
	_, err = m.ParseReset(token[:len(token)-2] + "xx")
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(1)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, h.Verify("s3cret-pass", hash))
	assert.False(t, h.Verify("wrong", hash))

	again, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted per call")
}

func TestTokenMatches(t *testing.T) {
	stored := HashToken("abc.def.ghi")

	assert.Len(t, stored, 64)
	assert.True(t, TokenMatches("abc.def.ghi", stored))
	assert.False(t, TokenMatches("abc.def.ghj", stored))
	assert.False(t, TokenMatches("abc.def.ghi", ""))
}
