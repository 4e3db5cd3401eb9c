package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	raw, exp, err := m.Issue(5, "alice", []string{"ROLE_USER", "admin"}, true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "5", claims.ID)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, claims.Roles)
	assert.True(t, claims.ForcePasswordChange)
	require.NotNil(t, claims.IssuedAt)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	raw, _, err := NewTokenManager("secret", time.Hour).Issue(1, "alice", nil, false)
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, _, err := m.Issue(1, "alice", nil, false)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Minute).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNormalizeRoles(t *testing.T) {
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, NormalizeRoles([]string{"admin", " role_user ", ""}))
	assert.Empty(t, NormalizeRoles(nil))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("Bearer "))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
