package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return &Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "barbershop-backend",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()
	token, err := m.NewAccessToken("owner", "admin")
	require.NoError(t, err)

	claims, err := m.ParseType(token, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "owner", claims.Subject)

	_, err = m.ParseType(token, TokenRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	m := testManager()
	token, err := m.NewAccessToken("owner", "admin")
	require.NoError(t, err)

	other := testManager()
	other.Secret = []byte("other")
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m := testManager()
	m.AccessTTL = -time.Minute
	token, err := m.NewAccessToken("owner", "admin")
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret!"))
	assert.Error(t, ComparePassword(hash, "wrong"))

	_, err = HashPassword("")
	assert.Error(t, err)
	assert.Error(t, ComparePassword("", "x"))
}
