package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoelJacobStephen/litxplore/errors"
)

func TestEncodeDecoder_RoundTrip(t *testing.T) {
	ed := NewEncodeDecoder([]byte("test-key"), "litxplore")

	token, err := ed.Encode("user_123", "jane@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ed.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.Subject)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "litxplore", claims.Issuer)
}

func TestEncodeDecoder_Expired(t *testing.T) {
	ed := NewEncodeDecoder([]byte("test-key"), "litxplore")

	token, err := ed.Encode("user_123", "", -time.Minute)
	require.NoError(t, err)

	_, err = ed.Verify(token)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "expired")
}

func TestEncodeDecoder_WrongKey(t *testing.T) {
	ed := NewEncodeDecoder([]byte("test-key"), "litxplore")
	other := NewEncodeDecoder([]byte("other-key"), "litxplore")

	token, err := ed.Encode("user_123", "", time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, errors.CodeOf(err))
}

func TestJWKSCache_TTL(t *testing.T) {
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewJWKSCache(time.Hour)
	cache.now = func() time.Time { return clock }

	cache.update(nil)

	_, ok := cache.get("kid-1")
	assert.False(t, ok, "unknown kid should miss")

	clock = clock.Add(2 * time.Hour)
	_, ok = cache.get("kid-1")
	assert.False(t, ok, "expired cache should miss")
}
