package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundtrip(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Sign(42)
	require.NoError(t, err)

	uid, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestJWTWrongSecret(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	other := NewJWT("other-secret", time.Hour)

	token, err := j.Sign(42)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	j := NewJWT("test-secret", -time.Minute)

	token, err := j.Sign(42)
	require.NoError(t, err)

	_, err = j.Verify(token)
	assert.Error(t, err)
}

func TestJWTGarbage(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	_, err := j.Verify("not.a.token")
	assert.Error(t, err)
}
