package linkedin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialExpiredAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, Credential{}.ExpiredAt(now), "nil expiry never expires")
	assert.False(t, Credential{ExpiresAt: &future}.ExpiredAt(now))
	assert.True(t, Credential{ExpiresAt: &past}.ExpiredAt(now))
	assert.True(t, Credential{ExpiresAt: &now}.ExpiredAt(now), "expiry boundary is inclusive")
}
