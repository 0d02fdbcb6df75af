package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthData_Expiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	auth := &AuthData{
		AccessExpiresAt:  now.Add(time.Minute).Unix(),
		RefreshExpiresAt: now.Add(time.Hour).Unix(),
	}

	assert.False(t, auth.AccessExpired(now))
	assert.True(t, auth.AccessExpired(now.Add(time.Minute)))
	assert.False(t, auth.RefreshExpired(now.Add(time.Minute)))
	assert.True(t, auth.RefreshExpired(now.Add(2*time.Hour)))
}
