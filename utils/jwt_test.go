package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/models"
)

func TestTokenRoundTrip(t *testing.T) {
	config.SetForTesting(testConfig(t))

	token, err := GenerateToken(7, "admin", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	config.SetForTesting(testConfig(t))

	token, err := GenerateToken(7, "admin", models.RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	cfg := testConfig(t)
	config.SetForTesting(cfg)
	token, err := GenerateToken(7, "admin", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	cfg.JWTSecret = "rotated"
	config.SetForTesting(cfg)
	_, err = ParseToken(token)
	assert.Error(t, err)
}
