package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user-1", "a@b.com", "moderator", "secret")
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "moderator", claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "a@b.com", "user", "secret")
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken("user-1", "secret")
	require.NoError(t, err)

	userID, err := ValidateRefreshToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateRefreshToken_AccessTokenStillParses(t *testing.T) {
	// Access tokens have no subject, so the refresh path yields an empty ID
	// rather than an error; callers must treat that as unauthenticated.
	access, err := GenerateToken("user-1", "a@b.com", "user", "secret")
	require.NoError(t, err)

	userID, err := ValidateRefreshToken(access, "secret")
	require.NoError(t, err)
	assert.Empty(t, userID)
}
