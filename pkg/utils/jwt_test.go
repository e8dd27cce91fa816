package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfit/gym-backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{
		Email:    "ama@example.com",
		UserType: models.UserTypeMember,
	}
	user.ID = 42

	tokenString, err := GenerateToken(user)
	require.NoError(t, err)

	token, err := ValidateToken(tokenString)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["id"])
	assert.Equal(t, "ama@example.com", claims["email"])
	assert.Equal(t, "member", claims["userType"])
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")

	user := &models.User{Email: "kofi@example.com", UserType: models.UserTypeAdmin}
	user.ID = 1
	tokenString, err := GenerateToken(user)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	token, err := ValidateToken(tokenString)
	if err == nil {
		assert.False(t, token.Valid)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}
