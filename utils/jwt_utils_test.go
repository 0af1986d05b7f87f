package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechSupportz/tasky-server/models"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := models.User{ID: 7, Username: "alice", Type: models.UserPro}
	token, err := GenerateToken(user)
	require.NoError(t, err)

	got, err := UserFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateToken(models.User{ID: 1, Username: "alice", Type: models.UserPro})
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateToken(models.User{ID: 1, Username: "alice"})
	assert.Error(t, err)
}
