package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_UsesEnvSecretSetAfterStartup(t *testing.T) {
	// The secret may arrive via .env loaded at startup, long after this
	// package's init ran. Tokens must be signed with the live value.
	t.Setenv("JWT_SECRET", "operator-supplied-secret")

	token, err := GenerateAccessToken(42, "owner@example.com")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.OwnerID)
	assert.Equal(t, "owner@example.com", claims.Email)

	// A token signed under one secret must not validate under another.
	t.Setenv("JWT_SECRET", "rotated-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}
