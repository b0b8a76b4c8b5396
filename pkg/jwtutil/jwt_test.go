package jwtutil

import (
	"strings"
	"testing"

	"agency-portal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken(42, "owner@acme.example")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "owner@acme.example", claims.Email)
}

func TestValidateToken_Expired(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: -1})

	token, err := GenerateToken(42, "owner@acme.example")
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "original-key", ExpirationHours: 1})
	token, err := GenerateToken(42, "owner@acme.example")
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "rotated-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Tampered(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken(42, "owner@acme.example")
	require.NoError(t, err)

	// Replace the signature segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[2] = "c29tZXRoaW5nLWVsc2U"
	_, err = ValidateToken(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestTokenCarriesNoRoleOrTenant(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken(42, "owner@acme.example")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	// Identity only: role and tenant scope live in the database, never in the
	// token, so a role change takes effect immediately.
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "owner@acme.example", claims.Email)
	assert.Empty(t, claims.Subject)
	assert.Empty(t, claims.Audience)
}
