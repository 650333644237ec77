package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTValidator_RoundTrip(t *testing.T) {
	validator, err := NewJWTValidator("test-secret", "cortex-backend")
	require.NoError(t, err)

	token, err := validator.GenerateToken("principal-1", "p1@example.com", []string{"authenticated"}, time.Hour)
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "principal-1", claims.PrincipalID)
	assert.Equal(t, "p1@example.com", claims.Email)
}

func TestJWTValidator_StripsBearerPrefix(t *testing.T) {
	validator, err := NewJWTValidator("test-secret", "")
	require.NoError(t, err)

	token, err := validator.GenerateToken("principal-1", "", nil, time.Hour)
	require.NoError(t, err)

	claims, err := validator.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "principal-1", claims.PrincipalID)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	validator, err := NewJWTValidator("test-secret", "")
	require.NoError(t, err)

	token, err := validator.GenerateToken("principal-1", "", nil, -time.Minute)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidator_WrongIssuer(t *testing.T) {
	minter, err := NewJWTValidator("test-secret", "someone-else")
	require.NoError(t, err)
	validator, err := NewJWTValidator("test-secret", "cortex-backend")
	require.NoError(t, err)

	token, err := minter.GenerateToken("principal-1", "", nil, time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	minter, err := NewJWTValidator("other-secret", "")
	require.NoError(t, err)
	validator, err := NewJWTValidator("test-secret", "")
	require.NoError(t, err)

	token, err := minter.GenerateToken("principal-1", "", nil, time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_MissingToken(t *testing.T) {
	validator, err := NewJWTValidator("test-secret", "")
	require.NoError(t, err)

	_, err = validator.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	_, err := PrincipalFromContext(ctx)
	assert.Error(t, err)

	p := &Principal{ID: "principal-1"}
	got, err := PrincipalFromContext(WithPrincipal(ctx, p))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}
