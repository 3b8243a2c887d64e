package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestNewTokenValidator_EmptySecret(t *testing.T) {
	assert.Nil(t, NewTokenValidator("  ", ""))

	var v *TokenValidator
	_, err := v.ParseAndValidateToken("anything")
	assert.Error(t, err)
}

func TestParseAndValidateToken(t *testing.T) {
	v := NewTokenValidator("s3cret", "access")

	good := signed(t, "s3cret", jwt.MapClaims{"sub": "u-1", "typ": "access", "exp": time.Now().Add(time.Hour).Unix()})
	claims, err := v.ParseAndValidateToken(good)
	require.NoError(t, err)
	assert.Equal(t, "u-1", Subject(claims))

	wrongType := signed(t, "s3cret", jwt.MapClaims{"sub": "u-1", "typ": "refresh"})
	assert.False(t, v.Valid(wrongType))

	expired := signed(t, "s3cret", jwt.MapClaims{"typ": "access", "exp": time.Now().Add(-time.Minute).Unix()})
	assert.False(t, v.Valid(expired))

	otherKey := signed(t, "other", jwt.MapClaims{"typ": "access"})
	assert.False(t, v.Valid(otherKey))

	assert.False(t, v.Valid("not-a-jwt"))
}

func TestSubject_FallsBackToUserID(t *testing.T) {
	assert.Equal(t, "u-9", Subject(jwt.MapClaims{"user_id": "u-9"}))
	assert.Equal(t, "", Subject(jwt.MapClaims{}))
}
