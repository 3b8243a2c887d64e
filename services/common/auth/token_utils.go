package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// TokenValidator checks HMAC-signed session tokens issued by the auth service.
type TokenValidator struct {
	secretKey    []byte
	expectedType string
}

// NewTokenValidator returns nil when secret is empty so callers can treat
// "no validator" as "presence of the cookie is enough".
func NewTokenValidator(secret, expectedType string) *TokenValidator {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	return &TokenValidator{secretKey: []byte(secret), expectedType: expectedType}
}

// ParseAndValidateToken parses a JWT token string and returns its claims.
// If an expected type is configured, the claim "typ" must match it.
func (v *TokenValidator) ParseAndValidateToken(tokenStr string) (jwt.MapClaims, error) {
	if v == nil || v.secretKey == nil {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if v.expectedType != "" {
		if typ, ok := claims["typ"].(string); !ok || typ != v.expectedType {
			return nil, fmt.Errorf("invalid token type")
		}
	}
	return claims, nil
}

// Valid reports whether tokenStr passes ParseAndValidateToken.
func (v *TokenValidator) Valid(tokenStr string) bool {
	_, err := v.ParseAndValidateToken(tokenStr)
	return err == nil
}

// Subject returns the "sub" claim, falling back to "user_id".
func Subject(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if uid, ok := claims["user_id"].(string); ok {
		return uid
	}
	return ""
}
