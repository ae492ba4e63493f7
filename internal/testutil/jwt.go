// Package testutil has fixtures shared by the package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var signingKey = []byte("test-signing-key")

// MintToken signs an access token shaped like the API's, expiring at exp.
func MintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"token_type": "access",
		"exp":        exp.Unix(),
		"iat":        time.Now().Unix(),
		"jti":        uuid.NewString(),
		"user_id":    7,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	require.NoError(t, err)
	return raw
}

// ValidToken is an access token good for an hour.
func ValidToken(t *testing.T) string {
	t.Helper()
	return MintToken(t, time.Now().Add(time.Hour))
}
