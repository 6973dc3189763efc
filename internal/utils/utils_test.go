package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("123456", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)
	assert.True(t, VerifyPassword(hash, "123456"))
	assert.False(t, VerifyPassword(hash, "1234567"))

	other, err := HashPassword("123456", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")

	low, err := HashPassword("123456", 1)
	require.NoError(t, err)
	assert.False(t, NeedsRehash(low, bcrypt.MinCost), "cost below the minimum is clamped")
	assert.True(t, NeedsRehash(low, bcrypt.MinCost+1))
	assert.True(t, NeedsRehash("not-a-hash", bcrypt.MinCost))

	_, err = HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", "user-test-001", "user", 15)
	require.NoError(t, err)
	assert.True(t, tok.Exp.After(time.Now()))

	claims, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "user-test-001", Role: "user"}, claims)

	_, err = ParseAccessToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejects(t *testing.T) {
	expired, err := NewAccessToken("secret", "u", "user", -5)
	require.NoError(t, err)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u", "exp": time.Now().Add(time.Hour).Unix(),
	})
	noRoleRaw, err := noRole.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired.Token},
		{"missing role", noRoleRaw},
		{"none alg", strings.Join([]string{"eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0", "eyJzdWIiOiJ1Iiwicm9sZSI6ImFkbWluIn0", ""}, ".")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccessToken("secret", tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewOrderID(t *testing.T) {
	re := regexp.MustCompile(`^ORD-2025-\d{5}$`)
	now := time.Date(2025, 12, 10, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, NewOrderID(now))
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID("trip"), NewID("trip")
	assert.True(t, strings.HasPrefix(a, "trip-"))
	assert.NotEqual(t, a, b)
}
