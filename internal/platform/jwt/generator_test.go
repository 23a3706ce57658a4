package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewGenerator は各種設定でGeneratorが正しく生成されることを検証します。
func TestNewGenerator(t *testing.T) {
	t.Parallel()

	gen := NewGenerator("my-secret-key", time.Hour)

	assert.Equal(t, []byte("my-secret-key"), gen.secret)
	assert.Equal(t, time.Hour, gen.expiration)
}

// TestGenerator_RoundTrip は生成したトークンからユーザーIDとセッションIDが復元できることを検証します。
func TestGenerator_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		userID    uint
		email     string
		sessionID string
	}{
		{"basic user", 1, "alice@example.com", "7c7d3f0e-6c55-4d0b-9f1e-000000000001"},
		{"user with special email", 42, "user+tag@example.com", "sid-42"},
		{"large user id", 999999, "test@test.com", "sid-big"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator("secret", time.Hour)
			token, err := gen.GenerateToken(tt.userID, tt.email, tt.sessionID)
			require.NoError(t, err)

			userID, sessionID, err := gen.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, userID)
			assert.Equal(t, tt.sessionID, sessionID)
		})
	}
}

// TestGenerator_ParseToken_Invalid は不正なトークン（改ざん・期限切れ等）が拒否されることを検証します。
func TestGenerator_ParseToken_Invalid(t *testing.T) {
	t.Parallel()

	gen := NewGenerator("right-secret", time.Hour)
	otherGen := NewGenerator("wrong-secret", time.Hour)
	expiredGen := NewGenerator("right-secret", -time.Hour)

	wrongSecret, err := otherGen.GenerateToken(1, "a@example.com", "sid")
	require.NoError(t, err)
	expired, err := expiredGen.GenerateToken(1, "a@example.com", "sid")
	require.NoError(t, err)
	noSession, err := gen.GenerateToken(1, "a@example.com", "")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "sid": "sid"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"wrong secret", wrongSecret},
		{"expired token", expired},
		{"missing session id", noSession},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := gen.ParseToken(tt.token)
			assert.Error(t, err)
		})
	}
}
