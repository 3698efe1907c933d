package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmate/tripmate/internal/auth"
)

func newTestService(key, issuer, audience string) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: key,
		Issuer:     issuer,
		Audience:   audience,
	})
}

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestService("test-secret-key-for-testing-only", "tripmate", "tripmate-api")

	token, expiresAt, err := svc.GenerateAccessToken("usr_test123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_test123", claims.UserID)
	assert.Equal(t, "usr_test123", claims.Subject)
	assert.Equal(t, "tripmate", claims.Issuer)
	assert.False(t, claims.HasScope(auth.ScopeAdmin))
}

func TestJWTService_Scopes(t *testing.T) {
	svc := newTestService("k", "tripmate", "tripmate-api")

	token, _, err := svc.GenerateAccessToken("usr_admin", "plans:write", auth.ScopeAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.HasScope(auth.ScopeAdmin))
	assert.True(t, claims.HasScope("plans:write"))
	assert.False(t, claims.HasScope("plans"))
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newTestService("test-secret-key-for-testing-only", "tripmate", "tripmate-api")

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}

func TestJWTService_Mismatches(t *testing.T) {
	tests := []struct {
		name      string
		generator *auth.JWTService
		validator *auth.JWTService
	}{
		{
			name:      "wrong signing key",
			generator: newTestService("key-one", "tripmate", "tripmate-api"),
			validator: newTestService("key-two", "tripmate", "tripmate-api"),
		},
		{
			name:      "wrong issuer",
			generator: newTestService("k", "issuer-one", "tripmate-api"),
			validator: newTestService("k", "issuer-two", "tripmate-api"),
		},
		{
			name:      "wrong audience",
			generator: newTestService("k", "tripmate", "audience-one"),
			validator: newTestService("k", "tripmate", "audience-two"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := tt.generator.GenerateAccessToken("usr_test123")
			require.NoError(t, err)

			_, err = tt.validator.ValidateAccessToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestService("k", "tripmate", "tripmate-api")

	past := time.Now().Add(-2 * time.Hour)
	claims := auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tripmate",
			Subject:   "usr_old",
			Audience:  jwt.ClaimStrings{"tripmate-api"},
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
		UserID: "usr_old",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrAccessTokenExpired)
}

func TestJWTService_MissingExpiration(t *testing.T) {
	svc := newTestService("k", "tripmate", "tripmate-api")

	claims := auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "tripmate",
			Audience: jwt.ClaimStrings{"tripmate-api"},
		},
		UserID: "usr_forever",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}
