package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamboard/model"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	user := model.User{UserID: "u1", Email: "ann@example.com", Role: model.RoleAdmin}

	pair, err := svc.CreateTokenPair(user)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	claims, err = svc.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	user := model.User{UserID: "u1", Email: "ann@example.com"}

	access, err := svc.CreateAccessToken(user)
	require.NoError(t, err)
	refresh, err := svc.CreateRefreshToken(user)
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{AccessSecret: "other", RefreshSecret: "other", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Minute})
	foreign, err := other.CreateAccessToken(user)
	require.NoError(t, err)

	expiredSvc := NewJWTService(testJWTConfig())
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredSvc.CreateAccessToken(user)
	require.NoError(t, err)

	tests := []struct {
		name  string
		parse func(string) (*model.AccessClaims, error)
		token string
	}{
		{name: "garbage", parse: svc.ParseAccessToken, token: "not-a-token"},
		{name: "refresh used as access", parse: svc.ParseAccessToken, token: refresh},
		{name: "access used as refresh", parse: svc.ParseRefreshToken, token: access},
		{name: "wrong secret", parse: svc.ParseAccessToken, token: foreign},
		{name: "expired", parse: svc.ParseAccessToken, token: expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parse(tt.token)
			assert.ErrorIs(t, err, model.ErrUnauthenticated)
		})
	}
}
