package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"teamboard/model"
)

const tokenIssuer = "teamboard"

type JWTConfig struct {
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type JWTService struct {
	cfg JWTConfig
	now func() time.Time
}

func NewJWTService(cfg JWTConfig) *JWTService {
	return &JWTService{cfg: cfg, now: time.Now}
}

func (s *JWTService) CreateAccessToken(user model.User) (string, error) {
	return s.sign(user, model.TokenTypeAccess, s.cfg.AccessSecret, s.cfg.AccessTokenTTL)
}

func (s *JWTService) CreateRefreshToken(user model.User) (string, error) {
	return s.sign(user, model.TokenTypeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
}

// CreateTokenPair issues an access token and a refresh token for user.
func (s *JWTService) CreateTokenPair(user model.User) (model.TokenPair, error) {
	access, err := s.CreateAccessToken(user)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to create access token: %w", err)
	}
	refresh, err := s.CreateRefreshToken(user)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func (s *JWTService) ParseAccessToken(token string) (*model.AccessClaims, error) {
	return s.parse(token, model.TokenTypeAccess, s.cfg.AccessSecret)
}

func (s *JWTService) ParseRefreshToken(token string) (*model.AccessClaims, error) {
	return s.parse(token, model.TokenTypeRefresh, s.cfg.RefreshSecret)
}

func (s *JWTService) sign(user model.User, tokenType, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &model.AccessClaims{
		UserID:    user.UserID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *JWTService) parse(raw, tokenType, secret string) (*model.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &model.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token is expired", model.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: invalid token", model.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*model.AccessClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", model.ErrUnauthenticated)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: wrong token type", model.ErrUnauthenticated)
	}
	return claims, nil
}
