package model

import "github.com/golang-jwt/jwt/v5"

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AccessClaims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      Role   `json:"role,omitempty"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// TokenPair is returned by register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}
