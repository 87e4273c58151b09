package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"teamboard/controller/httperr"
	"teamboard/model"
)

const (
	identityKey     = "identity"
	refreshTokenKey = "refreshToken"
)

// IdentityResolver turns an access token into the acting user.
type IdentityResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (model.Identity, error)
}

type RefreshTokenParser interface {
	ParseRefreshToken(token string) (*model.AccessClaims, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.Request.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// AccessTokenMiddleware rejects the request with 401 unless it carries an
// access token of an existing user. A failure to load the user is a 500. The
// resolved identity is available to handlers through CurrentUser.
func AccessTokenMiddleware(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			httperr.Abort(c, fmt.Errorf("%w: authorization header is missing", model.ErrUnauthenticated))
			return
		}

		identity, err := resolver.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, model.ErrUnauthenticated) {
				err = fmt.Errorf("%w: token is expired or invalid", model.ErrUnauthenticated)
			}
			httperr.Abort(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentUser returns the identity stored by AccessTokenMiddleware.
func CurrentUser(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}

// AdminMiddleware must run after AccessTokenMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentUser(c)
		if !ok {
			httperr.Abort(c, fmt.Errorf("%w: identity not found", model.ErrUnauthenticated))
			return
		}
		if !identity.IsAdmin() {
			httperr.Abort(c, fmt.Errorf("%w: admin role required", model.ErrForbidden))
			return
		}
		c.Next()
	}
}

func RefreshTokenMiddleware(parser RefreshTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			httperr.Abort(c, fmt.Errorf("%w: refresh token is missing", model.ErrUnauthenticated))
			return
		}
		if _, err := parser.ParseRefreshToken(token); err != nil {
			httperr.Abort(c, fmt.Errorf("%w: invalid refresh token", model.ErrUnauthenticated))
			return
		}

		c.Set(refreshTokenKey, token)
		c.Next()
	}
}

// RefreshToken returns the token validated by RefreshTokenMiddleware.
func RefreshToken(c *gin.Context) string {
	return c.GetString(refreshTokenKey)
}
