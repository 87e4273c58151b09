package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamboard/dto"
	"teamboard/middleware"
	"teamboard/model"
	"teamboard/repository/memory"
	"teamboard/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewUserRepository()
	jwt := services.NewJWTService(services.JWTConfig{
		AccessSecret:    "access",
		RefreshSecret:   "refresh",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	users := services.NewUserService(repo, jwt, services.NewUserDirectory(repo, nil), []string{"boss@example.com"})

	r := gin.New()
	AuthController(r.Group("/api"), users, jwt, middleware.AccessTokenMiddleware(users))
	return r
}

func post(t *testing.T, r http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginProfile(t *testing.T) {
	r := newTestRouter(t)

	w := post(t, r, "/api/auth/register", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), `"password"`)

	var registered dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.Equal(t, "ann@example.com", registered.User.Email)
	assert.Equal(t, model.RoleUser, registered.User.Role)
	assert.NotEmpty(t, registered.AccessToken)

	w = post(t, r, "/api/auth/register", "", gin.H{"name": "Ann 2", "email": "ann@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(t, r, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(t, r, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, registered.User.ID, profile.ID)
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing name", body: gin.H{"email": "a@example.com", "password": "password123"}},
		{name: "bad email", body: gin.H{"name": "A", "email": "nope", "password": "password123"}},
		{name: "short password", body: gin.H{"name": "A", "email": "a@example.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, post(t, r, "/api/auth/register", "", tt.body).Code)
		})
	}
}

func TestRegisterAdminEmail(t *testing.T) {
	r := newTestRouter(t)

	w := post(t, r, "/api/auth/register", "", gin.H{"name": "Boss", "email": "boss@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleAdmin, resp.User.Role)
}

func TestRefresh(t *testing.T) {
	r := newTestRouter(t)

	w := post(t, r, "/api/auth/register", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = post(t, r, "/api/auth/refresh", resp.RefreshToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, post(t, r, "/api/auth/refresh", resp.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, post(t, r, "/api/auth/refresh", "", nil).Code)
}
