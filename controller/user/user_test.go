package user

import (
	"bytes"
	"context"
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

type fixture struct {
	router *gin.Engine
	ann    model.User
	annTok string
	admTok string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewUserRepository()
	jwt := services.NewJWTService(services.JWTConfig{
		AccessSecret:    "access",
		RefreshSecret:   "refresh",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	users := services.NewUserService(repo, jwt, services.NewUserDirectory(repo, nil), []string{"root@example.com"})

	ctx := context.Background()
	ann, annPair, err := users.Register(ctx, services.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)
	_, admPair, err := users.Register(ctx, services.RegisterInput{Name: "Root", Email: "root@example.com", Password: "password123"})
	require.NoError(t, err)

	r := gin.New()
	UserController(r.Group("/api"), users, middleware.AccessTokenMiddleware(users))
	return &fixture{router: r, ann: ann, annTok: annPair.AccessToken, admTok: admPair.AccessToken}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestListAndGetUsers(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/users", f.annTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = f.do(t, http.MethodGet, "/api/users/"+f.ann.UserID, f.annTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/users/missing", f.annTok, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/users", "", nil).Code)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/api/users/profile", f.annTok, gin.H{"name": "Ann Lee", "bio": "hi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Ann Lee", resp.Name)
	assert.Equal(t, "hi", resp.Bio)

	w = f.do(t, http.MethodPut, "/api/users/profile", f.annTok, gin.H{"email": "root@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPut, "/api/users/profile", f.annTok, gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	path := "/api/users/" + f.ann.UserID + "/role"

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPut, path, f.annTok, gin.H{"role": "admin"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, path, f.admTok, gin.H{"role": "owner"}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPut, "/api/users/missing/role", f.admTok, gin.H{"role": "admin"}).Code)

	w := f.do(t, http.MethodPut, path, f.admTok, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleAdmin, resp.Role)

	// The promotion applies to Ann's existing token.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPut, path, f.annTok, gin.H{"role": "user"}).Code)
}
