package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamboard/board"
	"teamboard/config"
	"teamboard/connection"
	"teamboard/dto"
	"teamboard/model"
)

func newTestServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		AllowedOrigins:   []string{"http://localhost:3000"},
		StoreDriver:      config.DriverMemory,
		JWTSecret:        "access",
		JWTRefreshSecret: "refresh",
		AccessTokenTTL:   time.Minute,
		RefreshTokenTTL:  time.Hour,
		AdminEmails:      []string{"root@example.com"},
	}
	router, err := connection.NewRouter(cfg, connection.NewServices(cfg, connection.MemoryStores(), nil))
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func registered(t *testing.T, baseURL, name string) (*Client, dto.UserResponse) {
	t.Helper()
	c := New(baseURL, 5*time.Second)
	user, err := c.Register(context.Background(), name, name+"@example.com", "password123")
	require.NoError(t, err)
	return c, user
}

func TestClient_ErrorMapping(t *testing.T) {
	base := newTestServer(t)
	ctx := context.Background()
	ann, annUser := registered(t, base, "ann")

	_, err := New(base, time.Second).ListTasks(ctx)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = ann.Login(ctx, "ann@example.com", "wrong-password")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = New(base, time.Second).Register(ctx, "dup", "ann@example.com", "password123")
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = ann.CreateTask(ctx, dto.CreateTaskRequest{Title: "  ", AssignedTo: annUser.ID})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = ann.ListTasksByStatus(ctx, "bogus")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = ann.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_EnumErrorsAreInvalidArgument(t *testing.T) {
	base := newTestServer(t)
	ctx := context.Background()
	ann, annUser := registered(t, base, "ann")

	_, err := ann.CreateTask(ctx, dto.CreateTaskRequest{Title: "x", AssignedTo: annUser.ID, Priority: "urgent"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	task, err := ann.CreateTask(ctx, dto.CreateTaskRequest{Title: "x", AssignedTo: annUser.ID})
	require.NoError(t, err)

	bogus := "archived"
	_, err = ann.UpdateTask(ctx, task.ID, dto.UpdateTaskRequest{Status: &bogus})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	// An echoed id that happens to read like an error kind stays a validation error.
	_, err = ann.CreateTask(ctx, dto.CreateTaskRequest{Title: "x", AssignedTo: "invalid argument"})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.NotErrorIs(t, err, model.ErrInvalidArgument)
}

func TestClient_RetriesAfterRefreshingExpiredToken(t *testing.T) {
	base := newTestServer(t)
	ctx := context.Background()
	ann, _ := registered(t, base, "ann")

	ann.mu.Lock()
	ann.tokens.AccessToken = "expired"
	ann.mu.Unlock()

	_, err := ann.ListTasks(ctx)
	require.NoError(t, err)
	ann.mu.RLock()
	assert.NotEqual(t, "expired", ann.tokens.AccessToken)
	ann.mu.RUnlock()

	ann.setTokens(model.TokenPair{AccessToken: "expired", RefreshToken: "revoked"})
	_, err = ann.ListTasks(ctx)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestClient_LoginRefreshProfile(t *testing.T) {
	base := newTestServer(t)
	ctx := context.Background()
	registered(t, base, "ann")

	c := New(base, 5*time.Second)
	user, err := c.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, c.Refresh(ctx))
	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestClient_TaskLifecycle(t *testing.T) {
	base := newTestServer(t)
	ctx := context.Background()
	ann, _ := registered(t, base, "ann")
	bob, bobUser := registered(t, base, "bob")

	task, err := ann.CreateTask(ctx, dto.CreateTaskRequest{Title: "Write spec", AssignedTo: bobUser.ID, Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, task.Priority)

	assigned, err := bob.ListAssignedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, task.ID, assigned[0].ID)

	status := "done"
	updated, err := bob.UpdateTask(ctx, task.ID, dto.UpdateTaskRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)

	assert.ErrorIs(t, bob.DeleteTask(ctx, task.ID), model.ErrForbidden)
	require.NoError(t, ann.DeleteTask(ctx, task.ID))

	_, err = ann.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestBoardOverHTTP(t *testing.T) {
	base := newTestServer(t)
	ctx := context.Background()
	annClient, _ := registered(t, base, "ann")
	bobClient, bobUser := registered(t, base, "bob")
	rootClient, _ := registered(t, base, "root")

	var _ board.TaskAPI = annClient

	ann := board.New(annClient)
	bob := board.New(bobClient)
	root := board.New(rootClient)

	created, err := ann.AddTask(ctx, dto.CreateTaskRequest{Title: "Write spec", AssignedTo: bobUser.ID})
	require.NoError(t, err)
	assert.Len(t, ann.Bucket(model.StatusTodo), 1)

	_, err = ann.AddTask(ctx, dto.CreateTaskRequest{Title: "", AssignedTo: bobUser.ID})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Len(t, ann.Tasks(), 1)

	moved, err := ann.MoveTask(ctx, created.ID, model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, "Write spec", moved.Title)
	assert.Empty(t, ann.Bucket(model.StatusTodo))
	assert.Len(t, ann.Bucket(model.StatusInProgress), 1)

	require.NoError(t, bob.Refresh(ctx))
	assert.ErrorIs(t, bob.RemoveTask(ctx, created.ID), model.ErrForbidden)
	assert.Len(t, bob.Tasks(), 1)

	other, err := bob.AddTask(ctx, dto.CreateTaskRequest{Title: "bob's", AssignedTo: bobUser.ID})
	require.NoError(t, err)

	require.NoError(t, ann.RemoveTask(ctx, created.ID))
	assert.Empty(t, ann.Bucket(model.StatusInProgress))

	require.NoError(t, root.Refresh(ctx))
	require.Len(t, root.Tasks(), 1)
	require.NoError(t, root.RemoveTask(ctx, other.ID))
	assert.Empty(t, root.Tasks())

	require.NoError(t, bob.Refresh(ctx))
	assert.Empty(t, bob.Tasks())
	for _, col := range bob.Columns() {
		assert.Empty(t, col.Tasks)
	}
}
