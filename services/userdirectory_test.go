package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamboard/model"
	"teamboard/repository"
	"teamboard/repository/memory"
)

// mapCache is an in-process SummaryCache that stores JSON like the Redis cache.
type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// countingUsers counts batch reads and, like a network backend, fails
// reads on a cancelled context.
type countingUsers struct {
	repository.UserRepository
	mu    sync.Mutex
	reads int
}

func (r *countingUsers) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.UserRepository.FindByIDs(ctx, ids)
}

func seedUsers(t *testing.T, repo *memory.UserRepository, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, repo.Create(context.Background(), model.User{UserID: "id-" + n, Name: n, Email: n + "@example.com"}))
	}
}

func TestUserDirectory_SummariesWithoutCache(t *testing.T) {
	repo := memory.NewUserRepository()
	seedUsers(t, repo, "ann", "bob")
	dir := NewUserDirectory(repo, nil)

	got, err := dir.Summaries(context.Background(), []string{"id-ann", "id-bob", "id-ann", "", "ghost"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "ann", got["id-ann"].Name)
	assert.Equal(t, "bob@example.com", got["id-bob"].Email)
	_, ok := got["ghost"]
	assert.False(t, ok)
}

func TestUserDirectory_CacheAside(t *testing.T) {
	mem := memory.NewUserRepository()
	seedUsers(t, mem, "ann")
	repo := &countingUsers{UserRepository: mem}
	c := newMapCache()
	dir := NewUserDirectory(repo, c)
	ctx := context.Background()

	_, err := dir.Summaries(ctx, []string{"id-ann"})
	require.NoError(t, err)
	got, err := dir.Summaries(ctx, []string{"id-ann"})
	require.NoError(t, err)
	assert.Equal(t, "ann", got["id-ann"].Name)
	assert.Equal(t, 1, repo.reads)

	dir.Invalidate(ctx, "id-ann")
	_, err = dir.Summaries(ctx, []string{"id-ann"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)
}

func TestUserDirectory_LoadsMissesInOneBatch(t *testing.T) {
	mem := memory.NewUserRepository()
	seedUsers(t, mem, "ann", "bob", "cat")
	repo := &countingUsers{UserRepository: mem}
	dir := NewUserDirectory(repo, newMapCache())

	got, err := dir.Summaries(context.Background(), []string{"id-cat", "id-ann", "id-bob", "ghost", "id-ann"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 1, repo.reads)
}

func TestUserDirectory_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	mem := memory.NewUserRepository()
	seedUsers(t, mem, "ann")
	repo := &countingUsers{UserRepository: mem}
	dir := NewUserDirectory(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := dir.Summaries(ctx, []string{"id-ann"})
	require.NoError(t, err)
	assert.Equal(t, "ann", got["id-ann"].Name)
}

func TestUserDirectory_StoreFailure(t *testing.T) {
	dir := NewUserDirectory(failingUsers{}, nil)

	_, err := dir.Summaries(context.Background(), []string{"id-ann"})
	assert.ErrorIs(t, err, model.ErrStoreFailure)
}

type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) FindByIDs(context.Context, []string) ([]model.User, error) {
	return nil, errors.New("connection refused")
}

func TestUserDirectory_CacheErrorFallsThrough(t *testing.T) {
	repo := memory.NewUserRepository()
	seedUsers(t, repo, "ann")
	c := newMapCache()
	c.failGet = true
	dir := NewUserDirectory(repo, c)

	got, err := dir.Summaries(context.Background(), []string{"id-ann"})
	require.NoError(t, err)
	assert.Equal(t, "ann", got["id-ann"].Name)
}

func TestUserDirectory_Exists(t *testing.T) {
	repo := memory.NewUserRepository()
	seedUsers(t, repo, "ann")
	dir := NewUserDirectory(repo, nil)

	ok, err := dir.Exists(context.Background(), "id-ann")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.Exists(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}
