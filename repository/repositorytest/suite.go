// Package repositorytest is a conformance suite run against every repository
// backend.
package repositorytest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamboard/model"
	"teamboard/repository"
)

// RunTaskRepository exercises a TaskRepository that starts empty.
func RunTaskRepository(t *testing.T, repo repository.TaskRepository) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := newTask("older", model.StatusTodo, "u1", base.Add(-time.Minute))
	newer := newTask("newer", model.StatusDone, "u2", base)
	middle := newTask("middle", model.StatusTodo, "u2", base.Add(-30*time.Second))

	for _, task := range []model.Task{older, newer, middle} {
		require.NoError(t, repo.Save(ctx, task))
	}

	t.Run("find all newest first", func(t *testing.T) {
		got, err := repo.Find(ctx, repository.TaskFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{newer.TaskID, middle.TaskID, older.TaskID}, ids(got))
	})

	t.Run("find by status", func(t *testing.T) {
		got, err := repo.Find(ctx, repository.TaskFilter{Status: model.StatusTodo})
		require.NoError(t, err)
		assert.Equal(t, []string{middle.TaskID, older.TaskID}, ids(got))
	})

	t.Run("find by assignee", func(t *testing.T) {
		got, err := repo.Find(ctx, repository.TaskFilter{AssignedTo: "u2"})
		require.NoError(t, err)
		assert.Equal(t, []string{newer.TaskID, middle.TaskID}, ids(got))
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, older.TaskID)
		require.NoError(t, err)
		assert.Equal(t, older.Title, got.Title)
		assert.Equal(t, older.AssignedTo, got.AssignedTo)
		assert.True(t, older.CreatedAt.Equal(got.CreatedAt))

		_, err = repo.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("save replaces", func(t *testing.T) {
		updated := older
		updated.Status = model.StatusInProgress
		updated.Title = "older renamed"
		require.NoError(t, repo.Save(ctx, updated))

		got, err := repo.FindByID(ctx, older.TaskID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, got.Status)
		assert.Equal(t, "older renamed", got.Title)

		todo, err := repo.Find(ctx, repository.TaskFilter{Status: model.StatusTodo})
		require.NoError(t, err)
		assert.Equal(t, []string{middle.TaskID}, ids(todo))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, newer.TaskID))
		_, err := repo.FindByID(ctx, newer.TaskID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		err = repo.Delete(ctx, newer.TaskID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

// RunUserRepository exercises a UserRepository that starts empty.
func RunUserRepository(t *testing.T, repo repository.UserRepository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	ann := model.User{UserID: uuid.NewString(), Name: "Ann", Email: "ann@example.com", Role: model.RoleUser, CreatedAt: now, UpdatedAt: now}
	bob := model.User{UserID: uuid.NewString(), Name: "Bob", Email: "bob@example.com", Role: model.RoleAdmin, CreatedAt: now, UpdatedAt: now}

	require.NoError(t, repo.Create(ctx, ann))
	require.NoError(t, repo.Create(ctx, bob))

	t.Run("duplicate email", func(t *testing.T) {
		dup := model.User{UserID: uuid.NewString(), Name: "Ann 2", Email: "ann@example.com", CreatedAt: now}
		assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicate)
	})

	t.Run("find", func(t *testing.T) {
		got, err := repo.FindByID(ctx, ann.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Ann", got.Name)

		got, err = repo.FindByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, bob.UserID, got.UserID)
		assert.Equal(t, model.RoleAdmin, got.Role)

		_, err = repo.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("find by ids skips unknown", func(t *testing.T) {
		got, err := repo.FindByIDs(ctx, []string{ann.UserID, uuid.NewString(), bob.UserID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{ann.UserID, bob.UserID}, userIDs(got))
	})

	t.Run("list", func(t *testing.T) {
		got, err := repo.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{ann.UserID, bob.UserID}, userIDs(got))
	})

	t.Run("save", func(t *testing.T) {
		updated := ann
		updated.Name = "Ann Lee"
		updated.Bio = "writes specs"
		require.NoError(t, repo.Save(ctx, updated))

		got, err := repo.FindByID(ctx, ann.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Ann Lee", got.Name)
		assert.Equal(t, "writes specs", got.Bio)
	})
}

func newTask(title string, status model.Status, assignee string, createdAt time.Time) model.Task {
	return model.Task{
		TaskID:     uuid.NewString(),
		Title:      title,
		Status:     status,
		Priority:   model.PriorityMedium,
		AssignedTo: assignee,
		CreatedBy:  "creator",
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.TaskID)
	}
	return out
}

func userIDs(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.UserID)
	}
	return out
}
