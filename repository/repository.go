// Package repository defines the document-store contract used by the task
// and user services. Implementations live in the memory, firestoredb and
// mongodb subpackages.
package repository

import (
	"context"
	"errors"
	"sort"

	"teamboard/model"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

// TaskFilter selects tasks by equality. Zero fields match everything.
type TaskFilter struct {
	Status     model.Status
	AssignedTo string
}

func (f TaskFilter) Match(t model.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	return true
}

type TaskRepository interface {
	// Find returns matching tasks ordered newest-created first.
	Find(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	FindByID(ctx context.Context, id string) (model.Task, error)
	// Save inserts the task or replaces the stored document with the same id.
	Save(ctx context.Context, task model.Task) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	// Create fails with ErrDuplicate when the email is taken.
	Create(ctx context.Context, user model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	// FindByIDs skips ids that do not resolve.
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Save(ctx context.Context, user model.User) error
}

// SortNewestFirst orders tasks by descending CreatedAt, breaking ties by id so
// results are deterministic.
func SortNewestFirst(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].TaskID > tasks[j].TaskID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
