// Package memory provides map-backed repositories for local runs and tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"teamboard/model"
	"teamboard/repository"
)

type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]model.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]model.Task)}
}

func (r *TaskRepository) Find(_ context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	r.mu.RLock()
	result := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if filter.Match(t) {
			result = append(result, t)
		}
	}
	r.mu.RUnlock()

	repository.SortNewestFirst(result)
	return result, nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, repository.ErrNotFound
	}
	return t, nil
}

func (r *TaskRepository) Save(_ context.Context, task model.Task) error {
	r.mu.Lock()
	r.tasks[task.TaskID] = task
	r.mu.Unlock()
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]model.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return repository.ErrDuplicate
	}
	if _, exists := r.users[user.UserID]; exists {
		return repository.ErrDuplicate
	}
	r.users[user.UserID] = user
	r.byEmail[email] = user.UserID
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return r.users[id], nil
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []string) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *UserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, u)
	}
	return result, nil
}

func (r *UserRepository) Save(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if owner, taken := r.byEmail[email]; taken && owner != user.UserID {
		return repository.ErrDuplicate
	}
	if prev, ok := r.users[user.UserID]; ok {
		delete(r.byEmail, strings.ToLower(prev.Email))
	}
	r.users[user.UserID] = user
	r.byEmail[email] = user.UserID
	return nil
}

// Delete removes a user. Tasks referencing it keep the stale id.
func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, strings.ToLower(u.Email))
	delete(r.users, id)
	return nil
}
