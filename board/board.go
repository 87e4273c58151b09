// Package board keeps a client-side copy of the task list partitioned into
// the three status columns. The server stays authoritative: every mutation
// goes through TaskAPI first and the local state changes only after it
// succeeds.
package board

import (
	"context"
	"fmt"
	"sync"

	"teamboard/dto"
	"teamboard/model"
)

// TaskAPI is the remote task store.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]model.PopulatedTask, error)
	CreateTask(ctx context.Context, req dto.CreateTaskRequest) (model.PopulatedTask, error)
	UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (model.PopulatedTask, error)
	DeleteTask(ctx context.Context, id string) error
}

type Column struct {
	Status model.Status
	Tasks  []model.PopulatedTask
}

// Board is safe for concurrent use. The lock is never held across a call to
// the API, so the cached state may lag behind mutations still in flight.
type Board struct {
	api TaskAPI

	mu      sync.Mutex
	all     []model.PopulatedTask
	buckets map[model.Status][]model.PopulatedTask
}

func New(api TaskAPI) *Board {
	b := &Board{api: api}
	b.buckets = emptyBuckets()
	return b
}

func emptyBuckets() map[model.Status][]model.PopulatedTask {
	buckets := make(map[model.Status][]model.PopulatedTask, len(model.Statuses))
	for _, s := range model.Statuses {
		buckets[s] = nil
	}
	return buckets
}

// Refresh replaces the cached tasks with the server's list. Tasks with a
// status outside the three columns are not kept.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.api.ListTasks(ctx)
	if err != nil {
		return err
	}

	all := make([]model.PopulatedTask, 0, len(tasks))
	buckets := emptyBuckets()
	for _, t := range tasks {
		if !t.Status.Valid() {
			continue
		}
		all = append(all, t)
		buckets[t.Status] = append(buckets[t.Status], t)
	}

	b.mu.Lock()
	b.all = all
	b.buckets = buckets
	b.mu.Unlock()
	return nil
}

func (b *Board) AddTask(ctx context.Context, req dto.CreateTaskRequest) (model.PopulatedTask, error) {
	task, err := b.api.CreateTask(ctx, req)
	if err != nil {
		return model.PopulatedTask{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.place(task)
	return task, nil
}

// UpdateTask sends req and moves the result to the front of its column, even
// when the status did not change.
func (b *Board) UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (model.PopulatedTask, error) {
	task, err := b.api.UpdateTask(ctx, id, req)
	if err != nil {
		return model.PopulatedTask{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.place(task)
	return task, nil
}

func (b *Board) RemoveTask(ctx context.Context, id string) error {
	if err := b.api.DeleteTask(ctx, id); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = without(b.all, id)
	b.unbucket(id)
	return nil
}

// MoveTask changes only the status of a cached task. The rest of the task is
// re-sent as cached.
func (b *Board) MoveTask(ctx context.Context, id string, status model.Status) (model.PopulatedTask, error) {
	if _, err := model.ParseStatus(string(status)); err != nil {
		return model.PopulatedTask{}, err
	}
	task, ok := b.Find(id)
	if !ok {
		return model.PopulatedTask{}, fmt.Errorf("%w: task %s is not on the board", model.ErrNotFound, id)
	}

	return b.UpdateTask(ctx, id, fullUpdate(task, status))
}

func fullUpdate(task model.PopulatedTask, status model.Status) dto.UpdateTaskRequest {
	title := task.Title
	description := task.Description
	s := string(status)
	priority := string(task.Priority)
	assignee := task.AssigneeID()
	return dto.UpdateTaskRequest{
		Title:       &title,
		Description: &description,
		Status:      &s,
		Priority:    &priority,
		AssignedTo:  &assignee,
		DueDate:     task.DueDate,
	}
}

// Tasks returns every cached task, newest first.
func (b *Board) Tasks() []model.PopulatedTask {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.PopulatedTask(nil), b.all...)
}

func (b *Board) Bucket(status model.Status) []model.PopulatedTask {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.PopulatedTask(nil), b.buckets[status]...)
}

// Columns returns the three buckets in display order.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()

	cols := make([]Column, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		cols = append(cols, Column{Status: s, Tasks: append([]model.PopulatedTask(nil), b.buckets[s]...)})
	}
	return cols
}

func (b *Board) Find(id string) (model.PopulatedTask, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.all {
		if t.ID == id {
			return t, true
		}
	}
	return model.PopulatedTask{}, false
}

// place puts task at the front of all and of its bucket, replacing any
// cached copy. Callers hold mu.
func (b *Board) place(task model.PopulatedTask) {
	b.unbucket(task.ID)
	if !task.Status.Valid() {
		b.all = without(b.all, task.ID)
		return
	}

	replaced := false
	for i, t := range b.all {
		if t.ID == task.ID {
			b.all[i] = task
			replaced = true
			break
		}
	}
	if !replaced {
		b.all = append([]model.PopulatedTask{task}, b.all...)
	}

	b.buckets[task.Status] = append([]model.PopulatedTask{task}, b.buckets[task.Status]...)
}

func (b *Board) unbucket(id string) {
	for s, tasks := range b.buckets {
		b.buckets[s] = without(tasks, id)
	}
}

func without(tasks []model.PopulatedTask, id string) []model.PopulatedTask {
	out := tasks[:0:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
