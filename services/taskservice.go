package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"teamboard/model"
	"teamboard/repository"
)

type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  string
	// Status and Priority are optional; empty means the default.
	Status   string
	Priority string
	DueDate  *time.Time
}

// TaskService is the authority for task state. Every read returns tasks with
// their user references populated.
type TaskService struct {
	tasks     repository.TaskRepository
	directory *UserDirectory
	now       func() time.Time
	newID     func() string
}

func NewTaskService(tasks repository.TaskRepository, directory *UserDirectory) *TaskService {
	return &TaskService{
		tasks:     tasks,
		directory: directory,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *TaskService) Create(ctx context.Context, actor model.Identity, in CreateTaskInput) (model.PopulatedTask, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.PopulatedTask{}, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	assignee := strings.TrimSpace(in.AssignedTo)
	if assignee == "" {
		return model.PopulatedTask{}, fmt.Errorf("%w: assignedTo is required", model.ErrValidation)
	}

	status := model.StatusTodo
	if in.Status != "" {
		parsed, err := model.ParseStatus(in.Status)
		if err != nil {
			return model.PopulatedTask{}, err
		}
		status = parsed
	}
	priority := model.PriorityMedium
	if in.Priority != "" {
		parsed, err := model.ParsePriority(in.Priority)
		if err != nil {
			return model.PopulatedTask{}, err
		}
		priority = parsed
	}

	if err := s.requireUser(ctx, assignee); err != nil {
		return model.PopulatedTask{}, err
	}

	now := s.timestamp()
	task := model.Task{
		TaskID:      s.newID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Priority:    priority,
		AssignedTo:  assignee,
		CreatedBy:   actor.UserID,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		log.Printf("[task] Error saving task %s: %v", task.TaskID, err)
		return model.PopulatedTask{}, fmt.Errorf("%w: create task: %v", model.ErrStoreFailure, err)
	}
	log.Printf("[task] Task %s created by %s", task.TaskID, actor.UserID)

	return s.populateOne(ctx, task)
}

func (s *TaskService) List(ctx context.Context) ([]model.PopulatedTask, error) {
	return s.find(ctx, repository.TaskFilter{})
}

func (s *TaskService) ListByStatus(ctx context.Context, status string) ([]model.PopulatedTask, error) {
	parsed, err := model.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, repository.TaskFilter{Status: parsed})
}

func (s *TaskService) ListAssignedTo(ctx context.Context, userID string) ([]model.PopulatedTask, error) {
	if userID == "" {
		return []model.PopulatedTask{}, nil
	}
	return s.find(ctx, repository.TaskFilter{AssignedTo: userID})
}

func (s *TaskService) GetByID(ctx context.Context, id string) (model.PopulatedTask, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return model.PopulatedTask{}, err
	}
	return s.populateOne(ctx, task)
}

// Update merges patch into the stored task and saves the whole document. Any
// authenticated user may update any task. Concurrent updates are
// last-write-wins.
func (s *TaskService) Update(ctx context.Context, id string, patch TaskPatch) (model.PopulatedTask, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return model.PopulatedTask{}, err
	}

	updated, err := ApplyPatch(task, patch)
	if err != nil {
		return model.PopulatedTask{}, err
	}
	if updated.AssignedTo != task.AssignedTo {
		if err := s.requireUser(ctx, updated.AssignedTo); err != nil {
			return model.PopulatedTask{}, err
		}
	}

	updated.UpdatedAt = s.timestamp()
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		updated.UpdatedAt = updated.CreatedAt
	}
	if err := s.tasks.Save(ctx, updated); err != nil {
		log.Printf("[task] Error updating task %s: %v", id, err)
		return model.PopulatedTask{}, fmt.Errorf("%w: update task: %v", model.ErrStoreFailure, err)
	}

	return s.populateOne(ctx, updated)
}

// Delete permanently removes the task when actor created it or is an admin.
func (s *TaskService) Delete(ctx context.Context, actor model.Identity, id string) error {
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !IsCreatorOrAdmin(task, actor) {
		return fmt.Errorf("%w: only the creator or an admin can delete task %s", model.ErrForbidden, id)
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: task %s", model.ErrNotFound, id)
		}
		log.Printf("[task] Error deleting task %s: %v", id, err)
		return fmt.Errorf("%w: delete task: %v", model.ErrStoreFailure, err)
	}
	log.Printf("[task] Task %s removed by %s", id, actor.UserID)
	return nil
}

func (s *TaskService) load(ctx context.Context, id string) (model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Task{}, fmt.Errorf("%w: task %s", model.ErrNotFound, id)
		}
		return model.Task{}, fmt.Errorf("%w: load task: %v", model.ErrStoreFailure, err)
	}
	return task, nil
}

func (s *TaskService) requireUser(ctx context.Context, id string) error {
	ok, err := s.directory.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: assigned user %s does not exist", model.ErrValidation, id)
	}
	return nil
}

func (s *TaskService) find(ctx context.Context, filter repository.TaskFilter) ([]model.PopulatedTask, error) {
	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list tasks: %v", model.ErrStoreFailure, err)
	}
	return s.populate(ctx, tasks)
}

func (s *TaskService) populateOne(ctx context.Context, task model.Task) (model.PopulatedTask, error) {
	out, err := s.populate(ctx, []model.Task{task})
	if err != nil {
		return model.PopulatedTask{}, err
	}
	return out[0], nil
}

func (s *TaskService) populate(ctx context.Context, tasks []model.Task) ([]model.PopulatedTask, error) {
	ids := make([]string, 0, len(tasks)*2)
	for _, t := range tasks {
		ids = append(ids, t.AssignedTo, t.CreatedBy)
	}
	users, err := s.directory.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.PopulatedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Populate(users))
	}
	return out, nil
}
