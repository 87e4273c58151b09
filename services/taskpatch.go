package services

import (
	"strings"
	"time"

	"teamboard/model"
)

// TaskPatch carries the fields of a task update. A nil field keeps the stored
// value. Empty Title, Status, Priority and AssignedTo also keep the stored
// value; an empty Description clears it.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssignedTo  *string
	DueDate     *time.Time
}

// ApplyPatch merges patch into task. It does not check that AssignedTo
// resolves to a user.
func ApplyPatch(task model.Task, patch TaskPatch) (model.Task, error) {
	if v := trimmed(patch.Title); v != "" {
		task.Title = v
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if v := trimmed(patch.Status); v != "" {
		s, err := model.ParseStatus(v)
		if err != nil {
			return model.Task{}, err
		}
		task.Status = s
	}
	if v := trimmed(patch.Priority); v != "" {
		p, err := model.ParsePriority(v)
		if err != nil {
			return model.Task{}, err
		}
		task.Priority = p
	}
	if v := trimmed(patch.AssignedTo); v != "" {
		task.AssignedTo = v
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		task.DueDate = &due
	}
	return task, nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
