package model

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus returns ErrInvalidArgument for anything outside the three columns.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrInvalidArgument, raw)
	}
	return s, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: invalid priority %q", ErrInvalidArgument, raw)
	}
	return p, nil
}

// Task is the stored document. AssignedTo and CreatedBy hold user ids.
type Task struct {
	TaskID      string     `firestore:"taskid" bson:"_id"`
	Title       string     `firestore:"title" bson:"title"`
	Description string     `firestore:"description" bson:"description"`
	Status      Status     `firestore:"status" bson:"status"`
	Priority    Priority   `firestore:"priority" bson:"priority"`
	AssignedTo  string     `firestore:"assignedto" bson:"assignedTo"`
	CreatedBy   string     `firestore:"createdby" bson:"createdBy"`
	DueDate     *time.Time `firestore:"duedate" bson:"dueDate"`
	CreatedAt   time.Time  `firestore:"createdat" bson:"createdAt"`
	UpdatedAt   time.Time  `firestore:"updatedat" bson:"updatedAt"`
}

// UserSummary is the display form of a referenced user.
type UserSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PopulatedTask is a Task with its user references resolved. A reference to a
// user that no longer exists is nil.
type PopulatedTask struct {
	ID          string       `json:"_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      Status       `json:"status"`
	Priority    Priority     `json:"priority"`
	AssignedTo  *UserSummary `json:"assignedTo"`
	CreatedBy   *UserSummary `json:"createdBy"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Populate resolves the task's references against the given summaries.
func (t Task) Populate(users map[string]UserSummary) PopulatedTask {
	p := PopulatedTask{
		ID:          t.TaskID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if u, ok := users[t.AssignedTo]; ok {
		p.AssignedTo = &u
	}
	if u, ok := users[t.CreatedBy]; ok {
		p.CreatedBy = &u
	}
	return p
}

// AssigneeID returns the assignee's id or "" when the reference did not resolve.
func (p PopulatedTask) AssigneeID() string {
	if p.AssignedTo == nil {
		return ""
	}
	return p.AssignedTo.ID
}

func (p PopulatedTask) CreatorID() string {
	if p.CreatedBy == nil {
		return ""
	}
	return p.CreatedBy.ID
}
