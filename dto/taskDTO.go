package dto

import "time"

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assignedTo" binding:"required"`
	Status      string     `json:"status,omitempty" binding:"omitempty,taskstatus"`
	Priority    string     `json:"priority,omitempty" binding:"omitempty,taskpriority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// UpdateTaskRequest is a partial update. Absent fields are nil.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty" binding:"omitempty,taskstatus"`
	Priority    *string    `json:"priority,omitempty" binding:"omitempty,taskpriority"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request. Code is the
// machine-readable error kind, see model.ErrorCode.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
