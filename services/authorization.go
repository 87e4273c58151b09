package services

import "teamboard/model"

// IsCreatorOrAdmin is the ownership policy for destructive task operations.
func IsCreatorOrAdmin(task model.Task, actor model.Identity) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.UserID != "" && task.CreatedBy == actor.UserID
}
