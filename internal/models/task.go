package models

import "time"

// Task statuses.
const (
	TaskStatusIncomplete = "incomplete"
	TaskStatusInProgress = "in_progress"
	TaskStatusComplete   = "complete"
)

// Task represents a household task assigned to a family member
type Task struct {
	ID          int64
	FamilyID    int64
	Title       string
	Description string
	DueDate     time.Time
	Priority    string
	Status      string
	Recurrence  string
	AssignedTo  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAssignedTo reports whether the given user is the task's assignee
func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssignedTo == userID
}

// ValidTaskStatus reports whether s is a recognized task status
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusIncomplete, TaskStatusInProgress, TaskStatusComplete:
		return true
	}
	return false
}

// Comment is an append-only note on a task
type Comment struct {
	ID        int64
	TaskID    int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}
