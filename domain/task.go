package domain

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

type TaskType string

const (
	TaskIndividual   TaskType = "individual"
	TaskGroup        TaskType = "group"
	TaskRevision     TaskType = "revision"
	TaskPresentation TaskType = "presentation"
)

// Task is a student assignment tracked by the desk. Deadline drives the
// upcoming-due notification scan.
type Task struct {
	ID            string
	Title         string
	Type          TaskType
	Description   string
	Deadline      time.Time
	Subject       string
	AssignedTo    string
	Priority      string
	EstimatedTime string
	Status        TaskStatus
	CreatedAt     time.Time
}

// Notification is a short line shown to a user; User empty means broadcast.
type Notification struct {
	ID        string
	Message   string
	User      string
	CreatedAt time.Time
}
