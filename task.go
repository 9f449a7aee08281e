package litxplore

import (
	"context"
	"time"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Terminal reports whether no further status transition is allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

// Task is one review-generation job. ResultData and ErrorMessage are
// mutually exclusive: a task carries at most one of them.
type Task struct {
	ID           string     `json:"id"`
	UserID       int        `json:"-"`
	Status       TaskStatus `json:"status"`
	ResultData   []byte     `json:"result_data,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type TaskStore interface {
	Create(ctx context.Context, task *Task) error
	// Get returns the task only if it belongs to userID.
	Get(ctx context.Context, id string, userID int) (*Task, error)
	List(ctx context.Context, userID int, status *TaskStatus, limit int) ([]*Task, error)
	// SetRunning moves a pending task to running.
	SetRunning(ctx context.Context, id string) error
	// Complete and Fail perform the terminal transition. They are no-ops,
	// reporting false, when the task already reached a terminal status.
	Complete(ctx context.Context, id string, result []byte) (bool, error)
	Fail(ctx context.Context, id string, message string) (bool, error)
	// Cancel marks a pending or running task cancelled; false otherwise.
	Cancel(ctx context.Context, id string, userID int) (bool, error)
}
