package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
)

type taskRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       int    `gorm:"index"`
	Status       string `gorm:"size:16;index"`
	ResultData   []byte
	ErrorMessage string
	CreatedAt    time.Time
}

func (taskRow) TableName() string { return "tasks" }

func (r *taskRow) toTask() *litxplore.Task {
	return &litxplore.Task{
		ID:           r.ID,
		UserID:       r.UserID,
		Status:       litxplore.TaskStatus(r.Status),
		ResultData:   r.ResultData,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
	}
}

var nonTerminal = []string{
	string(litxplore.TaskPending),
	string(litxplore.TaskRunning),
}

type TaskStore struct {
	db *gorm.DB
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, task *litxplore.Task) error {
	row := taskRow{
		ID:        task.ID,
		UserID:    task.UserID,
		Status:    string(task.Status),
		CreatedAt: task.CreatedAt,
	}

	err := s.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return errors.New("could not create task", errors.WithCause(err))
	}

	task.CreatedAt = row.CreatedAt
	return nil
}

func (s *TaskStore) Get(ctx context.Context, id string, userID int) (*litxplore.Task, error) {
	var row taskRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New("task not found", errors.NotFound())
	} else if err != nil {
		return nil, errors.New("could not retrieve task", errors.WithCause(err))
	}

	return row.toTask(), nil
}

func (s *TaskStore) List(ctx context.Context, userID int, status *litxplore.TaskStatus, limit int) ([]*litxplore.Task, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []taskRow
	err := query.Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, errors.New("could not list tasks", errors.WithCause(err))
	}

	tasks := make([]*litxplore.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toTask()
	}
	return tasks, nil
}

func (s *TaskStore) SetRunning(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&taskRow{}).
		Where("id = ? AND status = ?", id, string(litxplore.TaskPending)).
		Update("status", string(litxplore.TaskRunning))
	if res.Error != nil {
		return errors.New("could not update task", errors.WithCause(res.Error))
	}
	return nil
}

func (s *TaskStore) Complete(ctx context.Context, id string, result []byte) (bool, error) {
	return s.finish(ctx, id, map[string]interface{}{
		"status":      string(litxplore.TaskCompleted),
		"result_data": result,
	})
}

func (s *TaskStore) Fail(ctx context.Context, id string, message string) (bool, error) {
	return s.finish(ctx, id, map[string]interface{}{
		"status":        string(litxplore.TaskFailed),
		"error_message": message,
	})
}

// finish applies a terminal transition, guarded so that a task already in
// a terminal status is left untouched.
func (s *TaskStore) finish(ctx context.Context, id string, updates map[string]interface{}) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&taskRow{}).
		Where("id = ? AND status IN ?", id, nonTerminal).
		Updates(updates)
	if res.Error != nil {
		return false, errors.New("could not update task", errors.WithCause(res.Error))
	}
	return res.RowsAffected > 0, nil
}

func (s *TaskStore) Cancel(ctx context.Context, id string, userID int) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&taskRow{}).
		Where("id = ? AND user_id = ? AND status IN ?", id, userID, nonTerminal).
		Update("status", string(litxplore.TaskCancelled))
	if res.Error != nil {
		return false, errors.New("could not update task", errors.WithCause(res.Error))
	}
	return res.RowsAffected > 0, nil
}
