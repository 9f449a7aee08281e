package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
)

func createDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestUserStore_GetOrCreate(t *testing.T) {
	store := NewUserStore(createDB(t))
	ctx := context.Background()

	user, err := store.GetOrCreate(ctx, "auth0|abc", "ada@example.org", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada@example.org", user.Email)

	// A second token with the same subject maps to the same row.
	again, err := store.GetOrCreate(ctx, "auth0|abc", "ada@example.org", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	got, err := store.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", got.Subject)

	_, err = store.Get(ctx, user.ID+100)
	assert.True(t, errors.IsNotFound(err))
}

func TestTaskStore_Lifecycle(t *testing.T) {
	store := NewTaskStore(createDB(t))
	ctx := context.Background()

	task := litxplore.Task{ID: "task-1", UserID: 1, Status: litxplore.TaskPending}
	require.NoError(t, store.Create(ctx, &task))

	require.NoError(t, store.SetRunning(ctx, "task-1"))

	got, err := store.Get(ctx, "task-1", 1)
	require.NoError(t, err)
	assert.Equal(t, litxplore.TaskRunning, got.Status)

	done, err := store.Complete(ctx, "task-1", []byte(`{"review":"..."}`))
	require.NoError(t, err)
	assert.True(t, done)

	// The task is terminal now, further transitions are no-ops.
	done, err = store.Fail(ctx, "task-1", "boom")
	require.NoError(t, err)
	assert.False(t, done)

	got, err = store.Get(ctx, "task-1", 1)
	require.NoError(t, err)
	assert.Equal(t, litxplore.TaskCompleted, got.Status)
	assert.Equal(t, []byte(`{"review":"..."}`), got.ResultData)
	assert.Empty(t, got.ErrorMessage)
}

func TestTaskStore_Get_otherUser(t *testing.T) {
	store := NewTaskStore(createDB(t))
	ctx := context.Background()

	task := litxplore.Task{ID: "task-1", UserID: 1, Status: litxplore.TaskPending}
	require.NoError(t, store.Create(ctx, &task))

	_, err := store.Get(ctx, "task-1", 2)
	assert.True(t, errors.IsNotFound(err))
}

func TestTaskStore_Cancel(t *testing.T) {
	store := NewTaskStore(createDB(t))
	ctx := context.Background()

	task := litxplore.Task{ID: "task-1", UserID: 1, Status: litxplore.TaskPending}
	require.NoError(t, store.Create(ctx, &task))

	// Another user cannot cancel the task.
	ok, err := store.Cancel(ctx, "task-1", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Cancel(ctx, "task-1", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, "task-1", 1)
	require.NoError(t, err)
	assert.Equal(t, litxplore.TaskCancelled, got.Status)

	// Cancelling twice reports false.
	ok, err = store.Cancel(ctx, "task-1", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTaskStore_List(t *testing.T) {
	store := NewTaskStore(createDB(t))
	ctx := context.Background()

	for _, task := range []litxplore.Task{
		{ID: "task-1", UserID: 1, Status: litxplore.TaskPending},
		{ID: "task-2", UserID: 1, Status: litxplore.TaskCompleted},
		{ID: "task-3", UserID: 2, Status: litxplore.TaskPending},
	} {
		task := task
		require.NoError(t, store.Create(ctx, &task))
	}

	tasks, err := store.List(ctx, 1, nil, 0)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	pending := litxplore.TaskPending
	tasks, err = store.List(ctx, 1, &pending, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-1", tasks[0].ID)
}

func TestReviewStore(t *testing.T) {
	store := NewReviewStore(createDB(t))
	ctx := context.Background()

	review := litxplore.Review{
		UserID:  1,
		Title:   "Attention mechanisms",
		Topic:   "attention in transformers",
		Content: "## Introduction\n...",
		Citations: []litxplore.Paper{
			{ID: "1706.03762", Title: "Attention Is All You Need"},
		},
	}
	require.NoError(t, store.Save(ctx, &review))
	assert.NotZero(t, review.ID)

	got, err := store.Get(ctx, review.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, review.Title, got.Title)
	require.Len(t, got.Citations, 1)
	assert.Equal(t, "1706.03762", got.Citations[0].ID)

	_, err = store.Get(ctx, review.ID, 2)
	assert.True(t, errors.IsNotFound(err))

	// Updating keeps the original creation date.
	created := got.CreatedAt
	require.False(t, created.IsZero())

	update := litxplore.Review{
		ID:      review.ID,
		UserID:  1,
		Title:   "Attention mechanisms, revised",
		Topic:   review.Topic,
		Content: review.Content,
	}
	require.NoError(t, store.Save(ctx, &update))

	got, err = store.Get(ctx, review.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Attention mechanisms, revised", got.Title)
	assert.Equal(t, created, got.CreatedAt)

	reviews, err := store.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	require.NoError(t, store.Delete(ctx, review.ID, 1))
	err = store.Delete(ctx, review.ID, 1)
	assert.True(t, errors.IsNotFound(err))
}

func TestReviewStore_Clear(t *testing.T) {
	store := NewReviewStore(createDB(t))
	ctx := context.Background()

	var ids []int
	for _, title := range []string{"Attention mechanisms", "Diffusion models"} {
		review := litxplore.Review{UserID: 1, Title: title, Topic: title}
		require.NoError(t, store.Save(ctx, &review))
		ids = append(ids, review.ID)
	}
	other := litxplore.Review{UserID: 2, Title: "Graph networks", Topic: "graphs"}
	require.NoError(t, store.Save(ctx, &other))

	cleared, err := store.Clear(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, cleared)

	reviews, err := store.History(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	// Other users keep their history.
	reviews, err = store.History(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	// Clearing an empty history is a no-op.
	cleared, err = store.Clear(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cleared)
}
