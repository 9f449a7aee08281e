package review

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
	"github.com/JoelJacobStephen/litxplore/log"
)

const defaultMaxPapers = 10

// Service runs review generation as background tasks with a persisted
// lifecycle. A task reaches exactly one terminal status and carries either
// a result or an error message, never both.
type Service struct {
	Tasks     litxplore.TaskStore
	Source    *Source
	Generator litxplore.Generator
	Cleaner   *Cleaner
	Logger    log.Logger

	MaxPapers int

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	// wg lets tests wait for background runs to settle.
	wg sync.WaitGroup
}

func NewService(tasks litxplore.TaskStore, source *Source, generator litxplore.Generator, cleaner *Cleaner, logger log.Logger) *Service {
	return &Service{
		Tasks:     tasks,
		Source:    source,
		Generator: generator,
		Cleaner:   cleaner,
		Logger:    logger,
		MaxPapers: defaultMaxPapers,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Generate validates the request, persists a pending task and starts the
// generation in the background. The returned task is immediately pending.
func (s *Service) Generate(ctx context.Context, userID int, rawIDs []string, topic string) (*litxplore.Task, error) {
	if len(rawIDs) == 0 {
		return nil, errors.New("paper_ids must not be empty", errors.BadRequest())
	}

	ids := make([]litxplore.PaperID, len(rawIDs))
	for i, raw := range rawIDs {
		ids[i] = litxplore.ParsePaperID(raw)
	}

	task := &litxplore.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    litxplore.TaskPending,
		CreatedAt: time.Now(),
	}
	if err := s.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[task.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.forget(task.ID)
		s.run(runCtx, task.ID, ids, topic)
	}()

	return task, nil
}

func (s *Service) run(ctx context.Context, taskID string, ids []litxplore.PaperID, topic string) {
	// Uploaded PDFs are consumed by the review, remove them on every exit
	// path of the run.
	defer s.Cleaner.CleanupUploads(ids)

	if err := s.Tasks.SetRunning(ctx, taskID); err != nil {
		s.Logger.Errorf("could not mark task %s running: %v", taskID, err)
	}

	if ctx.Err() != nil {
		return
	}

	papers, err := s.Source.FetchAll(ctx, ids)
	if err != nil {
		s.fail(taskID, err)
		return
	}
	if len(papers) == 0 {
		s.fail(taskID, errors.New("none of the requested papers could be resolved", errors.NotFound()))
		return
	}

	maxPapers := s.MaxPapers
	if maxPapers <= 0 {
		maxPapers = defaultMaxPapers
	}
	if len(papers) > maxPapers {
		papers = papers[:maxPapers]
	}

	if ctx.Err() != nil {
		return
	}

	content, err := generateReview(ctx, s.Generator, topic, papers)
	if err != nil {
		s.fail(taskID, err)
		return
	}

	if ctx.Err() != nil {
		return
	}

	result, err := json.Marshal(Generated{Review: content, Citations: papers, Topic: topic})
	if err != nil {
		s.fail(taskID, err)
		return
	}

	done, err := s.Tasks.Complete(context.Background(), taskID, result)
	if err != nil {
		s.Logger.Errorf("could not complete task %s: %v", taskID, err)
		return
	}
	if !done {
		s.Logger.Printf("task %s reached a terminal status before completion", taskID)
	}
}

// fail records the terminal failure. A task cancelled in the meantime
// keeps its cancelled status.
func (s *Service) fail(taskID string, cause error) {
	done, err := s.Tasks.Fail(context.Background(), taskID, cause.Error())
	if err != nil {
		s.Logger.Errorf("could not fail task %s: %v", taskID, err)
		return
	}
	if done {
		s.Logger.Errorf("task %s failed: %v", taskID, cause)
	}
}

func (s *Service) forget(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[taskID]; ok {
		cancel()
		delete(s.cancels, taskID)
	}
}

func (s *Service) Get(ctx context.Context, id string, userID int) (*litxplore.Task, error) {
	return s.Tasks.Get(ctx, id, userID)
}

func (s *Service) List(ctx context.Context, userID int, status *litxplore.TaskStatus, limit int) ([]*litxplore.Task, error) {
	return s.Tasks.List(ctx, userID, status, limit)
}

// Cancel marks the task cancelled and interrupts its worker. Cancelling a
// task that is already terminal, missing or foreign reports NotFound.
func (s *Service) Cancel(ctx context.Context, id string, userID int) error {
	ok, err := s.Tasks.Cancel(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("task cannot be cancelled", errors.NotFound())
	}

	s.mu.Lock()
	if cancel, found := s.cancels[id]; found {
		cancel()
	}
	s.mu.Unlock()
	return nil
}

// Wait blocks until all background runs finished. Used by tests and by
// graceful shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}
