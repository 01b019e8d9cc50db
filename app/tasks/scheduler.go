package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"feedpipe/app/cfg"
	"feedpipe/app/database"
	"feedpipe/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs background upkeep on a fixed interval: catalog-to-store
// sync and periodic refresh of the active view. Tasks execute on a small
// worker pool with bounded exponential retry.
type Scheduler struct {
	catalog     *sources.Catalog
	feedRepo    database.FeedRepository
	orch        ViewRefresher
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(catalog *sources.Catalog, feedRepo database.FeedRepository,
	orch ViewRefresher) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Scheduler{
		catalog:     catalog,
		feedRepo:    feedRepo,
		orch:        orch,
		interval:    time.Duration(c.RefreshInterval) * time.Second,
		workerCount: 2,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 64),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	if err := s.EnqueueTask(NewSyncCatalogTask(s.catalog, s.feedRepo)); err != nil {
		slog.Warn("Failed to enqueue SyncCatalogTask", "error", err)
	}
}

func (s *Scheduler) enqueueTasks() {
	if err := s.EnqueueTask(NewSyncCatalogTask(s.catalog, s.feedRepo)); err != nil {
		slog.Warn("Failed to enqueue SyncCatalogTask", "error", err)
	}
	if err := s.EnqueueTask(NewRefreshViewTask(s.orch)); err != nil {
		slog.Warn("Failed to enqueue RefreshViewTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID,
		"type", string(task.GetType()), "id", task.GetID(),
		"retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()),
			"id", task.GetID(), "retry_count", task.GetRetryCount(),
			"max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()),
		"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(),
		"delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry",
				"type", string(task.GetType()), "id", task.GetID())
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry",
					"type", string(task.GetType()), "id", task.GetID(),
					"retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
