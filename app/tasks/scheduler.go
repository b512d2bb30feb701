package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ratewatch/rate-watch/app/cfg"
	"github.com/ratewatch/rate-watch/app/database"
	"github.com/ratewatch/rate-watch/app/rates"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler owns the worker pool, the task queue, and the cron trigger. A
// single worker drains the queue; the RunGuard additionally protects against
// a manual trigger racing a cron run.
type Scheduler struct {
	sources    *rates.SourceCache
	fetcher    FetcherInterface
	offerRepo  database.OfferRepository
	configRepo database.ConfigRepository
	reconciler *rates.Reconciler
	cronSpec   string
	cron       *cron.Cron
	guard      RunGuard
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	taskQueue  chan TaskInterface
}

func NewScheduler(sources *rates.SourceCache, fetcher FetcherInterface,
	offerRepo database.OfferRepository, configRepo database.ConfigRepository,
	reconciler *rates.Reconciler) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		sources:    sources,
		fetcher:    fetcher,
		offerRepo:  offerRepo,
		configRepo: configRepo,
		reconciler: reconciler,
		cronSpec:   cfg.Get().CronSpec,
		cron:       cron.New(),
		ctx:        ctx,
		cancel:     cancel,
		taskQueue:  make(chan TaskInterface, 10),
	}
}

// Start launches the worker, registers the cron trigger, and enqueues one
// immediate run so fresh data exists without waiting for the first tick.
func (s *Scheduler) Start() error {
	s.wg.Add(1)
	go s.worker(0)

	if _, err := s.cron.AddFunc(s.cronSpec, func() {
		if err := s.EnqueueRun(); err != nil {
			slog.Warn("Failed to enqueue scheduled pipeline run", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.cronSpec, err)
	}

	s.cron.Start()
	slog.Info("Scheduler started", "cron_spec", s.cronSpec)

	if err := s.EnqueueRun(); err != nil {
		slog.Warn("Failed to enqueue startup pipeline run", "error", err)
	}

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
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

// EnqueueRun queues one full pipeline run. Runs never replay on failure: a
// partial run re-executed would double-persist the offers that did succeed.
func (s *Scheduler) EnqueueRun() error {
	task := NewRunPipelineTask(s.sources, s.fetcher, s.offerRepo, s.configRepo, s.reconciler, &s.guard)
	task.MaxRetries = 0
	return s.EnqueueTask(task)
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

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSource(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
