package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is how many results are kept per task.
const historyRetention = 100

// schedulerInitiator is recorded as the initiator of scheduled crawl jobs.
const schedulerInitiator = "cron"

// taskNames maps built-in task IDs to display names.
var taskNames = map[string]string{
	domain.TaskIDNightlyCrawl:      "Nightly Crawl",
	domain.TaskIDEmbeddingBackfill: "Embedding Backfill",
	domain.TaskIDEventDispatch:     "Event Dispatch",
}

// Scheduler manages background task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config     domain.SchedulerConfig
	store      driven.SchedulerStore
	crawl      driving.CrawlService
	embeddings driving.EmbeddingRegenerator
	dispatcher driving.EventDispatcher
	tick       time.Duration

	mu      sync.Mutex
	running bool
	active  map[string]bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration. Any of the task
// services may be nil, in which case its task succeeds without work.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	crawl driving.CrawlService,
	embeddings driving.EmbeddingRegenerator,
	dispatcher driving.EventDispatcher,
) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		crawl:      crawl,
		embeddings: embeddings,
		dispatcher: dispatcher,
		tick:       time.Minute,
		active:     make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if !s.config.Enabled {
		logger.Info("scheduler: disabled")
	} else if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for _, id := range []string{domain.TaskIDNightlyCrawl, domain.TaskIDEmbeddingBackfill, domain.TaskIDEventDispatch} {
		taskCfg := s.config.GetTaskConfig(id)
		if taskCfg.Interval <= 0 {
			continue
		}
		if err := s.ensureTask(ctx, id, taskNames[id], taskCfg); err != nil {
			return fmt.Errorf("ensure task %s: %w", id, err)
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	if s.config.Enabled {
		s.checkAndRunDueTasks(ctx)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			if s.config.Enabled {
				s.checkAndRunDueTasks(ctx)
			}
		}
	}
}

// checkAndRunDueTasks finds and starts tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		if tasks[i].IsDue(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes a single task in the background. A task still running
// from an earlier tick is not started again.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.active[task.ID] {
		s.mu.Unlock()
		logger.Debug("scheduler: %s still running, skipping", task.ID)
		return
	}
	s.active[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.active, task.ID)
			s.mu.Unlock()
		}()

		if _, err := s.execute(ctx, task); err != nil {
			logger.Warn("scheduler: %v", err)
		}
	}()
}

// RunNow executes a task synchronously, records its result and reschedules it.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		name, ok := taskNames[taskID]
		if !ok {
			return nil, fmt.Errorf("task %q: %w", taskID, domain.ErrNotFound)
		}
		cfg := s.config.GetTaskConfig(taskID)
		task = &domain.ScheduledTask{ID: taskID, Name: name, Interval: cfg.Interval, Enabled: cfg.Enabled}
	}
	return s.execute(ctx, task)
}

// execute runs the task body and persists its outcome.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) (*domain.TaskResult, error) {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDNightlyCrawl:
		result.ItemsProcessed, err = s.runNightlyCrawl(ctx)
	case domain.TaskIDEmbeddingBackfill:
		result.ItemsProcessed, err = s.runEmbeddingBackfill(ctx)
	case domain.TaskIDEventDispatch:
		result.ItemsProcessed, err = s.runEventDispatch(ctx)
	default:
		return nil, fmt.Errorf("unknown task %q: %w", task.ID, domain.ErrNotFound)
	}

	result.EndedAt = time.Now()
	if err != nil {
		result.Error = err.Error()
		task.LastError = err.Error()
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	task.LastRun = result.StartedAt
	if task.Interval > 0 {
		task.NextRun = result.EndedAt.Add(task.Interval)
	}

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
		logger.Warn("scheduler: failed to prune history: %v", pruneErr)
	}

	if err != nil {
		return result, fmt.Errorf("task %s: %w", task.ID, err)
	}
	logger.Debug("scheduler: %s processed %d items in %s", task.ID, result.ItemsProcessed, result.EndedAt.Sub(result.StartedAt))
	return result, nil
}

// runNightlyCrawl counts crawl jobs created. Any failed tenant fails the task.
func (s *Scheduler) runNightlyCrawl(ctx context.Context) (int, error) {
	if s.crawl == nil {
		return 0, nil
	}
	report, err := s.crawl.RunNightly(ctx, schedulerInitiator)
	if err != nil {
		return 0, err
	}
	if report.Failed > 0 {
		return report.JobsCreated, fmt.Errorf("%d of %d tenant crawls failed", report.Failed, report.TenantsSelected)
	}
	return report.JobsCreated, nil
}

// runEmbeddingBackfill embeds every chunk still missing a vector.
func (s *Scheduler) runEmbeddingBackfill(ctx context.Context) (int, error) {
	if s.embeddings == nil {
		return 0, nil
	}
	reports, err := s.embeddings.Backfill(ctx, nil)
	if errors.Is(err, domain.ErrEmbeddingUnavailable) && len(reports) == 0 {
		logger.Debug("scheduler: no embedding provider, backfill skipped")
		return 0, nil
	}
	embedded := 0
	for i := range reports {
		embedded += reports[i].Embedded
	}
	return embedded, err
}

func (s *Scheduler) runEventDispatch(ctx context.Context) (int, error) {
	if s.dispatcher == nil {
		return 0, nil
	}
	return s.dispatcher.Dispatch(ctx, DefaultDispatchLimit)
}
