package domain

import "time"

// Built-in maintenance tasks run by the server's scheduler.
const (
	// TaskIDNightlyCrawl recrawls every tenant's eligible domains.
	TaskIDNightlyCrawl = "nightly-crawl"
	// TaskIDEmbeddingBackfill embeds chunks still missing a vector.
	TaskIDEmbeddingBackfill = "embedding-backfill"
	// TaskIDEventDispatch drains the outbox to the webhook sink.
	TaskIDEventDispatch = "event-dispatch"
)

// ScheduledTask is the persisted cadence of one maintenance task.
// A zero NextRun means the task has never been scheduled and is due at once.
type ScheduledTask struct {
	ID          string
	Name        string
	Interval    time.Duration
	Enabled     bool
	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time
	LastError   string
}

// IsDue reports whether an enabled task should run at now.
func (t *ScheduledTask) IsDue(now time.Time) bool {
	return t.Enabled && (t.NextRun.IsZero() || !t.NextRun.After(now))
}

// TaskResult records one run of a task. ItemsProcessed counts tenants
// crawled, chunks embedded or events dispatched depending on the task.
type TaskResult struct {
	TaskID         string
	StartedAt      time.Time
	EndedAt        time.Time
	Success        bool
	Error          string
	ItemsProcessed int
}

// TaskConfig enables a task and sets how often it runs.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// SchedulerConfig is the scheduler's master switch plus per-task settings.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// GetTaskConfig returns the zero TaskConfig for an unknown task.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig crawls daily, backfills embeddings hourly and
// dispatches events every minute.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDNightlyCrawl:      {Enabled: true, Interval: 24 * time.Hour},
			TaskIDEmbeddingBackfill: {Enabled: true, Interval: time.Hour},
			TaskIDEventDispatch:     {Enabled: true, Interval: time.Minute},
		},
	}
}
