package domain

import "time"

// JobType identifies what an ingest job does.
type JobType string

// Ingest job types.
const (
	// JobTypeCrawl is a crawl started by the nightly schedule.
	JobTypeCrawl JobType = "crawl"

	// JobTypeManualCrawl is a crawl started for one tenant outside the schedule.
	JobTypeManualCrawl JobType = "manual_crawl"

	// JobTypeExtract is a processing run over uploaded documents.
	JobTypeExtract JobType = "extract"
)

// JobStatus is the lifecycle state of an ingest job.
type JobStatus string

// Ingest job states.
const (
	JobScheduled JobStatus = "scheduled"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// IsTerminal returns true once the job can no longer change.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job stats keys.
const (
	StatDomains   = "domains"
	StatPages     = "pages"
	StatDocuments = "documents"
	StatChunks    = "chunks"
	StatFailures  = "failures"
)

// IngestJob is one execution record of a crawl/extract run for a tenant.
type IngestJob struct {
	// ID is the unique identifier for the job.
	ID string

	// TenantID is the owning organisation.
	TenantID string

	// Type is what the job does.
	Type JobType

	// Status is the lifecycle state.
	Status JobStatus

	// Stats holds counters (domains, pages, documents, chunks, failures).
	Stats map[string]int

	// Initiator names who or what started the job ("cron", a user id).
	Initiator string

	// Trigger records why the job was started (domains, schedule, request id).
	Trigger map[string]any

	// Error is the failure message once the job failed.
	Error string

	// CreatedAt is when the job was scheduled.
	CreatedAt time.Time

	// StartedAt is when the job began running.
	StartedAt time.Time

	// EndedAt is when the job reached a terminal state.
	EndedAt time.Time
}

// AddStat increments a stats counter, allocating the map if needed.
func (j *IngestJob) AddStat(key string, n int) {
	if j.Stats == nil {
		j.Stats = make(map[string]int)
	}
	j.Stats[key] += n
}

// Duration returns how long the job ran, or zero if it has not ended.
func (j *IngestJob) Duration() time.Duration {
	if j.StartedAt.IsZero() || j.EndedAt.IsZero() {
		return 0
	}
	return j.EndedAt.Sub(j.StartedAt)
}
