package driving

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// Scheduler runs persisted maintenance tasks such as the nightly crawl,
// embedding backfill and outbox dispatch.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// RunNow executes a task immediately, outside its schedule.
	RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error)
}
