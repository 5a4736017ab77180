package services

import (
	"context"
	"errors"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Retry defaults for re-triggering processing.
const (
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// RetryWithBackoff runs operation up to maxAttempts times, sleeping
// baseDelay * 2^(attempt-1) between attempts. It stops early when the error
// is not retryable or ctx ends, and returns the last error.
func RetryWithBackoff(
	ctx context.Context,
	operation func() error,
	maxAttempts int,
	baseDelay time.Duration,
	retryable func(error) bool,
) error {
	if maxAttempts <= 0 {
		return domain.ErrInvalidInput
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		delay := baseDelay << (attempt - 1)
		logger.Debug("attempt %d/%d failed, retrying in %s: %v", attempt, maxAttempts, delay, lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// isTransient reports whether err is worth retrying: provider throttling or
// an unreachable provider. Invalid input and missing records are not.
func isTransient(err error) bool {
	return errors.Is(err, domain.ErrRateLimited) ||
		errors.Is(err, domain.ErrEmbeddingUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
