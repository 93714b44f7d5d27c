package publisher

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	tapi "github.com/mymmrac/telego/telegoapi"
)

const (
	maxSendAttempts = 3
	baseBackoff     = 2 * time.Second
)

// withRetry runs fn, retrying on transient rate-limit errors with
// exponential backoff. Any other error, or exhausting the attempt bound,
// is terminal for the step.
func (p *Publisher) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := p.retryBase
	var err error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isRateLimited(err) || attempt == maxSendAttempts {
			return err
		}
		log.Printf("[Publisher] %s rate limited (attempt %d/%d), retrying in %v", op, attempt, maxSendAttempts, backoff)
		if !sleepCtx(ctx, backoff) {
			return ctx.Err()
		}
		backoff *= 2
	}
	return err
}

func isRateLimited(err error) bool {
	var apiErr *tapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == 429
	}
	return strings.Contains(err.Error(), "Too Many Requests")
}

// isNotFound reports whether an external call failed because the message
// is already gone. Deleting an already-deleted message is not a failure.
func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "message to delete not found") ||
		strings.Contains(err.Error(), "message can't be deleted") ||
		strings.Contains(err.Error(), "MESSAGE_ID_INVALID")
}

// isNotModified reports whether a caption edit was a no-op.
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
