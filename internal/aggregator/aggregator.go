package aggregator

import (
	"context"
	"log"
	"sync"
	"time"

	"brandpost-bot/internal/submission"
)

const (
	// DefaultQuietPeriod is how long a batch must stay quiet before it is
	// considered complete. Telegram delivers album parts as separate
	// updates with no count, so completion is inferred from silence.
	DefaultQuietPeriod = 1 * time.Second
	// DefaultMaxWait caps how long a batch may keep extending its quiet
	// period before it is flushed regardless.
	DefaultMaxWait = 10 * time.Second
	// DefaultMaxGroupSize limits the number of photos stored per batch.
	DefaultMaxGroupSize = 10
)

// DeliverFunc receives a completed batch exactly once.
type DeliverFunc func(ctx context.Context, groupID string, sub submission.Submission) error

type batchState struct {
	mu       sync.Mutex
	sub      submission.Submission
	debounce *time.Timer
	deadline *time.Timer
	// flushed marks a state whose batch has already been delivered (or
	// shut down). A part that finds it set must not merge here: the map
	// entry is gone and nothing would ever deliver the merge.
	flushed bool
}

// Aggregator collects parts of multi-photo batches and delivers each batch
// once, after the quiet period elapses or the hard deadline hits,
// whichever comes first.
type Aggregator struct {
	batches sync.Map // map[string]*batchState

	quietPeriod time.Duration
	maxWait     time.Duration
	maxSize     int
	deliver     DeliverFunc
}

// New creates an aggregator delivering completed batches to deliver.
func New(deliver DeliverFunc) *Aggregator {
	return &Aggregator{
		quietPeriod: DefaultQuietPeriod,
		maxWait:     DefaultMaxWait,
		maxSize:     DefaultMaxGroupSize,
		deliver:     deliver,
	}
}

// NewWithTimings creates an aggregator with explicit timings, for tests.
func NewWithTimings(deliver DeliverFunc, quietPeriod, maxWait time.Duration) *Aggregator {
	a := New(deliver)
	a.quietPeriod = quietPeriod
	a.maxWait = maxWait
	return a
}

// Add folds one part into its batch. The first part of a batch arms both
// the quiet-period timer and the hard deadline; every later part reschedules
// only the quiet-period timer.
func (a *Aggregator) Add(part submission.Submission) {
	if part.GroupID == "" {
		return
	}
	groupID := part.GroupID

	for {
		val, loaded := a.batches.LoadOrStore(groupID, &batchState{})
		state := val.(*batchState)

		state.mu.Lock()
		if state.flushed {
			// A timer flushed this batch between the map lookup and
			// the lock. The entry is already removed, so start a fresh
			// batch for this part instead of merging into the
			// delivered one.
			state.mu.Unlock()
			continue
		}
		if !loaded {
			state.sub = part
			if len(state.sub.FileIDs) > a.maxSize {
				state.sub.FileIDs = state.sub.FileIDs[:a.maxSize]
			}
			state.deadline = time.AfterFunc(a.maxWait, func() {
				a.flush(groupID, "deadline")
			})
		} else {
			before := len(state.sub.FileIDs)
			state.sub.Merge(part)
			if len(state.sub.FileIDs) > a.maxSize {
				state.sub.FileIDs = state.sub.FileIDs[:a.maxSize]
				if len(state.sub.FileIDs) == before {
					log.Printf("[Aggregator Group:%s] Batch limit (%d) reached, extra photos dropped.", groupID, a.maxSize)
				}
			}
		}

		// Reschedule the quiet-period timer on every part.
		if state.debounce != nil {
			state.debounce.Stop()
		}
		state.debounce = time.AfterFunc(a.quietPeriod, func() {
			a.flush(groupID, "quiet period")
		})
		state.mu.Unlock()
		return
	}
}

// flush removes the batch and delivers it. LoadAndDelete guarantees that of
// the two timers only the first to fire delivers; the flushed flag tells a
// concurrently arriving part that this state is dead. A part that merged
// before the flag was set is still inside state.sub and ships with the
// batch.
func (a *Aggregator) flush(groupID, reason string) {
	val, loaded := a.batches.LoadAndDelete(groupID)
	if !loaded {
		return
	}
	state := val.(*batchState)

	state.mu.Lock()
	state.flushed = true
	if state.debounce != nil {
		state.debounce.Stop()
		state.debounce = nil
	}
	if state.deadline != nil {
		state.deadline.Stop()
		state.deadline = nil
	}
	sub := state.sub
	state.mu.Unlock()

	if len(sub.FileIDs) == 0 {
		log.Printf("[Aggregator Group:%s] Flush on %s skipped, no photos collected.", groupID, reason)
		return
	}

	log.Printf("[Aggregator Group:%s] Flushing %d photo(s) on %s.", groupID, len(sub.FileIDs), reason)
	if err := a.deliver(context.Background(), groupID, sub); err != nil {
		log.Printf("[Aggregator Group:%s] Error delivering batch: %v", groupID, err)
	}
}

// Shutdown stops all pending timers without delivering the batches.
func (a *Aggregator) Shutdown() {
	stopped := 0
	a.batches.Range(func(key, value interface{}) bool {
		state := value.(*batchState)
		state.mu.Lock()
		state.flushed = true
		if state.debounce != nil {
			if state.debounce.Stop() {
				stopped++
			}
			state.debounce = nil
		}
		if state.deadline != nil {
			state.deadline.Stop()
			state.deadline = nil
		}
		state.mu.Unlock()
		a.batches.Delete(key)
		return true
	})
	log.Printf("[Aggregator] Shutdown complete. Stopped %d pending batch(es).", stopped)
}
