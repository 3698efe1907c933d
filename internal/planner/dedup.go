package planner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// TaskFunc produces a plan. It receives a context that is not cancelled
// when the submitting caller goes away.
type TaskFunc func(ctx context.Context) (*itinerary.GeneratedPlan, error)

// inflight is one pending generation shared by every caller with its key.
type inflight struct {
	done        chan struct{}
	plan        *itinerary.GeneratedPlan
	err         error
	subscribers int
}

// Future is a handle on a pending or settled generation.
type Future struct {
	entry  *inflight
	joined bool
}

// Wait blocks until the task settles or ctx is done. Cancelling ctx only
// stops this waiter; the task keeps running for the others.
func (f *Future) Wait(ctx context.Context) (*itinerary.GeneratedPlan, error) {
	select {
	case <-f.entry.done:
		return f.entry.plan, f.entry.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Joined reports whether this future attached to a task another caller started.
func (f *Future) Joined() bool {
	return f.joined
}

// Deduplicator keeps at most one running task per key. It is safe for
// concurrent use.
type Deduplicator struct {
	mu      sync.Mutex
	pending map[string]*inflight
	metrics *Metrics
}

// NewDeduplicator creates an empty deduplicator. metrics may be nil.
func NewDeduplicator(metrics *Metrics) *Deduplicator {
	return &Deduplicator{
		pending: make(map[string]*inflight),
		metrics: metrics,
	}
}

// Submit joins the pending task for key or starts task in a new goroutine.
// The entry is removed as soon as the task settles, so a failed key can be
// retried immediately.
func (d *Deduplicator) Submit(ctx context.Context, key string, task TaskFunc) *Future {
	d.mu.Lock()
	if entry, ok := d.pending[key]; ok {
		entry.subscribers++
		d.mu.Unlock()
		d.metrics.RecordDedupJoin(ctx)
		return &Future{entry: entry, joined: true}
	}

	entry := &inflight{done: make(chan struct{}), subscribers: 1}
	d.pending[key] = entry
	d.mu.Unlock()

	go func() {
		plan, err := runTask(context.WithoutCancel(ctx), task)

		d.mu.Lock()
		entry.plan, entry.err = plan, err
		delete(d.pending, key)
		d.mu.Unlock()

		close(entry.done)
	}()

	return &Future{entry: entry}
}

// runTask converts a panic in task into ErrGenerationFailed so the entry
// still settles.
func runTask(ctx context.Context, task TaskFunc) (plan *itinerary.GeneratedPlan, err error) {
	defer func() {
		if r := recover(); r != nil {
			plan, err = nil, fmt.Errorf("%w: task panicked: %v", itinerary.ErrGenerationFailed, r)
		}
	}()
	return task(ctx)
}

// Subscribers returns how many callers share the pending task for key, or 0.
func (d *Deduplicator) Subscribers(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if entry, ok := d.pending[key]; ok {
		return entry.subscribers
	}
	return 0
}

// InFlight returns the keys with a pending task, sorted.
func (d *Deduplicator) InFlight() []string {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.mu.Unlock()

	sort.Strings(keys)
	return keys
}
