package reaper

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Deleter is the single outbound call the reaper needs. The Telegram
// messenger adapter satisfies it.
type Deleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Target identifies one delivered message scheduled for removal.
type Target struct {
	ChatID    int64
	MessageID int
}

// Stats are the reaper's lifetime counters.
type Stats struct {
	Pending   int   `json:"pending"`
	Scheduled int64 `json:"scheduled"`
	Deleted   int64 `json:"deleted"`
	Failed    int64 `json:"failed"`
}

type entry struct {
	target Target
	dueAt  time.Time
}

type entryHeap []entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].dueAt.Before(h[j].dueAt) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)         { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Reaper deletes delivered messages after their configured delay.
// Contract: at-most-once, best-effort, non-cancellable once armed. Pending
// deletions are in-process only; a restart before firing loses them and the
// message stays undeleted. Delete failures are logged and swallowed.
type Reaper struct {
	deleter Deleter

	mu      sync.Mutex
	pending entryHeap
	wakeCh  chan struct{}

	scheduled int64
	deleted   int64
	failed    int64
}

func New(deleter Deleter) *Reaper {
	return &Reaper{
		deleter: deleter,
		wakeCh:  make(chan struct{}, 1),
	}
}

// Schedule arms a deferred deletion. Fire-and-forget; the caller is never
// blocked and cannot cancel.
func (r *Reaper) Schedule(t Target, delay time.Duration) {
	r.mu.Lock()
	heap.Push(&r.pending, entry{target: t, dueAt: time.Now().Add(delay)})
	r.mu.Unlock()

	atomic.AddInt64(&r.scheduled, 1)

	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
}

// Start runs the reaper loop until the context is cancelled. An adaptive
// timer sleeps until the earliest due deletion instead of polling.
func (r *Reaper) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Reaper) run(ctx context.Context) {
	logrus.Info("[REAPER] Deferred deletion worker started")

	for {
		sleep := r.execDue(ctx)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			logrus.Info("[REAPER] Worker stopped")
			return
		case <-r.wakeCh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// execDue fires every due deletion and returns how long to sleep until the
// next one.
func (r *Reaper) execDue(ctx context.Context) time.Duration {
	const idleSleep = time.Minute

	for {
		r.mu.Lock()
		if r.pending.Len() == 0 {
			r.mu.Unlock()
			return idleSleep
		}

		next := r.pending[0]
		now := time.Now()
		if next.dueAt.After(now) {
			r.mu.Unlock()
			return next.dueAt.Sub(now)
		}

		heap.Pop(&r.pending)
		r.mu.Unlock()

		r.reap(ctx, next.target)
	}
}

func (r *Reaper) reap(ctx context.Context, t Target) {
	if err := r.deleter.DeleteMessage(ctx, t.ChatID, t.MessageID); err != nil {
		// Already-removed messages and permission errors land here; the
		// user keeps the content either way, so nobody is notified.
		atomic.AddInt64(&r.failed, 1)
		logrus.WithError(err).Warnf("[REAPER] Failed to delete message %d in chat %d", t.MessageID, t.ChatID)
		return
	}
	atomic.AddInt64(&r.deleted, 1)
	logrus.Debugf("[REAPER] Deleted message %d in chat %d", t.MessageID, t.ChatID)
}

func (r *Reaper) Stats() Stats {
	r.mu.Lock()
	pending := r.pending.Len()
	r.mu.Unlock()

	return Stats{
		Pending:   pending,
		Scheduled: atomic.LoadInt64(&r.scheduled),
		Deleted:   atomic.LoadInt64(&r.deleted),
		Failed:    atomic.LoadInt64(&r.failed),
	}
}
