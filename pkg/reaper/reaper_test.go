package reaper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeleter struct {
	mu      sync.Mutex
	deleted []Target
	failFor map[Target]error
}

func (d *recordingDeleter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := Target{ChatID: chatID, MessageID: messageID}
	if err, ok := d.failFor[t]; ok {
		return err
	}
	d.deleted = append(d.deleted, t)
	return nil
}

func (d *recordingDeleter) snapshot() []Target {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Target(nil), d.deleted...)
}

func TestReaper_DeletesAfterDelay(t *testing.T) {
	deleter := &recordingDeleter{}
	r := New(deleter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	r.Schedule(Target{ChatID: 1, MessageID: 10}, 30*time.Millisecond)

	assert.Empty(t, deleter.snapshot(), "deletion must not fire before the delay")

	require.Eventually(t, func() bool {
		return len(deleter.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, Target{ChatID: 1, MessageID: 10}, deleter.snapshot()[0])

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Scheduled)
	assert.Equal(t, int64(1), stats.Deleted)
	assert.Zero(t, stats.Pending)
}

func TestReaper_FiresInDueOrder(t *testing.T) {
	deleter := &recordingDeleter{}
	r := New(deleter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	// Scheduled out of order; the later one first.
	r.Schedule(Target{ChatID: 1, MessageID: 2}, 80*time.Millisecond)
	r.Schedule(Target{ChatID: 1, MessageID: 1}, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(deleter.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	got := deleter.snapshot()
	assert.Equal(t, 1, got[0].MessageID)
	assert.Equal(t, 2, got[1].MessageID)
}

func TestReaper_FailureIsSwallowed(t *testing.T) {
	failing := Target{ChatID: 1, MessageID: 10}
	deleter := &recordingDeleter{failFor: map[Target]error{
		failing: errors.New("message to delete not found"),
	}}
	r := New(deleter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	r.Schedule(failing, 10*time.Millisecond)
	r.Schedule(Target{ChatID: 1, MessageID: 11}, 20*time.Millisecond)

	// The failed target must not block the next one.
	require.Eventually(t, func() bool {
		return len(deleter.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Deleted)
}

func TestReaper_AtMostOnce(t *testing.T) {
	deleter := &recordingDeleter{}
	r := New(deleter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	r.Schedule(Target{ChatID: 1, MessageID: 10}, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(deleter.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	// Give the loop time to misbehave.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, deleter.snapshot(), 1)
}
