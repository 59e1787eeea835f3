package updateworker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_DispatchNonBlocking(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	pool.Dispatch(UpdateJob{
		ChatID: 123,
		Handler: func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 10*time.Millisecond, "Dispatch must not block the caller")
}

func TestPool_SameChatSequentialProcessing(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var results []int
	var mu sync.Mutex

	for i := 1; i <= 5; i++ {
		val := i
		pool.Dispatch(UpdateJob{
			ChatID: 777,
			Handler: func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		})
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results, "updates for one chat must stay ordered")
}

func TestPool_DifferentChatsParallelProcessing(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var activeCount int32

	for i := int64(0); i < 4; i++ {
		pool.Dispatch(UpdateJob{
			ChatID: 1000 + i,
			Handler: func(ctx context.Context) error {
				atomic.AddInt32(&activeCount, 1)
				time.Sleep(50 * time.Millisecond)
				atomic.AddInt32(&activeCount, -1)
				return nil
			},
		})
	}

	time.Sleep(10 * time.Millisecond)

	active := atomic.LoadInt32(&activeCount)
	assert.GreaterOrEqual(t, active, int32(2), "different chats should run in parallel")
}

func TestPool_TryDispatchFullQueue(t *testing.T) {
	pool := NewPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	release := make(chan struct{})
	blocker := func(ctx context.Context) error {
		<-release
		return nil
	}

	// First job occupies the worker, second fills the queue.
	pool.Dispatch(UpdateJob{ChatID: 1, Handler: blocker})
	time.Sleep(10 * time.Millisecond)
	pool.Dispatch(UpdateJob{ChatID: 1, Handler: blocker})

	ok := pool.TryDispatch(UpdateJob{ChatID: 1, Handler: blocker})
	assert.False(t, ok, "full shard queue must reject the job")

	stats := pool.GetStats()
	assert.Equal(t, int64(1), stats.TotalDropped)

	close(release)
}

func TestPool_GracefulShutdown(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())

	pool.Start(ctx)

	var completed int32

	for i := int64(0); i < 2; i++ {
		pool.Dispatch(UpdateJob{
			ChatID: 10 + i,
			Handler: func(ctx context.Context) error {
				time.Sleep(50 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
				return nil
			},
		})
	}

	time.Sleep(10 * time.Millisecond)

	cancel()
	pool.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&completed), "in-flight jobs must finish on shutdown")
}

func TestPool_ConsistentHashing(t *testing.T) {
	pool := NewPool(4, 100)

	shard1 := pool.shardForChat(987654321)
	shard2 := pool.shardForChat(987654321)

	assert.Equal(t, shard1, shard2, "same chat must land on the same shard")
	assert.GreaterOrEqual(t, shard1, 0)
	assert.Less(t, shard1, 4)
}

func TestPool_FairDistribution(t *testing.T) {
	numWorkers := 4
	pool := NewPool(numWorkers, 100)

	shardCounts := make(map[int]int)
	for i := int64(0); i < 100; i++ {
		shardCounts[pool.shardForChat(100000+i)]++
	}

	for shard, count := range shardCounts {
		assert.Greater(t, count, 10, "worker %d should receive >10 chats", shard)
		assert.Less(t, count, 45, "worker %d should receive <45 chats", shard)
	}
}
