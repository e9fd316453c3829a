package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCPUPool_RunsAllTasks(t *testing.T) {
	ctx := context.Background()
	pool, gctx := NewCPUPool(ctx)
	defer pool.Shutdown(false)

	var count int64
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	err := Map(gctx, pool, items, func(int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(50), count)
}

func TestIOPool_BoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	pool, gctx := NewIOPool(ctx)
	defer pool.Shutdown(false)

	var inFlight, maxInFlight int64
	items := make([]int, 20)
	err := Map(gctx, pool, items, func(int) error {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&maxInFlight)
			if n <= old || atomic.CompareAndSwapInt64(&maxInFlight, old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil
	})
	assert.NoError(t, err)
	assert.LessOrEqual(t, maxInFlight, int64(64)) // sane upper bound, not host-specific
}

func TestPool_PropagatesFirstError(t *testing.T) {
	ctx := context.Background()
	pool, gctx := NewCPUPool(ctx)
	defer pool.Shutdown(true)

	boom := errors.New("boom")
	items := []int{1, 2, 3}
	err := Map(gctx, pool, items, func(i int) error {
		if i == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestPool_ShutdownHardCancelsContext(t *testing.T) {
	ctx := context.Background()
	pool, gctx := NewCPUPool(ctx)

	started := make(chan struct{})
	_ = pool.Go(gctx, func() error {
		close(started)
		<-gctx.Done()
		return gctx.Err()
	})
	<-started
	pool.Shutdown(true)
	err := pool.Wait()
	assert.Error(t, err)
}
