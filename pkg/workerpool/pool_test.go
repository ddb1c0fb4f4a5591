package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_AllIndexesOnce(t *testing.T) {
	p := New(3, 0)
	res := Collect(context.Background(), p, 10, func(ctx context.Context, i int) (int, error) {
		return i * i, nil
	})

	require.Len(t, res, 10)
	for i, r := range res {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, i*i, r.Value)
		assert.NoError(t, r.Err)
	}
}

func TestRun_RespectsWidth(t *testing.T) {
	p := New(2, 0)
	var running, peak int32
	res := Collect(context.Background(), p, 8, func(ctx context.Context, i int) (struct{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return struct{}{}, nil
	})

	assert.Len(t, res, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRun_CompletionOrder(t *testing.T) {
	p := New(2, 0)
	var order []int
	for r := range Run(context.Background(), p, 2, func(ctx context.Context, i int) (int, error) {
		if i == 0 {
			time.Sleep(50 * time.Millisecond)
		}
		return i, nil
	}) {
		order = append(order, r.Index)
	}
	assert.Equal(t, []int{1, 0}, order)
}

func TestRun_TimeoutAbandonsTask(t *testing.T) {
	p := New(1, 20*time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	res := Collect(context.Background(), p, 2, func(ctx context.Context, i int) (string, error) {
		if i == 0 {
			<-release // ignores ctx on purpose
		}
		return "ok", nil
	})

	assert.True(t, res[0].TimedOut)
	assert.ErrorIs(t, res[0].Err, context.DeadlineExceeded)
	assert.Equal(t, "ok", res[1].Value)
}

func TestRun_PanicBecomesError(t *testing.T) {
	p := New(2, 0)
	res := Collect(context.Background(), p, 2, func(ctx context.Context, i int) (int, error) {
		if i == 1 {
			panic("boom")
		}
		return 1, nil
	})
	assert.NoError(t, res[0].Err)
	assert.ErrorContains(t, res[1].Err, "boom")
}

func TestRun_ErrorsAreIsolated(t *testing.T) {
	p := New(3, 0)
	sentinel := errors.New("bad job")
	res := Collect(context.Background(), p, 3, func(ctx context.Context, i int) (int, error) {
		if i == 1 {
			return 0, sentinel
		}
		return i, nil
	})
	assert.ErrorIs(t, res[1].Err, sentinel)
	assert.Equal(t, 2, res[2].Value)
}

func TestRun_Empty(t *testing.T) {
	res := Collect(context.Background(), New(0, 0), 0, func(ctx context.Context, i int) (int, error) {
		return 0, nil
	})
	assert.Empty(t, res)
}
