package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	calls  atomic.Int32
	limit  atomic.Int32
	block  chan struct{}
	err    error
	result int
}

func (f *fakeTarget) ReanalyzePending(_ context.Context, limit int) (int, error) {
	f.calls.Add(1)
	f.limit.Store(int32(limit))
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func TestRunOnce(t *testing.T) {
	target := &fakeTarget{result: 3}
	s := New(target, "@every 1h", 0, nil)
	assert.Equal(t, 3, s.RunOnce(context.Background()))
	assert.Equal(t, int32(50), target.limit.Load())

	target.err = errors.New("db down")
	target.result = 0
	assert.Zero(t, s.RunOnce(context.Background()))
	assert.Equal(t, int32(2), target.calls.Load())
}

func TestRunOnce_SkipsOverlap(t *testing.T) {
	target := &fakeTarget{block: make(chan struct{}), result: 1}
	s := New(target, "@every 1h", 5, nil)

	done := make(chan int)
	go func() { done <- s.RunOnce(context.Background()) }()
	require.Eventually(t, func() bool { return target.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.Zero(t, s.RunOnce(context.Background()))
	close(target.block)
	assert.Equal(t, 1, <-done)
	assert.Equal(t, int32(1), target.calls.Load())
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New(&fakeTarget{}, "not a spec", 5, nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestStart_Fires(t *testing.T) {
	target := &fakeTarget{}
	s := New(target, "@every 1s", 5, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	require.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
