package workerpool

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pool is a bounded task runner shared by every parallel scan in the app.
type Pool struct {
	width   int
	timeout time.Duration
}

// New returns a pool running at most width tasks at once. timeout bounds a
// single task; zero disables it.
func New(width int, timeout time.Duration) *Pool {
	if width < 1 {
		width = 1
	}
	return &Pool{width: width, timeout: timeout}
}

func (p *Pool) Width() int { return p.width }

// Result is delivered once per submitted index.
type Result[T any] struct {
	Index int
	Value T
	Err   error
	// TimedOut is set when the task was abandoned after the per-task timeout.
	TimedOut bool
}

// Task is one unit of work. It should honour ctx, but a task that ignores
// cancellation is abandoned rather than waited for.
type Task[T any] func(ctx context.Context, index int) (T, error)

// Run executes task for indexes [0, n) and streams results in completion
// order. The channel is closed after the last result.
func Run[T any](ctx context.Context, p *Pool, n int, task Task[T]) <-chan Result[T] {
	out := make(chan Result[T], n)
	if n <= 0 {
		close(out)
		return out
	}
	g := &errgroup.Group{}
	g.SetLimit(p.width)
	go func() {
		defer close(out)
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				out <- Result[T]{Index: i, Err: ctx.Err()}
				continue
			}
			g.Go(func() error {
				out <- runOne(ctx, p.timeout, i, task)
				return nil
			})
		}
		_ = g.Wait()
	}()
	return out
}

// Collect drains Run and returns results indexed by submission order.
func Collect[T any](ctx context.Context, p *Pool, n int, task Task[T]) []Result[T] {
	res := make([]Result[T], n)
	for r := range Run(ctx, p, n, task) {
		res[r.Index] = r
	}
	return res
}

func runOne[T any](ctx context.Context, timeout time.Duration, i int, task Task[T]) Result[T] {
	tctx, cancel := context.WithCancel(ctx)
	if timeout > 0 {
		tctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan Result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Result[T]{Index: i, Err: fmt.Errorf("task %d panicked: %v", i, r)}
			}
		}()
		v, err := task(tctx, i)
		done <- Result[T]{Index: i, Value: v, Err: err}
	}()

	select {
	case r := <-done:
		return r
	case <-tctx.Done():
		return Result[T]{Index: i, Err: tctx.Err(), TimedOut: ctx.Err() == nil}
	}
}
