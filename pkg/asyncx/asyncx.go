package asyncx

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PanicError is returned in place of a result when the function panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("asyncx: recovered panic: %v", e.Value)
}

type result[T any] struct {
	value T
	err   error
}

// Future represents a value that will be available asynchronously.
// Create one with Run and retrieve its value with Await.
type Future[T any] struct {
	done chan struct{}
	res  result[T]
}

// Run executes fn in a goroutine and returns a Future for its result.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.res.value, f.res.err = call(ctx, fn)
	}()
	return f
}

// Await blocks until the Future completes or ctx is done.
// It may be called any number of times from any goroutine.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.res.value, f.res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// All runs all fns concurrently and waits for every one to finish.
// Results keep the input order. The first error by position is returned,
// after every goroutine has returned.
func All[T any](ctx context.Context, fns ...func(context.Context) (T, error)) ([]T, error) {
	results := make([]T, len(fns))
	errs := make([]error, len(fns))

	var wg sync.WaitGroup
	wg.Add(len(fns))

	for i, fn := range fns {
		go func() {
			defer wg.Done()
			results[i], errs[i] = call(ctx, fn)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Map applies fn to every item concurrently and returns results in order.
func Map[T any, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	fns := make([]func(context.Context) (R, error), len(items))
	for i, item := range items {
		fns[i] = func(ctx context.Context) (R, error) { return fn(ctx, item) }
	}
	return All(ctx, fns...)
}

// Detach runs fn in the background with a context that survives the
// caller's cancellation but keeps its values, bounded by timeout.
// onErr, when non-nil, receives a failure or recovered panic.
func Detach(ctx context.Context, timeout time.Duration, fn func(context.Context) error, onErr func(error)) {
	base := context.WithoutCancel(ctx)
	go func() {
		dctx, cancel := context.WithTimeout(base, timeout)
		defer cancel()

		_, err := call(dctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		})
		if err != nil && onErr != nil {
			onErr(err)
		}
	}()
}

func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx)
}
