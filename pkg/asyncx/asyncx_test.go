package asyncx

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Await(t *testing.T) {
	ctx := context.Background()
	f := Run(ctx, func(context.Context) (int, error) { return 42, nil })

	v, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	again, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, again)
}

func TestRun_RecoversPanic(t *testing.T) {
	ctx := context.Background()
	f := Run(ctx, func(context.Context) (string, error) { panic("kaboom") })

	_, err := f.Await(ctx)
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
}

func TestAwait_ContextDone(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	f := Run(context.Background(), func(context.Context) (int, error) {
		<-block
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAll_KeepsOrderAndReturnsFirstError(t *testing.T) {
	ctx := context.Background()

	got, err := All(ctx,
		func(context.Context) (int, error) { time.Sleep(5 * time.Millisecond); return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	boom := errors.New("boom")
	_, err = All(ctx,
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context) (int, error) { return 0, errors.New("later") },
	)
	assert.ErrorIs(t, err, boom)
}

func TestMap(t *testing.T) {
	got, err := Map(context.Background(), []string{"a", "bb"}, func(_ context.Context, s string) (int, error) {
		return len(s), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestDetach_SurvivesCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	done := make(chan struct{})

	Detach(ctx, time.Second, func(ctx context.Context) error {
		defer close(done)
		ran.Store(ctx.Err() == nil)
		return nil
	}, nil)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("detached work did not run")
	}
	assert.True(t, ran.Load())
}

func TestDetach_ReportsError(t *testing.T) {
	errs := make(chan error, 1)

	Detach(context.Background(), time.Second, func(context.Context) error {
		return errors.New("smtp down")
	}, func(err error) { errs <- err })

	select {
	case err := <-errs:
		assert.EqualError(t, err, "smtp down")
	case <-time.After(time.Second):
		t.Fatal("error not reported")
	}
}
