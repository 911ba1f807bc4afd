package profilesrv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga_UndoesCompletedStepsInReverse(t *testing.T) {
	var trail []string
	record := func(s string) func(context.Context) error {
		return func(context.Context) error {
			trail = append(trail, s)
			return nil
		}
	}
	boom := errors.New("boom")

	sg := &saga{
		steps: []step{
			{name: "a", apply: record("apply a"), undo: record("undo a")},
			{name: "b", apply: record("apply b")},
			{name: "c", apply: record("apply c"), undo: record("undo c")},
			{name: "d", apply: func(context.Context) error { return boom }, undo: record("undo d")},
		},
	}

	err := sg.run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"apply a", "apply b", "apply c", "undo c", "undo a"}, trail)
}

func TestSaga_UndoRunsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var undoErr error
	var reported []string

	sg := &saga{
		steps: []step{
			{
				name:  "provider",
				apply: func(context.Context) error { return nil },
				undo: func(ctx context.Context) error {
					undoErr = ctx.Err()
					return errors.New("provider down")
				},
			},
			{
				name: "store",
				apply: func(context.Context) error {
					cancel()
					return context.Canceled
				},
			},
		},
		onUndo: func(_ context.Context, step string, err error) {
			reported = append(reported, step+": "+err.Error())
		},
	}

	err := sg.run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, undoErr)
	assert.Equal(t, []string{"provider: provider down"}, reported)
}
