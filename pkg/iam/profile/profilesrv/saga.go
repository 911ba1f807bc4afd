package profilesrv

import (
	"context"
	"fmt"
)

// step is one unit of a dual write. undo is nil for steps with no external
// side effect.
type step struct {
	name  string
	apply func(ctx context.Context) error
	undo  func(ctx context.Context) error
}

// saga runs steps in order. When a step fails, the undo of every step
// that already completed runs in reverse order. The failing step's error
// is returned wrapped with the step name. onUndo sees every undo outcome
// (nil on success) and cannot change the returned error.
type saga struct {
	steps  []step
	onUndo func(ctx context.Context, step string, err error)
}

func (s *saga) run(ctx context.Context) error {
	for i, st := range s.steps {
		if err := st.apply(ctx); err != nil {
			s.compensate(ctx, i)
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return nil
}

func (s *saga) compensate(ctx context.Context, failed int) {
	// Compensation must run even when the request was cancelled.
	ctx = context.WithoutCancel(ctx)

	for i := failed - 1; i >= 0; i-- {
		st := s.steps[i]
		if st.undo == nil {
			continue
		}
		err := st.undo(ctx)
		if s.onUndo != nil {
			s.onUndo(ctx, st.name, err)
		}
	}
}
