package combat

import (
	"context"
	"errors"
)

// Run drives s to its end. The source is asked for an action whenever the
// player must act and asked again after a rejection. Cancelling ctx stops
// the loop and leaves the session where it was.
func Run(ctx context.Context, s *Session, src ActionSource, pacer Pacer) (Result, error) {
	if pacer == nil {
		pacer = NoPacing{}
	}
	for !s.Ended() {
		if err := ctx.Err(); err != nil {
			return ResultNone, err
		}

		from := s.Phase()
		err := s.Step(ctx)
		switch {
		case errors.Is(err, ErrAwaitingAction):
			if err := submitNext(ctx, s, src); err != nil {
				return ResultNone, err
			}
		case err != nil:
			return ResultNone, err
		}

		if err := pacer.Pause(ctx, from, s.Phase()); err != nil {
			return ResultNone, err
		}
	}
	return s.Result(), nil
}

func submitNext(ctx context.Context, s *Session, src ActionSource) error {
	for {
		a, err := src.NextAction(ctx, s)
		if err != nil {
			return err
		}
		err = s.Submit(ctx, a)
		if err == nil {
			return nil
		}
		if !IsRejection(err) {
			return err
		}
	}
}
