package combat

import (
	"context"
	"time"

	"github.com/samdwyer/echoes/internal/config"
)

// Pacer inserts presentation delays between scheduler steps. The state
// machine never waits on its own.
type Pacer interface {
	Pause(ctx context.Context, from, to Phase) error
}

// NoPacing never waits. Tests and headless runs use it.
type NoPacing struct{}

// Pause returns ctx.Err().
func (NoPacing) Pause(ctx context.Context, _, _ Phase) error { return ctx.Err() }

// TimerPacer waits a configured delay after each phase so the player can
// follow the log.
type TimerPacer struct {
	Delays config.Pacing
}

// Pause waits the delay for the phase just finished, or until ctx is done.
func (p TimerPacer) Pause(ctx context.Context, from, to Phase) error {
	d := p.delay(from, to)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p TimerPacer) delay(from, to Phase) time.Duration {
	if to == PhaseSessionEnd {
		return 0
	}
	switch from {
	case PhaseRoundStart:
		return p.Delays.RoundStart
	case PhasePlayerActing:
		return p.Delays.PlayerAction
	case PhaseEnemyActing:
		return p.Delays.EnemyAction
	case PhaseRoundEnd:
		return p.Delays.RoundEnd
	}
	return 0
}
