package combat

import (
	"context"

	"github.com/looplab/fsm"
)

// Phase is a state of the round scheduler.
type Phase string

const (
	PhaseRoundStart            Phase = "round_start"
	PhasePlayerActing          Phase = "player_acting"
	PhasePlayerResolved        Phase = "player_resolved"
	PhaseDefeatCheckPlayerTurn Phase = "defeat_check_player_turn"
	PhaseEnemyActing           Phase = "enemy_acting"
	PhaseDefeatCheckEnemyTurn  Phase = "defeat_check_enemy_turn"
	PhaseRoundEnd              Phase = "round_end"
	PhaseSessionEnd            Phase = "session_end"
)

// Scheduler events.
const (
	evBegin     = "begin"
	evResolve   = "resolve"
	evCheckFoes = "check_foes"
	evEnemyTurn = "enemy_turn"
	evCheckHero = "check_hero"
	evEndRound  = "end_round"
	evNextRound = "next_round"
	evFinish    = "finish"
)

func phases(ps ...Phase) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

// newPhaseMachine builds the round state machine. Every non-terminal phase
// can finish the session; nothing leaves session_end.
func newPhaseMachine(onEnter func(from, to Phase)) *fsm.FSM {
	live := phases(
		PhaseRoundStart,
		PhasePlayerActing,
		PhasePlayerResolved,
		PhaseDefeatCheckPlayerTurn,
		PhaseEnemyActing,
		PhaseDefeatCheckEnemyTurn,
		PhaseRoundEnd,
	)

	return fsm.NewFSM(
		string(PhaseRoundStart),
		fsm.Events{
			{Name: evBegin, Src: phases(PhaseRoundStart), Dst: string(PhasePlayerActing)},
			{Name: evResolve, Src: phases(PhasePlayerActing), Dst: string(PhasePlayerResolved)},
			{Name: evCheckFoes, Src: phases(PhasePlayerResolved), Dst: string(PhaseDefeatCheckPlayerTurn)},
			{Name: evEnemyTurn, Src: phases(PhaseDefeatCheckPlayerTurn), Dst: string(PhaseEnemyActing)},
			{Name: evCheckHero, Src: phases(PhaseEnemyActing), Dst: string(PhaseDefeatCheckEnemyTurn)},
			{Name: evEndRound, Src: phases(PhaseDefeatCheckEnemyTurn), Dst: string(PhaseRoundEnd)},
			{Name: evNextRound, Src: phases(PhaseRoundEnd), Dst: string(PhaseRoundStart)},
			{Name: evFinish, Src: live, Dst: string(PhaseSessionEnd)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if onEnter != nil {
					onEnter(Phase(e.Src), Phase(e.Dst))
				}
			},
		},
	)
}
