package combat

import (
	"fmt"

	"github.com/samdwyer/echoes/internal/gamedata"
)

// Result is how a session ended.
type Result int

const (
	ResultNone Result = iota
	ResultVictory
	ResultDefeat
	ResultEscaped
)

// String returns a human-readable result name.
func (r Result) String() string {
	switch r {
	case ResultVictory:
		return "victory"
	case ResultDefeat:
		return "defeat"
	case ResultEscaped:
		return "escaped"
	default:
		return "none"
	}
}

// EventKind identifies a presentation notification.
type EventKind string

const (
	EventRoundStarted   EventKind = "round_started"
	EventActionRejected EventKind = "action_rejected"
	EventAttack         EventKind = "attack"
	EventDamage         EventKind = "damage"
	EventDodged         EventKind = "dodged"
	EventCritical       EventKind = "critical"
	EventHealed         EventKind = "healed"
	EventManaRestored   EventKind = "mana_restored"
	EventStatusApplied  EventKind = "status_applied"
	EventStatusExpired  EventKind = "status_expired"
	EventStatusCleared  EventKind = "status_cleared"
	EventStatusTick     EventKind = "status_tick"
	EventTurnSkipped    EventKind = "turn_skipped"
	EventTargetChanged  EventKind = "target_changed"
	EventEnemyDefeated  EventKind = "enemy_defeated"
	EventMinionSummoned EventKind = "minion_summoned"
	EventGoldStolen     EventKind = "gold_stolen"
	EventEscapeFailed   EventKind = "escape_failed"
	EventEscaped        EventKind = "escaped"
	EventRewards        EventKind = "rewards"
	EventLoot           EventKind = "loot"
	EventLootRejected   EventKind = "loot_rejected"
	EventPlayerDefeated EventKind = "player_defeated"
	EventSessionEnded   EventKind = "session_ended"
)

// Event is one ordered notification to the presentation layer. Only the
// fields that matter for the kind are set.
type Event struct {
	Kind   EventKind
	Round  int
	Actor  string
	Target string
	Action string // attack, ability or item name
	Amount int    // damage, healing, gold or item count
	Gold   int    // set on rewards and player_defeated

	Effect     string
	EffectKind gamedata.EffectKind
	Item       string

	Result Result
	Err    error
}

// String renders the event as a log line.
func (e Event) String() string {
	switch e.Kind {
	case EventRoundStarted:
		return fmt.Sprintf("Round %d", e.Round)
	case EventActionRejected:
		return fmt.Sprintf("Cannot do that: %v", e.Err)
	case EventAttack:
		if e.Target == "" {
			return fmt.Sprintf("%s uses %s.", e.Actor, e.Action)
		}
		return fmt.Sprintf("%s uses %s on %s.", e.Actor, e.Action, e.Target)
	case EventDamage:
		return fmt.Sprintf("%s takes %d damage.", e.Target, e.Amount)
	case EventDodged:
		return fmt.Sprintf("%s dodges %s's %s!", e.Target, e.Actor, e.Action)
	case EventCritical:
		return "Critical hit!"
	case EventHealed:
		return fmt.Sprintf("%s recovers %d HP.", e.Target, e.Amount)
	case EventManaRestored:
		return fmt.Sprintf("%s recovers %d mana.", e.Target, e.Amount)
	case EventStatusApplied:
		return fmt.Sprintf("%s is %s (%s).", e.Target, effectLabel(e.EffectKind), e.Effect)
	case EventStatusExpired:
		return fmt.Sprintf("%s on %s wears off.", e.Effect, e.Target)
	case EventStatusCleared:
		return fmt.Sprintf("%s is cured of %s.", e.Target, e.Effect)
	case EventStatusTick:
		if e.Amount < 0 {
			return fmt.Sprintf("%s recovers %d HP from %s.", e.Target, -e.Amount, e.Effect)
		}
		return fmt.Sprintf("%s takes %d damage from %s.", e.Target, e.Amount, e.Effect)
	case EventTurnSkipped:
		return fmt.Sprintf("%s is %s and cannot act.", e.Actor, effectLabel(e.EffectKind))
	case EventTargetChanged:
		return fmt.Sprintf("Now targeting %s.", e.Target)
	case EventEnemyDefeated:
		return fmt.Sprintf("%s is defeated!", e.Target)
	case EventMinionSummoned:
		return fmt.Sprintf("%s calls %s to its side!", e.Actor, e.Target)
	case EventGoldStolen:
		return fmt.Sprintf("%s steals %d gold!", e.Actor, e.Amount)
	case EventEscapeFailed:
		return "You fail to escape!"
	case EventEscaped:
		return "You escape!"
	case EventRewards:
		return fmt.Sprintf("You gain %d XP and %d gold.", e.Amount, e.Gold)
	case EventLoot:
		return fmt.Sprintf("Loot: %s x%d", e.Item, e.Amount)
	case EventLootRejected:
		return fmt.Sprintf("No room for %s x%d.", e.Item, e.Amount)
	case EventPlayerDefeated:
		return fmt.Sprintf("You are defeated! You come to with %d HP and lose %d gold.", e.Amount, e.Gold)
	case EventSessionEnded:
		return "Combat over: " + e.Result.String()
	default:
		return string(e.Kind)
	}
}

func effectLabel(k gamedata.EffectKind) string {
	if info, ok := k.Info(); ok {
		return info.Label
	}
	return string(k)
}
