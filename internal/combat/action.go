package combat

import "strconv"

// ActionKind is what the player chose to do this turn.
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionAbility
	ActionItem
	ActionFlee
)

// String returns a human-readable action name.
func (k ActionKind) String() string {
	switch k {
	case ActionAttack:
		return "attack"
	case ActionAbility:
		return "ability"
	case ActionItem:
		return "item"
	case ActionFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// Action is one player turn. AbilityID is read for ActionAbility and
// ItemIndex for ActionItem.
type Action struct {
	Kind      ActionKind
	AbilityID string
	ItemIndex int
}

// Attack returns a basic attack on the current target.
func Attack() Action { return Action{Kind: ActionAttack} }

// UseAbility returns an action casting the given ability.
func UseAbility(id string) Action { return Action{Kind: ActionAbility, AbilityID: id} }

// UseItem returns an action consuming the item in the given slot.
func UseItem(index int) Action { return Action{Kind: ActionItem, ItemIndex: index} }

// Flee returns an escape attempt.
func Flee() Action { return Action{Kind: ActionFlee} }

func (a Action) String() string {
	switch a.Kind {
	case ActionAbility:
		return "ability:" + a.AbilityID
	case ActionItem:
		return "item:" + strconv.Itoa(a.ItemIndex)
	default:
		return a.Kind.String()
	}
}
