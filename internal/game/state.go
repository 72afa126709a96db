// Package game runs the terminal loop: it walks the player through dungeon
// floors, reads keys and hands fights to the combat engine.
package game

// State is the input mode of the terminal loop.
type State int

const (
	// StateCommand waits for a top-level combat command.
	StateCommand State = iota
	// StateItemSelect waits for a digit picking a usable item.
	StateItemSelect
	// StateResult shows the outcome of a finished fight.
	StateResult
	// StateExplore waits between rooms of a floor.
	StateExplore
	// StateEquip manages gear and the companion.
	StateEquip
	// StateAbilitySelect waits for a digit picking the ability for slot 1.
	StateAbilitySelect
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCommand:
		return "command"
	case StateItemSelect:
		return "item_select"
	case StateResult:
		return "result"
	case StateExplore:
		return "explore"
	case StateEquip:
		return "equip"
	case StateAbilitySelect:
		return "ability_select"
	default:
		return "unknown"
	}
}
