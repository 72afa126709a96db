package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/entity"
	"github.com/samdwyer/echoes/internal/gamedata"
)

// input is what one key press asks for.
type input struct {
	action combat.Action
	act    bool // action is set and ends the prompt
	cycle  bool // retarget to the next live enemy
	quit   bool
	next   State
	notice string // logged when the key did nothing
}

// interpret maps a key to an input. equipped is the ability bar in slot
// order and items the inventory indexes of usable items.
func interpret(state State, ev *tcell.EventKey, equipped []string, items []int) input {
	in := input{next: state}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		in.quit = true
		return in
	case tcell.KeyEscape:
		if state == StateItemSelect {
			in.next = StateCommand
		} else {
			in.quit = true
		}
		return in
	case tcell.KeyTab:
		if state == StateCommand {
			in.cycle = true
		}
		return in
	case tcell.KeyRune:
	default:
		return in
	}

	r := ev.Rune()
	if state == StateItemSelect {
		n, ok := digit(r)
		switch {
		case !ok:
		case n > len(items):
			in.notice = fmt.Sprintf("No item %d.", n)
		default:
			in.action, in.act = combat.UseItem(items[n-1]), true
			in.next = StateCommand
		}
		return in
	}

	switch r {
	case 'a', 'A':
		in.action, in.act = combat.Attack(), true
	case 'f', 'F':
		in.action, in.act = combat.Flee(), true
	case 'i', 'I':
		if len(items) == 0 {
			in.notice = "You have no usable items."
		} else {
			in.next = StateItemSelect
		}
	case 'q', 'Q':
		in.quit = true
	case '1', '2', '3', '4', '5':
		n, _ := digit(r)
		if n > len(equipped) {
			in.notice = fmt.Sprintf("No ability in slot %d.", n)
		} else {
			in.action, in.act = combat.UseAbility(equipped[n-1]), true
		}
	}
	return in
}

// equipInput is what one key press asks for on the equipment screens.
type equipInput struct {
	equip   int // inventory index to equip, or -1
	unequip gamedata.ItemType
	ability string // learned ability to move into slot 1
	done    bool   // leave the equipment screens
	quit    bool
	next    State
	notice  string
}

// interpretEquip maps a key on the equipment screens. gear holds the
// inventory indexes of equippable items and learned the known abilities.
func interpretEquip(state State, ev *tcell.EventKey, gear []int, learned []string) equipInput {
	in := equipInput{equip: -1, next: state}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		in.quit = true
		return in
	case tcell.KeyEscape:
		if state == StateAbilitySelect {
			in.next = StateEquip
		} else {
			in.done = true
		}
		return in
	case tcell.KeyRune:
	default:
		return in
	}

	r := ev.Rune()
	if n, ok := digit(r); ok {
		if state == StateAbilitySelect {
			if n > len(learned) {
				in.notice = fmt.Sprintf("No ability %d.", n)
				return in
			}
			in.ability, in.next = learned[n-1], StateEquip
			return in
		}
		if n > len(gear) {
			in.notice = fmt.Sprintf("No gear %d.", n)
			return in
		}
		in.equip = gear[n-1]
		return in
	}
	if state == StateAbilitySelect {
		return in
	}

	switch r {
	case 'w', 'W':
		in.unequip = gamedata.ItemWeapon
	case 'r', 'R':
		in.unequip = gamedata.ItemArmor
	case 'c', 'C':
		in.unequip = gamedata.ItemAccessory
	case 'b', 'B':
		in.next = StateAbilitySelect
	case 'e', 'E', 'q', 'Q':
		in.done = true
	}
	return in
}

func digit(r rune) (int, bool) {
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

// nextTarget returns the roster index after the current target, wrapping,
// or -1 when there is nothing else to pick.
func nextTarget(s *combat.Session) int {
	n := len(s.Enemies())
	if n < 2 {
		return -1
	}
	return (s.CurrentIndex() + 1) % n
}

func equipMenu(p *entity.Player) []string {
	worn := func(t gamedata.ItemType) string {
		if item := p.Equipment[t]; item != nil {
			return item.Name
		}
		return "none"
	}
	companion := "none"
	if c := p.Companion; c != nil {
		companion = fmt.Sprintf("%s (%s +%g)", c.Name, c.Bonus, c.Value)
	}

	lines := []string{
		fmt.Sprintf("Weapon: %s  Armor: %s  Accessory: %s", worn(gamedata.ItemWeapon), worn(gamedata.ItemArmor), worn(gamedata.ItemAccessory)),
		"Companion: " + companion,
	}
	inv := p.Inventory()
	for n, idx := range p.EquippableItems() {
		lines = append(lines, fmt.Sprintf("[%d] %s (%s)", n+1, inv[idx].Item.Name, inv[idx].Item.Type))
	}
	return append(lines, "[1-9] equip  [w/r/c] remove weapon/armor/accessory  [b] ability bar  [Esc] back")
}

// menu returns the prompt lines for a state.
func menu(state State, p *entity.Player, content *gamedata.Content) []string {
	switch state {
	case StateItemSelect:
		lines := []string{"Use which item? [Esc] back"}
		inv := p.Inventory()
		for n, idx := range p.UsableItems() {
			slot := inv[idx]
			lines = append(lines, fmt.Sprintf("[%d] %s x%d", n+1, slot.Item.Name, slot.Count))
		}
		return lines
	case StateResult:
		return []string{
			fmt.Sprintf("Gold %d  XP %d (%d to next level)", p.Gold(), p.Experience, p.ExperienceToNext()),
			"[Space] continue  [e] equipment  [q] quit",
		}
	case StateExplore:
		return []string{
			fmt.Sprintf("Gold %d  XP %d (%d to next level)", p.Gold(), p.Experience, p.ExperienceToNext()),
			"[Space] next room  [e] equipment  [q] quit",
		}
	case StateEquip:
		return equipMenu(p)
	case StateAbilitySelect:
		lines := []string{"Move which ability to slot 1? [Esc] back"}
		equipped := p.EquippedAbilities()
		for n, id := range p.Abilities() {
			label := id
			if def, ok := content.Ability(id); ok {
				label = def.Name
			}
			if slices.Contains(equipped, id) {
				label += " *"
			}
			lines = append(lines, fmt.Sprintf("[%d] %s", n+1, label))
		}
		return lines
	}

	var bar []string
	for n, id := range p.EquippedAbilities() {
		label := id
		if def, ok := content.Ability(id); ok {
			label = fmt.Sprintf("%s %dMP", def.Name, def.ManaCost)
		}
		if cd := p.Cooldown(id); cd > 0 {
			label += fmt.Sprintf(" (%d)", cd)
		}
		bar = append(bar, fmt.Sprintf("[%d] %s", n+1, label))
	}
	return []string{
		"[a] Attack  [i] Items  [f] Flee  [Tab] Target  [q] Quit",
		strings.Join(bar, "  "),
	}
}
