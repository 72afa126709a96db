// Package entity provides the persistent player character and the enemies
// met in encounters.
package entity

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/gamedata"
)

var (
	ErrNotEquippable   = errors.New("item cannot be equipped")
	ErrInventoryFull   = errors.New("inventory is full")
	ErrUnknownAbility  = errors.New("ability not learned")
	ErrInvalidSlot     = errors.New("slot out of range")
	ErrNothingEquipped = errors.New("nothing equipped in that slot")
)

// Slot is one inventory entry. Stackable items share a slot.
type Slot struct {
	Item  *gamedata.ItemDef
	Count int
}

// Player is the player character. It carries everything that outlives a
// battle: level, gold, inventory and equipment.
type Player struct {
	combat.Vitals

	ID    string
	Name  string
	Class *gamedata.ClassDef

	Level      int
	Experience int
	gold       int

	Mana    int
	MaxMana int

	Equipment map[gamedata.ItemType]*gamedata.ItemDef
	Companion *Companion

	abilities    []string // learned, in order
	equipped     []string // slot order
	newlyLearned []string // learned by level-ups, not yet reported
	inventory    []Slot

	catalog  *gamedata.AbilityRegistry
	xpTable  []int
	settings config.Settings
}

// NewPlayer creates a player of the given class at the configured starting
// level with full HP and mana. The class's starting abilities are learned
// and equipped, followed by every class ability open at that level.
func NewPlayer(id, name string, class *gamedata.ClassDef, content *gamedata.Content, settings config.Settings) *Player {
	p := &Player{
		ID:        id,
		Name:      name,
		Class:     class,
		Level:     max(1, settings.StartingLevel),
		gold:      settings.StartingGold,
		Equipment: make(map[gamedata.ItemType]*gamedata.ItemDef),
		catalog:   content.Abilities,
		xpTable:   content.Classes.ExperienceTable(),
		settings:  settings,
	}
	if p.Level > 1 && p.Level-1 < len(p.xpTable) {
		p.Experience = p.xpTable[p.Level-1]
	}
	for _, ab := range class.Abilities {
		p.learn(ab)
	}
	p.learnForLevel()
	p.newlyLearned = nil

	p.recalculate()
	p.HP = p.MaxHP
	p.Mana = p.MaxMana
	return p
}

// =============================================================================
// Attributes
// =============================================================================

func (p *Player) PlayerID() string { return p.ID }
func (p *Player) GetName() string  { return p.Name }
func (p *Player) GetLevel() int    { return p.Level }
func (p *Player) GetMana() int     { return p.Mana }
func (p *Player) GetMaxMana() int  { return p.MaxMana }

// BaseStats are the class attributes grown to the current level plus
// equipment and companion bonuses. Status effects are not included.
func (p *Player) BaseStats() combat.Stats {
	lv := float64(p.Level - 1)
	b, g := p.Class.Base, p.Class.Growth
	s := combat.Stats{
		Strength: b.Strength + g.Strength*lv,
		Defense:  b.Defense + g.Defense*lv,
		Magic:    b.Magic + g.Magic*lv,
		Speed:    b.Speed + g.Speed*lv,
		Luck:     b.Luck + g.Luck*lv,
	}
	for _, item := range p.Equipment {
		s.Strength += item.Bonuses.Strength
		s.Defense += item.Bonuses.Defense
		s.Magic += item.Bonuses.Magic
		s.Speed += item.Bonuses.Speed
		s.Luck += item.Bonuses.Luck
	}
	if c := p.Companion; c != nil {
		s = c.apply(s)
	}
	return s
}

// EffectiveStats are the base stats with every active effect applied.
func (p *Player) EffectiveStats() combat.Stats {
	return combat.ApplyEffects(p.BaseStats(), p.StatusEffects())
}

// GetPassives returns the permanent dodge and crit bonuses. They come from
// the companion.
func (p *Player) GetPassives() combat.Passives {
	if p.Companion == nil {
		return combat.Passives{}
	}
	return p.Companion.passives(combat.Passives{})
}

// recalculate derives the HP and mana pools from level and gear, clamping
// the current values.
func (p *Player) recalculate() {
	lv := float64(p.Level - 1)
	b, g := p.Class.Base, p.Class.Growth

	maxHP := int(b.HP) + int(math.Round(g.HP*lv))
	for _, item := range p.Equipment {
		maxHP += item.Bonuses.MaxHP
	}
	if c := p.Companion; c != nil && c.Bonus == gamedata.BonusMaxHP {
		maxHP += int(c.Value)
	}
	p.SetMaxHP(maxHP)

	p.MaxMana = gamedata.MaxMana(b.Magic + math.Round(g.Magic*lv))
	if c := p.Companion; c != nil && c.Bonus == gamedata.BonusMaxMana {
		p.MaxMana += int(c.Value)
	}
	p.Mana = min(p.Mana, p.MaxMana)
}

// =============================================================================
// Mana
// =============================================================================

// SpendMana deducts mana and reports false, spending nothing, when the pool
// is short.
func (p *Player) SpendMana(amount int) bool {
	if amount > p.Mana {
		return false
	}
	p.Mana -= amount
	return true
}

// RestoreMana refills mana up to the maximum and returns the amount restored.
func (p *Player) RestoreMana(amount int) int {
	if amount <= 0 || p.Mana >= p.MaxMana {
		return 0
	}
	amount = min(amount, p.MaxMana-p.Mana)
	p.Mana += amount
	return amount
}

// =============================================================================
// Progression and rewards
// =============================================================================

// AddExperience adds XP and applies every level-up it pays for. Each
// level-up restores HP and mana fully and learns the class abilities the
// new level opens.
func (p *Player) AddExperience(amount int) {
	if amount <= 0 {
		return
	}
	p.Experience += amount
	for p.Level < p.settings.MaxLevel && p.Level < len(p.xpTable) && p.Experience >= p.xpTable[p.Level] {
		p.Level++
		p.recalculate()
		p.HP = p.MaxHP
		p.Mana = p.MaxMana
		p.learnForLevel()
	}
}

// ExperienceToNext returns the XP still needed for the next level, or 0 at
// the cap.
func (p *Player) ExperienceToNext() int {
	if p.Level >= p.settings.MaxLevel || p.Level >= len(p.xpTable) {
		return 0
	}
	return p.xpTable[p.Level] - p.Experience
}

func (p *Player) Gold() int { return p.gold }

// AddGold adds gold. Negative amounts are ignored.
func (p *Player) AddGold(amount int) {
	if amount > 0 {
		p.gold += amount
	}
}

// LoseGold removes up to amount gold and returns what was taken.
func (p *Player) LoseGold(amount int) int {
	amount = max(0, min(amount, p.gold))
	p.gold -= amount
	return amount
}

// =============================================================================
// Inventory
// =============================================================================

// Inventory returns a copy of the inventory slots.
func (p *Player) Inventory() []Slot { return slices.Clone(p.inventory) }

// AddItem stores count units of item. Stackable items join an existing
// stack; anything else needs a free slot per unit. Nothing is added when
// the items do not all fit.
func (p *Player) AddItem(item *gamedata.ItemDef, count int) bool {
	if item == nil || count <= 0 {
		return false
	}
	if item.Stackable {
		for i := range p.inventory {
			if p.inventory[i].Item.ID == item.ID {
				p.inventory[i].Count += count
				return true
			}
		}
		if len(p.inventory) >= p.settings.MaxInventorySlots {
			return false
		}
		p.inventory = append(p.inventory, Slot{Item: item, Count: count})
		return true
	}

	if len(p.inventory)+count > p.settings.MaxInventorySlots {
		return false
	}
	for range count {
		p.inventory = append(p.inventory, Slot{Item: item, Count: 1})
	}
	return true
}

// ItemAt returns the item in an inventory slot.
func (p *Player) ItemAt(index int) (*gamedata.ItemDef, bool) {
	if index < 0 || index >= len(p.inventory) {
		return nil, false
	}
	return p.inventory[index].Item, true
}

// ConsumeItem removes one unit from a slot, dropping the slot when it
// empties.
func (p *Player) ConsumeItem(index int) {
	if index < 0 || index >= len(p.inventory) {
		return
	}
	p.inventory[index].Count--
	if p.inventory[index].Count <= 0 {
		p.inventory = slices.Delete(p.inventory, index, index+1)
	}
}

// UsableItems returns the indexes of slots holding combat consumables.
func (p *Player) UsableItems() []int {
	var out []int
	for i, s := range p.inventory {
		if s.Item.Usable() {
			out = append(out, i)
		}
	}
	return out
}

// EquippableItems returns the indexes of slots holding gear.
func (p *Player) EquippableItems() []int {
	var out []int
	for i, s := range p.inventory {
		if s.Item.Type.Equippable() {
			out = append(out, i)
		}
	}
	return out
}

// =============================================================================
// Equipment
// =============================================================================

// Equip moves the item in an inventory slot into its equipment slot. Any
// item already there goes back to the inventory.
func (p *Player) Equip(index int) error {
	item, ok := p.ItemAt(index)
	if !ok {
		return fmt.Errorf("equip %d: %w", index, ErrInvalidSlot)
	}
	if !item.Type.Equippable() {
		return fmt.Errorf("equip %s: %w", item.Name, ErrNotEquippable)
	}

	p.ConsumeItem(index)
	if old := p.Equipment[item.Type]; old != nil {
		p.inventory = append(p.inventory, Slot{Item: old, Count: 1})
	}
	p.Equipment[item.Type] = item
	p.recalculate()
	return nil
}

// Unequip returns the item in an equipment slot to the inventory.
func (p *Player) Unequip(slot gamedata.ItemType) error {
	item := p.Equipment[slot]
	if item == nil {
		return fmt.Errorf("unequip %s: %w", slot, ErrNothingEquipped)
	}
	if len(p.inventory) >= p.settings.MaxInventorySlots {
		return fmt.Errorf("unequip %s: %w", slot, ErrInventoryFull)
	}
	delete(p.Equipment, slot)
	p.inventory = append(p.inventory, Slot{Item: item, Count: 1})
	p.recalculate()
	return nil
}

// SetCompanion makes c the active companion. Nil dismisses the current one.
func (p *Player) SetCompanion(c *Companion) {
	p.Companion = c
	p.recalculate()
}

// =============================================================================
// Abilities
// =============================================================================

// LearnAbility adds an ability ID. It reports false if already known.
func (p *Player) LearnAbility(id string) bool {
	if slices.Contains(p.abilities, id) {
		return false
	}
	p.abilities = append(p.abilities, id)
	return true
}

// learn adds an ability and equips it while the bar has room.
func (p *Player) learn(id string) bool {
	if !p.LearnAbility(id) {
		return false
	}
	if len(p.equipped) < p.settings.MaxAbilitySlots {
		p.equipped = append(p.equipped, id)
	}
	return true
}

// learnForLevel learns every class ability open at the current level.
func (p *Player) learnForLevel() {
	if p.catalog == nil {
		return
	}
	for _, ab := range p.catalog.ForClass(p.Class.ID, p.Level) {
		if p.learn(ab.ID) {
			p.newlyLearned = append(p.newlyLearned, ab.ID)
		}
	}
}

// NewAbilities returns the abilities learned by level-ups since the last
// call and forgets them.
func (p *Player) NewAbilities() []string {
	out := p.newlyLearned
	p.newlyLearned = nil
	return out
}

// Abilities returns the learned ability IDs.
func (p *Player) Abilities() []string { return slices.Clone(p.abilities) }

// EquippedAbilities returns the ability IDs in slot order.
func (p *Player) EquippedAbilities() []string { return slices.Clone(p.equipped) }

// EquipAbility places a learned ability in a slot, growing the bar as
// needed up to the configured maximum.
func (p *Player) EquipAbility(id string, slot int) error {
	if !slices.Contains(p.abilities, id) {
		return fmt.Errorf("equip ability %s: %w", id, ErrUnknownAbility)
	}
	if slot < 0 || slot >= p.settings.MaxAbilitySlots {
		return fmt.Errorf("equip ability %s in slot %d: %w", id, slot, ErrInvalidSlot)
	}
	if i := slices.Index(p.equipped, id); i >= 0 {
		p.equipped = slices.Delete(p.equipped, i, i+1)
	}
	slot = min(slot, len(p.equipped))
	p.equipped = slices.Insert(p.equipped, slot, id)
	if len(p.equipped) > p.settings.MaxAbilitySlots {
		p.equipped = p.equipped[:p.settings.MaxAbilitySlots]
	}
	return nil
}

var (
	_ combat.PlayerCombatant = (*Player)(nil)
	_ combat.RewardSink      = (*Player)(nil)
)
