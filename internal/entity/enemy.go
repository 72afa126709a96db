package entity

import (
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/gamedata"
)

// Enemy is one hostile creature in an encounter.
type Enemy struct {
	combat.Vitals

	Def   *gamedata.EnemyDef // Reference to the enemy definition
	Name  string             // Display name, numbered when an encounter has duplicates
	Level int

	attacks []gamedata.AttackDef
	loot    []gamedata.LootEntry
}

// NewEnemy creates a fresh enemy from a definition. The attack list and
// loot table are copied so nothing in combat can reach the definition.
func NewEnemy(def *gamedata.EnemyDef) *Enemy {
	return &Enemy{
		Vitals:  combat.NewVitals(def.HP),
		Def:     def,
		Name:    def.Name,
		Level:   max(1, def.Level),
		attacks: slices.Clone(def.Attacks),
		loot:    slices.Clone(def.Loot),
	}
}

func (e *Enemy) GetName() string  { return e.Name }
func (e *Enemy) SetName(n string) { e.Name = n }
func (e *Enemy) GetLevel() int    { return e.Level }
func (e *Enemy) GetKey() string   { return e.Def.ID }
func (e *Enemy) IsBoss() bool     { return e.Def.IsBoss }

// Attacks returns the enemy's attack list.
func (e *Enemy) Attacks() []gamedata.AttackDef { return e.attacks }

// Loot returns the enemy's loot table.
func (e *Enemy) Loot() []gamedata.LootEntry { return e.loot }

// BaseStats returns the definition's attributes.
func (e *Enemy) BaseStats() combat.Stats {
	return combat.Stats{
		Strength: float64(e.Def.Strength),
		Defense:  float64(e.Def.Defense),
		Magic:    float64(e.Def.Magic),
		Speed:    float64(e.Def.Speed),
	}
}

// EffectiveStats are the base stats with every active effect applied.
func (e *Enemy) EffectiveStats() combat.Stats {
	return combat.ApplyEffects(e.BaseStats(), e.StatusEffects())
}

// Symbol returns the display glyph.
func (e *Enemy) Symbol() rune { return e.Def.GlyphRune() }

// Color returns the tcell color for this enemy.
func (e *Enemy) Color() tcell.Color { return e.Def.TCellColor() }

var (
	_ combat.EnemyCombatant = (*Enemy)(nil)
	_ combat.Renamable      = (*Enemy)(nil)
)
