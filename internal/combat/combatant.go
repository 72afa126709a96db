// Package combat implements the turn-based combat engine: the combatant
// model, the status ledger, the action resolver and the round scheduler.
package combat

import (
	"context"

	"github.com/samdwyer/echoes/internal/gamedata"
)

// Combatant is anything that fights. Player and enemies both implement it,
// mostly through an embedded Vitals.
type Combatant interface {
	// Identity
	GetName() string
	GetLevel() int

	// Attributes after every active stat effect has been applied.
	EffectiveStats() Stats

	// Vitals
	GetHP() int
	GetMaxHP() int
	IsAlive() bool
	TakeDamage(amount int) int // Returns actual damage taken
	Heal(amount int) int       // Returns actual amount healed

	// Status ledger
	StatusEffects() []StatusEffect
	AddStatusEffect(effect StatusEffect)
	UpdateStatusEffects() StatusTick
	HasStatusEffect(name string) bool
	SkipsTurn() bool
	DodgeBonus() float64
	ReflectDamage() int

	// Cooldowns
	Cooldown(name string) int
	SetCooldown(name string, rounds int)
	UpdateCooldowns()
}

// Passives are permanent bonuses from talents and companions.
type Passives struct {
	Dodge float64
	Crit  float64
}

// PlayerCombatant is the persistent player character as seen by combat.
type PlayerCombatant interface {
	Combatant

	PlayerID() string

	GetMana() int
	GetMaxMana() int
	SpendMana(amount int) bool // Returns false if insufficient mana
	RestoreMana(amount int) int

	// EquippedAbilities lists the ability IDs in slot order.
	EquippedAbilities() []string
	GetPassives() Passives

	// ItemAt returns the item in an inventory slot.
	ItemAt(index int) (*gamedata.ItemDef, bool)
	// ConsumeItem removes one unit from an inventory slot.
	ConsumeItem(index int)

	ClearStatusEffects() []StatusEffect
	ResetCooldowns()
	Revive(hp int)
}

// EnemyCombatant is one enemy in an encounter.
type EnemyCombatant interface {
	Combatant

	GetKey() string
	IsBoss() bool
	Attacks() []gamedata.AttackDef
	Loot() []gamedata.LootEntry
}

// Renamable is an enemy whose display name can change after it is spawned.
type Renamable interface {
	SetName(name string)
}

// ContentProvider is the read-only content lookup combat needs.
type ContentProvider interface {
	Ability(id string) (*gamedata.AbilityDef, bool)
	Item(id string) (*gamedata.ItemDef, bool)
}

// EnemySpawner creates fresh enemies mid-fight, for summons.
type EnemySpawner interface {
	SpawnEnemy(key string, level int) (EnemyCombatant, bool)
}

// RewardSink receives the outcome of a session.
type RewardSink interface {
	AddExperience(amount int)
	AddGold(amount int)
	AddItem(item *gamedata.ItemDef, count int) bool
	Gold() int
	LoseGold(amount int) int // Returns the amount actually lost
}

// Presenter receives every combat event in order.
type Presenter interface {
	Notify(Event)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Event)

// Notify calls f(e).
func (f PresenterFunc) Notify(e Event) { f(e) }

// ActionSource supplies the player's choice when the scheduler needs one.
type ActionSource interface {
	NextAction(ctx context.Context, s *Session) (Action, error)
}

// Battlefield is the part of a session that attack specials can change.
type Battlefield interface {
	// Summon adds a minion for the given enemy. It reports nil when the
	// roster is full or the spawner has nothing to offer.
	Summon(summoner EnemyCombatant) EnemyCombatant
	// StealGold takes gold from the player on behalf of thief and returns
	// the amount taken.
	StealGold(thief EnemyCombatant) int
}
