package combat

import (
	"math"

	"github.com/samdwyer/echoes/internal/gamedata"
)

// StatusEffect is a named, timed modifier on one combatant. It is a value:
// applying a content template copies it, so nothing a combatant does to
// its effects can reach the shared definition.
type StatusEffect struct {
	Name     string
	Kind     gamedata.EffectKind
	Value    float64
	Duration int
}

// NewStatusEffect copies a content template into a fresh effect.
func NewStatusEffect(t gamedata.EffectTemplate) StatusEffect {
	return StatusEffect{
		Name:     t.Name,
		Kind:     t.Kind,
		Value:    t.Value,
		Duration: t.Duration,
	}
}

// Info returns the dispatch entry for the effect's kind.
func (e StatusEffect) Info() gamedata.EffectInfo {
	info, _ := e.Kind.Info()
	return info
}

// EffectTick records what one effect did during a status update.
type EffectTick struct {
	Effect StatusEffect
	Damage int
	Healed int
}

// StatusTick is the report of one UpdateStatusEffects call.
type StatusTick struct {
	Ticks   []EffectTick   // damage and healing over time, in stored order
	Expired []StatusEffect // effects removed by this update
}

// Damage is the total damage-over-time dealt by the update.
func (t StatusTick) Damage() int {
	total := 0
	for _, tk := range t.Ticks {
		total += tk.Damage
	}
	return total
}

// Vitals is the state shared by every combatant: hit points, the ordered
// status ledger and ability cooldowns. Player and Enemy embed it.
type Vitals struct {
	HP    int
	MaxHP int

	effects   []StatusEffect
	cooldowns map[string]int
}

// NewVitals returns full-health vitals.
func NewVitals(maxHP int) Vitals {
	return Vitals{HP: maxHP, MaxHP: maxHP}
}

// GetHP returns the current hit points.
func (v *Vitals) GetHP() int { return v.HP }

// GetMaxHP returns the hit point ceiling.
func (v *Vitals) GetMaxHP() int { return v.MaxHP }

// IsAlive reports whether HP is above zero.
func (v *Vitals) IsAlive() bool { return v.HP > 0 }

// TakeDamage reduces HP, never below zero, and returns the damage taken.
func (v *Vitals) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > v.HP {
		amount = v.HP
	}
	v.HP -= amount
	return amount
}

// Heal restores HP up to MaxHP and returns the amount restored.
func (v *Vitals) Heal(amount int) int {
	if amount <= 0 || v.HP >= v.MaxHP {
		return 0
	}
	if v.HP+amount > v.MaxHP {
		amount = v.MaxHP - v.HP
	}
	v.HP += amount
	return amount
}

// SetMaxHP changes MaxHP and clamps current HP to it.
func (v *Vitals) SetMaxHP(maxHP int) {
	v.MaxHP = maxHP
	if v.HP > maxHP {
		v.HP = maxHP
	}
}

// Revive sets HP directly. Used by the defeat recovery policy.
func (v *Vitals) Revive(hp int) {
	v.HP = min(max(hp, 1), v.MaxHP)
}

// StatusEffects returns a copy of the active effects in stored order.
func (v *Vitals) StatusEffects() []StatusEffect {
	out := make([]StatusEffect, len(v.effects))
	copy(out, v.effects)
	return out
}

// AddStatusEffect adds e, or merges it into an existing effect with the same
// name. A merge keeps the longer duration and leaves the value and the
// position of the existing entry unchanged.
func (v *Vitals) AddStatusEffect(e StatusEffect) {
	for i := range v.effects {
		if v.effects[i].Name == e.Name {
			v.effects[i].Duration = max(v.effects[i].Duration, e.Duration)
			return
		}
	}
	v.effects = append(v.effects, e)
}

// HasStatusEffect reports whether an effect with the given name is active.
func (v *Vitals) HasStatusEffect(name string) bool {
	for _, e := range v.effects {
		if e.Name == name {
			return true
		}
	}
	return false
}

// SkipsTurn reports whether any active effect costs the bearer its action.
func (v *Vitals) SkipsTurn() bool {
	for _, e := range v.effects {
		if e.Info().SkipsTurn {
			return true
		}
	}
	return false
}

// DodgeBonus is the dodge chance granted by active effects.
func (v *Vitals) DodgeBonus() float64 {
	total := 0.0
	for _, e := range v.effects {
		if e.Info().Dodge {
			total += e.Value
		}
	}
	return total
}

// ReflectDamage is the damage returned to anyone landing a melee hit.
func (v *Vitals) ReflectDamage() int {
	total := 0.0
	for _, e := range v.effects {
		if e.Info().Reflect {
			total += e.Value
		}
	}
	return int(math.Round(total))
}

// UpdateStatusEffects runs one round of the ledger. Damage and healing over
// time apply first, then every duration drops by one and effects that reach
// zero are removed.
func (v *Vitals) UpdateStatusEffects() StatusTick {
	var tick StatusTick
	kept := v.effects[:0]
	for _, e := range v.effects {
		info := e.Info()
		amount := int(math.Round(e.Value))
		switch {
		case info.DamagePerRound:
			tick.Ticks = append(tick.Ticks, EffectTick{Effect: e, Damage: v.TakeDamage(amount)})
		case info.HealPerRound:
			tick.Ticks = append(tick.Ticks, EffectTick{Effect: e, Healed: v.Heal(amount)})
		}

		e.Duration--
		if e.Duration <= 0 {
			tick.Expired = append(tick.Expired, e)
			continue
		}
		kept = append(kept, e)
	}
	v.effects = kept
	return tick
}

// ClearStatusEffects removes every effect and returns what was removed.
func (v *Vitals) ClearStatusEffects() []StatusEffect {
	removed := v.effects
	v.effects = nil
	return removed
}

// Cooldown returns the rounds left before the named action is available.
func (v *Vitals) Cooldown(name string) int {
	return v.cooldowns[name]
}

// SetCooldown starts a cooldown. Zero or negative rounds clear it.
func (v *Vitals) SetCooldown(name string, rounds int) {
	if rounds <= 0 {
		delete(v.cooldowns, name)
		return
	}
	if v.cooldowns == nil {
		v.cooldowns = make(map[string]int)
	}
	v.cooldowns[name] = rounds
}

// UpdateCooldowns decrements every positive cooldown by one.
func (v *Vitals) UpdateCooldowns() {
	for name, left := range v.cooldowns {
		if left <= 1 {
			delete(v.cooldowns, name)
			continue
		}
		v.cooldowns[name] = left - 1
	}
}

// ResetCooldowns makes every action available again.
func (v *Vitals) ResetCooldowns() {
	v.cooldowns = nil
}
