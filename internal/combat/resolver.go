package combat

import (
	"math"

	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/gamedata"
)

// defaultAttack is used by enemies with no attack available.
var defaultAttack = gamedata.AttackDef{Name: "Attack", Type: gamedata.TypePhysical}

// Hit is the outcome of one attack against one defender.
type Hit struct {
	Target    Combatant
	Dodged    bool
	Critical  bool
	Damage    int           // Damage actually taken
	Effect    *StatusEffect // Effect applied to the target, if any
	Reflected int           // Damage returned to the attacker
}

// AbilityResult is the outcome of a player ability.
type AbilityResult struct {
	Ability    *gamedata.AbilityDef
	Healed     int
	SelfEffect *StatusEffect
	Hits       []Hit
}

// AttackResult is the outcome of one enemy action.
type AttackResult struct {
	Attack     gamedata.AttackDef
	Hit        Hit // Hit.Target is nil for self-only attacks
	Healed     int // Self heal or life leech
	SelfEffect *StatusEffect
	Summoned   EnemyCombatant
	Stolen     int
}

// ItemResult is the outcome of using a consumable.
type ItemResult struct {
	Item     *gamedata.ItemDef
	Healed   int
	Restored int
	Applied  *StatusEffect
	Cured    []StatusEffect
}

// LootDrop is an item won from a defeated enemy, waiting for the victory
// flush.
type LootDrop struct {
	ItemID string
	Count  int
	Source string
}

// Resolver computes action outcomes. Every probability check draws from its
// Random, in a fixed order per action:
//
//	basic attack:          dodge, variance
//	damaging ability:      per target dodge, crit, variance
//	utility ability:       per target dodge
//	enemy attack:          choice (only with 2+ available), dodge, variance
//	flee:                  one draw
//	loot:                  one per entry, plus a count draw when min < max
//	gold:                  one draw
type Resolver struct {
	combat  config.Combat
	rewards config.Rewards
	rng     Random
}

// NewResolver creates a resolver over the given tuning and random source.
func NewResolver(cfg config.Config, rng Random) *Resolver {
	return &Resolver{
		combat:  cfg.Combat,
		rewards: cfg.Rewards,
		rng:     rng,
	}
}

// =============================================================================
// Formulas
// =============================================================================

// Mitigate applies defense to an attack value with a fixed variance factor.
// The result is never below 1.
func (r *Resolver) Mitigate(attack, defense, factor float64) int {
	base := math.Max(1, attack-defense*r.combat.DefenseMultiplier)
	return max(1, int(math.Round(base*factor)))
}

// CalculateDamage draws a variance factor and mitigates attack by defense.
func (r *Resolver) CalculateDamage(attack, defense float64) int {
	v := r.combat.DamageVariance
	factor := 1 - v + r.rng.Float64()*2*v
	return r.Mitigate(attack, defense, factor)
}

// CriticalChance is the crit probability for the given luck plus any
// ability or passive bonus.
func (r *Resolver) CriticalChance(luck, bonus float64) float64 {
	base := math.Min(r.combat.CriticalChanceCap, r.combat.BaseCriticalChance+luck*r.combat.LuckCriticalMultiplier)
	return base + bonus
}

// DodgeChance is the defender's dodge probability for the given speed plus
// any effect or passive bonus.
func (r *Resolver) DodgeChance(speed, bonus float64) float64 {
	base := math.Min(r.combat.DodgeChanceCap, r.combat.BaseDodgeChance+speed*r.combat.SpeedDodgeMultiplier)
	return math.Min(r.combat.BoostedDodgeCap, base+bonus)
}

// EscapeChance is the flee probability after the given number of earlier
// attempts in the same session.
func (r *Resolver) EscapeChance(speed float64, enemyLevel, attempts int) float64 {
	c := r.combat.BaseEscapeChance +
		speed*r.combat.SpeedEscapeMultiplier -
		float64(enemyLevel)*r.combat.LevelEscapeMultiplier +
		float64(attempts)*r.combat.EscapeAttemptBonus
	return math.Min(r.combat.MaxEscapeChance, math.Max(r.combat.MinEscapeChance, c))
}

// Experience is the XP for defeating an enemy, scaled by the level gap.
func (r *Resolver) Experience(enemyLevel, playerLevel int) int {
	diff := float64(enemyLevel - playerLevel)
	bonus := 1.0
	switch {
	case diff > 0:
		bonus = 1 + diff*0.1
	case diff < -5:
		bonus = math.Max(0.1, 0.5+(diff+5)*0.1)
	case diff < 0:
		bonus = math.Max(0.5, 1+diff*0.05)
	}
	xp := float64(enemyLevel*r.rewards.ExperiencePerLevel) * bonus
	return max(1, int(math.Round(xp)))
}

// Gold draws the gold reward for defeating an enemy of the given level.
func (r *Resolver) Gold(enemyLevel int) int {
	v := r.rewards.GoldVariance
	factor := 1 - v + r.rng.Float64()*2*v
	return int(math.Round(float64(enemyLevel*r.rewards.GoldPerLevel) * factor))
}

// RollLoot rolls every entry of a loot table once.
func (r *Resolver) RollLoot(source string, entries []gamedata.LootEntry) []LootDrop {
	var drops []LootDrop
	for _, l := range entries {
		if !chance(r.rng, l.Chance) {
			continue
		}
		count := max(1, l.MinCount)
		if l.MaxCount > count {
			span := l.MaxCount - count + 1
			count += min(span-1, int(r.rng.Float64()*float64(span)))
		}
		drops = append(drops, LootDrop{ItemID: l.ItemID, Count: count, Source: source})
	}
	return drops
}

// =============================================================================
// Actions
// =============================================================================

// BasicAttack resolves a strength-against-defense attack.
func (r *Resolver) BasicAttack(attacker, defender Combatant) Hit {
	hit := Hit{Target: defender}
	if r.dodges(defender) {
		hit.Dodged = true
		return hit
	}

	as, ds := attacker.EffectiveStats(), defender.EffectiveStats()
	hit.Damage = defender.TakeDamage(r.CalculateDamage(as.Strength, ds.Defense))
	hit.Reflected = reflectHit(attacker, defender)
	return hit
}

// CheckAbility reports why actor cannot cast ab right now, or nil.
func (r *Resolver) CheckAbility(actor PlayerCombatant, ab *gamedata.AbilityDef) error {
	if actor.Cooldown(ab.ID) > 0 {
		return ErrAbilityOnCooldown.with(ab.Name + " is on cooldown")
	}
	if actor.GetMana() < ab.ManaCost {
		return ErrInsufficientMana.with("not enough mana for " + ab.Name)
	}
	return nil
}

// ResolveAbility casts ab against targets. The caller must have passed
// CheckAbility first; mana and cooldown are committed here.
func (r *Resolver) ResolveAbility(actor PlayerCombatant, ab *gamedata.AbilityDef, targets []Combatant) AbilityResult {
	actor.SpendMana(ab.ManaCost)
	actor.SetCooldown(ab.ID, ab.Cooldown)

	res := AbilityResult{Ability: ab}
	if ab.Heals() || ab.SelfTargeted() {
		if ab.Heals() {
			res.Healed = actor.Heal(-ab.Damage)
		}
		res.SelfEffect = applyTemplate(actor, ab.Effect)
		return res
	}

	as := actor.EffectiveStats()
	critBonus := ab.CritBoost + actor.GetPassives().Crit
	for _, t := range targets {
		hit := Hit{Target: t}
		if r.dodges(t) {
			hit.Dodged = true
			res.Hits = append(res.Hits, hit)
			continue
		}

		if ab.Damage > 0 {
			attack, defense := r.power(ab.Type, ab.Damage, as, t.EffectiveStats())
			if chance(r.rng, r.CriticalChance(as.Luck, critBonus)) {
				hit.Critical = true
				attack *= r.combat.CriticalHitMultiplier
			}
			hit.Damage = t.TakeDamage(r.CalculateDamage(attack, defense))
			if !ab.Type.Magical() {
				hit.Reflected = reflectHit(actor, t)
			}
		}
		if t.IsAlive() {
			hit.Effect = applyTemplate(t, ab.Effect)
		}
		res.Hits = append(res.Hits, hit)
	}
	return res
}

// ChooseAttack picks one of the enemy's attacks that is off cooldown and
// starts its cooldown. With nothing available it returns the default
// strength attack.
func (r *Resolver) ChooseAttack(enemy EnemyCombatant) gamedata.AttackDef {
	var available []gamedata.AttackDef
	for _, a := range enemy.Attacks() {
		if enemy.Cooldown(a.Name) == 0 {
			available = append(available, a)
		}
	}

	var atk gamedata.AttackDef
	switch len(available) {
	case 0:
		return defaultAttack
	case 1:
		atk = available[0]
	default:
		i := int(r.rng.Float64() * float64(len(available)))
		atk = available[min(i, len(available)-1)]
	}
	enemy.SetCooldown(atk.Name, atk.Cooldown)
	return atk
}

// EnemyAttack resolves one enemy action against the player. Specials only
// fire when the attack lands.
func (r *Resolver) EnemyAttack(enemy EnemyCombatant, player Combatant, field Battlefield) AttackResult {
	atk := r.ChooseAttack(enemy)
	res := AttackResult{Attack: atk}

	if atk.Damage < 0 || atk.Type == gamedata.TypeBuff || atk.Type == gamedata.TypeHeal {
		if atk.Damage < 0 {
			res.Healed = enemy.Heal(-atk.Damage)
		}
		res.SelfEffect = applyTemplate(enemy, atk.Effect)
		return res
	}

	res.Hit.Target = player
	if r.dodges(player) {
		res.Hit.Dodged = true
		return res
	}

	es, ps := enemy.EffectiveStats(), player.EffectiveStats()
	switch {
	case atk.Type.Physical() || atk.Type.Magical():
		attack, defense := r.power(atk.Type, atk.Damage, es, ps)
		res.Hit.Damage = player.TakeDamage(r.CalculateDamage(attack, defense))
	case atk.Damage > 0:
		res.Hit.Damage = player.TakeDamage(atk.Damage)
	}
	if atk.Type.Physical() {
		res.Hit.Reflected = reflectHit(enemy, player)
	}
	if player.IsAlive() {
		res.Hit.Effect = applyTemplate(player, atk.Effect)
	}

	switch atk.Special {
	case gamedata.SpecialLeechLife:
		res.Healed = enemy.Heal(res.Hit.Damage / 2)
	case gamedata.SpecialSummonMinion:
		if field != nil {
			res.Summoned = field.Summon(enemy)
		}
	case gamedata.SpecialStealGold:
		if field != nil {
			res.Stolen = field.StealGold(enemy)
		}
	}
	return res
}

// Flee rolls an escape attempt. attempts is the number of earlier attempts
// in this session.
func (r *Resolver) Flee(player Combatant, enemyLevel, attempts int) (float64, bool) {
	p := r.EscapeChance(player.EffectiveStats().Speed, enemyLevel, attempts)
	return p, chance(r.rng, p)
}

// UseItem consumes the item in the given slot. Nothing changes when the
// item cannot be used.
func (r *Resolver) UseItem(player PlayerCombatant, index int) (ItemResult, error) {
	item, ok := player.ItemAt(index)
	if !ok {
		return ItemResult{}, ErrInvalidItem
	}
	if !item.Usable() {
		return ItemResult{}, ErrItemNotUsable.with(item.Name + " cannot be used in combat")
	}

	res := ItemResult{Item: item}
	switch item.Effect {
	case gamedata.ItemEffectRestoreHP:
		res.Healed = player.Heal(item.Value)
	case gamedata.ItemEffectRestoreMana:
		res.Restored = player.RestoreMana(item.Value)
	case gamedata.ItemEffectBuff:
		res.Applied = applyTemplate(player, item.Buff)
	case gamedata.ItemEffectCureStatus:
		res.Cured = player.ClearStatusEffects()
	}
	player.ConsumeItem(index)
	return res, nil
}

// =============================================================================
// Helpers
// =============================================================================

// power returns the attack and defense values for a damage type. Physical
// and unknown types use strength against defense; the magic family uses
// magic on both sides.
func (r *Resolver) power(t gamedata.AbilityType, base int, attacker, defender Stats) (attack, defense float64) {
	stat, guard := attacker.Strength, defender.Defense
	if t.Magical() {
		stat, guard = attacker.Magic, defender.Magic
	}
	if base <= 0 {
		return stat, guard
	}
	return float64(base) + stat*r.combat.AbilityStatMultiplier, guard
}

func (r *Resolver) dodges(defender Combatant) bool {
	bonus := defender.DodgeBonus()
	if p, ok := defender.(PlayerCombatant); ok {
		bonus += p.GetPassives().Dodge
	}
	return chance(r.rng, r.DodgeChance(defender.EffectiveStats().Speed, bonus))
}

func reflectHit(attacker, defender Combatant) int {
	if n := defender.ReflectDamage(); n > 0 {
		return attacker.TakeDamage(n)
	}
	return 0
}

func applyTemplate(c Combatant, t *gamedata.EffectTemplate) *StatusEffect {
	if t == nil {
		return nil
	}
	e := NewStatusEffect(*t)
	c.AddStatusEffect(e)
	return &e
}
