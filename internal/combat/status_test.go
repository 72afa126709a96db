package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/combat/combattest"
	"github.com/samdwyer/echoes/internal/gamedata"
)

func poison(duration int) combat.StatusEffect {
	return combat.StatusEffect{Name: "Poison", Kind: gamedata.EffectPoison, Value: 2, Duration: duration}
}

func TestAddStatusEffect_MergesOnName(t *testing.T) {
	p := combattest.NewPlayer("Hero", 50, combat.Stats{})

	p.AddStatusEffect(poison(3))
	p.AddStatusEffect(poison(5))

	effects := p.StatusEffects()
	require.Len(t, effects, 1)
	assert.Equal(t, "Poison", effects[0].Name)
	assert.Equal(t, 5, effects[0].Duration)
}

func TestAddStatusEffect_MergeKeepsValueAndPosition(t *testing.T) {
	p := combattest.NewPlayer("Hero", 50, combat.Stats{})
	p.AddStatusEffect(poison(5))
	p.AddStatusEffect(combat.StatusEffect{Name: "Slow", Kind: gamedata.EffectSpeedReduction, Value: 2, Duration: 2})

	stronger := poison(2)
	stronger.Value = 9
	p.AddStatusEffect(stronger)

	effects := p.StatusEffects()
	require.Len(t, effects, 2)
	assert.Equal(t, "Poison", effects[0].Name)
	assert.Equal(t, 2.0, effects[0].Value)
	assert.Equal(t, 5, effects[0].Duration)
}

func TestUpdateStatusEffects_DecayIsMonotonic(t *testing.T) {
	for d := 1; d <= 6; d++ {
		p := combattest.NewPlayer("Hero", 1000, combat.Stats{})
		p.AddStatusEffect(combat.StatusEffect{Name: "Guard", Kind: gamedata.EffectDefenseBoost, Value: 1, Duration: d})

		for n := 1; n <= d+2; n++ {
			tick := p.UpdateStatusEffects()
			if n < d {
				assert.True(t, p.HasStatusEffect("Guard"), "d=%d removed early at n=%d", d, n)
				assert.Empty(t, tick.Expired)
			} else {
				assert.False(t, p.HasStatusEffect("Guard"), "d=%d still present at n=%d", d, n)
			}
			if n == d {
				require.Len(t, tick.Expired, 1)
			}
		}
	}
}

func TestUpdateStatusEffects_EnemyPoisonRunsOut(t *testing.T) {
	p := combattest.NewPlayer("Hero", 50, combat.Stats{})
	spider := combattest.NewEnemy("Spider", 10, combat.Stats{Strength: 5})
	spider.Moves = []gamedata.AttackDef{{
		Name:   "Venom Bite",
		Damage: 2,
		Type:   gamedata.TypePhysical,
		Effect: &gamedata.EffectTemplate{Name: "Poison", Kind: gamedata.EffectPoison, Value: 2, Duration: 3},
	}}

	res := newResolver(combattest.Fixed(0.5)).EnemyAttack(spider, p, nil)
	require.NotNil(t, res.Hit.Effect)
	hp := p.GetHP()

	total := 0
	for range 3 {
		total += p.UpdateStatusEffects().Damage()
	}

	assert.Empty(t, p.StatusEffects())
	assert.Equal(t, 6, total)
	assert.Equal(t, hp-6, p.GetHP())
}

func TestUpdateStatusEffects_RegenHeals(t *testing.T) {
	p := combattest.NewPlayer("Hero", 50, combat.Stats{})
	p.TakeDamage(10)
	p.AddStatusEffect(combat.StatusEffect{Name: "Troll Blood", Kind: gamedata.EffectRegen, Value: 4, Duration: 2})

	tick := p.UpdateStatusEffects()
	require.Len(t, tick.Ticks, 1)
	assert.Equal(t, 4, tick.Ticks[0].Healed)

	tick = p.UpdateStatusEffects()
	assert.Equal(t, 4, tick.Ticks[0].Healed)
	assert.Equal(t, 48, p.GetHP())
	assert.Empty(t, p.StatusEffects())
}

func TestUpdateStatusEffects_DamageCanKill(t *testing.T) {
	e := combattest.NewEnemy("Rat", 2, combat.Stats{})
	e.AddStatusEffect(combat.StatusEffect{Name: "Burn", Kind: gamedata.EffectFire, Value: 5, Duration: 3})

	tick := e.UpdateStatusEffects()

	assert.Equal(t, 2, tick.Damage())
	assert.False(t, e.IsAlive())
}

func TestEffectiveStats_Clamps(t *testing.T) {
	p := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 5, Defense: 3, Magic: 2, Speed: 4})
	for i := range 6 {
		name := string(rune('A' + i))
		p.AddStatusEffect(combat.StatusEffect{Name: "Weak" + name, Kind: gamedata.EffectStrengthReduction, Value: 3, Duration: 5})
		p.AddStatusEffect(combat.StatusEffect{Name: "Sunder" + name, Kind: gamedata.EffectDefenseReduction, Value: 3, Duration: 5})
		p.AddStatusEffect(combat.StatusEffect{Name: "Slow" + name, Kind: gamedata.EffectSpeedReduction, Value: 3, Duration: 5})
		p.AddStatusEffect(combat.StatusEffect{Name: "Hex" + name, Kind: gamedata.EffectMagicReduction, Value: 3, Duration: 5})

		s := p.EffectiveStats()
		assert.GreaterOrEqual(t, s.Strength, 1.0)
		assert.GreaterOrEqual(t, s.Defense, 0.0)
		assert.GreaterOrEqual(t, s.Speed, 1.0)
		assert.GreaterOrEqual(t, s.Magic, 0.0)
	}

	s := p.EffectiveStats()
	assert.Equal(t, 1.0, s.Strength)
	assert.Equal(t, 0.0, s.Defense)
}

func TestEffectiveStats_AppliesInStoredOrder(t *testing.T) {
	reduceFirst := combattest.NewPlayer("A", 50, combat.Stats{Strength: 2})
	reduceFirst.AddStatusEffect(combat.StatusEffect{Name: "Weak", Kind: gamedata.EffectStrengthReduction, Value: 5, Duration: 3})
	reduceFirst.AddStatusEffect(combat.StatusEffect{Name: "Rage", Kind: gamedata.EffectStrengthBoost, Value: 5, Duration: 3})

	boostFirst := combattest.NewPlayer("B", 50, combat.Stats{Strength: 2})
	boostFirst.AddStatusEffect(combat.StatusEffect{Name: "Rage", Kind: gamedata.EffectStrengthBoost, Value: 5, Duration: 3})
	boostFirst.AddStatusEffect(combat.StatusEffect{Name: "Weak", Kind: gamedata.EffectStrengthReduction, Value: 5, Duration: 3})

	assert.Equal(t, 6.0, reduceFirst.EffectiveStats().Strength)
	assert.Equal(t, 2.0, boostFirst.EffectiveStats().Strength)
}

func TestVitals_SkipDodgeReflect(t *testing.T) {
	v := combat.NewVitals(30)
	assert.False(t, v.SkipsTurn())

	v.AddStatusEffect(combat.StatusEffect{Name: "Stun", Kind: gamedata.EffectStun, Duration: 1})
	v.AddStatusEffect(combat.StatusEffect{Name: "Shadow Step", Kind: gamedata.EffectDodgeBoost, Value: 0.2, Duration: 2})
	v.AddStatusEffect(combat.StatusEffect{Name: "Iron Skin", Kind: gamedata.EffectReflect, Value: 3.6, Duration: 2})

	assert.True(t, v.SkipsTurn())
	assert.InDelta(t, 0.2, v.DodgeBonus(), 1e-9)
	assert.Equal(t, 4, v.ReflectDamage())

	v.UpdateStatusEffects()
	assert.False(t, v.SkipsTurn())
}

func TestVitals_HPBounds(t *testing.T) {
	v := combat.NewVitals(20)

	assert.Equal(t, 20, v.TakeDamage(50))
	assert.Equal(t, 0, v.GetHP())
	assert.False(t, v.IsAlive())
	assert.Equal(t, 0, v.TakeDamage(-3))

	v.Revive(0)
	assert.Equal(t, 1, v.GetHP())
	v.Revive(99)
	assert.Equal(t, 20, v.GetHP())

	v.SetMaxHP(10)
	assert.Equal(t, 10, v.GetHP())
}

func TestVitals_Cooldowns(t *testing.T) {
	v := combat.NewVitals(10)
	v.SetCooldown("fireball", 2)
	v.SetCooldown("slash", 1)

	v.UpdateCooldowns()
	assert.Equal(t, 1, v.Cooldown("fireball"))
	assert.Equal(t, 0, v.Cooldown("slash"))

	v.UpdateCooldowns()
	assert.Equal(t, 0, v.Cooldown("fireball"))

	v.SetCooldown("fireball", 3)
	v.ResetCooldowns()
	assert.Equal(t, 0, v.Cooldown("fireball"))
}
