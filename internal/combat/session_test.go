package combat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/combat/combattest"
	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/gamedata"
)

var (
	ratPelt = &gamedata.ItemDef{ID: "rat_pelt", Name: "Rat Pelt", Type: gamedata.ItemMaterial, Stackable: true}
	potion  = &gamedata.ItemDef{ID: "health_potion_small", Name: "Small Health Potion", Type: gamedata.ItemConsumable, Effect: gamedata.ItemEffectRestoreHP, Value: 25}

	fireball = &gamedata.AbilityDef{ID: "fireball", Name: "Fireball", Damage: 20, ManaCost: 15, Cooldown: 2, Type: gamedata.TypeFire}
	chain    = &gamedata.AbilityDef{ID: "chain_lightning", Name: "Chain Lightning", Damage: 10, ManaCost: 10, Cooldown: 3, Type: gamedata.TypeMagic, AOE: true}
)

type fixture struct {
	engine  *combat.Engine
	session *combat.Session
	player  *combattest.Player
	rec     *combattest.Recorder
	spawner *combattest.Spawner
}

func testContent() combattest.Content {
	return combattest.Content{
		Abilities: map[string]*gamedata.AbilityDef{fireball.ID: fireball, chain.ID: chain},
		Items:     map[string]*gamedata.ItemDef{ratPelt.ID: ratPelt, potion.ID: potion},
	}
}

func start(t *testing.T, cfg config.Config, rng combat.Random, player *combattest.Player, enemies ...*combattest.Enemy) fixture {
	t.Helper()
	f := fixture{
		player:  player,
		rec:     &combattest.Recorder{},
		spawner: &combattest.Spawner{HP: 10, Stats: combat.Stats{Strength: 3}},
	}
	f.engine = combat.NewEngine(cfg, testContent(), combat.WithRandom(rng), combat.WithSpawner(f.spawner))

	roster := make([]combat.EnemyCombatant, len(enemies))
	for i, e := range enemies {
		roster[i] = e
	}
	s, err := f.engine.Start(context.Background(), player, player, roster, f.rec)
	require.NoError(t, err)
	f.session = s
	return f
}

func toInput(t *testing.T, s *combat.Session) {
	t.Helper()
	require.NoError(t, s.RunUntilInput(context.Background()))
}

func TestSession_StartsAtRoundZero(t *testing.T) {
	rat := combattest.NewEnemy("Rat", 10, combat.Stats{})
	wolf := combattest.NewEnemy("Wolf", 10, combat.Stats{})
	f := start(t, config.Default(), combattest.Fixed(0.5), combattest.NewPlayer("Hero", 50, combat.Stats{}), rat, wolf)

	s := f.session
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 0, s.Round())
	assert.Equal(t, 0, s.EscapeAttempts())
	assert.Empty(t, s.Loot())
	assert.Equal(t, combat.EnemyCombatant(rat), s.Current())
	assert.Equal(t, combat.PhaseRoundStart, s.Phase())

	toInput(t, s)
	assert.Equal(t, 1, s.Round())
	assert.Equal(t, combat.PhasePlayerActing, s.Phase())
	assert.True(t, s.AwaitingInput())
	assert.Equal(t, combat.EventRoundStarted, f.rec.Events[0].Kind)
}

func TestSession_TerminatesInVictory(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 10})
	rat := combattest.NewEnemy("Rat", 1, combat.Stats{})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, rat)

	result, err := combat.Run(context.Background(), f.session, combattest.Repeat(combat.Attack()), combat.NoPacing{})

	require.NoError(t, err)
	assert.Equal(t, combat.ResultVictory, result)
	assert.Equal(t, 1, f.session.Round())
	assert.True(t, f.session.Ended())
	assert.Equal(t, []combat.EnemyCombatant{rat}, f.session.Defeated())

	assert.Equal(t, 10, player.Experience)
	assert.Equal(t, 5, player.Money)
	assert.True(t, f.rec.Has(combat.EventRewards))
	assert.Equal(t, combat.EventSessionEnded, f.rec.Events[len(f.rec.Events)-1].Kind)

	_, active := f.engine.Active(player.PlayerID())
	assert.False(t, active)
}

func TestSession_FleeSucceedsWithoutRewards(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Speed: 5})
	player.Money = 40
	orc := combattest.NewEnemy("Orc", 30, combat.Stats{})
	orc.Level = 3
	orc.LootTab = []gamedata.LootEntry{{ItemID: "rat_pelt", Chance: 1, MinCount: 1, MaxCount: 1}}
	f := start(t, config.Default(), combattest.Fixed(0.2), player, orc)
	toInput(t, f.session)

	assert.InDelta(t, 0.34, f.session.Resolver().EscapeChance(5, 3, 0), 1e-9)
	require.NoError(t, f.session.Submit(context.Background(), combat.Flee()))

	assert.Equal(t, combat.ResultEscaped, f.session.Result())
	assert.Equal(t, combat.PhaseSessionEnd, f.session.Phase())
	assert.Equal(t, 1, f.session.EscapeAttempts())
	assert.Zero(t, player.Experience)
	assert.Equal(t, 40, player.Money)
	assert.Empty(t, player.Received)
	assert.False(t, f.rec.Has(combat.EventRewards))
	assert.True(t, f.rec.Has(combat.EventEscaped))
}

func TestSession_FleeFailureConsumesTurn(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})
	f := start(t, config.Default(), combattest.Fixed(0.9), player, combattest.NewEnemy("Orc", 30, combat.Stats{}))
	toInput(t, f.session)

	require.NoError(t, f.session.Submit(context.Background(), combat.Flee()))

	assert.Equal(t, combat.PhasePlayerResolved, f.session.Phase())
	assert.Equal(t, 1, f.session.EscapeAttempts())
	assert.True(t, f.rec.Has(combat.EventEscapeFailed))
}

func TestSession_RejectionsChangeNothing(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})
	player.Mana = 10
	player.Equipped = []string{"fireball", "chain_lightning"}
	player.Items = []*gamedata.ItemDef{ratPelt}
	rat := combattest.NewEnemy("Rat", 20, combat.Stats{})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, rat)
	toInput(t, f.session)
	ctx := context.Background()

	tests := []struct {
		name   string
		action combat.Action
		want   error
	}{
		{"mana", combat.UseAbility("fireball"), combat.ErrInsufficientMana},
		{"not equipped", combat.UseAbility("heavy_strike"), combat.ErrAbilityNotEquipped},
		{"bad slot", combat.UseItem(4), combat.ErrInvalidItem},
		{"material", combat.UseItem(0), combat.ErrItemNotUsable},
		{"unknown", combat.Action{Kind: combat.ActionKind(42)}, combat.ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.session.Submit(ctx, tt.action)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, combat.IsRejection(err))
			assert.Equal(t, combat.PhasePlayerActing, f.session.Phase())
		})
	}

	player.SetCooldown("chain_lightning", 2)
	player.Mana = 50
	require.ErrorIs(t, f.session.Submit(ctx, combat.UseAbility("chain_lightning")), combat.ErrAbilityOnCooldown)

	assert.Equal(t, 50, player.GetMana())
	assert.Equal(t, 20, rat.GetHP())
	assert.Len(t, player.Items, 1)
	assert.Len(t, f.rec.Find(combat.EventActionRejected), len(tests)+1)
}

func TestSession_DoubleSubmitRejected(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 5})
	rat := combattest.NewEnemy("Rat", 50, combat.Stats{})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, rat)
	toInput(t, f.session)
	ctx := context.Background()

	require.NoError(t, f.session.Submit(ctx, combat.Attack()))
	hp := rat.GetHP()

	err := f.session.Submit(ctx, combat.Attack())
	assert.ErrorIs(t, err, combat.ErrNotPlayerTurn)
	assert.Equal(t, hp, rat.GetHP())
}

func TestSession_StunnedPlayerForfeitsTurn(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})
	player.AddStatusEffect(combat.StatusEffect{Name: "Stun", Kind: gamedata.EffectStun, Duration: 2})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, combattest.NewEnemy("Troll", 50, combat.Stats{}))
	ctx := context.Background()

	require.NoError(t, f.session.Step(ctx))
	require.Equal(t, combat.PhasePlayerActing, f.session.Phase())
	assert.False(t, f.session.AwaitingInput())
	assert.ErrorIs(t, f.session.Submit(ctx, combat.Attack()), combat.ErrNotPlayerTurn)

	require.NoError(t, f.session.Step(ctx))
	assert.Equal(t, combat.PhasePlayerResolved, f.session.Phase())
	skips := f.rec.Find(combat.EventTurnSkipped)
	require.Len(t, skips, 1)
	assert.Equal(t, "Hero", skips[0].Actor)

	// Stun wears off at the next round start.
	toInput(t, f.session)
	assert.Equal(t, 2, f.session.Round())
	assert.True(t, f.session.AwaitingInput())
}

func TestSession_StunnedEnemySkips(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 1})
	troll := combattest.NewEnemy("Troll", 50, combat.Stats{Strength: 20})
	troll.AddStatusEffect(combat.StatusEffect{Name: "Stun", Kind: gamedata.EffectStun, Duration: 2})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, troll)
	toInput(t, f.session)

	require.NoError(t, f.session.Submit(context.Background(), combat.Attack()))
	toInput(t, f.session)

	assert.Equal(t, 50, player.GetHP())
	skips := f.rec.Find(combat.EventTurnSkipped)
	require.Len(t, skips, 1)
	assert.Equal(t, "Troll", skips[0].Actor)
}

func TestSession_EnemyPhaseStepsOnePerEnemy(t *testing.T) {
	player := combattest.NewPlayer("Hero", 100, combat.Stats{Strength: 1})
	enemies := []*combattest.Enemy{
		combattest.NewEnemy("A", 50, combat.Stats{Strength: 2}),
		combattest.NewEnemy("B", 50, combat.Stats{Strength: 2}),
	}
	f := start(t, config.Default(), combattest.Fixed(0.5), player, enemies...)
	ctx := context.Background()
	toInput(t, f.session)
	require.NoError(t, f.session.Submit(ctx, combat.Attack()))

	require.NoError(t, f.session.Step(ctx)) // player_resolved
	require.NoError(t, f.session.Step(ctx)) // defeat check
	require.Equal(t, combat.PhaseEnemyActing, f.session.Phase())

	require.NoError(t, f.session.Step(ctx))
	assert.Equal(t, 98, player.GetHP())
	require.NoError(t, f.session.Step(ctx))
	assert.Equal(t, 96, player.GetHP())
	assert.Equal(t, combat.PhaseEnemyActing, f.session.Phase())

	require.NoError(t, f.session.Step(ctx))
	assert.Equal(t, combat.PhaseDefeatCheckEnemyTurn, f.session.Phase())
}

func TestSession_ReflectKillsEnemyMidPhase(t *testing.T) {
	player := combattest.NewPlayer("Hero", 100, combat.Stats{})
	player.AddStatusEffect(combat.StatusEffect{Name: "Iron Skin", Kind: gamedata.EffectReflect, Value: 10, Duration: 5})
	orc := combattest.NewEnemy("Orc", 5, combat.Stats{Strength: 4})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, orc)
	toInput(t, f.session)

	require.NoError(t, f.session.Submit(context.Background(), combat.Attack()))
	require.NoError(t, f.session.RunUntilInput(context.Background()))

	assert.Equal(t, combat.ResultVictory, f.session.Result())
	assert.Equal(t, 96, player.GetHP())
	assert.Len(t, f.rec.Find(combat.EventEnemyDefeated), 1)
}

func TestSession_ReflectKillingPlayerOnLastKillIsDefeat(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 10})
	player.TakeDamage(45)
	player.Money = 100
	golem := combattest.NewEnemy("Golem", 1, combat.Stats{})
	golem.AddStatusEffect(combat.StatusEffect{Name: "Thorns", Kind: gamedata.EffectReflect, Value: 20, Duration: 5})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, golem)
	toInput(t, f.session)

	require.NoError(t, f.session.Submit(context.Background(), combat.Attack()))
	require.NoError(t, f.session.RunUntilInput(context.Background()))

	assert.Equal(t, combat.ResultDefeat, f.session.Result())
	assert.Empty(t, f.session.Enemies())
	assert.Zero(t, player.Experience)
	assert.Equal(t, 90, player.Money)
	assert.False(t, f.rec.Has(combat.EventRewards))
	assert.Len(t, f.rec.Find(combat.EventPlayerDefeated), 1)
}

func TestSession_DamageOverTimeEndsAtRoundStart(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})
	rat := combattest.NewEnemy("Rat", 2, combat.Stats{})
	rat.AddStatusEffect(combat.StatusEffect{Name: "Burn", Kind: gamedata.EffectFire, Value: 5, Duration: 3})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, rat)

	toInput(t, f.session)

	assert.Equal(t, combat.ResultVictory, f.session.Result())
	assert.Equal(t, 1, f.session.Round())
	assert.True(t, f.rec.Has(combat.EventStatusTick))
}

func TestSession_DefeatPolicy(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})
	player.TakeDamage(49)
	player.Money = 100
	player.AddStatusEffect(combat.StatusEffect{Name: "Guard", Kind: gamedata.EffectDefenseBoost, Value: 1, Duration: 5})
	ogre := combattest.NewEnemy("Ogre", 100, combat.Stats{Strength: 20})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, ogre)

	result, err := combat.Run(context.Background(), f.session, combattest.Repeat(combat.Attack()), nil)

	require.NoError(t, err)
	assert.Equal(t, combat.ResultDefeat, result)
	assert.Equal(t, 5, player.GetHP())
	assert.Equal(t, 90, player.Money)
	assert.Empty(t, player.StatusEffects())
	assert.Zero(t, player.Experience)

	defeat := f.rec.Find(combat.EventPlayerDefeated)
	require.Len(t, defeat, 1)
	assert.Equal(t, 10, defeat[0].Gold)
}

func TestSession_RemainingEnemiesSkipAfterPlayerFalls(t *testing.T) {
	player := combattest.NewPlayer("Hero", 10, combat.Stats{})
	first := combattest.NewEnemy("First", 50, combat.Stats{Strength: 30})
	second := combattest.NewEnemy("Second", 50, combat.Stats{Strength: 30})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, first, second)

	_, err := combat.Run(context.Background(), f.session, combattest.Repeat(combat.Attack()), nil)
	require.NoError(t, err)

	attacks := 0
	for _, e := range f.rec.Find(combat.EventAttack) {
		if e.Actor == "Second" {
			attacks++
		}
	}
	assert.Zero(t, attacks)
}

func TestSession_LootFlushedOnVictory(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 20})
	rat := combattest.NewEnemy("Rat", 1, combat.Stats{})
	rat.LootTab = []gamedata.LootEntry{
		{ItemID: "rat_pelt", Chance: 1, MinCount: 2, MaxCount: 2},
		{ItemID: "missing_item", Chance: 1, MinCount: 1, MaxCount: 1},
	}
	f := start(t, config.Default(), combattest.Fixed(0.5), player, rat)

	_, err := combat.Run(context.Background(), f.session, combattest.Repeat(combat.Attack()), nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"rat_pelt": 2}, player.Received)
	loot := f.rec.Find(combat.EventLoot)
	require.Len(t, loot, 1)
	assert.Equal(t, "Rat Pelt", loot[0].Item)
	assert.Empty(t, f.session.Loot())
}

func TestSession_LootRejectedWhenBagFull(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 20})
	player.BagFull = true
	rat := combattest.NewEnemy("Rat", 1, combat.Stats{})
	rat.LootTab = []gamedata.LootEntry{{ItemID: "rat_pelt", Chance: 1, MinCount: 1, MaxCount: 1}}
	f := start(t, config.Default(), combattest.Fixed(0.5), player, rat)

	_, err := combat.Run(context.Background(), f.session, combattest.Repeat(combat.Attack()), nil)
	require.NoError(t, err)

	assert.Len(t, f.rec.Find(combat.EventLootRejected), 1)
	assert.False(t, f.rec.Has(combat.EventLoot))
}

func TestSession_SummonRespectsRosterCap(t *testing.T) {
	king := func() *combattest.Enemy {
		e := combattest.NewEnemy("Goblin King", 200, combat.Stats{})
		e.Level = 5
		e.Boss = true
		e.Moves = []gamedata.AttackDef{{Name: "Call Guards", Damage: 1, Type: gamedata.TypePhysical, Special: gamedata.SpecialSummonMinion}}
		return e
	}

	player := combattest.NewPlayer("Hero", 100, combat.Stats{Strength: 1})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, king())
	toInput(t, f.session)
	require.NoError(t, f.session.Submit(context.Background(), combat.Attack()))
	toInput(t, f.session)

	require.Len(t, f.session.Enemies(), 2)
	require.Len(t, f.spawner.Spawned, 1)
	assert.Equal(t, "goblin", f.spawner.Spawned[0].GetKey())
	assert.Equal(t, "goblin", f.spawner.Spawned[0].GetName())
	assert.Equal(t, 3, f.spawner.Spawned[0].GetLevel())
	assert.Len(t, f.rec.Find(combat.EventMinionSummoned), 1)

	full := combattest.NewPlayer("Other", 100, combat.Stats{Strength: 1})
	g := start(t, config.Default(), combattest.Fixed(0.5), full, king(), combattest.NewEnemy("A", 50, combat.Stats{}), combattest.NewEnemy("B", 50, combat.Stats{}))
	toInput(t, g.session)
	require.NoError(t, g.session.Submit(context.Background(), combat.Attack()))
	toInput(t, g.session)

	assert.Len(t, g.session.Enemies(), 3)
	assert.Empty(t, g.spawner.Spawned)
}

func TestSession_SummonNumbersDuplicateNames(t *testing.T) {
	king := combattest.NewEnemy("Goblin King", 200, combat.Stats{})
	king.Level = 5
	king.Moves = []gamedata.AttackDef{{Name: "Call Guards", Damage: 1, Type: gamedata.TypePhysical, Special: gamedata.SpecialSummonMinion}}
	guard := combattest.NewEnemy("goblin", 50, combat.Stats{})

	player := combattest.NewPlayer("Hero", 100, combat.Stats{Strength: 1})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, king, guard)
	toInput(t, f.session)
	require.NoError(t, f.session.Submit(context.Background(), combat.Attack()))
	toInput(t, f.session)

	require.Len(t, f.spawner.Spawned, 1)
	assert.Equal(t, "goblin 2", f.spawner.Spawned[0].GetName())

	summoned := f.rec.Find(combat.EventMinionSummoned)
	require.Len(t, summoned, 1)
	assert.Equal(t, "goblin 2", summoned[0].Target)

	names := make(map[string]bool)
	for _, e := range f.session.Enemies() {
		assert.False(t, names[e.GetName()], "duplicate name %q", e.GetName())
		names[e.GetName()] = true
	}
}

func TestSession_StealGoldCappedAtPurse(t *testing.T) {
	player := combattest.NewPlayer("Hero", 100, combat.Stats{Strength: 1})
	player.Money = 7
	thief := combattest.NewEnemy("Thief", 50, combat.Stats{})
	thief.Level = 2
	thief.Moves = []gamedata.AttackDef{{Name: "Pickpocket", Damage: 1, Type: gamedata.TypePhysical, Special: gamedata.SpecialStealGold}}
	f := start(t, config.Default(), combattest.Fixed(0.5), player, thief)
	toInput(t, f.session)
	require.NoError(t, f.session.Submit(context.Background(), combat.Attack()))
	toInput(t, f.session)

	assert.Zero(t, player.Money)
	stolen := f.rec.Find(combat.EventGoldStolen)
	require.Len(t, stolen, 1)
	assert.Equal(t, 7, stolen[0].Amount)
}

func TestSession_AOEHitsEveryLiveEnemy(t *testing.T) {
	player := combattest.NewPlayer("Hero", 100, combat.Stats{Magic: 10})
	player.Mana = 30
	player.Equipped = []string{"chain_lightning"}
	a := combattest.NewEnemy("A", 3, combat.Stats{})
	b := combattest.NewEnemy("B", 40, combat.Stats{Magic: 2})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, a, b)
	toInput(t, f.session)

	require.NoError(t, f.session.Submit(context.Background(), combat.UseAbility("chain_lightning")))

	assert.False(t, a.IsAlive())
	// 10 + 0.5*10 = 15 against 2 magic
	assert.Equal(t, 26, b.GetHP())
	assert.Equal(t, []combat.EnemyCombatant{b}, f.session.Enemies())
	assert.Equal(t, combat.EnemyCombatant(b), f.session.Current())
	assert.Equal(t, 20, player.GetMana())
	assert.Equal(t, 3, player.Cooldown("chain_lightning"))
}

func TestSession_UnknownAbilityFallsBackToAttack(t *testing.T) {
	player := combattest.NewPlayer("Hero", 100, combat.Stats{Strength: 6})
	player.Equipped = []string{"forgotten_art"}
	rat := combattest.NewEnemy("Rat", 30, combat.Stats{})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, rat)
	toInput(t, f.session)

	require.NoError(t, f.session.Submit(context.Background(), combat.UseAbility("forgotten_art")))

	assert.Equal(t, 24, rat.GetHP())
	assert.Equal(t, combat.PhasePlayerResolved, f.session.Phase())
}

func TestSession_UseItemConsumesTurn(t *testing.T) {
	player := combattest.NewPlayer("Hero", 100, combat.Stats{})
	player.TakeDamage(50)
	player.Items = []*gamedata.ItemDef{potion}
	f := start(t, config.Default(), combattest.Fixed(0.5), player, combattest.NewEnemy("Rat", 30, combat.Stats{}))
	toInput(t, f.session)

	require.NoError(t, f.session.Submit(context.Background(), combat.UseItem(0)))

	assert.Equal(t, 75, player.GetHP())
	assert.Empty(t, player.Items)
	assert.Equal(t, combat.PhasePlayerResolved, f.session.Phase())
	healed := f.rec.Find(combat.EventHealed)
	require.Len(t, healed, 1)
	assert.Equal(t, 25, healed[0].Amount)
}

func TestSession_SelectEnemy(t *testing.T) {
	rat := combattest.NewEnemy("Rat", 10, combat.Stats{})
	wolf := combattest.NewEnemy("Wolf", 10, combat.Stats{})
	f := start(t, config.Default(), combattest.Fixed(0.5), combattest.NewPlayer("Hero", 50, combat.Stats{}), rat, wolf)

	assert.ErrorIs(t, f.session.SelectEnemy(1), combat.ErrNotPlayerTurn)

	toInput(t, f.session)
	require.NoError(t, f.session.SelectEnemy(1))
	assert.Equal(t, combat.EnemyCombatant(wolf), f.session.Current())
	assert.Equal(t, 1, f.session.CurrentIndex())
	assert.Equal(t, combat.PhasePlayerActing, f.session.Phase(), "targeting does not use the turn")

	assert.ErrorIs(t, f.session.SelectEnemy(5), combat.ErrInvalidTarget)
	assert.ErrorIs(t, f.session.SelectEnemy(-1), combat.ErrInvalidTarget)
}

func TestSession_SelectEnemyPanicsInDebug(t *testing.T) {
	cfg := config.Default()
	cfg.Settings.DebugMode = true
	f := start(t, cfg, combattest.Fixed(0.5), combattest.NewPlayer("Hero", 50, combat.Stats{}), combattest.NewEnemy("Rat", 10, combat.Stats{}))
	toInput(t, f.session)

	assert.Panics(t, func() { _ = f.session.SelectEnemy(3) })
}

func TestSession_EndedRejectsEverything(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 20})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, combattest.NewEnemy("Rat", 1, combat.Stats{}))
	_, err := combat.Run(context.Background(), f.session, combattest.Repeat(combat.Attack()), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.session.Step(context.Background()), combat.ErrSessionEnded)
	assert.ErrorIs(t, f.session.Submit(context.Background(), combat.Attack()), combat.ErrSessionEnded)
}

func TestEngine_OneSessionPerPlayer(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 20})
	engine := combat.NewEngine(config.Default(), testContent(), combat.WithRandom(combattest.Fixed(0.5)))
	ctx := context.Background()
	rat := []combat.EnemyCombatant{combattest.NewEnemy("Rat", 1, combat.Stats{})}

	_, err := engine.Start(ctx, player, player, nil, nil)
	assert.ErrorIs(t, err, combat.ErrNoEnemies)

	s, err := engine.Start(ctx, player, player, rat, nil)
	require.NoError(t, err)
	active, ok := engine.Active("Hero")
	require.True(t, ok)
	assert.Same(t, s, active)

	_, err = engine.Start(ctx, player, player, []combat.EnemyCombatant{combattest.NewEnemy("Wolf", 5, combat.Stats{})}, nil)
	assert.ErrorIs(t, err, combat.ErrSessionActive)

	_, err = combat.Run(ctx, s, combattest.Repeat(combat.Attack()), nil)
	require.NoError(t, err)

	_, err = engine.Start(ctx, player, player, []combat.EnemyCombatant{combattest.NewEnemy("Wolf", 5, combat.Stats{})}, nil)
	assert.NoError(t, err)
}

func TestEngine_DebugModePanicsOnViolation(t *testing.T) {
	cfg := config.Default()
	cfg.Settings.DebugMode = true
	engine := combat.NewEngine(cfg, testContent(), combat.WithRandom(combattest.Fixed(0.5)))
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})

	assert.Panics(t, func() {
		_, _ = engine.Start(context.Background(), player, player, nil, nil)
	})
}

func TestEngine_StartResetsCooldowns(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})
	player.SetCooldown("fireball", 2)

	start(t, config.Default(), combattest.Fixed(0.5), player, combattest.NewEnemy("Rat", 10, combat.Stats{}))

	assert.Zero(t, player.Cooldown("fireball"))
}

func TestRun_CancelledContextLeavesSessionActive(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, combattest.NewEnemy("Rat", 10, combat.Stats{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := combat.Run(ctx, f.session, combattest.Repeat(combat.Attack()), nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, f.session.Ended())
	_, active := f.engine.Active("Hero")
	assert.True(t, active)
}

func TestEngine_AbandonReleasesPlayer(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{})
	player.Money = 30
	f := start(t, config.Default(), combattest.Fixed(0.5), player, combattest.NewEnemy("Rat", 10, combat.Stats{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := combat.Run(ctx, f.session, combattest.Repeat(combat.Attack()), nil)
	require.ErrorIs(t, err, context.Canceled)

	assert.True(t, f.engine.Abandon("Hero"))
	_, active := f.engine.Active("Hero")
	assert.False(t, active)
	assert.False(t, f.engine.Abandon("Hero"))

	assert.Equal(t, combat.ResultNone, f.session.Result())
	assert.Equal(t, 30, player.Money)
	assert.Zero(t, player.Experience)

	_, err = f.engine.Start(context.Background(), player, player, []combat.EnemyCombatant{combattest.NewEnemy("Wolf", 5, combat.Stats{})}, nil)
	assert.NoError(t, err)
}

func TestRun_RetriesAfterRejection(t *testing.T) {
	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 20})
	f := start(t, config.Default(), combattest.Fixed(0.5), player, combattest.NewEnemy("Rat", 1, combat.Stats{}))
	script := combattest.NewScript(combat.UseItem(3), combat.Attack())

	result, err := combat.Run(context.Background(), f.session, script, nil)

	require.NoError(t, err)
	assert.Equal(t, combat.ResultVictory, result)
	assert.Equal(t, 2, script.Asked())
	assert.Len(t, f.rec.Find(combat.EventActionRejected), 1)
}

func TestTimerPacer(t *testing.T) {
	p := combat.TimerPacer{Delays: config.Pacing{EnemyAction: time.Hour}}

	assert.NoError(t, p.Pause(context.Background(), combat.PhasePlayerResolved, combat.PhaseDefeatCheckPlayerTurn))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Pause(ctx, combat.PhaseEnemyActing, combat.PhaseEnemyActing), context.DeadlineExceeded)

	short := combat.TimerPacer{Delays: config.Pacing{RoundStart: time.Millisecond}}
	assert.NoError(t, short.Pause(context.Background(), combat.PhaseRoundStart, combat.PhasePlayerActing))
}
