// Package config holds the single set of tuning constants used by combat,
// rewards and the terminal game.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ECHOES_"

// Config is the root configuration.
type Config struct {
	Combat   Combat   `yaml:"combat" envPrefix:"COMBAT_"`
	Rewards  Rewards  `yaml:"rewards" envPrefix:"REWARDS_"`
	Settings Settings `yaml:"settings" envPrefix:"SETTINGS_"`
	Pacing   Pacing   `yaml:"pacing" envPrefix:"PACING_"`
	Explore  Explore  `yaml:"explore" envPrefix:"EXPLORE_"`
	Log      Log      `yaml:"log" envPrefix:"LOG_"`
}

// Combat holds the damage, crit, dodge and escape formula constants.
type Combat struct {
	DefenseMultiplier     float64 `yaml:"defense_multiplier" env:"DEFENSE_MULTIPLIER"`
	DamageVariance        float64 `yaml:"damage_variance" env:"DAMAGE_VARIANCE"`
	AbilityStatMultiplier float64 `yaml:"ability_stat_multiplier" env:"ABILITY_STAT_MULTIPLIER"`

	BaseCriticalChance     float64 `yaml:"base_critical_chance" env:"BASE_CRITICAL_CHANCE"`
	LuckCriticalMultiplier float64 `yaml:"luck_critical_multiplier" env:"LUCK_CRITICAL_MULTIPLIER"`
	CriticalChanceCap      float64 `yaml:"critical_chance_cap" env:"CRITICAL_CHANCE_CAP"`
	CriticalHitMultiplier  float64 `yaml:"critical_hit_multiplier" env:"CRITICAL_HIT_MULTIPLIER"`

	BaseDodgeChance      float64 `yaml:"base_dodge_chance" env:"BASE_DODGE_CHANCE"`
	SpeedDodgeMultiplier float64 `yaml:"speed_dodge_multiplier" env:"SPEED_DODGE_MULTIPLIER"`
	DodgeChanceCap       float64 `yaml:"dodge_chance_cap" env:"DODGE_CHANCE_CAP"`
	BoostedDodgeCap      float64 `yaml:"boosted_dodge_cap" env:"BOOSTED_DODGE_CAP"`

	BaseEscapeChance      float64 `yaml:"base_escape_chance" env:"BASE_ESCAPE_CHANCE"`
	SpeedEscapeMultiplier float64 `yaml:"speed_escape_multiplier" env:"SPEED_ESCAPE_MULTIPLIER"`
	LevelEscapeMultiplier float64 `yaml:"level_escape_multiplier" env:"LEVEL_ESCAPE_MULTIPLIER"`
	EscapeAttemptBonus    float64 `yaml:"escape_attempt_bonus" env:"ESCAPE_ATTEMPT_BONUS"`
	MinEscapeChance       float64 `yaml:"min_escape_chance" env:"MIN_ESCAPE_CHANCE"`
	MaxEscapeChance       float64 `yaml:"max_escape_chance" env:"MAX_ESCAPE_CHANCE"`

	MaxEnemies        int     `yaml:"max_enemies" env:"MAX_ENEMIES"`
	MinionKey         string  `yaml:"minion_key" env:"MINION_KEY"`
	MinionLevelOffset int     `yaml:"minion_level_offset" env:"MINION_LEVEL_OFFSET"`
	StealGoldPerLevel int     `yaml:"steal_gold_per_level" env:"STEAL_GOLD_PER_LEVEL"`
	SecondEnemyChance float64 `yaml:"second_enemy_chance" env:"SECOND_ENEMY_CHANCE"`
	ThirdEnemyChance  float64 `yaml:"third_enemy_chance" env:"THIRD_ENEMY_CHANCE"`
}

// Rewards holds the victory and defeat policies.
type Rewards struct {
	ExperiencePerLevel int     `yaml:"experience_per_level" env:"EXPERIENCE_PER_LEVEL"`
	GoldPerLevel       int     `yaml:"gold_per_level" env:"GOLD_PER_LEVEL"`
	GoldVariance       float64 `yaml:"gold_variance" env:"GOLD_VARIANCE"`
	RevivalFraction    float64 `yaml:"revival_fraction" env:"REVIVAL_FRACTION"`
	DefeatGoldPenalty  float64 `yaml:"defeat_gold_penalty" env:"DEFEAT_GOLD_PENALTY"`
}

// Settings holds player progression limits and runtime switches.
type Settings struct {
	StartingGold      int    `yaml:"starting_gold" env:"STARTING_GOLD"`
	StartingLevel     int    `yaml:"starting_level" env:"STARTING_LEVEL"`
	MaxLevel          int    `yaml:"max_level" env:"MAX_LEVEL"`
	MaxInventorySlots int    `yaml:"max_inventory_slots" env:"MAX_INVENTORY_SLOTS"`
	MaxAbilitySlots   int    `yaml:"max_ability_slots" env:"MAX_ABILITY_SLOTS"`
	DebugMode         bool   `yaml:"debug_mode" env:"DEBUG"`
	Seed              int64  `yaml:"seed" env:"SEED"`
	PlayerName        string `yaml:"player_name" env:"PLAYER_NAME"`
	PlayerClass       string `yaml:"player_class" env:"PLAYER_CLASS"`
}

// Pacing holds the presentation delay that follows each phase. A zero
// duration means no pause.
type Pacing struct {
	RoundStart   time.Duration `yaml:"round_start" env:"ROUND_START"`
	PlayerAction time.Duration `yaml:"player_action" env:"PLAYER_ACTION"`
	EnemyAction  time.Duration `yaml:"enemy_action" env:"ENEMY_ACTION"`
	RoundEnd     time.Duration `yaml:"round_end" env:"ROUND_END"`
}

// Explore holds the dungeon floor layout and the room roll. A room that
// rolls none of the listed kinds is empty.
type Explore struct {
	FloorWidth     int     `yaml:"floor_width" env:"FLOOR_WIDTH"`
	FloorHeight    int     `yaml:"floor_height" env:"FLOOR_HEIGHT"`
	CombatChance   float64 `yaml:"combat_chance" env:"COMBAT_CHANCE"`
	TreasureChance float64 `yaml:"treasure_chance" env:"TREASURE_CHANCE"`
	TrapChance     float64 `yaml:"trap_chance" env:"TRAP_CHANCE"`
	EventChance    float64 `yaml:"event_chance" env:"EVENT_CHANCE"`
	AvoidDie       int     `yaml:"avoid_die" env:"AVOID_DIE"`
	LevelRange     int     `yaml:"level_range" env:"LEVEL_RANGE"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
	Path        string `yaml:"path" env:"PATH"`
}

// Default returns the canonical tuning.
func Default() Config {
	return Config{
		Combat: Combat{
			DefenseMultiplier:     0.7,
			DamageVariance:        0.2,
			AbilityStatMultiplier: 0.5,

			BaseCriticalChance:     0.05,
			LuckCriticalMultiplier: 0.01,
			CriticalChanceCap:      0.5,
			CriticalHitMultiplier:  1.5,

			BaseDodgeChance:      0.05,
			SpeedDodgeMultiplier: 0.01,
			DodgeChanceCap:       0.5,
			BoostedDodgeCap:      0.75,

			BaseEscapeChance:      0.3,
			SpeedEscapeMultiplier: 0.02,
			LevelEscapeMultiplier: 0.02,
			EscapeAttemptBonus:    0.1,
			MinEscapeChance:       0.05,
			MaxEscapeChance:       0.95,

			MaxEnemies:        3,
			MinionKey:         "goblin",
			MinionLevelOffset: 2,
			StealGoldPerLevel: 5,
			SecondEnemyChance: 0.3,
			ThirdEnemyChance:  0.2,
		},
		Rewards: Rewards{
			ExperiencePerLevel: 10,
			GoldPerLevel:       5,
			GoldVariance:       0.2,
			RevivalFraction:    0.1,
			DefeatGoldPenalty:  0.1,
		},
		Settings: Settings{
			StartingGold:      50,
			StartingLevel:     1,
			MaxLevel:          30,
			MaxInventorySlots: 20,
			MaxAbilitySlots:   5,
			PlayerName:        "Hero",
			PlayerClass:       "warrior",
		},
		Pacing: Pacing{
			RoundStart:   300 * time.Millisecond,
			PlayerAction: 500 * time.Millisecond,
			EnemyAction:  700 * time.Millisecond,
			RoundEnd:     200 * time.Millisecond,
		},
		Explore: Explore{
			FloorWidth:     60,
			FloorHeight:    20,
			CombatChance:   0.4,
			TreasureChance: 0.2,
			TrapChance:     0.1,
			EventChance:    0.1,
			AvoidDie:       10,
			LevelRange:     5,
		},
		Log: Log{
			Level: "info",
			Path:  "echoes.log",
		},
	}
}

// Load builds a Config from the defaults, an optional YAML file and the
// ECHOES_* environment, in that order. An empty path skips the file; a
// path that does not exist is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the combat formulas cannot work with.
func (c Config) Validate() error {
	cb := c.Combat
	switch {
	case cb.DamageVariance < 0 || cb.DamageVariance >= 1:
		return fmt.Errorf("combat.damage_variance must be in [0,1), got %v", cb.DamageVariance)
	case cb.CriticalHitMultiplier < 1:
		return fmt.Errorf("combat.critical_hit_multiplier must be >= 1, got %v", cb.CriticalHitMultiplier)
	case cb.MinEscapeChance < 0 || cb.MaxEscapeChance > 1 || cb.MinEscapeChance > cb.MaxEscapeChance:
		return fmt.Errorf("combat escape bounds invalid: [%v, %v]", cb.MinEscapeChance, cb.MaxEscapeChance)
	case cb.DodgeChanceCap > cb.BoostedDodgeCap:
		return fmt.Errorf("combat.dodge_chance_cap %v exceeds boosted cap %v", cb.DodgeChanceCap, cb.BoostedDodgeCap)
	case cb.MaxEnemies < 1:
		return fmt.Errorf("combat.max_enemies must be positive, got %d", cb.MaxEnemies)
	}

	r := c.Rewards
	if r.RevivalFraction <= 0 || r.RevivalFraction > 1 {
		return fmt.Errorf("rewards.revival_fraction must be in (0,1], got %v", r.RevivalFraction)
	}
	if r.DefeatGoldPenalty < 0 || r.DefeatGoldPenalty > 1 {
		return fmt.Errorf("rewards.defeat_gold_penalty must be in [0,1], got %v", r.DefeatGoldPenalty)
	}

	x := c.Explore
	if x.FloorWidth < 22 || x.FloorHeight < 12 {
		return fmt.Errorf("explore floor %dx%d is smaller than 22x12", x.FloorWidth, x.FloorHeight)
	}
	for _, p := range []float64{x.CombatChance, x.TreasureChance, x.TrapChance, x.EventChance} {
		if p < 0 {
			return fmt.Errorf("explore: negative room chance %v", p)
		}
	}
	if sum := x.CombatChance + x.TreasureChance + x.TrapChance + x.EventChance; sum > 1 {
		return fmt.Errorf("explore: room chances add up to %v, more than 1", sum)
	}
	if x.AvoidDie < 1 {
		return fmt.Errorf("explore.avoid_die must be positive, got %d", x.AvoidDie)
	}

	s := c.Settings
	if s.StartingLevel < 1 || s.StartingLevel > s.MaxLevel {
		return fmt.Errorf("settings.starting_level %d outside [1,%d]", s.StartingLevel, s.MaxLevel)
	}
	if s.MaxInventorySlots < 1 || s.MaxAbilitySlots < 1 {
		return errors.New("settings: inventory and ability slots must be positive")
	}
	return nil
}
