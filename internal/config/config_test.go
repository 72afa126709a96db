package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Combat.DefenseMultiplier != 0.7 {
		t.Fatalf("expected default defense multiplier 0.7, got %v", cfg.Combat.DefenseMultiplier)
	}
	if cfg.Settings.MaxLevel != 30 {
		t.Fatalf("expected default max level 30, got %d", cfg.Settings.MaxLevel)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echoes.yaml")
	doc := `
combat:
  critical_hit_multiplier: 2
  max_enemies: 2
pacing:
  enemy_action: 1s
settings:
  debug_mode: true
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Combat.CriticalHitMultiplier != 2 {
		t.Fatalf("expected crit multiplier 2, got %v", cfg.Combat.CriticalHitMultiplier)
	}
	if cfg.Combat.MaxEnemies != 2 {
		t.Fatalf("expected max enemies 2, got %d", cfg.Combat.MaxEnemies)
	}
	if cfg.Pacing.EnemyAction != time.Second {
		t.Fatalf("expected enemy pacing 1s, got %v", cfg.Pacing.EnemyAction)
	}
	if !cfg.Settings.DebugMode {
		t.Fatal("expected debug mode on")
	}
	// Untouched keys keep their defaults.
	if cfg.Combat.DamageVariance != 0.2 {
		t.Fatalf("expected default variance 0.2, got %v", cfg.Combat.DamageVariance)
	}
}

func TestExampleFileMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "echoes.example.yaml"))
	if err != nil {
		t.Fatalf("Load example: %v", err)
	}
	def := Default()
	if cfg.Pacing != def.Pacing {
		t.Fatalf("example pacing %+v differs from defaults %+v", cfg.Pacing, def.Pacing)
	}
	if cfg.Combat != def.Combat || cfg.Rewards != def.Rewards || cfg.Explore != def.Explore {
		t.Fatal("example combat, rewards or explore tuning differs from defaults")
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echoes.yaml")
	if err := os.WriteFile(path, []byte("rewards:\n  gold_per_level: 7\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ECHOES_REWARDS_GOLD_PER_LEVEL", "9")
	t.Setenv("ECHOES_SETTINGS_SEED", "42")
	t.Setenv("ECHOES_LOG_LEVEL", "debug")
	t.Setenv("ECHOES_EXPLORE_TRAP_CHANCE", "0.25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rewards.GoldPerLevel != 9 {
		t.Fatalf("expected env gold per level 9, got %d", cfg.Rewards.GoldPerLevel)
	}
	if cfg.Settings.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", cfg.Settings.Seed)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.Log.Level)
	}
	if cfg.Explore.TrapChance != 0.25 {
		t.Fatalf("expected trap chance 0.25, got %v", cfg.Explore.TrapChance)
	}
}

func TestLoadEnvError(t *testing.T) {
	t.Setenv("ECHOES_COMBAT_MAX_ENEMIES", "not-an-int")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"variance too large", func(c *Config) { c.Combat.DamageVariance = 1 }},
		{"crit multiplier below one", func(c *Config) { c.Combat.CriticalHitMultiplier = 0.5 }},
		{"escape bounds inverted", func(c *Config) { c.Combat.MinEscapeChance = 0.9; c.Combat.MaxEscapeChance = 0.1 }},
		{"dodge cap above boosted cap", func(c *Config) { c.Combat.DodgeChanceCap = 0.9 }},
		{"no enemies allowed", func(c *Config) { c.Combat.MaxEnemies = 0 }},
		{"zero revival", func(c *Config) { c.Rewards.RevivalFraction = 0 }},
		{"starting level above max", func(c *Config) { c.Settings.StartingLevel = 31 }},
		{"no inventory", func(c *Config) { c.Settings.MaxInventorySlots = 0 }},
		{"floor too small", func(c *Config) { c.Explore.FloorWidth = 10 }},
		{"room chances above one", func(c *Config) { c.Explore.CombatChance = 0.9 }},
		{"negative trap chance", func(c *Config) { c.Explore.TrapChance = -0.1 }},
		{"no avoid die", func(c *Config) { c.Explore.AvoidDie = 0 }},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
