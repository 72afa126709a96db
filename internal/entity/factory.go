package entity

import (
	"fmt"
	"math/rand"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/gamedata"
)

// Factory builds enemies from the content registry.
type Factory struct {
	registry *gamedata.EnemyRegistry
	cfg      config.Combat
	rng      *rand.Rand
}

// NewFactory creates a factory. rng drives encounter rolls only.
func NewFactory(registry *gamedata.EnemyRegistry, cfg config.Combat, rng *rand.Rand) *Factory {
	return &Factory{registry: registry, cfg: cfg, rng: rng}
}

// SpawnEnemy creates the enemy with the given content key. A positive level
// overrides the definition's level.
func (f *Factory) SpawnEnemy(key string, level int) (combat.EnemyCombatant, bool) {
	def := f.registry.GetByID(key)
	if def == nil {
		return nil, false
	}
	e := NewEnemy(def)
	if level > 0 {
		e.Level = level
	}
	return e, true
}

// Encounter rolls a random group of one to MaxEnemies non-boss enemies. A
// second enemy joins with SecondEnemyChance and a third, given a second,
// with ThirdEnemyChance. Duplicate names are numbered.
func (f *Factory) Encounter() []*Enemy {
	return f.group(func() *gamedata.EnemyDef { return f.registry.SpawnRandom(f.rng) })
}

// EncounterFrom rolls a group the same way from a dungeon's enemy list,
// picking each member uniformly. Unknown keys and bosses are skipped.
func (f *Factory) EncounterFrom(keys []string) []*Enemy {
	return f.group(func() *gamedata.EnemyDef {
		if len(keys) == 0 {
			return nil
		}
		def := f.registry.GetByID(keys[f.rng.Intn(len(keys))])
		if def == nil || def.IsBoss {
			return nil
		}
		return def
	})
}

func (f *Factory) group(next func() *gamedata.EnemyDef) []*Enemy {
	count := 1
	if f.rng.Float64() < f.cfg.SecondEnemyChance {
		count++
		if f.rng.Float64() < f.cfg.ThirdEnemyChance {
			count++
		}
	}
	count = min(count, f.cfg.MaxEnemies)

	var enemies []*Enemy
	seen := make(map[string]int)
	for range count {
		def := next()
		if def == nil {
			continue
		}
		e := NewEnemy(def)
		seen[def.ID]++
		if n := seen[def.ID]; n > 1 {
			e.Name = fmt.Sprintf("%s %d", def.Name, n)
		}
		enemies = append(enemies, e)
	}
	return enemies
}

// Boss creates the boss with the given key.
func (f *Factory) Boss(key string) (*Enemy, bool) {
	def := f.registry.GetByID(key)
	if def == nil || !def.IsBoss {
		return nil, false
	}
	return NewEnemy(def), true
}

var _ combat.EnemySpawner = (*Factory)(nil)
