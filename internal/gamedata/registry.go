package gamedata

import (
	"errors"
	"fmt"
	"math/rand"
)

// EnemyRegistry holds loaded enemy definitions and provides spawning utilities.
type EnemyRegistry struct {
	enemies     []EnemyDef
	totalWeight int
}

// NewEnemyRegistry creates a registry from loaded enemy definitions.
// Bosses never contribute to the random spawn weight.
func NewEnemyRegistry(enemies []EnemyDef) *EnemyRegistry {
	totalWeight := 0
	for _, e := range enemies {
		if !e.IsBoss {
			totalWeight += e.SpawnWeight
		}
	}
	return &EnemyRegistry{
		enemies:     enemies,
		totalWeight: totalWeight,
	}
}

// LoadEnemyRegistry loads and creates a registry from the embedded enemies.json.
func LoadEnemyRegistry() (*EnemyRegistry, error) {
	enemies, err := LoadEnemies()
	if err != nil {
		return nil, err
	}
	if len(enemies) == 0 {
		return nil, errors.New("no enemies loaded from enemies.json")
	}
	return NewEnemyRegistry(enemies), nil
}

// SpawnRandom selects a random non-boss enemy definition using weighted
// probability. Enemies with higher spawnWeight are more likely to be selected.
func (r *EnemyRegistry) SpawnRandom(rng *rand.Rand) *EnemyDef {
	if r.totalWeight <= 0 || len(r.enemies) == 0 {
		return nil
	}

	roll := rng.Intn(r.totalWeight)

	cumulative := 0
	for i := range r.enemies {
		if r.enemies[i].IsBoss {
			continue
		}
		cumulative += r.enemies[i].SpawnWeight
		if roll < cumulative {
			return &r.enemies[i]
		}
	}
	return nil
}

// GetByID returns the enemy definition with the given ID, or nil if not found.
func (r *EnemyRegistry) GetByID(id string) *EnemyDef {
	for i := range r.enemies {
		if r.enemies[i].ID == id {
			return &r.enemies[i]
		}
	}
	return nil
}

// All returns all enemy definitions.
func (r *EnemyRegistry) All() []EnemyDef {
	return r.enemies
}

// Count returns the number of enemy types in the registry.
func (r *EnemyRegistry) Count() int {
	return len(r.enemies)
}

// =============================================================================
// AbilityRegistry
// =============================================================================

// AbilityRegistry holds loaded ability definitions and provides lookup utilities.
type AbilityRegistry struct {
	abilities map[string]*AbilityDef
	all       []AbilityDef
}

// NewAbilityRegistry creates a registry from loaded ability definitions.
func NewAbilityRegistry(abilities []AbilityDef) *AbilityRegistry {
	registry := &AbilityRegistry{
		abilities: make(map[string]*AbilityDef, len(abilities)),
		all:       abilities,
	}
	for i := range abilities {
		registry.abilities[abilities[i].ID] = &abilities[i]
	}
	return registry
}

// LoadAbilityRegistry loads and creates a registry from the embedded abilities.json.
func LoadAbilityRegistry() (*AbilityRegistry, error) {
	abilities, err := LoadAbilities()
	if err != nil {
		return nil, err
	}
	if len(abilities) == 0 {
		return nil, errors.New("no abilities loaded from abilities.json")
	}
	return NewAbilityRegistry(abilities), nil
}

// GetByID returns the ability definition with the given ID, or nil if not found.
func (r *AbilityRegistry) GetByID(id string) *AbilityDef {
	return r.abilities[id]
}

// ForClass returns the abilities a class can learn up to the given level.
func (r *AbilityRegistry) ForClass(class string, level int) []*AbilityDef {
	var result []*AbilityDef
	for i := range r.all {
		if r.all[i].Class == class && r.all[i].Level <= level {
			result = append(result, &r.all[i])
		}
	}
	return result
}

// Count returns the number of abilities in the registry.
func (r *AbilityRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// ItemRegistry
// =============================================================================

// ItemRegistry holds loaded item definitions keyed by ID.
type ItemRegistry struct {
	items map[string]*ItemDef
	all   []ItemDef
}

// NewItemRegistry creates a registry from loaded item definitions.
func NewItemRegistry(items []ItemDef) *ItemRegistry {
	registry := &ItemRegistry{
		items: make(map[string]*ItemDef, len(items)),
		all:   items,
	}
	for i := range items {
		registry.items[items[i].ID] = &items[i]
	}
	return registry
}

// LoadItemRegistry loads and creates a registry from the embedded items.json.
func LoadItemRegistry() (*ItemRegistry, error) {
	items, err := LoadItems()
	if err != nil {
		return nil, err
	}
	return NewItemRegistry(items), nil
}

// GetByID returns the item definition with the given ID, or nil if not found.
func (r *ItemRegistry) GetByID(id string) *ItemDef {
	return r.items[id]
}

// Count returns the number of items in the registry.
func (r *ItemRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// ClassRegistry
// =============================================================================

// ClassRegistry holds the playable classes and the shared experience table.
type ClassRegistry struct {
	classes         map[string]*ClassDef
	experienceTable []int
}

// NewClassRegistry creates a registry from a loaded classes file.
func NewClassRegistry(file ClassesFile) *ClassRegistry {
	registry := &ClassRegistry{
		classes:         make(map[string]*ClassDef, len(file.Classes)),
		experienceTable: file.ExperienceTable,
	}
	for i := range file.Classes {
		registry.classes[file.Classes[i].ID] = &file.Classes[i]
	}
	return registry
}

// LoadClassRegistry loads and creates a registry from the embedded classes.json.
func LoadClassRegistry() (*ClassRegistry, error) {
	file, err := LoadClasses()
	if err != nil {
		return nil, err
	}
	return NewClassRegistry(file), nil
}

// GetByID returns the class definition with the given ID, or nil if not found.
func (r *ClassRegistry) GetByID(id string) *ClassDef {
	return r.classes[id]
}

// ExperienceTable returns the total experience required per level.
func (r *ClassRegistry) ExperienceTable() []int {
	return r.experienceTable
}

// =============================================================================
// DungeonRegistry
// =============================================================================

// DungeonRegistry holds the dungeons and the shared trap table.
type DungeonRegistry struct {
	dungeons []DungeonDef
	traps    []TrapDef
}

// NewDungeonRegistry creates a registry from a loaded dungeons file.
func NewDungeonRegistry(file DungeonsFile) *DungeonRegistry {
	return &DungeonRegistry{dungeons: file.Dungeons, traps: file.Traps}
}

// LoadDungeonRegistry loads and creates a registry from the embedded dungeons.json.
func LoadDungeonRegistry() (*DungeonRegistry, error) {
	file, err := LoadDungeons()
	if err != nil {
		return nil, err
	}
	if len(file.Dungeons) == 0 {
		return nil, errors.New("no dungeons loaded from dungeons.json")
	}
	return NewDungeonRegistry(file), nil
}

// GetByID returns the dungeon definition with the given ID, or nil if not found.
func (r *DungeonRegistry) GetByID(id string) *DungeonDef {
	for i := range r.dungeons {
		if r.dungeons[i].ID == id {
			return &r.dungeons[i]
		}
	}
	return nil
}

// ForLevel returns the dungeons open to a player of the given level: the
// level is at least MinLevel and at most MaxLevel+slack.
func (r *DungeonRegistry) ForLevel(level, slack int) []*DungeonDef {
	var result []*DungeonDef
	for i := range r.dungeons {
		d := &r.dungeons[i]
		if level >= d.MinLevel && level <= d.MaxLevel+slack {
			result = append(result, d)
		}
	}
	return result
}

// All returns all dungeon definitions.
func (r *DungeonRegistry) All() []DungeonDef {
	return r.dungeons
}

// Traps returns the shared trap table.
func (r *DungeonRegistry) Traps() []TrapDef {
	return r.traps
}

// =============================================================================
// Content
// =============================================================================

// Content bundles every registry. It is the read-only lookup surface handed
// to the combat engine and the entity factory.
type Content struct {
	Abilities *AbilityRegistry
	Enemies   *EnemyRegistry
	Items     *ItemRegistry
	Classes   *ClassRegistry
	Dungeons  *DungeonRegistry
}

// LoadContent loads all embedded tables and checks cross references.
func LoadContent() (*Content, error) {
	abilities, err := LoadAbilityRegistry()
	if err != nil {
		return nil, err
	}
	enemies, err := LoadEnemyRegistry()
	if err != nil {
		return nil, err
	}
	items, err := LoadItemRegistry()
	if err != nil {
		return nil, err
	}
	classes, err := LoadClassRegistry()
	if err != nil {
		return nil, err
	}
	dungeons, err := LoadDungeonRegistry()
	if err != nil {
		return nil, err
	}

	c := &Content{Abilities: abilities, Enemies: enemies, Items: items, Classes: classes, Dungeons: dungeons}
	if err := c.checkReferences(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustLoadContent loads all content, panicking on error.
func MustLoadContent() *Content {
	c, err := LoadContent()
	if err != nil {
		panic(err)
	}
	return c
}

// Ability looks up an ability by ID.
func (c *Content) Ability(id string) (*AbilityDef, bool) {
	a := c.Abilities.GetByID(id)
	return a, a != nil
}

// Item looks up an item by ID.
func (c *Content) Item(id string) (*ItemDef, bool) {
	it := c.Items.GetByID(id)
	return it, it != nil
}

func (c *Content) checkReferences() error {
	for _, e := range c.Enemies.All() {
		for _, l := range e.Loot {
			if c.Items.GetByID(l.ItemID) == nil {
				return fmt.Errorf("enemy %q: loot references unknown item %q", e.ID, l.ItemID)
			}
		}
	}
	for _, d := range c.Dungeons.All() {
		if err := c.checkDungeon(d); err != nil {
			return fmt.Errorf("dungeon %q: %w", d.ID, err)
		}
	}
	for _, cl := range c.Classes.classes {
		for _, id := range cl.Abilities {
			if c.Abilities.GetByID(id) == nil {
				return fmt.Errorf("class %q: unknown ability %q", cl.ID, id)
			}
		}
	}
	return nil
}

func (c *Content) checkDungeon(d DungeonDef) error {
	for _, id := range d.Enemies {
		e := c.Enemies.GetByID(id)
		if e == nil {
			return fmt.Errorf("unknown enemy %q", id)
		}
		if e.IsBoss {
			return fmt.Errorf("boss %q listed as a regular enemy", id)
		}
	}
	if boss := c.Enemies.GetByID(d.Boss); boss == nil || !boss.IsBoss {
		return fmt.Errorf("boss %q is not a boss enemy", d.Boss)
	}
	for _, group := range [][]string{d.Loot.Common, d.Loot.Uncommon, d.Loot.Rare} {
		for _, id := range group {
			if c.Items.GetByID(id) == nil {
				return fmt.Errorf("loot references unknown item %q", id)
			}
		}
	}
	for _, ev := range d.Events {
		for _, r := range ev.Rewards {
			if r.Type == RewardItem && c.Items.GetByID(r.ItemID) == nil {
				return fmt.Errorf("event %q references unknown item %q", ev.Name, r.ItemID)
			}
		}
	}
	return nil
}
