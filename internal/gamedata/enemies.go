package gamedata

import "fmt"

// Special names an attack behaviour that is resolved outside the damage
// formula.
type Special string

const (
	SpecialNone         Special = ""
	SpecialLeechLife    Special = "leechLife"
	SpecialSummonMinion Special = "summonMinion"
	SpecialStealGold    Special = "stealGold"
)

// AttackDef is one entry of an enemy's attack list.
type AttackDef struct {
	Name     string          `json:"name"`
	Damage   int             `json:"damage"`
	Type     AbilityType     `json:"type"`
	Cooldown int             `json:"cooldown,omitempty"`
	Effect   *EffectTemplate `json:"effect,omitempty"`
	Special  Special         `json:"special,omitempty"`
}

// LootEntry is one independent roll of an enemy's loot table.
type LootEntry struct {
	ItemID   string  `json:"item"`
	Chance   float64 `json:"chance"`
	MinCount int     `json:"minCount"`
	MaxCount int     `json:"maxCount"`
}

// EnemyDef defines an enemy type loaded from JSON.
type EnemyDef struct {
	ID          string      `json:"id"`          // Unique identifier (e.g., "goblin")
	Name        string      `json:"name"`        // Display name (e.g., "Goblin")
	Glyph       string      `json:"glyph"`       // Single character for rendering (e.g., "g")
	Color       string      `json:"color"`       // Hex color code (e.g., "#00FF00")
	Level       int         `json:"level"`       // Encounter level, drives XP, gold and escape odds
	HP          int         `json:"hp"`          // Base hit points
	Strength    int         `json:"strength"`    // Physical attack power
	Defense     int         `json:"defense"`     // Physical mitigation
	Magic       int         `json:"magic"`       // Magic attack power and mitigation
	Speed       int         `json:"speed"`       // Dodge chance
	IsBoss      bool        `json:"isBoss"`      // Bosses are never spawned randomly
	SpawnWeight int         `json:"spawnWeight"` // Relative spawn frequency (higher = more common)
	Attacks     []AttackDef `json:"attacks"`
	Loot        []LootEntry `json:"loot"`
}

// GlyphRune returns the glyph as a rune for rendering.
func (e *EnemyDef) GlyphRune() rune {
	if len(e.Glyph) == 0 {
		return '?'
	}
	return rune(e.Glyph[0])
}

// EnemiesFile represents the structure of enemies.json.
type EnemiesFile struct {
	Enemies []EnemyDef `json:"enemies"`
}

// Validate checks ids, levels, colors, attack effects and loot chances.
func (f EnemiesFile) Validate() error {
	seen := make(map[string]struct{}, len(f.Enemies))
	for _, e := range f.Enemies {
		if e.ID == "" {
			return fmt.Errorf("enemy %q: missing id", e.Name)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("enemy %q: duplicate id", e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.HP <= 0 || e.Level <= 0 {
			return fmt.Errorf("enemy %q: hp and level must be positive", e.ID)
		}
		if _, err := ParseHexColor(e.Color); err != nil {
			return fmt.Errorf("enemy %q: %w", e.ID, err)
		}
		for _, a := range e.Attacks {
			if err := validateTemplate(a.Effect); err != nil {
				return fmt.Errorf("enemy %q attack %q: %w", e.ID, a.Name, err)
			}
			switch a.Special {
			case SpecialNone, SpecialLeechLife, SpecialSummonMinion, SpecialStealGold:
			default:
				return fmt.Errorf("enemy %q attack %q: unknown special %q", e.ID, a.Name, a.Special)
			}
		}
		for _, l := range e.Loot {
			if l.Chance < 0 || l.Chance > 1 {
				return fmt.Errorf("enemy %q loot %q: chance out of range", e.ID, l.ItemID)
			}
		}
	}
	return nil
}

// LoadEnemies loads enemy definitions from the embedded enemies.json file.
func LoadEnemies() ([]EnemyDef, error) {
	file, err := Load[EnemiesFile]("enemies.json")
	if err != nil {
		return nil, err
	}
	return file.Enemies, nil
}
