package gamedata

import (
	"errors"
	"fmt"
)

// =============================================================================
// DUNGEON DATA
// =============================================================================
//
// A dungeon is a stack of floors walked room by room. Its table names the
// enemies met in combat rooms, the boss waiting in the last room of the last
// floor, the treasure loot by rarity, the special events and the companion
// that joins the player once the boss falls. Traps are shared by every
// dungeon.
//
// JSON Schema:
// ------------
// {
//   "traps": [
//     {"name": "Poison Darts", "minDamage": 8, "maxDamage": 20, "avoidDC": 12,
//      "effect": {"name": "Poisoned", "effect": "poison", "value": 2, "duration": 3}}
//   ],
//   "dungeons": [
//     {"id": "goblin_cave", "minLevel": 1, "maxLevel": 5, "floors": 3,
//      "enemies": ["rat"], "boss": "goblin_king",
//      "loot": {"common": [], "uncommon": [], "rare": []},
//      "events": [{"name": "...", "chance": 0.2,
//                  "rewards": [{"type": "gold", "min": 10, "max": 30, "chance": 1}]}],
//      "companion": {"name": "Scout Owl", "bonus": "dodge", "value": 0.05}}
//   ]
// }

// RewardType is what an event reward grants.
type RewardType string

const (
	RewardGold   RewardType = "gold"
	RewardItem   RewardType = "item"
	RewardXP     RewardType = "xp"
	RewardHeal   RewardType = "heal"
	RewardDamage RewardType = "damage"
	RewardBuff   RewardType = "buff"
)

// CompanionBonus is the attribute a companion improves.
type CompanionBonus string

const (
	BonusStrength CompanionBonus = "strength"
	BonusDefense  CompanionBonus = "defense"
	BonusMagic    CompanionBonus = "magic"
	BonusSpeed    CompanionBonus = "speed"
	BonusMaxHP    CompanionBonus = "maxHp"
	BonusMaxMana  CompanionBonus = "maxMana"
	BonusDodge    CompanionBonus = "dodge"
	BonusCrit     CompanionBonus = "crit"
)

// Valid reports whether the bonus is one of the known attributes.
func (b CompanionBonus) Valid() bool {
	switch b {
	case BonusStrength, BonusDefense, BonusMagic, BonusSpeed, BonusMaxHP, BonusMaxMana, BonusDodge, BonusCrit:
		return true
	}
	return false
}

// TrapDef is a trap that can spring in a trap room. A zero AvoidDC makes
// the trap unavoidable.
type TrapDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	MinDamage   int             `json:"minDamage"`
	MaxDamage   int             `json:"maxDamage"`
	AvoidDC     int             `json:"avoidDC"`
	Effect      *EffectTemplate `json:"effect,omitempty"`
}

// EventReward is one independent roll of an event.
type EventReward struct {
	Type   RewardType      `json:"type"`
	Min    int             `json:"min,omitempty"`
	Max    int             `json:"max,omitempty"`
	ItemID string          `json:"item,omitempty"`
	Effect *EffectTemplate `json:"effect,omitempty"`
	Chance float64         `json:"chance"`
}

// EventDef is a special room. It happens with Chance once picked, otherwise
// the room is empty.
type EventDef struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Chance      float64       `json:"chance"`
	Rewards     []EventReward `json:"rewards"`
}

// LootTable lists treasure items by rarity.
type LootTable struct {
	Common   []string `json:"common"`
	Uncommon []string `json:"uncommon"`
	Rare     []string `json:"rare"`
}

// CompanionDef is the companion a dungeon grants on completion.
type CompanionDef struct {
	Name  string         `json:"name"`
	Bonus CompanionBonus `json:"bonus"`
	Value float64        `json:"value"`
}

// DungeonDef defines a dungeon loaded from JSON.
type DungeonDef struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	MinLevel    int           `json:"minLevel"`
	MaxLevel    int           `json:"maxLevel"`
	Floors      int           `json:"floors"`
	Enemies     []string      `json:"enemies"`
	Boss        string        `json:"boss"`
	Loot        LootTable     `json:"loot"`
	Events      []EventDef    `json:"events"`
	Companion   *CompanionDef `json:"companion,omitempty"`
}

// DungeonsFile represents the structure of dungeons.json.
type DungeonsFile struct {
	Traps    []TrapDef    `json:"traps"`
	Dungeons []DungeonDef `json:"dungeons"`
}

// Validate checks ids, floor counts, damage ranges, chances and effects.
func (f DungeonsFile) Validate() error {
	for _, t := range f.Traps {
		if t.MinDamage < 0 || t.MaxDamage < t.MinDamage {
			return fmt.Errorf("trap %q: bad damage range %d-%d", t.Name, t.MinDamage, t.MaxDamage)
		}
		if err := validateTemplate(t.Effect); err != nil {
			return fmt.Errorf("trap %q: %w", t.Name, err)
		}
	}

	seen := make(map[string]struct{}, len(f.Dungeons))
	for _, d := range f.Dungeons {
		if d.ID == "" {
			return fmt.Errorf("dungeon %q: missing id", d.Name)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("dungeon %q: duplicate id", d.ID)
		}
		seen[d.ID] = struct{}{}
		if d.Floors < 1 {
			return fmt.Errorf("dungeon %q: needs at least one floor", d.ID)
		}
		if d.MinLevel < 1 || d.MaxLevel < d.MinLevel {
			return fmt.Errorf("dungeon %q: bad level range %d-%d", d.ID, d.MinLevel, d.MaxLevel)
		}
		if len(d.Enemies) == 0 {
			return fmt.Errorf("dungeon %q: no enemies", d.ID)
		}
		for _, ev := range d.Events {
			if ev.Chance < 0 || ev.Chance > 1 {
				return fmt.Errorf("dungeon %q event %q: chance out of range", d.ID, ev.Name)
			}
			for _, r := range ev.Rewards {
				if err := r.validate(); err != nil {
					return fmt.Errorf("dungeon %q event %q: %w", d.ID, ev.Name, err)
				}
			}
		}
		if c := d.Companion; c != nil && (c.Name == "" || !c.Bonus.Valid()) {
			return fmt.Errorf("dungeon %q: companion %q has unknown bonus %q", d.ID, c.Name, c.Bonus)
		}
	}
	return nil
}

func (r EventReward) validate() error {
	if r.Chance < 0 || r.Chance > 1 {
		return fmt.Errorf("%s reward: chance out of range", r.Type)
	}
	switch r.Type {
	case RewardGold, RewardXP, RewardHeal, RewardDamage:
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("%s reward: bad range %d-%d", r.Type, r.Min, r.Max)
		}
	case RewardItem:
		if r.ItemID == "" {
			return errors.New("item reward without item")
		}
	case RewardBuff:
		if r.Effect == nil {
			return errors.New("buff reward without effect")
		}
		return validateTemplate(r.Effect)
	default:
		return fmt.Errorf("unknown reward type %q", r.Type)
	}
	return nil
}

// LoadDungeons loads dungeon and trap definitions from the embedded
// dungeons.json file.
func LoadDungeons() (DungeonsFile, error) {
	return Load[DungeonsFile]("dungeons.json")
}
