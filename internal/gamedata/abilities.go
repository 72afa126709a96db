package gamedata

import "fmt"

// =============================================================================
// ABILITY DATA
// =============================================================================
//
// Abilities are the player's special actions. Enemy attacks use the smaller
// AttackDef shape in enemies.go. Both are loaded from embedded JSON.
//
// Type decides which attributes apply:
//    - physical:                attacker strength vs. defender defense
//    - magic, fire, ice, poison: attacker magic vs. defender magic
//    - buff:                    effect lands on the caster, no target
//    - debuff:                  effect lands on the target
//    - heal:                    enemy self-heal, damage is negative
//
// Damage:
//    > 0  power = damage + 0.5 * (strength|magic), crit, then mitigated
//    = 0  utility cast, no damage
//    < 0  the caster heals |damage|
//
// JSON Schema:
// ------------
// {
//   "id": "fireball",
//   "name": "Fireball",
//   "class": "mage",
//   "level": 3,
//   "damage": 15,
//   "manaCost": 10,
//   "cooldown": 3,
//   "type": "fire",
//   "aoe": false,
//   "critBoost": 0,
//   "effect": {"name": "Burning", "effect": "fire", "value": 3, "duration": 2}
// }

// AbilityType is the damage category of an ability or attack.
type AbilityType string

const (
	TypePhysical AbilityType = "physical"
	TypeMagic    AbilityType = "magic"
	TypeFire     AbilityType = "fire"
	TypeIce      AbilityType = "ice"
	TypePoison   AbilityType = "poison"
	TypeBuff     AbilityType = "buff"
	TypeDebuff   AbilityType = "debuff"
	TypeHeal     AbilityType = "heal"
	TypeSpecial  AbilityType = "special"
)

// Magical reports whether the type uses the magic attribute on both sides.
func (t AbilityType) Magical() bool {
	switch t {
	case TypeMagic, TypeFire, TypeIce, TypePoison:
		return true
	}
	return false
}

// Physical reports whether the type uses strength against defense.
func (t AbilityType) Physical() bool {
	return t == TypePhysical
}

// AbilityDef defines a player ability loaded from JSON.
type AbilityDef struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Class       string          `json:"class"`
	Level       int             `json:"level"`
	Damage      int             `json:"damage"`
	ManaCost    int             `json:"manaCost"`
	Cooldown    int             `json:"cooldown"`
	Type        AbilityType     `json:"type"`
	Effect      *EffectTemplate `json:"effect,omitempty"`
	AOE         bool            `json:"aoe,omitempty"`
	CritBoost   float64         `json:"critBoost,omitempty"`
}

// SelfTargeted reports whether the ability affects only its caster.
func (a *AbilityDef) SelfTargeted() bool {
	return a.Type == TypeBuff
}

// Heals reports whether the ability restores the caster's HP.
func (a *AbilityDef) Heals() bool {
	return a.Damage < 0
}

// AbilitiesFile represents the structure of abilities.json.
type AbilitiesFile struct {
	Abilities []AbilityDef `json:"abilities"`
}

// Validate checks every ability for an id and a known effect kind.
func (f AbilitiesFile) Validate() error {
	seen := make(map[string]struct{}, len(f.Abilities))
	for _, a := range f.Abilities {
		if a.ID == "" {
			return fmt.Errorf("ability %q: missing id", a.Name)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("ability %q: duplicate id", a.ID)
		}
		seen[a.ID] = struct{}{}
		if a.ManaCost < 0 || a.Cooldown < 0 {
			return fmt.Errorf("ability %q: negative mana cost or cooldown", a.ID)
		}
		if err := validateTemplate(a.Effect); err != nil {
			return fmt.Errorf("ability %q: %w", a.ID, err)
		}
	}
	return nil
}

// LoadAbilities loads ability definitions from the embedded abilities.json file.
func LoadAbilities() ([]AbilityDef, error) {
	file, err := Load[AbilitiesFile]("abilities.json")
	if err != nil {
		return nil, err
	}
	return file.Abilities, nil
}

func validateTemplate(t *EffectTemplate) error {
	if t == nil {
		return nil
	}
	if t.Name == "" {
		return fmt.Errorf("effect without name")
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("effect %q: unknown kind %q", t.Name, t.Kind)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("effect %q: duration must be positive", t.Name)
	}
	return nil
}
