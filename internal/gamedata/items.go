package gamedata

import "fmt"

// ItemType groups items for inventory and equipment handling.
type ItemType string

const (
	ItemWeapon     ItemType = "weapon"
	ItemArmor      ItemType = "armor"
	ItemAccessory  ItemType = "accessory"
	ItemConsumable ItemType = "consumable"
	ItemMaterial   ItemType = "material"
)

// Equippable reports whether the item occupies an equipment slot.
func (t ItemType) Equippable() bool {
	return t == ItemWeapon || t == ItemArmor || t == ItemAccessory
}

// ItemEffect is what a consumable does when used in combat.
type ItemEffect string

const (
	ItemEffectNone        ItemEffect = ""
	ItemEffectRestoreHP   ItemEffect = "restoreHp"
	ItemEffectRestoreMana ItemEffect = "restoreMana"
	ItemEffectBuff        ItemEffect = "buff"
	ItemEffectCureStatus  ItemEffect = "cureStatus"
)

// Bonuses are flat attribute modifiers granted while an item is equipped.
type Bonuses struct {
	Strength float64 `json:"strength,omitempty"`
	Defense  float64 `json:"defense,omitempty"`
	Magic    float64 `json:"magic,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Luck     float64 `json:"luck,omitempty"`
	MaxHP    int     `json:"maxHp,omitempty"`
}

// ItemDef defines an item loaded from JSON.
type ItemDef struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        ItemType        `json:"type"`
	Effect      ItemEffect      `json:"effect,omitempty"`
	Value       int             `json:"value,omitempty"`
	Buff        *EffectTemplate `json:"buff,omitempty"`
	Stackable   bool            `json:"stackable,omitempty"`
	Price       int             `json:"price"`
	Rarity      int             `json:"rarity"`
	Bonuses     Bonuses         `json:"bonuses"`
}

// Usable reports whether the item can be consumed during combat.
func (i *ItemDef) Usable() bool {
	return i.Type == ItemConsumable && i.Effect != ItemEffectNone
}

// ItemsFile represents the structure of items.json.
type ItemsFile struct {
	Items []ItemDef `json:"items"`
}

// Validate checks ids and consumable payloads.
func (f ItemsFile) Validate() error {
	seen := make(map[string]struct{}, len(f.Items))
	for _, it := range f.Items {
		if it.ID == "" {
			return fmt.Errorf("item %q: missing id", it.Name)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item %q: duplicate id", it.ID)
		}
		seen[it.ID] = struct{}{}

		switch it.Effect {
		case ItemEffectNone, ItemEffectCureStatus:
		case ItemEffectRestoreHP, ItemEffectRestoreMana:
			if it.Value <= 0 {
				return fmt.Errorf("item %q: restore value must be positive", it.ID)
			}
		case ItemEffectBuff:
			if it.Buff == nil {
				return fmt.Errorf("item %q: buff item without buff", it.ID)
			}
			if err := validateTemplate(it.Buff); err != nil {
				return fmt.Errorf("item %q: %w", it.ID, err)
			}
		default:
			return fmt.Errorf("item %q: unknown effect %q", it.ID, it.Effect)
		}
	}
	return nil
}

// LoadItems loads item definitions from the embedded items.json file.
func LoadItems() ([]ItemDef, error) {
	file, err := Load[ItemsFile]("items.json")
	if err != nil {
		return nil, err
	}
	return file.Items, nil
}
