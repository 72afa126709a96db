package gamedata

import (
	"errors"
	"fmt"
)

// Attributes is a block of per-class attribute numbers, used both for base
// values and for per-level growth.
type Attributes struct {
	HP       float64 `json:"hp"`
	Strength float64 `json:"strength"`
	Defense  float64 `json:"defense"`
	Magic    float64 `json:"magic"`
	Speed    float64 `json:"speed"`
	Luck     float64 `json:"luck"`
}

// ClassDef defines a playable class loaded from JSON.
type ClassDef struct {
	ID        string     `json:"id"`        // Unique identifier (e.g., "warrior")
	Name      string     `json:"name"`      // Display name (e.g., "Warrior")
	Symbol    string     `json:"symbol"`    // Single character for rendering (e.g., "W")
	Base      Attributes `json:"base"`      // Level 1 attributes
	Growth    Attributes `json:"growth"`    // Added per level after the first
	Abilities []string   `json:"abilities"` // Ability IDs equipped at creation
}

// MaxMana returns the mana pool for the given magic attribute.
func MaxMana(magic float64) int {
	return int(magic * 10)
}

// SymbolRune returns the symbol as a rune for rendering.
func (c *ClassDef) SymbolRune() rune {
	if len(c.Symbol) == 0 {
		return '?'
	}
	return rune(c.Symbol[0])
}

// ClassesFile represents the structure of classes.json.
type ClassesFile struct {
	Classes []ClassDef `json:"classes"`

	// ExperienceTable[i] is the total experience needed for level i+1.
	ExperienceTable []int `json:"experienceTable"`
}

// Validate checks the classes and the shape of the experience table.
func (f ClassesFile) Validate() error {
	if len(f.ExperienceTable) == 0 || f.ExperienceTable[0] != 0 {
		return errors.New("experience table must start at 0")
	}
	for i := 1; i < len(f.ExperienceTable); i++ {
		if f.ExperienceTable[i] <= f.ExperienceTable[i-1] {
			return fmt.Errorf("experience table not increasing at level %d", i+1)
		}
	}
	for _, c := range f.Classes {
		if c.ID == "" {
			return fmt.Errorf("class %q: missing id", c.Name)
		}
		if c.Base.HP <= 0 {
			return fmt.Errorf("class %q: base hp must be positive", c.ID)
		}
	}
	return nil
}

// LoadClasses loads class definitions from the embedded classes.json file.
func LoadClasses() (ClassesFile, error) {
	return Load[ClassesFile]("classes.json")
}
