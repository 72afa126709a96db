package entity

import (
	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/gamedata"
)

// Companion travels with the player and grants a flat bonus while active.
type Companion struct {
	Name  string
	Bonus gamedata.CompanionBonus
	Value float64
}

// NewCompanion creates the companion a dungeon grants.
func NewCompanion(def gamedata.CompanionDef) *Companion {
	return &Companion{Name: def.Name, Bonus: def.Bonus, Value: def.Value}
}

func (c *Companion) apply(s combat.Stats) combat.Stats {
	switch c.Bonus {
	case gamedata.BonusStrength:
		s.Strength += c.Value
	case gamedata.BonusDefense:
		s.Defense += c.Value
	case gamedata.BonusMagic:
		s.Magic += c.Value
	case gamedata.BonusSpeed:
		s.Speed += c.Value
	}
	return s
}

func (c *Companion) passives(p combat.Passives) combat.Passives {
	switch c.Bonus {
	case gamedata.BonusDodge:
		p.Dodge += c.Value
	case gamedata.BonusCrit:
		p.Crit += c.Value
	}
	return p
}
