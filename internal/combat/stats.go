package combat

import (
	"github.com/samdwyer/echoes/internal/gamedata"
)

// Stats are a combatant's combat attributes.
type Stats struct {
	Strength float64
	Defense  float64
	Magic    float64
	Speed    float64
	Luck     float64
}

func (s *Stats) field(stat gamedata.Stat) *float64 {
	switch stat {
	case gamedata.StatStrength:
		return &s.Strength
	case gamedata.StatDefense:
		return &s.Defense
	case gamedata.StatMagic:
		return &s.Magic
	case gamedata.StatSpeed:
		return &s.Speed
	}
	return nil
}

// ApplyEffects returns base modified by every stat effect, in the order the
// effects are stored. Reductions clamp at the floor of their kind, so the
// order of a boost and a reduction on the same attribute can change the
// result.
func ApplyEffects(base Stats, effects []StatusEffect) Stats {
	out := base
	for _, e := range effects {
		info, ok := e.Kind.Info()
		if !ok || info.Stat == gamedata.StatNone {
			continue
		}
		f := out.field(info.Stat)
		*f += info.Sign * e.Value
		if info.Sign < 0 && *f < info.Floor {
			*f = info.Floor
		}
	}
	return out
}
