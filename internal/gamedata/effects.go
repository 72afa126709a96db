package gamedata

// EffectKind is the semantic tag of a status effect. The set is closed:
// content files that name any other kind fail validation at load time.
type EffectKind string

const (
	EffectStrengthBoost     EffectKind = "strengthBoost"
	EffectStrengthReduction EffectKind = "strengthReduction"
	EffectDefenseBoost      EffectKind = "defenseBoost"
	EffectDefenseReduction  EffectKind = "defenseReduction"
	EffectMagicBoost        EffectKind = "magicBoost"
	EffectMagicReduction    EffectKind = "magicReduction"
	EffectSpeedBoost        EffectKind = "speedBoost"
	EffectSpeedReduction    EffectKind = "speedReduction"
	EffectDodgeBoost        EffectKind = "dodgeBoost"
	EffectPoison            EffectKind = "poison"
	EffectFire              EffectKind = "fire"
	EffectRegen             EffectKind = "regen"
	EffectStun              EffectKind = "stun"
	EffectReflect           EffectKind = "reflect"
)

// Stat names a combat attribute that an effect can modify.
type Stat int

const (
	StatNone Stat = iota
	StatStrength
	StatDefense
	StatMagic
	StatSpeed
)

// String returns the attribute name.
func (s Stat) String() string {
	switch s {
	case StatStrength:
		return "strength"
	case StatDefense:
		return "defense"
	case StatMagic:
		return "magic"
	case StatSpeed:
		return "speed"
	default:
		return "none"
	}
}

// EffectInfo describes how one effect kind behaves. The combatant model
// reads Stat/Sign/Floor, the resolver reads the behaviour flags and the
// presentation layer reads Label and Harmful.
type EffectInfo struct {
	Label string

	// Stat modification. Sign is +1 for boosts and -1 for reductions;
	// reductions never take the attribute below Floor.
	Stat  Stat
	Sign  float64
	Floor float64

	SkipsTurn      bool // bearer loses its action while active
	DamagePerRound bool // Value damage at every status tick
	HealPerRound   bool // Value healing at every status tick
	Dodge          bool // Value is added to dodge chance
	Reflect        bool // Value damage returned to whoever lands a hit

	Harmful bool
}

var effectTable = map[EffectKind]EffectInfo{
	EffectStrengthBoost:     {Label: "strength up", Stat: StatStrength, Sign: 1},
	EffectStrengthReduction: {Label: "strength down", Stat: StatStrength, Sign: -1, Floor: 1, Harmful: true},
	EffectDefenseBoost:      {Label: "defense up", Stat: StatDefense, Sign: 1},
	EffectDefenseReduction:  {Label: "defense down", Stat: StatDefense, Sign: -1, Floor: 0, Harmful: true},
	EffectMagicBoost:        {Label: "magic up", Stat: StatMagic, Sign: 1},
	EffectMagicReduction:    {Label: "magic down", Stat: StatMagic, Sign: -1, Floor: 0, Harmful: true},
	EffectSpeedBoost:        {Label: "speed up", Stat: StatSpeed, Sign: 1},
	EffectSpeedReduction:    {Label: "slowed", Stat: StatSpeed, Sign: -1, Floor: 1, Harmful: true},
	EffectDodgeBoost:        {Label: "evasive", Dodge: true},
	EffectPoison:            {Label: "poisoned", DamagePerRound: true, Harmful: true},
	EffectFire:              {Label: "burning", DamagePerRound: true, Harmful: true},
	EffectRegen:             {Label: "regenerating", HealPerRound: true},
	EffectStun:              {Label: "stunned", SkipsTurn: true, Harmful: true},
	EffectReflect:           {Label: "reflecting", Reflect: true},
}

// Info returns the dispatch entry for the kind.
func (k EffectKind) Info() (EffectInfo, bool) {
	info, ok := effectTable[k]
	return info, ok
}

// Valid reports whether the kind is part of the closed set.
func (k EffectKind) Valid() bool {
	_, ok := effectTable[k]
	return ok
}

// Class returns the presentation class for the kind ("buff" or "debuff").
func (k EffectKind) Class() string {
	if effectTable[k].Harmful {
		return "debuff"
	}
	return "buff"
}

// EffectKinds returns every known kind.
func EffectKinds() []EffectKind {
	kinds := make([]EffectKind, 0, len(effectTable))
	for k := range effectTable {
		kinds = append(kinds, k)
	}
	return kinds
}

// EffectTemplate is the content-table form of a status effect. Combat copies
// it into a fresh value whenever it is applied.
type EffectTemplate struct {
	Name     string     `json:"name"`
	Kind     EffectKind `json:"effect"`
	Value    float64    `json:"value"`
	Duration int        `json:"duration"`
}
