// Package combattest provides deterministic doubles for testing code built
// on the combat engine.
package combattest

import (
	"context"
	"errors"
	"slices"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/gamedata"
)

// Fixed is a random source that always returns the same value.
type Fixed float64

// Float64 returns f.
func (f Fixed) Float64() float64 { return float64(f) }

// Sequence returns its values in order and then repeats the last one.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence creates a sequence over values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next value.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[min(s.next, len(s.values)-1)]
	s.next++
	return v
}

// Draws returns how many values have been taken.
func (s *Sequence) Draws() int { return s.next }

// Recorder is a presenter that keeps every event.
type Recorder struct {
	Events []combat.Event
}

// Notify records e.
func (r *Recorder) Notify(e combat.Event) { r.Events = append(r.Events, e) }

// Kinds returns the kinds of every recorded event in order.
func (r *Recorder) Kinds() []combat.EventKind {
	out := make([]combat.EventKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Find returns every recorded event of the given kind.
func (r *Recorder) Find(kind combat.EventKind) []combat.Event {
	var out []combat.Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether any event of kind was recorded.
func (r *Recorder) Has(kind combat.EventKind) bool {
	return slices.Contains(r.Kinds(), kind)
}

// ErrScriptExhausted is returned when a Script runs out of actions.
var ErrScriptExhausted = errors.New("combattest: script exhausted")

// Script is an action source that plays back a fixed list of actions.
type Script struct {
	Actions []combat.Action
	asked   int
}

// NewScript creates a script over actions.
func NewScript(actions ...combat.Action) *Script {
	return &Script{Actions: actions}
}

// NextAction returns the next scripted action.
func (s *Script) NextAction(ctx context.Context, _ *combat.Session) (combat.Action, error) {
	if err := ctx.Err(); err != nil {
		return combat.Action{}, err
	}
	if s.asked >= len(s.Actions) {
		return combat.Action{}, ErrScriptExhausted
	}
	a := s.Actions[s.asked]
	s.asked++
	return a, nil
}

// Asked returns how many actions have been handed out.
func (s *Script) Asked() int { return s.asked }

// Repeat is an action source that always returns the same action.
type Repeat combat.Action

// NextAction returns the repeated action.
func (r Repeat) NextAction(ctx context.Context, _ *combat.Session) (combat.Action, error) {
	return combat.Action(r), ctx.Err()
}

// Player is an in-memory player combatant and reward sink.
type Player struct {
	combat.Vitals

	ID       string
	Name     string
	Level    int
	Base     combat.Stats
	Mana     int
	MaxMana  int
	Passives combat.Passives
	Equipped []string
	Items    []*gamedata.ItemDef

	Experience int
	Money      int
	Received   map[string]int
	// BagFull makes AddItem refuse everything.
	BagFull bool
}

// NewPlayer creates a level 1 player with the given HP and stats.
func NewPlayer(name string, hp int, stats combat.Stats) *Player {
	return &Player{
		Vitals:   combat.NewVitals(hp),
		ID:       name,
		Name:     name,
		Level:    1,
		Base:     stats,
		Received: make(map[string]int),
	}
}

func (p *Player) PlayerID() string { return p.ID }
func (p *Player) GetName() string  { return p.Name }
func (p *Player) GetLevel() int    { return p.Level }

func (p *Player) EffectiveStats() combat.Stats {
	return combat.ApplyEffects(p.Base, p.StatusEffects())
}

func (p *Player) GetMana() int    { return p.Mana }
func (p *Player) GetMaxMana() int { return p.MaxMana }

func (p *Player) SpendMana(amount int) bool {
	if amount > p.Mana {
		return false
	}
	p.Mana -= amount
	return true
}

func (p *Player) RestoreMana(amount int) int {
	amount = max(0, min(amount, p.MaxMana-p.Mana))
	p.Mana += amount
	return amount
}

func (p *Player) EquippedAbilities() []string  { return p.Equipped }
func (p *Player) GetPassives() combat.Passives { return p.Passives }

func (p *Player) ItemAt(index int) (*gamedata.ItemDef, bool) {
	if index < 0 || index >= len(p.Items) {
		return nil, false
	}
	return p.Items[index], true
}

func (p *Player) ConsumeItem(index int) {
	p.Items = slices.Delete(p.Items, index, index+1)
}

func (p *Player) AddExperience(amount int) { p.Experience += amount }
func (p *Player) AddGold(amount int)       { p.Money += amount }
func (p *Player) Gold() int                { return p.Money }

func (p *Player) LoseGold(amount int) int {
	amount = min(amount, p.Money)
	p.Money -= amount
	return amount
}

func (p *Player) AddItem(item *gamedata.ItemDef, count int) bool {
	if p.BagFull {
		return false
	}
	p.Received[item.ID] += count
	return true
}

// Enemy is an in-memory enemy combatant.
type Enemy struct {
	combat.Vitals

	Key     string
	Name    string
	Level   int
	Base    combat.Stats
	Boss    bool
	Moves   []gamedata.AttackDef
	LootTab []gamedata.LootEntry
}

// NewEnemy creates a level 1 enemy with the given HP and stats.
func NewEnemy(name string, hp int, stats combat.Stats) *Enemy {
	return &Enemy{
		Vitals: combat.NewVitals(hp),
		Key:    name,
		Name:   name,
		Level:  1,
		Base:   stats,
	}
}

func (e *Enemy) GetName() string               { return e.Name }
func (e *Enemy) SetName(name string)           { e.Name = name }
func (e *Enemy) GetLevel() int                 { return e.Level }
func (e *Enemy) GetKey() string                { return e.Key }
func (e *Enemy) IsBoss() bool                  { return e.Boss }
func (e *Enemy) Attacks() []gamedata.AttackDef { return e.Moves }
func (e *Enemy) Loot() []gamedata.LootEntry    { return e.LootTab }
func (e *Enemy) EffectiveStats() combat.Stats  { return combat.ApplyEffects(e.Base, e.StatusEffects()) }

// Content is a map-backed content provider.
type Content struct {
	Abilities map[string]*gamedata.AbilityDef
	Items     map[string]*gamedata.ItemDef
}

func (c Content) Ability(id string) (*gamedata.AbilityDef, bool) {
	a, ok := c.Abilities[id]
	return a, ok
}

func (c Content) Item(id string) (*gamedata.ItemDef, bool) {
	i, ok := c.Items[id]
	return i, ok
}

// Spawner creates enemies with a fixed profile for any key.
type Spawner struct {
	HP      int
	Stats   combat.Stats
	Spawned []*Enemy
}

func (s *Spawner) SpawnEnemy(key string, level int) (combat.EnemyCombatant, bool) {
	e := NewEnemy(key, s.HP, s.Stats)
	e.Level = level
	s.Spawned = append(s.Spawned, e)
	return e, true
}

var (
	_ combat.PlayerCombatant = (*Player)(nil)
	_ combat.RewardSink      = (*Player)(nil)
	_ combat.EnemyCombatant  = (*Enemy)(nil)
	_ combat.Renamable       = (*Enemy)(nil)
	_ combat.ContentProvider = Content{}
	_ combat.EnemySpawner    = (*Spawner)(nil)
	_ combat.Random          = Fixed(0)
	_ combat.Random          = (*Sequence)(nil)
	_ combat.ActionSource    = (*Script)(nil)
	_ combat.Presenter       = (*Recorder)(nil)
)
