package world

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/gamedata"
)

// Treasure rarity thresholds on a single uniform draw.
const (
	commonLoot   = 0.6
	uncommonLoot = 0.9
)

var emptyRooms = []string{
	"The room is empty. Nothing of interest here.",
	"Dust and cobwebs. Whoever lived here is long gone.",
	"A quiet room. Only the echo of your steps answers you.",
	"This part of the dungeon looks untouched. Nothing to find.",
	"An empty corridor stretches ahead. No sign of danger or treasure.",
}

// Adventurer is the player as seen by room resolution.
type Adventurer interface {
	combat.Combatant
	combat.RewardSink
}

// Tone colours a narration line.
type Tone int

const (
	ToneInfo Tone = iota
	ToneGood
	ToneBad
)

// Message is one line of room narration.
type Message struct {
	Text string
	Tone Tone
}

// Outcome reports what entering a room did to the player.
type Outcome struct {
	Room     Room
	Messages []Message

	Gold    int
	XP      int
	Healed  int
	Damage  int
	Items   []*gamedata.ItemDef
	Effects []combat.StatusEffect
	Trap    *TrapResult
}

func (o *Outcome) say(tone Tone, format string, args ...any) {
	o.Messages = append(o.Messages, Message{Text: fmt.Sprintf(format, args...), Tone: tone})
}

// TrapResult reports one sprung trap.
type TrapResult struct {
	Trap    string
	Check   int
	Avoided bool
	Damage  int
	Effect  *combat.StatusEffect
}

// SpringTrap runs trap against target. An avoidable trap draws the avoid
// check first: speed plus a roll of 1..die, against AvoidDC. A trap that is
// not avoided draws its damage, which never takes the target below 1 HP,
// and then applies a fresh copy of its effect.
func SpringTrap(dice combat.Random, trap gamedata.TrapDef, target combat.Combatant, die int) TrapResult {
	res := TrapResult{Trap: trap.Name}
	if trap.AvoidDC > 0 {
		res.Check = int(target.EffectiveStats().Speed) + roll(dice, 1, die)
		if res.Check >= trap.AvoidDC {
			res.Avoided = true
			return res
		}
	}

	dmg := roll(dice, trap.MinDamage, trap.MaxDamage)
	res.Damage = target.TakeDamage(min(dmg, target.GetHP()-1))
	if trap.Effect != nil {
		effect := combat.NewStatusEffect(*trap.Effect)
		target.AddStatusEffect(effect)
		res.Effect = &effect
	}
	return res
}

// PickDungeon returns the hardest dungeon open to level. Past every level
// range it falls back to the hardest dungeon the player has reached.
func PickDungeon(dungeons *gamedata.DungeonRegistry, level, slack int) *gamedata.DungeonDef {
	if open := dungeons.ForLevel(level, slack); len(open) > 0 {
		return open[len(open)-1]
	}
	var best *gamedata.DungeonDef
	all := dungeons.All()
	for i := range all {
		if all[i].MinLevel <= level && (best == nil || all[i].MinLevel > best.MinLevel) {
			best = &all[i]
		}
	}
	return best
}

// Expedition is one descent through a dungeon, floor by floor and room by
// room. Layout and room kinds come from the layout source; every roll made
// inside a room comes from dice.
type Expedition struct {
	Dungeon *gamedata.DungeonDef
	Floor   *Floor

	content *gamedata.Content
	cfg     config.Explore
	layout  *rand.Rand
	dice    combat.Random

	room int
	done bool
}

// NewExpedition generates the first floor of dungeon and places the player
// at its entrance.
func NewExpedition(ctx context.Context, content *gamedata.Content, dungeon *gamedata.DungeonDef, cfg config.Explore, layout *rand.Rand, dice combat.Random) *Expedition {
	return &Expedition{
		Dungeon: dungeon,
		Floor:   GenerateFloor(ctx, 1, dungeon.Floors == 1, cfg, layout),
		content: content,
		cfg:     cfg,
		layout:  layout,
		dice:    dice,
	}
}

// Room returns the room the player stands in.
func (e *Expedition) Room() Room { return e.Floor.Rooms[e.room] }

// RoomIndex returns the position of the current room on its floor.
func (e *Expedition) RoomIndex() int { return e.room }

// Done reports whether the boss has been beaten.
func (e *Expedition) Done() bool { return e.done }

// Complete ends the expedition.
func (e *Expedition) Complete() { e.done = true }

// Advance moves the player into the next room and marks it visited. From
// the stairs it descends to the entrance of a new floor. The boss room
// holds the player until Complete is called. It reports false once the
// expedition is complete.
func (e *Expedition) Advance(ctx context.Context) (Room, bool) {
	if e.done {
		return Room{}, false
	}
	switch cur := e.Room(); {
	case cur.Kind == RoomBoss:
	case cur.Kind == RoomStairs || e.room == len(e.Floor.Rooms)-1:
		depth := e.Floor.Depth + 1
		e.Floor = GenerateFloor(ctx, depth, depth >= e.Dungeon.Floors, e.cfg, e.layout)
		e.room = 0
	default:
		e.room++
		e.Floor.Rooms[e.room].Visited = true
	}
	return e.Room(), true
}

// Resolve plays out the current room when it holds no fight. Combat and
// boss rooms are left to the caller and produce an empty outcome.
func (e *Expedition) Resolve(a Adventurer) Outcome {
	out := Outcome{Room: e.Room()}
	switch out.Room.Kind {
	case RoomEntrance:
		out.say(ToneInfo, "%s, floor %d.", e.Dungeon.Name, e.Floor.Depth)
		if e.Floor.Depth == 1 {
			out.say(ToneInfo, "%s", e.Dungeon.Description)
		}
	case RoomStairs:
		out.say(ToneInfo, "Stairs lead down to floor %d.", e.Floor.Depth+1)
	case RoomTreasure:
		e.openTreasure(a, &out)
	case RoomTrap:
		e.springTrap(a, &out)
	case RoomEvent:
		e.runEvent(a, &out)
	case RoomEmpty:
		e.describeEmpty(&out)
	}
	return out
}

func (e *Expedition) openTreasure(a Adventurer, out *Outcome) {
	d := e.Dungeon
	out.Gold = roll(e.dice, d.MinLevel*5, d.MaxLevel*15)
	a.AddGold(out.Gold)
	out.say(ToneGood, "You find a treasure chest holding %d gold!", out.Gold)

	r := e.dice.Float64()
	group := d.Loot.Rare
	switch {
	case r < commonLoot:
		group = d.Loot.Common
	case r < uncommonLoot:
		group = d.Loot.Uncommon
	}
	if id, ok := pick(e.dice, group); ok {
		e.giveItem(a, id, out)
	}
}

func (e *Expedition) springTrap(a Adventurer, out *Outcome) {
	trap, ok := pick(e.dice, e.content.Dungeons.Traps())
	if !ok {
		e.describeEmpty(out)
		return
	}
	out.say(ToneBad, "Trap: %s!", trap.Name)
	if trap.Description != "" {
		out.say(ToneBad, "%s", trap.Description)
	}

	res := SpringTrap(e.dice, trap, a, e.cfg.AvoidDie)
	out.Trap = &res
	if res.Avoided {
		out.say(ToneGood, "You dodge the trap!")
		return
	}
	out.Damage = res.Damage
	out.say(ToneBad, "You take %d damage!", res.Damage)
	if res.Effect != nil {
		out.Effects = append(out.Effects, *res.Effect)
		out.say(ToneBad, "You are %s.", res.Effect.Info().Label)
	}
}

func (e *Expedition) runEvent(a Adventurer, out *Outcome) {
	ev, ok := pick(e.dice, e.Dungeon.Events)
	if !ok || e.dice.Float64() >= ev.Chance {
		e.describeEmpty(out)
		return
	}
	out.say(ToneInfo, "%s", ev.Name)
	if ev.Description != "" {
		out.say(ToneInfo, "%s", ev.Description)
	}

	for _, r := range ev.Rewards {
		if e.dice.Float64() >= r.Chance {
			continue
		}
		switch r.Type {
		case gamedata.RewardGold:
			n := roll(e.dice, r.Min, r.Max)
			a.AddGold(n)
			out.Gold += n
			out.say(ToneGood, "You find %d gold!", n)
		case gamedata.RewardXP:
			n := roll(e.dice, r.Min, r.Max)
			a.AddExperience(n)
			out.XP += n
			out.say(ToneGood, "You gain %d experience!", n)
		case gamedata.RewardHeal:
			n := a.Heal(roll(e.dice, r.Min, r.Max))
			out.Healed += n
			out.say(ToneGood, "You are healed for %d HP.", n)
		case gamedata.RewardDamage:
			n := a.TakeDamage(min(roll(e.dice, r.Min, r.Max), a.GetHP()-1))
			out.Damage += n
			out.say(ToneBad, "You take %d damage!", n)
		case gamedata.RewardItem:
			e.giveItem(a, r.ItemID, out)
		case gamedata.RewardBuff:
			effect := combat.NewStatusEffect(*r.Effect)
			a.AddStatusEffect(effect)
			out.Effects = append(out.Effects, effect)
			out.say(ToneGood, "You gain %s.", effect.Name)
		}
	}
}

func (e *Expedition) giveItem(a Adventurer, id string, out *Outcome) {
	item, ok := e.content.Item(id)
	if !ok {
		return
	}
	if !a.AddItem(item, 1) {
		out.say(ToneBad, "You find %s, but your pack is full.", item.Name)
		return
	}
	out.Items = append(out.Items, item)
	out.say(ToneGood, "You find %s!", item.Name)
}

func (e *Expedition) describeEmpty(out *Outcome) {
	text, _ := pick(e.dice, emptyRooms)
	out.say(ToneInfo, "%s", text)
}

// roll returns a uniform integer in [lo, hi] from one draw.
func roll(dice combat.Random, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return min(lo+int(dice.Float64()*float64(hi-lo+1)), hi)
}

// pick returns a uniform element of xs from one draw. An empty slice draws
// nothing.
func pick[T any](dice combat.Random, xs []T) (T, bool) {
	var zero T
	if len(xs) == 0 {
		return zero, false
	}
	return xs[min(int(dice.Float64()*float64(len(xs))), len(xs)-1)], true
}
