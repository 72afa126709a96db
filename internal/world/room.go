// Package world generates dungeon floors and resolves the rooms the player
// walks through between fights.
package world

// RoomKind is what waits in a room.
type RoomKind int

const (
	RoomEmpty RoomKind = iota
	RoomEntrance
	RoomCombat
	RoomTreasure
	RoomTrap
	RoomEvent
	RoomStairs
	RoomBoss
)

// String returns the kind name used in logs and traces.
func (k RoomKind) String() string {
	switch k {
	case RoomEntrance:
		return "entrance"
	case RoomCombat:
		return "combat"
	case RoomTreasure:
		return "treasure"
	case RoomTrap:
		return "trap"
	case RoomEvent:
		return "event"
	case RoomStairs:
		return "stairs"
	case RoomBoss:
		return "boss"
	default:
		return "empty"
	}
}

// Symbol is the map glyph of a visited room.
func (k RoomKind) Symbol() rune {
	switch k {
	case RoomEntrance:
		return '<'
	case RoomCombat:
		return 'x'
	case RoomTreasure:
		return '$'
	case RoomTrap:
		return '^'
	case RoomEvent:
		return '!'
	case RoomStairs:
		return '>'
	case RoomBoss:
		return 'B'
	default:
		return ' '
	}
}

// Room is a rectangle of floor tiles holding one encounter. Rooms are walked
// in the order they appear in Floor.Rooms.
type Room struct {
	X, Y          int // Top-left corner position
	Width, Height int // Dimensions of the room

	Kind    RoomKind
	Visited bool
}

// Center returns the center coordinates of the room.
func (r Room) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}
