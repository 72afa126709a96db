package world

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/telemetry"
)

// Tile is one map cell.
type Tile rune

const (
	TileWall  Tile = '#'
	TileFloor Tile = '.'
)

// BSP parameters, sized for a floor that shares the screen with the log.
const (
	minRoomSize = 4
	maxRoomSize = 9
	minLeafSize = 8
)

// Floor is one generated level of a dungeon.
type Floor struct {
	Depth  int
	Width  int
	Height int
	Tiles  [][]Tile
	Rooms  []Room
	rng    *rand.Rand
}

// GenerateFloor lays out a floor with BSP rooms joined by corridors and
// rolls what waits in each room. The first room is the entrance and the
// last holds the stairs, or the boss when final is set.
func GenerateFloor(ctx context.Context, depth int, final bool, cfg config.Explore, rng *rand.Rand) *Floor {
	_, span := telemetry.Tracer("world").Start(ctx, "floor.generate")
	defer span.End()
	startTime := time.Now()

	f := newFloor(depth, cfg.FloorWidth, cfg.FloorHeight, rng)
	root := &bspNode{x: 1, y: 1, width: f.Width - 2, height: f.Height - 2}
	f.splitNode(root)
	f.createRooms(root)
	f.connectRooms(root)
	f.assignKinds(cfg, final)

	span.SetAttributes(
		attribute.Int("floor.depth", depth),
		attribute.Bool("floor.final", final),
		attribute.Int("floor.room_count", len(f.Rooms)),
		attribute.Int64("floor.generation_ms", time.Since(startTime).Milliseconds()),
	)
	return f
}

func newFloor(depth, width, height int, rng *rand.Rand) *Floor {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = TileWall
		}
	}
	return &Floor{Depth: depth, Width: width, Height: height, Tiles: tiles, rng: rng}
}

// GetTile returns the tile at the given position. Outside the map is wall.
func (f *Floor) GetTile(x, y int) Tile {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return TileWall
	}
	return f.Tiles[y][x]
}

// assignKinds fixes the entrance and the exit and rolls every room between.
func (f *Floor) assignKinds(cfg config.Explore, final bool) {
	for i := range f.Rooms {
		f.Rooms[i].Kind = f.rollKind(cfg)
	}
	if len(f.Rooms) == 0 {
		return
	}
	f.Rooms[0].Kind = RoomEntrance
	f.Rooms[0].Visited = true

	exit := &f.Rooms[len(f.Rooms)-1]
	exit.Kind = RoomStairs
	if final {
		exit.Kind = RoomBoss
	}
}

func (f *Floor) rollKind(cfg config.Explore) RoomKind {
	roll := f.rng.Float64()
	for _, c := range []struct {
		kind   RoomKind
		chance float64
	}{
		{RoomCombat, cfg.CombatChance},
		{RoomTreasure, cfg.TreasureChance},
		{RoomTrap, cfg.TrapChance},
		{RoomEvent, cfg.EventChance},
	} {
		if roll < c.chance {
			return c.kind
		}
		roll -= c.chance
	}
	return RoomEmpty
}

// bspNode represents a node in the BSP tree.
type bspNode struct {
	x, y          int
	width, height int
	left, right   *bspNode
	room          *Room
}

func (n *bspNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// splitNode recursively splits a node until its sides drop under two leaves.
func (f *Floor) splitNode(node *bspNode) {
	canSplitX := node.width >= minLeafSize*2
	canSplitY := node.height >= minLeafSize*2

	var horizontal bool
	switch {
	case canSplitX && node.width > node.height:
		horizontal = false
	case canSplitY:
		horizontal = true
	case canSplitX:
		horizontal = false
	default:
		return
	}

	side := node.width
	if horizontal {
		side = node.height
	}
	splitPos := minLeafSize + f.rng.Intn(side-2*minLeafSize+1)

	if horizontal {
		node.left = &bspNode{x: node.x, y: node.y, width: node.width, height: splitPos}
		node.right = &bspNode{x: node.x, y: node.y + splitPos, width: node.width, height: node.height - splitPos}
	} else {
		node.left = &bspNode{x: node.x, y: node.y, width: splitPos, height: node.height}
		node.right = &bspNode{x: node.x + splitPos, y: node.y, width: node.width - splitPos, height: node.height}
	}

	f.splitNode(node.left)
	f.splitNode(node.right)
}

// createRooms places one room inside every leaf, in left-to-right order.
func (f *Floor) createRooms(node *bspNode) {
	if node == nil {
		return
	}
	if !node.isLeaf() {
		f.createRooms(node.left)
		f.createRooms(node.right)
		return
	}

	w := min(minRoomSize+f.rng.Intn(maxRoomSize-minRoomSize+1), node.width-2)
	h := min(minRoomSize+f.rng.Intn(maxRoomSize-minRoomSize+1), node.height-2)
	if w < minRoomSize || h < minRoomSize {
		return
	}

	room := Room{
		X:      node.x + 1 + f.rng.Intn(node.width-w-1),
		Y:      node.y + 1 + f.rng.Intn(node.height-h-1),
		Width:  w,
		Height: h,
	}
	node.room = &room
	f.Rooms = append(f.Rooms, room)
	f.carve(room.X, room.Y, room.X+room.Width-1, room.Y+room.Height-1)
}

// connectRooms joins the two halves of every split with a corridor.
func (f *Floor) connectRooms(node *bspNode) {
	if node == nil || node.isLeaf() {
		return
	}
	f.connectRooms(node.left)
	f.connectRooms(node.right)

	a, b := firstRoom(node.left), firstRoom(node.right)
	if a == nil || b == nil {
		return
	}
	x1, y1 := a.Center()
	x2, y2 := b.Center()
	if f.rng.Intn(2) == 0 {
		f.carve(x1, y1, x2, y1)
		f.carve(x2, y1, x2, y2)
	} else {
		f.carve(x1, y1, x1, y2)
		f.carve(x1, y2, x2, y2)
	}
}

func firstRoom(node *bspNode) *Room {
	if node == nil {
		return nil
	}
	if node.room != nil {
		return node.room
	}
	if room := firstRoom(node.left); room != nil {
		return room
	}
	return firstRoom(node.right)
}

// carve turns the rectangle between two corners into floor, leaving the
// outer wall intact.
func (f *Floor) carve(x1, y1, x2, y2 int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := max(y1, 1); y <= min(y2, f.Height-2); y++ {
		for x := max(x1, 1); x <= min(x2, f.Width-2); x++ {
			f.Tiles[y][x] = TileFloor
		}
	}
}
