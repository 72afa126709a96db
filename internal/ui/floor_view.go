package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/world"
)

var (
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleFloor  = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleRoom   = tcell.StyleDefault.Foreground(tcell.ColorTeal).Bold(true)
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Narrate appends room narration to the message log.
func (v *CombatView) Narrate(msgs []world.Message) {
	for _, m := range msgs {
		style := styleText
		switch m.Tone {
		case world.ToneGood:
			style = styleBuff
		case world.ToneBad:
			style = styleWarning
		}
		v.Log(m.Text, style)
	}
}

// RenderFloor draws the floor map with the player in room at, followed by
// the player panel, the menu and the log.
func (v *CombatView) RenderFloor(f *world.Floor, at int, title string, p combat.PlayerCombatant, menu []string) {
	v.screen.Clear()
	w, h := v.screen.Size()
	v.drawTitle(w, title)

	for y := range f.Height {
		for x := range f.Width {
			style := styleFloor
			if f.Tiles[y][x] == world.TileWall {
				style = styleWall
			}
			v.screen.SetContent(x+1, y+1, rune(f.Tiles[y][x]), style)
		}
	}
	for i, r := range f.Rooms {
		cx, cy := r.Center()
		switch {
		case i == at:
			v.screen.SetContent(cx+1, cy+1, '@', stylePlayer)
		case r.Visited:
			v.screen.SetContent(cx+1, cy+1, r.Kind.Symbol(), styleRoom)
		}
	}

	v.drawBody(f.Height+2, w, h, p, menu)
}

// RenderPage draws a screen without a map or roster: the player panel, the
// menu and the log.
func (v *CombatView) RenderPage(title string, p combat.PlayerCombatant, menu []string) {
	v.screen.Clear()
	w, h := v.screen.Size()
	v.drawTitle(w, title)
	v.drawBody(2, w, h, p, menu)
}

func (v *CombatView) drawTitle(w int, title string) {
	title = " " + title + " "
	v.screen.DrawText(0, 0, strings.Repeat("─", 2)+title+strings.Repeat("─", max(0, w-len([]rune(title))-2)), styleTitle)
}

func (v *CombatView) drawBody(y, w, h int, p combat.PlayerCombatant, menu []string) {
	v.drawPlayer(y, p)
	y += 3
	for _, line := range menu {
		v.screen.DrawText(2, y, line, styleText)
		y++
	}
	y++

	v.screen.DrawText(0, y, strings.Repeat("─", w), styleDim)
	y++
	v.drawLog(y, h-y)
	v.screen.Show()
}

// FloorTitle is the heading of the floor screen.
func FloorTitle(dungeon string, depth, floors int) string {
	return fmt.Sprintf("%s  floor %d/%d", dungeon, depth, floors)
}
