package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/echoes/internal/combat"
)

const (
	defaultLogLines = 200
	hpBarWidth      = 12
)

var (
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHP      = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMana    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleBuff    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDebuff  = tcell.StyleDefault.Foreground(tcell.ColorOrangeRed)
	styleTarget  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDefeat  = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleWarning = tcell.StyleDefault.Foreground(tcell.ColorOrange)
)

// glyph is implemented by enemies that know how they look on screen.
type glyph interface {
	Symbol() rune
	Color() tcell.Color
}

// CombatView is a combat.Presenter that keeps a scrolling message log and
// draws the roster, the player panel, a menu and the log.
type CombatView struct {
	screen *Screen
	log    []logLine
	limit  int
}

type logLine struct {
	text  string
	style tcell.Style
}

// NewCombatView creates a view drawing to screen.
func NewCombatView(screen *Screen) *CombatView {
	return &CombatView{screen: screen, limit: defaultLogLines}
}

// Notify appends the event to the message log.
func (v *CombatView) Notify(e combat.Event) {
	style := styleText
	switch e.Kind {
	case combat.EventRoundStarted:
		style = styleTitle
	case combat.EventActionRejected, combat.EventPlayerDefeated:
		style = styleWarning
	case combat.EventCritical, combat.EventEnemyDefeated:
		style = styleTarget
	case combat.EventStatusApplied, combat.EventTurnSkipped:
		style = statusStyle(e.EffectKind.Class())
	case combat.EventRewards, combat.EventLoot:
		style = styleBuff
	}
	v.Log(e.String(), style)
}

// Log appends a line of free text.
func (v *CombatView) Log(text string, style tcell.Style) {
	v.log = append(v.log, logLine{text: text, style: style})
	if over := len(v.log) - v.limit; over > 0 {
		v.log = v.log[over:]
	}
}

// Lines returns the message log text, oldest first.
func (v *CombatView) Lines() []string {
	out := make([]string, len(v.log))
	for i, l := range v.log {
		out[i] = l.text
	}
	return out
}

// ClearLog empties the message log.
func (v *CombatView) ClearLog() { v.log = nil }

// Render redraws the whole screen for the session. menu lines are drawn
// under the player panel; the log fills the remaining rows.
func (v *CombatView) Render(s *combat.Session, menu []string) {
	v.screen.Clear()
	w, h := v.screen.Size()

	title := fmt.Sprintf("Round %d", s.Round())
	if s.Ended() {
		title = strings.ToUpper(s.Result().String())
	}
	v.drawTitle(w, title)

	y := 2
	current := s.Current()
	for _, e := range s.Enemies() {
		v.drawEnemy(y, e, e == current)
		y++
	}
	for _, e := range s.Defeated() {
		v.screen.DrawText(2, y, fmt.Sprintf("  %s (defeated)", e.GetName()), styleDefeat)
		y++
	}

	v.drawBody(y+1, w, h, s.Player(), menu)
}

func (v *CombatView) drawEnemy(y int, e combat.EnemyCombatant, targeted bool) {
	marker, nameStyle := "  ", styleText
	if targeted {
		marker, nameStyle = "> ", styleTarget
	}
	x := v.screen.DrawText(0, y, marker, styleTarget)

	sym, color := '?', tcell.ColorWhite
	if g, ok := e.(glyph); ok {
		sym, color = g.Symbol(), g.Color()
	}
	v.screen.SetContent(x, y, sym, tcell.StyleDefault.Foreground(color).Bold(true))
	x += 2

	name := fmt.Sprintf("%-16s Lv %-2d ", e.GetName(), e.GetLevel())
	if e.IsBoss() {
		name = fmt.Sprintf("%-16s BOSS  ", e.GetName())
	}
	x = v.screen.DrawText(x, y, name, nameStyle)
	x = v.drawBar(x, y, e.GetHP(), e.GetMaxHP(), styleHP)
	x = v.screen.DrawText(x+1, y, fmt.Sprintf("%d/%d", e.GetHP(), e.GetMaxHP()), styleText)
	v.drawEffects(x+2, y, e.StatusEffects())
}

func (v *CombatView) drawPlayer(y int, p combat.PlayerCombatant) {
	v.screen.DrawText(2, y, fmt.Sprintf("%s  Lv %d", p.GetName(), p.GetLevel()), styleTitle)

	x := v.screen.DrawText(2, y+1, "HP ", styleText)
	x = v.drawBar(x, y+1, p.GetHP(), p.GetMaxHP(), styleHP)
	x = v.screen.DrawText(x+1, y+1, fmt.Sprintf("%d/%d", p.GetHP(), p.GetMaxHP()), styleText)
	x = v.screen.DrawText(x+3, y+1, "MP ", styleText)
	x = v.drawBar(x, y+1, p.GetMana(), p.GetMaxMana(), styleMana)
	v.screen.DrawText(x+1, y+1, fmt.Sprintf("%d/%d", p.GetMana(), p.GetMaxMana()), styleText)

	v.drawEffects(2, y+2, p.StatusEffects())
}

func (v *CombatView) drawBar(x, y, cur, maxV int, style tcell.Style) int {
	filled := 0
	if maxV > 0 {
		filled = cur * hpBarWidth / maxV
	}
	if cur > 0 && filled == 0 {
		filled = 1
	}
	for i := range hpBarWidth {
		r := '░'
		if i < filled {
			r = '█'
		}
		v.screen.SetContent(x+i, y, r, style)
	}
	return x + hpBarWidth
}

func (v *CombatView) drawEffects(x, y int, effects []combat.StatusEffect) {
	for _, e := range effects {
		x = v.screen.DrawText(x, y, fmt.Sprintf("[%s %d]", e.Name, e.Duration), statusStyle(e.Kind.Class()))
		x++
	}
}

func (v *CombatView) drawLog(top, rows int) {
	if rows <= 0 {
		return
	}
	start := max(0, len(v.log)-rows)
	for i, l := range v.log[start:] {
		v.screen.DrawText(1, top+i, l.text, l.style)
	}
}

func statusStyle(class string) tcell.Style {
	if class == "debuff" {
		return styleDebuff
	}
	return styleBuff
}

var _ combat.Presenter = (*CombatView)(nil)
