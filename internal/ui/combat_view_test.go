package ui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/combat/combattest"
	"github.com/samdwyer/echoes/internal/config"
)

func simScreen(t *testing.T, w, h int) (tcell.SimulationScreen, *Screen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	screen, err := Wrap(sim)
	require.NoError(t, err)
	sim.SetSize(w, h)
	t.Cleanup(screen.Close)
	return sim, screen
}

// rows returns the simulated screen as one string per row.
func rows(sim tcell.SimulationScreen) []string {
	cells, w, h := sim.GetContents()
	out := make([]string, h)
	for y := range h {
		var b strings.Builder
		for x := range w {
			c := cells[y*w+x]
			if len(c.Runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(c.Runes[0])
		}
		out[y] = strings.TrimRight(b.String(), " ")
	}
	return out
}

func containsRow(all []string, sub string) bool {
	for _, r := range all {
		if strings.Contains(r, sub) {
			return true
		}
	}
	return false
}

func TestCombatView_LogKeepsEventsInOrder(t *testing.T) {
	_, screen := simScreen(t, 80, 24)
	v := NewCombatView(screen)

	v.Notify(combat.Event{Kind: combat.EventRoundStarted, Round: 1})
	v.Notify(combat.Event{Kind: combat.EventDamage, Target: "Rat", Amount: 7})
	v.Notify(combat.Event{Kind: combat.EventActionRejected, Err: errors.New("not enough mana")})

	assert.Equal(t, []string{
		"Round 1",
		"Rat takes 7 damage.",
		"Cannot do that: not enough mana",
	}, v.Lines())

	v.ClearLog()
	assert.Empty(t, v.Lines())
}

func TestCombatView_LogIsBounded(t *testing.T) {
	_, screen := simScreen(t, 80, 24)
	v := NewCombatView(screen)
	v.limit = 3

	for i := 1; i <= 5; i++ {
		v.Notify(combat.Event{Kind: combat.EventRoundStarted, Round: i})
	}
	assert.Equal(t, []string{"Round 3", "Round 4", "Round 5"}, v.Lines())
}

func TestCombatView_Render(t *testing.T) {
	sim, screen := simScreen(t, 80, 30)
	v := NewCombatView(screen)

	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 8})
	player.Mana, player.MaxMana = 10, 20
	rat := combattest.NewEnemy("Rat", 15, combat.Stats{})
	wolf := combattest.NewEnemy("Wolf", 20, combat.Stats{})

	engine := combat.NewEngine(config.Default(), combattest.Content{}, combat.WithRandom(combattest.Fixed(0.5)))
	s, err := engine.Start(context.Background(), player, player, []combat.EnemyCombatant{rat, wolf}, v)
	require.NoError(t, err)
	require.NoError(t, s.RunUntilInput(context.Background()))

	v.Render(s, []string{"[a] Attack  [f] Flee"})
	got := rows(sim)

	assert.Contains(t, got[0], "Round 1")
	assert.True(t, containsRow(got, "> ? Rat"), "current target is marked: %q", got)
	assert.True(t, containsRow(got, "Wolf"))
	assert.True(t, containsRow(got, "15/15"))
	assert.True(t, containsRow(got, "50/50"))
	assert.True(t, containsRow(got, "10/20"))
	assert.True(t, containsRow(got, "[a] Attack  [f] Flee"))

	sep := slices.IndexFunc(got, func(r string) bool {
		return r != "" && strings.Trim(r, "─") == ""
	})
	require.GreaterOrEqual(t, sep, 0, "log separator drawn")
	assert.Equal(t, "Round 1", strings.TrimSpace(got[sep+1]))
}

func TestCombatView_RenderShowsDefeatedAndResult(t *testing.T) {
	sim, screen := simScreen(t, 80, 30)
	v := NewCombatView(screen)

	player := combattest.NewPlayer("Hero", 50, combat.Stats{Strength: 30})
	rat := combattest.NewEnemy("Rat", 5, combat.Stats{})

	engine := combat.NewEngine(config.Default(), combattest.Content{}, combat.WithRandom(combattest.Fixed(0.5)))
	s, err := engine.Start(context.Background(), player, player, []combat.EnemyCombatant{rat}, v)
	require.NoError(t, err)

	result, err := combat.Run(context.Background(), s, combattest.Repeat(combat.Attack()), nil)
	require.NoError(t, err)
	require.Equal(t, combat.ResultVictory, result)

	v.Render(s, nil)
	got := rows(sim)

	assert.Contains(t, got[0], "VICTORY")
	assert.True(t, containsRow(got, "Rat (defeated)"))
	assert.True(t, containsRow(got, "Combat over: victory"))
}

func TestDrawTextClipsAtWidth(t *testing.T) {
	sim, screen := simScreen(t, 10, 2)

	end := screen.DrawText(6, 0, "abcdefgh", styleText)
	screen.Show()

	assert.Equal(t, 10, end)
	assert.Equal(t, "      abcd", rows(sim)[0])
}
