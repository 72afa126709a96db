package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/echoes/internal/combat"
	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/entity"
	"github.com/samdwyer/echoes/internal/gamedata"
	"github.com/samdwyer/echoes/internal/telemetry"
	"github.com/samdwyer/echoes/internal/ui"
	"github.com/samdwyer/echoes/internal/world"
)

// ErrQuit is returned by NextAction when the player asks to leave.
var ErrQuit = errors.New("player quit")

var (
	styleNotice  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLearned = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
)

// Game holds the terminal loop state.
type Game struct {
	cfg     config.Config
	content *gamedata.Content
	player  *entity.Player
	engine  *combat.Engine
	factory *entity.Factory

	// layout drives floor generation; dice every roll inside a room and
	// in combat.
	layout     *rand.Rand
	dice       combat.Random
	expedition *world.Expedition

	screen   *ui.Screen
	view     *ui.CombatView
	events   chan tcell.Event
	done     chan struct{}
	stopOnce sync.Once

	logger *zap.Logger
	tracer trace.Tracer

	state  State
	fights int
}

// New creates a game for player. The screen must already be initialized.
func New(cfg config.Config, content *gamedata.Content, player *entity.Player, screen *ui.Screen, logger *zap.Logger) *Game {
	seed := cfg.Settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	factory := entity.NewFactory(content.Enemies, cfg.Combat, rand.New(rand.NewSource(seed)))
	dice := combat.NewRandom(seed + 1)

	return &Game{
		cfg:     cfg,
		content: content,
		player:  player,
		engine:  combat.NewEngine(cfg, content, combat.WithLogger(logger), combat.WithSpawner(factory), combat.WithRandom(dice)),
		factory: factory,
		layout:  rand.New(rand.NewSource(seed + 2)),
		dice:    dice,
		screen:  screen,
		view:    ui.NewCombatView(screen),
		events:  make(chan tcell.Event, 16),
		done:    make(chan struct{}),
		logger:  logger,
		tracer:  telemetry.Tracer("game"),
	}
}

// Run sends the player on expedition after expedition until they quit or
// ctx ends.
func (g *Game) Run(ctx context.Context) error {
	go g.pollEvents()
	defer g.stop()

	for {
		err := g.explore(ctx)
		switch {
		case errors.Is(err, ErrQuit), errors.Is(err, context.Canceled):
			g.logger.Info("game over", zap.Int("fights", g.fights), zap.Int("level", g.player.Level))
			return nil
		case err != nil:
			return err
		}
	}
}

// explore walks one expedition room by room. It returns nil when the boss
// falls or the player is defeated.
func (g *Game) explore(ctx context.Context) error {
	dungeon := world.PickDungeon(g.content.Dungeons, g.player.Level, g.cfg.Explore.LevelRange)
	if dungeon == nil {
		return errors.New("no dungeon available")
	}
	ctx, span := g.tracer.Start(ctx, "game.expedition")
	defer span.End()
	span.SetAttributes(
		attribute.String("dungeon", dungeon.ID),
		attribute.Int("player_level", g.player.Level),
	)

	g.expedition = world.NewExpedition(ctx, g.content, dungeon, g.cfg.Explore, g.layout, g.dice)
	g.logger.Info("expedition started", zap.String("dungeon", dungeon.ID), zap.Int("floors", dungeon.Floors))
	g.view.ClearLog()
	g.view.Narrate(g.expedition.Resolve(g.player).Messages)

	for {
		g.state = StateExplore
		if err := g.await(ctx, nil); err != nil {
			return err
		}
		room, ok := g.expedition.Advance(ctx)
		if !ok {
			return nil
		}
		g.logger.Debug("room entered",
			zap.Stringer("kind", room.Kind),
			zap.Int("depth", g.expedition.Floor.Depth),
			zap.Int("room", g.expedition.RoomIndex()),
		)

		if room.Kind != world.RoomCombat && room.Kind != world.RoomBoss {
			g.view.Narrate(g.expedition.Resolve(g.player).Messages)
			g.reportLearned()
			continue
		}

		s, err := g.fight(ctx, room)
		if err != nil {
			return err
		}
		over := g.settle(s.Result(), room)
		g.state = StateResult
		if err := g.await(ctx, s); err != nil {
			return err
		}
		if over {
			span.SetAttributes(attribute.Bool("cleared", g.expedition.Done()))
			return nil
		}
		g.view.ClearLog()
	}
}

// fight runs the encounter waiting in room and returns the finished
// session.
func (g *Game) fight(ctx context.Context, room world.Room) (*combat.Session, error) {
	ctx, span := g.tracer.Start(ctx, "game.encounter")
	defer span.End()

	enemies := g.encounter(room)
	if len(enemies) == 0 {
		return nil, errors.New("no enemies available")
	}
	roster := make([]combat.EnemyCombatant, len(enemies))
	for i, e := range enemies {
		roster[i] = e
	}
	span.SetAttributes(
		attribute.Int("fight", g.fights+1),
		attribute.Int("enemy_count", len(roster)),
		attribute.Int("player_level", g.player.Level),
		attribute.Bool("boss", room.Kind == world.RoomBoss),
	)

	g.view.ClearLog()
	s, err := g.engine.Start(ctx, g.player, g.player, roster, g.view)
	if err != nil {
		return nil, fmt.Errorf("start encounter: %w", err)
	}

	g.state = StateCommand
	pacer := renderPacer{g: g, s: s, inner: combat.TimerPacer{Delays: g.cfg.Pacing}}
	result, err := combat.Run(ctx, s, g, pacer)
	if err != nil {
		g.engine.Abandon(g.player.ID)
		return nil, err
	}
	span.SetAttributes(attribute.String("result", result.String()))

	g.fights++
	g.logger.Info("fight finished",
		zap.Int("fight", g.fights),
		zap.Stringer("result", result),
		zap.Int("hp", g.player.GetHP()),
		zap.Int("gold", g.player.Gold()),
	)
	return s, nil
}

// encounter builds the enemies waiting in room from the dungeon's tables.
func (g *Game) encounter(room world.Room) []*entity.Enemy {
	d := g.expedition.Dungeon
	if room.Kind == world.RoomBoss {
		if boss, ok := g.factory.Boss(d.Boss); ok {
			return []*entity.Enemy{boss}
		}
		g.logger.Warn("boss missing from content", zap.String("key", d.Boss))
	}
	return g.factory.EncounterFrom(d.Enemies)
}

// settle applies what a finished fight means for the expedition and
// reports whether the expedition is over. A beaten boss completes it and
// brings the dungeon's companion along; a defeat sends the player home.
func (g *Game) settle(result combat.Result, room world.Room) bool {
	g.reportLearned()

	switch {
	case result == combat.ResultDefeat:
		g.view.Log("You are carried back to the surface.", styleNotice)
		return true
	case result == combat.ResultVictory && room.Kind == world.RoomBoss:
		d := g.expedition.Dungeon
		g.expedition.Complete()
		g.view.Log(fmt.Sprintf("%s is cleared!", d.Name), styleLearned)
		if d.Companion != nil {
			g.player.SetCompanion(entity.NewCompanion(*d.Companion))
			g.view.Log(fmt.Sprintf("%s joins you.", d.Companion.Name), styleLearned)
		}
		g.logger.Info("dungeon cleared", zap.String("dungeon", d.ID), zap.Int("level", g.player.Level))
		return true
	}
	return false
}

// reportLearned logs the abilities picked up by level-ups.
func (g *Game) reportLearned() {
	for _, id := range g.player.NewAbilities() {
		name := id
		if def, ok := g.content.Ability(id); ok {
			name = def.Name
		}
		g.view.Log(fmt.Sprintf("You learned %s!", name), styleLearned)
	}
}

// NextAction renders the session and reads keys until one of them names an
// action.
func (g *Game) NextAction(ctx context.Context, s *combat.Session) (combat.Action, error) {
	for {
		g.view.Render(s, menu(g.state, g.player, g.content))

		ev, err := g.nextEvent(ctx)
		if err != nil {
			return combat.Action{}, err
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			g.screen.Sync()
		case *tcell.EventKey:
			in := interpret(g.state, ev, g.player.EquippedAbilities(), g.player.UsableItems())
			g.state = in.next
			switch {
			case in.quit:
				return combat.Action{}, ErrQuit
			case in.act:
				return in.action, nil
			case in.cycle:
				if i := nextTarget(s); i >= 0 {
					if err := s.SelectEnemy(i); err != nil {
						g.logger.Debug("target change refused", zap.Error(err))
					}
				}
			case in.notice != "":
				g.view.Log(in.notice, styleNotice)
			}
		}
	}
}

// await shows the floor, or the finished session s, and waits for a key.
// [e] visits the equipment screens first.
func (g *Game) await(ctx context.Context, s *combat.Session) error {
	for {
		g.render(s)
		ev, err := g.nextEvent(ctx)
		if err != nil {
			return err
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			g.screen.Sync()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q', ev.Rune() == 'Q':
				return ErrQuit
			case ev.Rune() == 'e', ev.Rune() == 'E':
				back := g.state
				if err := g.manageEquipment(ctx); err != nil {
					return err
				}
				g.state = back
			default:
				return nil
			}
		}
	}
}

// manageEquipment runs the equipment screens until the player leaves them.
func (g *Game) manageEquipment(ctx context.Context) error {
	g.state = StateEquip
	for {
		g.render(nil)
		ev, err := g.nextEvent(ctx)
		if err != nil {
			return err
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}

		in := interpretEquip(g.state, key, g.player.EquippableItems(), g.player.Abilities())
		g.state = in.next
		switch {
		case in.quit:
			return ErrQuit
		case in.done:
			return nil
		case in.equip >= 0:
			item, _ := g.player.ItemAt(in.equip)
			if err := g.player.Equip(in.equip); err != nil {
				g.view.Log(err.Error(), styleNotice)
			} else {
				g.view.Log(fmt.Sprintf("You equip %s.", item.Name), styleNotice)
			}
		case in.unequip != "":
			if err := g.player.Unequip(in.unequip); err != nil {
				g.view.Log(err.Error(), styleNotice)
			}
		case in.ability != "":
			if err := g.player.EquipAbility(in.ability, 0); err != nil {
				g.view.Log(err.Error(), styleNotice)
			}
		case in.notice != "":
			g.view.Log(in.notice, styleNotice)
		}
	}
}

func (g *Game) render(s *combat.Session) {
	lines := menu(g.state, g.player, g.content)
	switch {
	case g.state == StateEquip || g.state == StateAbilitySelect:
		g.view.RenderPage("Equipment", g.player, lines)
	case s != nil:
		g.view.Render(s, lines)
	case g.expedition != nil:
		e := g.expedition
		title := ui.FloorTitle(e.Dungeon.Name, e.Floor.Depth, e.Dungeon.Floors)
		g.view.RenderFloor(e.Floor, e.RoomIndex(), title, g.player, lines)
	}
}

func (g *Game) nextEvent(ctx context.Context) (tcell.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ev, ok := <-g.events:
		if !ok {
			return nil, ErrQuit
		}
		return ev, nil
	}
}

// pollEvents forwards terminal events until the screen is closed or the
// game stops listening.
func (g *Game) pollEvents() {
	defer close(g.events)
	for {
		ev := g.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case g.events <- ev:
		case <-g.done:
			return
		}
	}
}

// stop tells pollEvents nobody reads events any more.
func (g *Game) stop() {
	g.stopOnce.Do(func() { close(g.done) })
}

// Close releases the terminal.
func (g *Game) Close() {
	g.stop()
	if g.screen != nil {
		g.screen.Close()
	}
}

// renderPacer redraws before every pause so each step is visible.
type renderPacer struct {
	g     *Game
	s     *combat.Session
	inner combat.Pacer
}

func (p renderPacer) Pause(ctx context.Context, from, to combat.Phase) error {
	p.g.view.Render(p.s, menu(p.g.state, p.g.player, p.g.content))
	return p.inner.Pause(ctx, from, to)
}

var _ combat.ActionSource = (*Game)(nil)
