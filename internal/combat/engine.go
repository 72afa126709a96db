package combat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/telemetry"
)

// Engine starts combat sessions and tracks which players are in one. It is
// safe for concurrent use; the sessions it returns are not.
type Engine struct {
	cfg     config.Config
	content ContentProvider
	spawner EnemySpawner
	rng     Random
	logger  *zap.Logger
	tracer  trace.Tracer

	mu     sync.Mutex
	active map[string]*Session
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandom sets the random source shared by every session.
func WithRandom(rng Random) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSpawner sets the source of summoned minions.
func WithSpawner(s EnemySpawner) Option {
	return func(e *Engine) { e.spawner = s }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine creates an engine. Without WithRandom the source is seeded from
// cfg.Settings.Seed, or from the clock when that is zero.
func NewEngine(cfg config.Config, content ContentProvider, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		content: content,
		logger:  zap.NewNop(),
		tracer:  telemetry.Tracer("combat"),
		active:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := cfg.Settings.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = NewRandom(seed)
	}
	return e
}

// Start opens a session for player against enemies. The first enemy is the
// initial target. Rewards go to rewards and every event to presenter, which
// may be nil.
func (e *Engine) Start(ctx context.Context, player PlayerCombatant, rewards RewardSink, enemies []EnemyCombatant, presenter Presenter) (*Session, error) {
	if len(enemies) == 0 {
		return nil, e.violation(ErrNoEnemies)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.active[player.PlayerID()]; ok {
		return nil, e.violation(ErrSessionActive.with(fmt.Sprintf("%s is already in combat", player.GetName())))
	}

	s := &Session{
		id:        uuid.NewString(),
		engine:    e,
		cfg:       e.cfg,
		resolver:  NewResolver(e.cfg, e.rng),
		content:   e.content,
		spawner:   e.spawner,
		presenter: presenter,
		logger:    e.logger,
		tracer:    e.tracer,
		player:    player,
		rewards:   rewards,
		enemies:   append([]EnemyCombatant(nil), enemies...),
		current:   enemies[0],
	}
	s.phases = newPhaseMachine(func(from, to Phase) {
		s.logger.Debug("phase",
			zap.String("session", s.id),
			zap.Int("round", s.round),
			zap.String("from", string(from)),
			zap.String("phase", string(to)),
		)
	})
	player.ResetCooldowns()
	e.active[player.PlayerID()] = s

	_, span := e.tracer.Start(ctx, "combat.start")
	span.SetAttributes(
		attribute.String("session", s.id),
		attribute.Int("enemy_count", len(enemies)),
		attribute.Int("player_hp", player.GetHP()),
	)
	span.End()

	e.logger.Info("combat started",
		zap.String("session", s.id),
		zap.String("player", player.GetName()),
		zap.Int("enemies", len(enemies)),
	)
	return s, nil
}

// Active returns the running session for a player, if any.
func (e *Engine) Active(playerID string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.active[playerID]
	return s, ok
}

// Abandon forgets the running session for a player without settling it: no
// rewards and no defeat penalty are applied. It is for sessions whose
// driver gave up, e.g. after the context was cancelled or the player quit.
// It reports whether a session was dropped.
func (e *Engine) Abandon(playerID string) bool {
	e.mu.Lock()
	s, ok := e.active[playerID]
	delete(e.active, playerID)
	e.mu.Unlock()

	if ok {
		s.endRoundSpan()
		e.logger.Info("combat abandoned",
			zap.String("session", s.id),
			zap.Int("round", s.round),
		)
	}
	return ok
}

func (e *Engine) release(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active[s.player.PlayerID()] == s {
		delete(e.active, s.player.PlayerID())
	}
}

func (e *Engine) violation(err *Error) error {
	if e.cfg.Settings.DebugMode {
		panic(err)
	}
	e.logger.Error("combat invariant violated", zap.Error(err))
	return err
}
