package combat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/looplab/fsm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/echoes/internal/config"
	"github.com/samdwyer/echoes/internal/gamedata"
)

// Session is one battle from start to victory, defeat or escape. It is
// driven by a single owner through Step and Submit and is not safe for
// concurrent use.
type Session struct {
	id        string
	engine    *Engine
	cfg       config.Config
	resolver  *Resolver
	content   ContentProvider
	spawner   EnemySpawner
	presenter Presenter
	logger    *zap.Logger
	tracer    trace.Tracer

	player  PlayerCombatant
	rewards RewardSink

	enemies        []EnemyCombatant
	defeated       []EnemyCombatant
	current        EnemyCombatant
	round          int
	escapeAttempts int
	loot           []LootDrop

	// Enemies still to act in the current enemy phase.
	queue []EnemyCombatant

	phases    *fsm.FSM
	roundSpan trace.Span
	result    Result
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Round returns the current round number. It is 0 until the first round
// starts.
func (s *Session) Round() int { return s.round }

// EscapeAttempts returns how many times the player has tried to flee.
func (s *Session) EscapeAttempts() int { return s.escapeAttempts }

// Player returns the player in this session.
func (s *Session) Player() PlayerCombatant { return s.player }

// Enemies returns the live roster in order.
func (s *Session) Enemies() []EnemyCombatant { return slices.Clone(s.enemies) }

// Defeated returns the enemies defeated so far, in order of defeat.
func (s *Session) Defeated() []EnemyCombatant { return slices.Clone(s.defeated) }

// Current returns the player's target, or nil when no enemies remain.
func (s *Session) Current() EnemyCombatant { return s.current }

// CurrentIndex returns the roster index of the target, or -1.
func (s *Session) CurrentIndex() int {
	return slices.IndexFunc(s.enemies, func(e EnemyCombatant) bool { return e == s.current })
}

// Loot returns the drops waiting for the victory flush.
func (s *Session) Loot() []LootDrop { return slices.Clone(s.loot) }

// Phase returns the scheduler state.
func (s *Session) Phase() Phase { return Phase(s.phases.Current()) }

// Result returns how the session ended, or ResultNone while it runs.
func (s *Session) Result() Result { return s.result }

// Ended reports whether the session reached its terminal phase.
func (s *Session) Ended() bool { return s.Phase() == PhaseSessionEnd }

// AwaitingInput reports whether the scheduler is blocked on the player.
func (s *Session) AwaitingInput() bool {
	return s.Phase() == PhasePlayerActing && !s.player.SkipsTurn()
}

// Resolver exposes the formulas in use, e.g. for showing odds.
func (s *Session) Resolver() *Resolver { return s.resolver }

// =============================================================================
// Scheduler
// =============================================================================

// Step performs the work of the current phase and advances the machine.
// In player_acting it returns ErrAwaitingAction until Submit is called,
// unless the player is stunned, in which case the turn is forfeited. In
// enemy_acting each Step runs one enemy; the phase advances after the last.
func (s *Session) Step(ctx context.Context) error {
	switch s.Phase() {
	case PhaseSessionEnd:
		return ErrSessionEnded

	case PhaseRoundStart:
		return s.startRound(ctx)

	case PhasePlayerActing:
		if !s.player.SkipsTurn() {
			return ErrAwaitingAction
		}
		s.emit(Event{Kind: EventTurnSkipped, Actor: s.player.GetName(), EffectKind: skipKind(s.player)})
		return s.transition(ctx, evResolve)

	case PhasePlayerResolved:
		return s.transition(ctx, evCheckFoes)

	case PhaseDefeatCheckPlayerTurn:
		if !s.player.IsAlive() {
			return s.finish(ctx, ResultDefeat)
		}
		if len(s.enemies) == 0 {
			return s.finish(ctx, ResultVictory)
		}
		s.queue = slices.Clone(s.enemies)
		return s.transition(ctx, evEnemyTurn)

	case PhaseEnemyActing:
		return s.enemyStep(ctx)

	case PhaseDefeatCheckEnemyTurn:
		if !s.player.IsAlive() {
			return s.finish(ctx, ResultDefeat)
		}
		if len(s.enemies) == 0 {
			return s.finish(ctx, ResultVictory)
		}
		return s.transition(ctx, evEndRound)

	case PhaseRoundEnd:
		s.endRoundSpan()
		return s.transition(ctx, evNextRound)
	}
	return fmt.Errorf("combat: unknown phase %q", s.Phase())
}

// RunUntilInput steps until the player must choose an action or the
// session ends.
func (s *Session) RunUntilInput(ctx context.Context) error {
	for !s.Ended() {
		if err := s.Step(ctx); err != nil {
			if errors.Is(err, ErrAwaitingAction) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *Session) startRound(ctx context.Context) error {
	s.round++
	_, s.roundSpan = s.tracer.Start(ctx, "combat.round")
	s.roundSpan.SetAttributes(
		attribute.String("session", s.id),
		attribute.Int("round", s.round),
		attribute.Int("enemy_count", len(s.enemies)),
	)
	s.emit(Event{Kind: EventRoundStarted})

	s.tickStatus(s.player)
	for _, e := range s.enemies {
		s.tickStatus(e)
	}
	s.player.UpdateCooldowns()
	for _, e := range s.enemies {
		e.UpdateCooldowns()
	}
	s.sweepDefeated()

	if !s.player.IsAlive() {
		return s.finish(ctx, ResultDefeat)
	}
	if len(s.enemies) == 0 {
		return s.finish(ctx, ResultVictory)
	}
	return s.transition(ctx, evBegin)
}

func (s *Session) tickStatus(c Combatant) {
	tick := c.UpdateStatusEffects()
	for _, t := range tick.Ticks {
		amount := t.Damage
		if t.Healed > 0 {
			amount = -t.Healed
		}
		s.emit(Event{Kind: EventStatusTick, Target: c.GetName(), Effect: t.Effect.Name, EffectKind: t.Effect.Kind, Amount: amount})
	}
	for _, e := range tick.Expired {
		s.emit(Event{Kind: EventStatusExpired, Target: c.GetName(), Effect: e.Name, EffectKind: e.Kind})
	}
}

func (s *Session) enemyStep(ctx context.Context) error {
	for len(s.queue) > 0 && s.player.IsAlive() {
		e := s.queue[0]
		s.queue = s.queue[1:]
		if !e.IsAlive() {
			continue
		}
		s.enemyTurn(ctx, e)
		return nil
	}
	s.queue = nil
	return s.transition(ctx, evCheckHero)
}

func (s *Session) enemyTurn(ctx context.Context, e EnemyCombatant) {
	_, span := s.tracer.Start(ctx, "combat.turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("actor", e.GetName()),
		attribute.Int("round", s.round),
	)

	if e.SkipsTurn() {
		s.emit(Event{Kind: EventTurnSkipped, Actor: e.GetName(), EffectKind: skipKind(e)})
		span.SetAttributes(attribute.Bool("skipped", true))
		return
	}

	res := s.resolver.EnemyAttack(e, s.player, s)
	span.SetAttributes(
		attribute.String("action", res.Attack.Name),
		attribute.Int("damage", res.Hit.Damage),
	)

	target := ""
	if res.Hit.Target != nil {
		target = s.player.GetName()
	}
	s.emit(Event{Kind: EventAttack, Actor: e.GetName(), Target: target, Action: res.Attack.Name})

	if res.Hit.Target != nil {
		s.emitHit(e, res.Attack.Name, res.Hit)
	}
	if res.SelfEffect != nil {
		s.emitStatus(e, *res.SelfEffect)
	}
	if res.Healed > 0 {
		s.emit(Event{Kind: EventHealed, Target: e.GetName(), Amount: res.Healed})
	}
	if res.Summoned != nil {
		s.emit(Event{Kind: EventMinionSummoned, Actor: e.GetName(), Target: res.Summoned.GetName()})
	}
	if res.Stolen > 0 {
		s.emit(Event{Kind: EventGoldStolen, Actor: e.GetName(), Amount: res.Stolen})
	}

	// Reflected damage can kill the attacker mid-phase.
	s.sweepDefeated()
}

// =============================================================================
// Player actions
// =============================================================================

// Submit resolves the player's action. It is only legal in player_acting;
// rejected actions change nothing and leave the turn open.
func (s *Session) Submit(ctx context.Context, a Action) error {
	switch s.Phase() {
	case PhaseSessionEnd:
		return s.reject(a, ErrSessionEnded)
	case PhasePlayerActing:
	default:
		return s.reject(a, ErrNotPlayerTurn)
	}
	if s.player.SkipsTurn() {
		return s.reject(a, ErrNotPlayerTurn.with(s.player.GetName()+" cannot act this turn"))
	}

	ctx, span := s.tracer.Start(ctx, "combat.turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("actor", s.player.GetName()),
		attribute.String("action", a.String()),
		attribute.Int("round", s.round),
	)

	var err error
	switch a.Kind {
	case ActionAttack:
		err = s.playerAttack(span)
	case ActionAbility:
		err = s.playerAbility(span, a.AbilityID)
	case ActionItem:
		err = s.playerItem(a.ItemIndex)
	case ActionFlee:
		return s.playerFlee(ctx)
	default:
		err = ErrUnknownAction
	}
	if err != nil {
		span.SetAttributes(attribute.Bool("rejected", true))
		return s.reject(a, err)
	}

	s.sweepDefeated()
	return s.transition(ctx, evResolve)
}

// SelectEnemy changes the target. It does not consume the turn.
func (s *Session) SelectEnemy(i int) error {
	if s.Phase() != PhasePlayerActing {
		return s.reject(Action{}, ErrNotPlayerTurn)
	}
	if i < 0 || i >= len(s.enemies) || !s.enemies[i].IsAlive() {
		return s.violation(ErrInvalidTarget.with(fmt.Sprintf("no live enemy at index %d", i)))
	}
	s.current = s.enemies[i]
	s.emit(Event{Kind: EventTargetChanged, Target: s.current.GetName()})
	return nil
}

func (s *Session) liveTarget() (EnemyCombatant, error) {
	if s.current == nil || !s.current.IsAlive() {
		return nil, ErrTargetDefeated
	}
	return s.current, nil
}

func (s *Session) playerAttack(span trace.Span) error {
	target, err := s.liveTarget()
	if err != nil {
		return err
	}
	hit := s.resolver.BasicAttack(s.player, target)
	span.SetAttributes(attribute.Int("damage", hit.Damage))

	s.emit(Event{Kind: EventAttack, Actor: s.player.GetName(), Target: target.GetName(), Action: "Attack"})
	s.emitHit(s.player, "Attack", hit)
	return nil
}

func (s *Session) playerAbility(span trace.Span, id string) error {
	if !slices.Contains(s.player.EquippedAbilities(), id) {
		return ErrAbilityNotEquipped.with(id + " is not equipped")
	}
	ab, ok := s.content.Ability(id)
	if !ok {
		s.logger.Warn("unknown ability, falling back to attack",
			zap.String("session", s.id),
			zap.String("ability", id),
		)
		return s.playerAttack(span)
	}
	if err := s.resolver.CheckAbility(s.player, ab); err != nil {
		return err
	}

	var targets []Combatant
	switch {
	case ab.Heals() || ab.SelfTargeted():
	case ab.AOE:
		for _, e := range s.enemies {
			if e.IsAlive() {
				targets = append(targets, e)
			}
		}
	default:
		target, err := s.liveTarget()
		if err != nil {
			return err
		}
		targets = []Combatant{target}
	}

	res := s.resolver.ResolveAbility(s.player, ab, targets)

	evTarget := ""
	if len(targets) == 1 {
		evTarget = targets[0].GetName()
	}
	s.emit(Event{Kind: EventAttack, Actor: s.player.GetName(), Target: evTarget, Action: ab.Name})

	total := 0
	for _, hit := range res.Hits {
		s.emitHit(s.player, ab.Name, hit)
		total += hit.Damage
	}
	if res.Healed > 0 {
		s.emit(Event{Kind: EventHealed, Target: s.player.GetName(), Amount: res.Healed})
	}
	if res.SelfEffect != nil {
		s.emitStatus(s.player, *res.SelfEffect)
	}
	span.SetAttributes(attribute.Int("damage", total))
	return nil
}

func (s *Session) playerItem(index int) error {
	res, err := s.resolver.UseItem(s.player, index)
	if err != nil {
		return err
	}

	name := s.player.GetName()
	s.emit(Event{Kind: EventAttack, Actor: name, Action: res.Item.Name, Item: res.Item.Name})
	if res.Healed > 0 {
		s.emit(Event{Kind: EventHealed, Target: name, Amount: res.Healed})
	}
	if res.Restored > 0 {
		s.emit(Event{Kind: EventManaRestored, Target: name, Amount: res.Restored})
	}
	if res.Applied != nil {
		s.emitStatus(s.player, *res.Applied)
	}
	for _, e := range res.Cured {
		s.emit(Event{Kind: EventStatusCleared, Target: name, Effect: e.Name, EffectKind: e.Kind})
	}
	return nil
}

func (s *Session) playerFlee(ctx context.Context) error {
	level := 1
	if s.current != nil {
		level = s.current.GetLevel()
	}
	_, escaped := s.resolver.Flee(s.player, level, s.escapeAttempts)
	s.escapeAttempts++

	if escaped {
		s.emit(Event{Kind: EventEscaped, Actor: s.player.GetName()})
		return s.finish(ctx, ResultEscaped)
	}
	s.emit(Event{Kind: EventEscapeFailed, Actor: s.player.GetName()})
	return s.transition(ctx, evResolve)
}

// =============================================================================
// Battlefield
// =============================================================================

// Summon adds a minion for summoner when the roster has room. A minion
// sharing its key with enemies already met in this fight is numbered after
// them.
func (s *Session) Summon(summoner EnemyCombatant) EnemyCombatant {
	if s.spawner == nil || len(s.enemies) >= s.cfg.Combat.MaxEnemies {
		return nil
	}
	level := max(1, summoner.GetLevel()-s.cfg.Combat.MinionLevelOffset)
	minion, ok := s.spawner.SpawnEnemy(s.cfg.Combat.MinionKey, level)
	if !ok {
		s.logger.Warn("minion spawn failed", zap.String("session", s.id), zap.String("key", s.cfg.Combat.MinionKey))
		return nil
	}
	if r, ok := minion.(Renamable); ok {
		if n := s.countKey(minion.GetKey()) + 1; n > 1 {
			r.SetName(fmt.Sprintf("%s %d", minion.GetName(), n))
		}
	}
	s.enemies = append(s.enemies, minion)
	return minion
}

func (s *Session) countKey(key string) int {
	n := 0
	for _, e := range slices.Concat(s.enemies, s.defeated) {
		if e.GetKey() == key {
			n++
		}
	}
	return n
}

// StealGold takes up to level*StealGoldPerLevel gold from the player.
func (s *Session) StealGold(thief EnemyCombatant) int {
	amount := min(thief.GetLevel()*s.cfg.Combat.StealGoldPerLevel, s.rewards.Gold())
	if amount <= 0 {
		return 0
	}
	return s.rewards.LoseGold(amount)
}

var _ Battlefield = (*Session)(nil)

// =============================================================================
// Defeat, victory and escape
// =============================================================================

// sweepDefeated removes every dead enemy from the roster in roster order.
func (s *Session) sweepDefeated() {
	for _, e := range slices.Clone(s.enemies) {
		if !e.IsAlive() {
			s.defeatEnemy(e)
		}
	}
}

func (s *Session) defeatEnemy(e EnemyCombatant) {
	s.enemies = slices.DeleteFunc(s.enemies, func(x EnemyCombatant) bool { return x == e })
	s.defeated = append(s.defeated, e)
	s.loot = append(s.loot, s.resolver.RollLoot(e.GetName(), e.Loot())...)
	s.emit(Event{Kind: EventEnemyDefeated, Target: e.GetName()})

	if s.current == e {
		s.current = nil
		if len(s.enemies) > 0 {
			s.current = s.enemies[0]
			s.emit(Event{Kind: EventTargetChanged, Target: s.current.GetName()})
		}
	}
}

func (s *Session) finish(ctx context.Context, result Result) error {
	switch result {
	case ResultVictory:
		s.awardVictory()
	case ResultDefeat:
		s.applyDefeat()
	case ResultEscaped:
		s.loot = nil
	}
	s.result = result
	s.queue = nil

	if err := s.transition(ctx, evFinish); err != nil {
		return err
	}
	s.emit(Event{Kind: EventSessionEnded, Result: result})
	s.endRoundSpan()

	_, span := s.tracer.Start(ctx, "combat.end")
	span.SetAttributes(
		attribute.String("session", s.id),
		attribute.String("outcome", result.String()),
		attribute.Int("rounds", s.round),
		attribute.Int("player_hp_remaining", s.player.GetHP()),
	)
	span.End()

	s.logger.Info("combat ended",
		zap.String("session", s.id),
		zap.String("result", result.String()),
		zap.Int("round", s.round),
	)
	if s.engine != nil {
		s.engine.release(s)
	}
	return nil
}

func (s *Session) awardVictory() {
	xp, gold := 0, 0
	for _, e := range s.defeated {
		xp += s.resolver.Experience(e.GetLevel(), s.player.GetLevel())
		gold += s.resolver.Gold(e.GetLevel())
	}
	s.rewards.AddExperience(xp)
	s.rewards.AddGold(gold)
	s.emit(Event{Kind: EventRewards, Target: s.player.GetName(), Amount: xp, Gold: gold})

	for _, drop := range s.loot {
		item, ok := s.content.Item(drop.ItemID)
		if !ok {
			s.logger.Warn("loot references unknown item", zap.String("session", s.id), zap.String("item", drop.ItemID))
			continue
		}
		kind := EventLoot
		if !s.rewards.AddItem(item, drop.Count) {
			kind = EventLootRejected
		}
		s.emit(Event{Kind: kind, Item: item.Name, Amount: drop.Count, Actor: drop.Source})
	}
	s.loot = nil
}

func (s *Session) applyDefeat() {
	hp := max(1, int(math.Floor(float64(s.player.GetMaxHP())*s.cfg.Rewards.RevivalFraction)))
	s.player.ClearStatusEffects()
	s.player.Revive(hp)

	penalty := int(math.Floor(float64(s.rewards.Gold()) * s.cfg.Rewards.DefeatGoldPenalty))
	lost := 0
	if penalty > 0 {
		lost = s.rewards.LoseGold(penalty)
	}
	s.emit(Event{Kind: EventPlayerDefeated, Target: s.player.GetName(), Amount: hp, Gold: lost})
}

// =============================================================================
// Plumbing
// =============================================================================

// transition fires a scheduler event. Cancellation of ctx never interrupts
// a transition half way.
func (s *Session) transition(ctx context.Context, event string) error {
	if err := s.phases.Event(context.WithoutCancel(ctx), event); err != nil {
		return fmt.Errorf("combat: %s from %s: %w", event, s.Phase(), err)
	}
	return nil
}

func (s *Session) emit(e Event) {
	e.Round = s.round
	if s.presenter != nil {
		s.presenter.Notify(e)
	}
}

func (s *Session) emitHit(attacker Combatant, action string, hit Hit) {
	target := hit.Target.GetName()
	if hit.Dodged {
		s.emit(Event{Kind: EventDodged, Actor: attacker.GetName(), Target: target, Action: action})
		return
	}
	if hit.Critical {
		s.emit(Event{Kind: EventCritical, Actor: attacker.GetName(), Target: target, Action: action})
	}
	if hit.Damage > 0 {
		s.emit(Event{Kind: EventDamage, Actor: attacker.GetName(), Target: target, Action: action, Amount: hit.Damage})
	}
	if hit.Effect != nil {
		s.emitStatus(hit.Target, *hit.Effect)
	}
	if hit.Reflected > 0 {
		s.emit(Event{Kind: EventDamage, Actor: target, Target: attacker.GetName(), Action: "reflect", Amount: hit.Reflected})
	}
}

func (s *Session) emitStatus(c Combatant, e StatusEffect) {
	s.emit(Event{Kind: EventStatusApplied, Target: c.GetName(), Effect: e.Name, EffectKind: e.Kind})
}

func (s *Session) reject(a Action, err error) error {
	s.emit(Event{Kind: EventActionRejected, Actor: s.player.GetName(), Action: a.String(), Err: err})
	s.logger.Info("action rejected",
		zap.String("session", s.id),
		zap.Int("round", s.round),
		zap.String("phase", string(s.Phase())),
		zap.Error(err),
	)
	return err
}

func (s *Session) violation(err *Error) error {
	if s.cfg.Settings.DebugMode {
		panic(err)
	}
	s.logger.Error("combat invariant violated", zap.String("session", s.id), zap.Error(err))
	return err
}

func (s *Session) endRoundSpan() {
	if s.roundSpan != nil {
		s.roundSpan.End()
		s.roundSpan = nil
	}
}

func skipKind(c Combatant) gamedata.EffectKind {
	for _, e := range c.StatusEffects() {
		if e.Info().SkipsTurn {
			return e.Kind
		}
	}
	return gamedata.EffectStun
}
