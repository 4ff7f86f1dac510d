package combat

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantor/beatstrike/core"
	"github.com/vantor/beatstrike/engine"
	"github.com/vantor/beatstrike/event"
	"github.com/vantor/beatstrike/parameter"
)

type comboState int

const (
	stateIdle comboState = iota
	stateAttacking
)

// ComboController consumes timestamped presses and beat ticks, tracks the
// combo streak, classifies attacks as basic or strong, and commands the
// attack window resolver
//
// State machine: Idle / AttackInProgress(Basic|Strong). A press while an
// attack is in progress is ignored; a press inside the cooldown interval is
// ignored. The streak resets on an off-beat press (policy), on inactivity
// overflow, and after a strong window resolves
type ComboController struct {
	bus    *event.Bus
	sched  *engine.Scheduler
	clock  engine.Clock
	beat   *engine.BeatClock
	logger *zap.Logger

	resolver *AttackWindowResolver
	attacker core.Entity

	threshold       int
	cooldown        time.Duration
	resetOnOffBeat  bool
	inactivityBeats int
	fixedWindow     time.Duration // 0 = tempo-derived
	reactionBuffer  time.Duration
	aimLockOnStrong bool

	state         comboState
	strong        bool
	attackID      uuid.UUID
	streak        int
	beatsSinceHit int
	lastPressAt   time.Time
	lastOnBeatHit time.Time
	havePressed   bool

	aimLocked bool
	aimTimer  engine.TimerID

	sources          map[PressSource]struct{}
	missingClockOnce bool
}

// NewComboController wires a controller to its collaborators and subscribes it
// to beat ticks and window closures. The beat clock may be nil; presses are
// then dropped with a single deferred-registration warning
func NewComboController(
	attacker core.Entity,
	cfg *parameter.Config,
	bus *event.Bus,
	sched *engine.Scheduler,
	clock engine.Clock,
	beat *engine.BeatClock,
	resolver *AttackWindowResolver,
	logger *zap.Logger,
) *ComboController {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &ComboController{
		bus:             bus,
		sched:           sched,
		clock:           clock,
		beat:            beat,
		logger:          logger,
		resolver:        resolver,
		attacker:        attacker,
		threshold:       cfg.ComboThreshold,
		cooldown:        cfg.Cooldown(),
		resetOnOffBeat:  cfg.ResetOnOffBeat,
		inactivityBeats: cfg.InactivityBeats,
		fixedWindow:     cfg.AttackWindow(),
		reactionBuffer:  cfg.ReactionBuffer(),
		aimLockOnStrong: cfg.AimLockOnStrong,
		sources:         make(map[PressSource]struct{}),
	}

	bus.Subscribe(event.EventBeatTick, c)
	bus.Subscribe(event.EventAttackWindowClosed, c)
	return c
}

// HandleEvent routes bus events the controller subscribed to
func (c *ComboController) HandleEvent(ev event.Event) {
	switch ev.Type {
	case event.EventBeatTick:
		if p, ok := ev.Payload.(*event.BeatTickPayload); ok {
			c.onBeatTick(p)
		}
	case event.EventAttackWindowClosed:
		if p, ok := ev.Payload.(*event.AttackWindowClosedPayload); ok {
			c.onWindowClosed(p)
		}
	}
}

// RegisterPressSource installs the press handler on the source
// Idempotent: a double registration is a no-op
func (c *ComboController) RegisterPressSource(src PressSource) {
	if src == nil {
		return
	}
	if _, ok := c.sources[src]; ok {
		return
	}
	c.sources[src] = struct{}{}
	src.SetPressHandler(c.HandlePress)
}

// UnregisterPressSource removes the handler; unknown sources are a no-op
func (c *ComboController) UnregisterPressSource(src PressSource) {
	if src == nil {
		return
	}
	if _, ok := c.sources[src]; !ok {
		return
	}
	delete(c.sources, src)
	src.SetPressHandler(nil)
}

// HandlePress processes one timestamped press on the absolute clock
// Presses during an attack or inside the cooldown interval fail silently
func (c *ComboController) HandlePress(at time.Time) {
	if c.beat == nil || !c.beat.Running() {
		if !c.missingClockOnce {
			c.missingClockOnce = true
			c.logger.Warn("press dropped, beat clock not available; resolution deferred")
		}
		return
	}

	if c.state == stateAttacking {
		return
	}
	if c.havePressed && at.Sub(c.lastPressAt) < c.cooldown {
		return
	}
	c.lastPressAt = at
	c.havePressed = true

	if !c.beat.IsOnBeat(at) {
		if c.resetOnOffBeat && c.streak > 0 {
			c.reset("off-beat press")
		}
		c.startAttack(false)
		return
	}

	c.beatsSinceHit = 0
	c.lastOnBeatHit = at
	if c.streak+1 >= c.threshold {
		// Streak completion fires the strong attack; the streak itself
		// resets when the window resolves
		c.startAttack(true)
		return
	}

	c.streak++
	c.publishStreak(true)
	c.startAttack(false)
}

func (c *ComboController) startAttack(strong bool) {
	duration := c.windowDuration()
	if !c.resolver.OpenWindow(strong, duration) {
		return
	}

	c.state = stateAttacking
	c.strong = strong
	c.attackID = c.resolver.AttackID()

	now := c.clock.Now()
	c.bus.Publish(event.Event{
		Type: event.EventAttackStarted,
		Payload: &event.AttackStartedPayload{
			AttackID: c.attackID,
			Attacker: c.attacker,
			Strong:   strong,
			Deadline: c.resolver.Deadline(),
			Streak:   c.streak,
		},
		Timestamp: now,
	})

	if strong && c.aimLockOnStrong {
		c.aimLocked = true
		c.aimTimer = c.sched.Schedule(c.resolver.Deadline(), c.releaseAim)
	}
}

// windowDuration applies the window policy: fixed when configured, otherwise
// derived from tempo so the window narrows at high tempo and widens at low
// tempo while always leaving reaction time before the next beat
func (c *ComboController) windowDuration() time.Duration {
	if c.fixedWindow > 0 {
		return c.fixedWindow
	}

	derived := c.beat.Period() - 2*c.beat.OnBeatWindow() - c.reactionBuffer
	if derived < parameter.MinAttackWindow {
		return parameter.MinAttackWindow
	}
	if derived > parameter.MaxAttackWindow {
		return parameter.MaxAttackWindow
	}
	return derived
}

func (c *ComboController) onWindowClosed(p *event.AttackWindowClosedPayload) {
	if c.state != stateAttacking || p.AttackID != c.attackID {
		return
	}

	c.state = stateIdle
	c.releaseAim()
	results := c.resolver.ConsumeResults()
	now := c.clock.Now()

	if p.Aborted {
		c.bus.Publish(event.Event{
			Type: event.EventAttackAborted,
			Payload: &event.AttackAbortedPayload{
				AttackID: p.AttackID,
				Attacker: c.attacker,
				Strong:   c.strong,
			},
			Timestamp: now,
		})
		return
	}

	if c.strong {
		c.streak = 0
		c.publishStreak(false)
	}

	kills := 0
	for _, res := range results {
		if res.KillingBlow {
			kills++
		}
	}
	c.bus.Publish(event.Event{
		Type: event.EventAttackResolved,
		Payload: &event.AttackResolvedPayload{
			AttackID: p.AttackID,
			Attacker: c.attacker,
			Strong:   c.strong,
			Hits:     len(results),
			Kills:    kills,
			Streak:   c.streak,
		},
		Timestamp: now,
	})
}

// onBeatTick applies the inactivity rule: the streak resets exactly when the
// configured number of beats passes without an on-beat hit, independent of
// attack progress
func (c *ComboController) onBeatTick(p *event.BeatTickPayload) {
	if c.inactivityBeats <= 0 {
		return
	}

	// An early press lands before its beat fires; that beat is the hit
	// beat, not a missed one
	if !c.lastOnBeatHit.IsZero() && absDuration(p.BeatTime.Sub(c.lastOnBeatHit)) <= c.beat.OnBeatWindow() {
		c.beatsSinceHit = 0
		return
	}

	c.beatsSinceHit++
	if c.beatsSinceHit >= c.inactivityBeats {
		c.beatsSinceHit = 0
		if c.streak > 0 {
			c.reset("inactivity")
		}
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// AbortAttack cancels any in-flight window and unlocks aim immediately
// Reentrant-safe: callable from inside a handler reacting to an event this
// controller just published, including a damage-received callback
func (c *ComboController) AbortAttack() {
	if c.state != stateAttacking {
		return
	}
	// Closure publishes EventAttackWindowClosed{Aborted}; onWindowClosed
	// performs the idle transition and aim release synchronously
	c.resolver.AbortWindow()

	// The resolver had no open window (already closed out of band); force idle
	if c.state == stateAttacking {
		c.state = stateIdle
		c.releaseAim()
	}
}

// ResetCombo clears the streak and inactivity counter, publishing the reason
func (c *ComboController) ResetCombo(reason string) {
	c.beatsSinceHit = 0
	c.reset(reason)
}

func (c *ComboController) reset(reason string) {
	prior := c.streak
	c.streak = 0
	c.bus.Publish(event.Event{
		Type: event.EventComboReset,
		Payload: &event.ComboResetPayload{
			Reason:      reason,
			PriorStreak: prior,
		},
		Timestamp: c.clock.Now(),
	})
}

func (c *ComboController) publishStreak(onBeat bool) {
	c.bus.Publish(event.Event{
		Type: event.EventStreakChanged,
		Payload: &event.StreakChangedPayload{
			Streak: c.streak,
			OnBeat: onBeat,
		},
		Timestamp: c.clock.Now(),
	})
}

func (c *ComboController) releaseAim() {
	if c.aimTimer != engine.NilTimer {
		c.sched.Cancel(c.aimTimer)
		c.aimTimer = engine.NilTimer
	}
	c.aimLocked = false
}

// CurrentStreak returns the streak; read-only
func (c *ComboController) CurrentStreak() int {
	return c.streak
}

// AttackInProgress reports whether a window is currently open
func (c *ComboController) AttackInProgress() bool {
	return c.state == stateAttacking
}

// AimLocked reports whether aim input is locked by a strong attack
func (c *ComboController) AimLocked() bool {
	return c.aimLocked
}
