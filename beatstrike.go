// Package beatstrike assembles the rhythm combat core: the beat clock, the
// combo controller, the attack window resolver and the event bus, driven by
// one cooperative tick on the absolute monotonic clock.
package beatstrike

import (
	"time"

	"go.uber.org/zap"

	"github.com/vantor/beatstrike/combat"
	"github.com/vantor/beatstrike/core"
	"github.com/vantor/beatstrike/engine"
	"github.com/vantor/beatstrike/event"
	"github.com/vantor/beatstrike/parameter"
)

// Core owns one attacker's combat session
//
// All components share a single bus, scheduler and clock. Tick is the only
// driver: it fires due timers first, then due beats, so a window closure
// scheduled before a beat boundary resolves before that beat is judged
type Core struct {
	cfg    *parameter.Config
	logger *zap.Logger

	bus   *event.Bus
	clock engine.Clock
	sched *engine.Scheduler
	beat  *engine.BeatClock

	resolver *combat.AttackWindowResolver
	combo    *combat.ComboController

	paused   bool
	pausedAt time.Time
}

// New wires a session on the real monotonic clock
func New(attacker core.Entity, cfg *parameter.Config, logger *zap.Logger) *Core {
	return NewWithClock(attacker, cfg, engine.NewMonotonicClock(), logger)
}

// NewWithClock wires a session on an injected clock; tests drive a mock
func NewWithClock(attacker core.Entity, cfg *parameter.Config, clock engine.Clock, logger *zap.Logger) *Core {
	if cfg == nil {
		cfg = parameter.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Normalize(logger)

	bus := event.NewBus(logger)
	sched := engine.NewScheduler()
	beat := engine.NewBeatClock(bus, cfg.BPM, cfg.OnBeatWindow(), logger)
	resolver := combat.NewAttackWindowResolver(attacker, cfg, bus, sched, clock, logger)
	combo := combat.NewComboController(attacker, cfg, bus, sched, clock, beat, resolver, logger)

	return &Core{
		cfg:      cfg,
		logger:   logger,
		bus:      bus,
		clock:    clock,
		sched:    sched,
		beat:     beat,
		resolver: resolver,
		combo:    combo,
	}
}

// Start arms the beat clock; the first beat fires leadIn from now
func (c *Core) Start(leadIn time.Duration) {
	now := c.clock.Now()
	c.beat.Start(now, leadIn)
	c.logger.Info("session started",
		zap.Float64("bpm", c.cfg.BPM),
		zap.Duration("lead_in", leadIn))
}

// Stop halts the beat clock and aborts any in-flight attack
func (c *Core) Stop() {
	c.combo.AbortAttack()
	c.beat.Stop()
	c.logger.Info("session stopped")
}

// Tick advances the session to the current clock reading
// Call once per frame; frequency only bounds latency, never timing
func (c *Core) Tick() {
	if c.paused {
		return
	}
	now := c.clock.Now()
	c.sched.Tick(now)
	c.beat.Tick(now)
}

// Pause freezes the session; Resume shifts every deadline by the pause
// duration so windows and beats keep their relative spacing
func (c *Core) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.clock.Now()
	c.beat.Pause(c.pausedAt, true)
}

// Resume unfreezes a paused session
func (c *Core) Resume() {
	if !c.paused {
		return
	}
	now := c.clock.Now()
	c.sched.ShiftBy(now.Sub(c.pausedAt))
	c.beat.Pause(now, false)
	c.paused = false
}

// Paused reports whether the session is frozen
func (c *Core) Paused() bool {
	return c.paused
}

// Press feeds one player press stamped at the current clock reading
func (c *Core) Press() {
	c.combo.HandlePress(c.clock.Now())
}

// Bus exposes the session event bus for subscribers
func (c *Core) Bus() *event.Bus {
	return c.bus
}

// BeatClock exposes the session beat clock
func (c *Core) BeatClock() *engine.BeatClock {
	return c.beat
}

// Combo exposes the combo controller
func (c *Core) Combo() *combat.ComboController {
	return c.combo
}

// Resolver exposes the attack window resolver
func (c *Core) Resolver() *combat.AttackWindowResolver {
	return c.resolver
}

// Config returns the normalized session configuration
func (c *Core) Config() *parameter.Config {
	return c.cfg
}
