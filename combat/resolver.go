package combat

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantor/beatstrike/core"
	"github.com/vantor/beatstrike/engine"
	"github.com/vantor/beatstrike/event"
	"github.com/vantor/beatstrike/parameter"
)

// AttackWindowResolver detects every distinct eligible target overlapping the
// hit region exactly once during an open window
//
// The per-window hit set is owned exclusively by the resolver for the window's
// lifetime and is cleared only on open. Closure is driven by a scheduled
// callback on the absolute clock, never by frame count
type AttackWindowResolver struct {
	bus    *event.Bus
	sched  *engine.Scheduler
	clock  engine.Clock
	logger *zap.Logger

	attacker     core.Entity
	basicDamage  int
	strongDamage int

	open       bool
	strong     bool
	attackID   uuid.UUID
	deadline   time.Time
	hitSet     map[core.Entity]struct{}
	results    []DamageResult
	closeTimer engine.TimerID
}

// NewAttackWindowResolver creates an idle resolver for one attacker
func NewAttackWindowResolver(
	attacker core.Entity,
	cfg *parameter.Config,
	bus *event.Bus,
	sched *engine.Scheduler,
	clock engine.Clock,
	logger *zap.Logger,
) *AttackWindowResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttackWindowResolver{
		bus:          bus,
		sched:        sched,
		clock:        clock,
		logger:       logger,
		attacker:     attacker,
		basicDamage:  cfg.BasicDamage,
		strongDamage: cfg.StrongDamage,
		hitSet:       make(map[core.Entity]struct{}),
	}
}

// OpenWindow opens a hit window of the given duration and tier
// Invalid durations clamp to the safe range; a double open is a logged no-op
// Returns false when a window is already active
func (r *AttackWindowResolver) OpenWindow(strong bool, duration time.Duration) bool {
	if r.open {
		r.logger.Warn("attack window already open", zap.String("attack", r.attackID.String()))
		return false
	}

	if duration < parameter.MinAttackWindow {
		r.logger.Warn("attack window duration clamped",
			zap.Duration("requested", duration), zap.Duration("min", parameter.MinAttackWindow))
		duration = parameter.MinAttackWindow
	} else if duration > parameter.MaxAttackWindow {
		r.logger.Warn("attack window duration clamped",
			zap.Duration("requested", duration), zap.Duration("max", parameter.MaxAttackWindow))
		duration = parameter.MaxAttackWindow
	}

	now := r.clock.Now()
	r.open = true
	r.strong = strong
	r.attackID = uuid.New()
	r.deadline = now.Add(duration)
	r.results = nil
	clear(r.hitSet)

	id := r.attackID
	r.closeTimer = r.sched.Schedule(r.deadline, func() { r.autoClose(id) })
	return true
}

// OpenWindowSeconds opens a window from a raw seconds value
// NaN and infinite values clamp to the minimal safe duration
func (r *AttackWindowResolver) OpenWindowSeconds(strong bool, seconds float64) bool {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		r.logger.Warn("attack window seconds invalid", zap.Float64("requested", seconds))
		return r.OpenWindow(strong, parameter.MinAttackWindow)
	}
	return r.OpenWindow(strong, time.Duration(seconds*float64(time.Second)))
}

// OnOverlap records a hit on target if the window is active, the target has
// not been hit this window, and the target is damageable. Duplicate and late
// overlap callbacks are silently ignored
// Returns true when a damage result was produced
func (r *AttackWindowResolver) OnOverlap(target Damageable) bool {
	if !r.open || target == nil {
		return false
	}

	id := target.EntityID()
	if _, seen := r.hitSet[id]; seen {
		return false
	}
	if !target.Damageable() {
		return false
	}

	amount := r.basicDamage
	if r.strong {
		amount = r.strongDamage
	}
	killed := target.TakeDamage(amount)

	r.hitSet[id] = struct{}{}
	res := DamageResult{
		AttackID:    r.attackID,
		Attacker:    r.attacker,
		Target:      id,
		Amount:      amount,
		KillingBlow: killed,
		Strong:      r.strong,
	}
	r.results = append(r.results, res)

	r.bus.Publish(event.Event{
		Type: event.EventDamageDealt,
		Payload: &event.DamageDealtPayload{
			AttackID:    res.AttackID,
			Attacker:    res.Attacker,
			Target:      res.Target,
			Amount:      res.Amount,
			KillingBlow: res.KillingBlow,
			Strong:      res.Strong,
		},
		Timestamp: r.clock.Now(),
	})
	return true
}

// ConsumeResults returns the hits accumulated by the window just closed and
// clears them. Idempotent: a second call returns nil. An empty result is a
// valid miss, not an error. Called with the window still open it is a no-op
func (r *AttackWindowResolver) ConsumeResults() []DamageResult {
	if r.open {
		return nil
	}
	results := r.results
	r.results = nil
	return results
}

// AbortWindow immediately closes the window and discards uncollected results
// Safe to call when no window is open
func (r *AttackWindowResolver) AbortWindow() {
	if !r.open {
		return
	}
	r.results = nil
	r.close(true)
}

// autoClose is the scheduled deadline callback
// The id guard drops a stale timer that survived an abort/reopen cycle
func (r *AttackWindowResolver) autoClose(id uuid.UUID) {
	if !r.open || r.attackID != id {
		return
	}
	r.close(false)
}

func (r *AttackWindowResolver) close(aborted bool) {
	r.open = false
	if r.closeTimer != engine.NilTimer {
		r.sched.Cancel(r.closeTimer)
		r.closeTimer = engine.NilTimer
	}

	r.bus.Publish(event.Event{
		Type: event.EventAttackWindowClosed,
		Payload: &event.AttackWindowClosedPayload{
			AttackID: r.attackID,
			Aborted:  aborted,
		},
		Timestamp: r.clock.Now(),
	})
}

// IsOpen reports whether a window is currently active
func (r *AttackWindowResolver) IsOpen() bool {
	return r.open
}

// IsStrong reports the tier of the current window
func (r *AttackWindowResolver) IsStrong() bool {
	return r.strong
}

// AttackID returns the correlation ID of the current or most recent window
func (r *AttackWindowResolver) AttackID() uuid.UUID {
	return r.attackID
}

// Deadline returns the closure time of the current or most recent window
func (r *AttackWindowResolver) Deadline() time.Time {
	return r.deadline
}
