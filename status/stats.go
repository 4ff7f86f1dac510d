package status

import (
	"sync/atomic"

	"github.com/vantor/beatstrike/event"
)

// SessionStats aggregates combat counters from the event bus
// All fields are atomics so the render loop reads without coordination while
// the session publishes from its tick
type SessionStats struct {
	Beats         atomic.Int64
	Attacks       atomic.Int64
	StrongAttacks atomic.Int64
	Hits          atomic.Int64
	Kills         atomic.Int64
	Damage        atomic.Int64
	BestStreak    atomic.Int64

	// HitRate is hits per attack over the session
	HitRate AtomicFloat

	// Resets counts combo resets by reason
	Resets *CounterMap
}

// NewSessionStats creates zeroed stats; subscribe it to the event types it
// should count
func NewSessionStats() *SessionStats {
	return &SessionStats{
		Resets: NewCounterMap(),
	}
}

// HandleEvent counts one session event
func (s *SessionStats) HandleEvent(ev event.Event) {
	switch ev.Type {
	case event.EventBeatTick:
		s.Beats.Add(1)
	case event.EventAttackStarted:
		p, ok := ev.Payload.(*event.AttackStartedPayload)
		if !ok {
			return
		}
		s.Attacks.Add(1)
		if p.Strong {
			s.StrongAttacks.Add(1)
		}
	case event.EventDamageDealt:
		p, ok := ev.Payload.(*event.DamageDealtPayload)
		if !ok {
			return
		}
		s.Damage.Add(int64(p.Amount))
	case event.EventAttackResolved:
		p, ok := ev.Payload.(*event.AttackResolvedPayload)
		if !ok {
			return
		}
		s.Hits.Add(int64(p.Hits))
		s.Kills.Add(int64(p.Kills))
		if attacks := s.Attacks.Load(); attacks > 0 {
			s.HitRate.Set(float64(s.Hits.Load()) / float64(attacks))
		}
	case event.EventStreakChanged:
		p, ok := ev.Payload.(*event.StreakChangedPayload)
		if !ok {
			return
		}
		for {
			best := s.BestStreak.Load()
			if int64(p.Streak) <= best {
				return
			}
			if s.BestStreak.CompareAndSwap(best, int64(p.Streak)) {
				return
			}
		}
	case event.EventComboReset:
		p, ok := ev.Payload.(*event.ComboResetPayload)
		if !ok {
			return
		}
		s.Resets.Inc(p.Reason)
	}
}

// Subscribe attaches the stats to every event type it counts
func (s *SessionStats) Subscribe(bus *event.Bus) {
	bus.Subscribe(event.EventBeatTick, s)
	bus.Subscribe(event.EventAttackStarted, s)
	bus.Subscribe(event.EventDamageDealt, s)
	bus.Subscribe(event.EventAttackResolved, s)
	bus.Subscribe(event.EventStreakChanged, s)
	bus.Subscribe(event.EventComboReset, s)
}
