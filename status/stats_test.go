package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantor/beatstrike/event"
)

func TestSessionStatsCounts(t *testing.T) {
	bus := event.NewBus(nil)
	stats := NewSessionStats()
	stats.Subscribe(bus)

	bus.Publish(event.Event{Type: event.EventBeatTick, Payload: &event.BeatTickPayload{}})
	bus.Publish(event.Event{Type: event.EventBeatTick, Payload: &event.BeatTickPayload{}})
	bus.Publish(event.Event{Type: event.EventAttackStarted, Payload: &event.AttackStartedPayload{Strong: true}})
	bus.Publish(event.Event{Type: event.EventDamageDealt, Payload: &event.DamageDealtPayload{Amount: 30}})
	bus.Publish(event.Event{Type: event.EventAttackResolved, Payload: &event.AttackResolvedPayload{Hits: 1, Kills: 1}})

	assert.Equal(t, int64(2), stats.Beats.Load())
	assert.Equal(t, int64(1), stats.Attacks.Load())
	assert.Equal(t, int64(1), stats.StrongAttacks.Load())
	assert.Equal(t, int64(30), stats.Damage.Load())
	assert.Equal(t, int64(1), stats.Hits.Load())
	assert.Equal(t, int64(1), stats.Kills.Load())
	assert.Equal(t, 1.0, stats.HitRate.Get())
}

func TestSessionStatsBestStreak(t *testing.T) {
	bus := event.NewBus(nil)
	stats := NewSessionStats()
	stats.Subscribe(bus)

	for _, streak := range []int{1, 2, 3, 1, 2} {
		bus.Publish(event.Event{Type: event.EventStreakChanged, Payload: &event.StreakChangedPayload{Streak: streak}})
	}

	assert.Equal(t, int64(3), stats.BestStreak.Load())
}

func TestSessionStatsResetReasons(t *testing.T) {
	bus := event.NewBus(nil)
	stats := NewSessionStats()
	stats.Subscribe(bus)

	bus.Publish(event.Event{Type: event.EventComboReset, Payload: &event.ComboResetPayload{Reason: "inactivity"}})
	bus.Publish(event.Event{Type: event.EventComboReset, Payload: &event.ComboResetPayload{Reason: "inactivity"}})
	bus.Publish(event.Event{Type: event.EventComboReset, Payload: &event.ComboResetPayload{Reason: "off-beat press"}})

	assert.Equal(t, int64(2), stats.Resets.Get("inactivity").Load())
	assert.Equal(t, int64(1), stats.Resets.Get("off-beat press").Load())

	var keys []string
	stats.Resets.Range(func(key string, count int64) {
		keys = append(keys, key)
	})
	assert.Equal(t, []string{"inactivity", "off-beat press"}, keys)
	assert.Equal(t, 2, stats.Resets.Count())
}

func TestAtomicFloatAdd(t *testing.T) {
	var f AtomicFloat
	f.Set(1.5)
	assert.Equal(t, 2.0, f.Add(0.5))
	assert.Equal(t, 2.0, f.Get())
}
