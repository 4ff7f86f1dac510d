package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantor/beatstrike/event"
)

// tickCollector records every published beat tick
type tickCollector struct {
	ticks []*event.BeatTickPayload
}

func (c *tickCollector) HandleEvent(ev event.Event) {
	c.ticks = append(c.ticks, ev.Payload.(*event.BeatTickPayload))
}

func newTestBeatClock(t *testing.T, bpm float64, window time.Duration) (*BeatClock, *tickCollector) {
	t.Helper()
	bus := event.NewBus(nil)
	col := &tickCollector{}
	bus.Subscribe(event.EventBeatTick, col)
	return NewBeatClock(bus, bpm, window, nil), col
}

func TestBeatGridSpacing(t *testing.T) {
	bc, col := newTestBeatClock(t, 120, 70*time.Millisecond) // period 500ms
	t0 := time.Unix(100, 0)

	bc.Start(t0, 0)
	require.Equal(t, BeatIndexNone, bc.BeatIndex(), "sentinel until the first beat fires")

	// Drive with uneven frame times; beats land on the grid, not on tick times
	for ms := 0; ms <= 1600; ms += 90 {
		bc.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
	}

	require.Len(t, col.ticks, 4)
	for i, tick := range col.ticks {
		assert.Equal(t, t0.Add(time.Duration(i)*500*time.Millisecond), tick.BeatTime)
		assert.Equal(t, tick.BeatTime.Add(500*time.Millisecond), tick.NextBeat)
	}
}

func TestBeatIndexCyclesModFour(t *testing.T) {
	bc, col := newTestBeatClock(t, 120, 0)
	t0 := time.Unix(100, 0)

	bc.Start(t0, 0)
	for i := 0; i < 6; i++ {
		bc.Tick(t0.Add(time.Duration(i) * 500 * time.Millisecond))
	}

	require.Len(t, col.ticks, 6)
	want := []int{0, 1, 2, 3, 0, 1}
	for i, tick := range col.ticks {
		assert.Equal(t, want[i], tick.BeatIndex)
	}
	assert.Equal(t, 1, bc.BeatIndex())
}

func TestLeadInDelaysFirstBeat(t *testing.T) {
	bc, col := newTestBeatClock(t, 120, 0)
	t0 := time.Unix(100, 0)

	bc.Start(t0, 2*time.Second)
	bc.Tick(t0.Add(1900 * time.Millisecond))
	assert.Empty(t, col.ticks)

	bc.Tick(t0.Add(2 * time.Second))
	require.Len(t, col.ticks, 1)
	assert.Equal(t, t0.Add(2*time.Second), col.ticks[0].BeatTime)
	assert.Equal(t, 0, col.ticks[0].BeatIndex)
}

// Scenario: bpm=120, beat at t=0.5s, press at t=0.51s, window 0.07s ⇒ on beat
func TestIsOnBeatLatePress(t *testing.T) {
	bc, _ := newTestBeatClock(t, 120, 70*time.Millisecond)
	t0 := time.Unix(100, 0)

	bc.Start(t0, 500*time.Millisecond) // first beat at t0+0.5s
	bc.Tick(t0.Add(500 * time.Millisecond))

	assert.True(t, bc.IsOnBeat(t0.Add(510*time.Millisecond)), "10ms late is within 70ms")
	assert.False(t, bc.IsOnBeat(t0.Add(580*time.Millisecond)), "80ms late is outside 70ms")
}

func TestIsOnBeatSymmetricEarlyPress(t *testing.T) {
	bc, _ := newTestBeatClock(t, 120, 70*time.Millisecond)
	t0 := time.Unix(100, 0)

	bc.Start(t0, 0)
	bc.Tick(t0) // beat 0 fired, next at t0+0.5s

	// Early press judged against the next predicted beat
	assert.True(t, bc.IsOnBeat(t0.Add(440*time.Millisecond)), "60ms early is within 70ms")
	assert.False(t, bc.IsOnBeat(t0.Add(350*time.Millisecond)), "150ms from either boundary")
	// Late press judged against the last fired beat
	assert.True(t, bc.IsOnBeat(t0.Add(50*time.Millisecond)))
}

func TestIsOnBeatBeforeFirstBeat(t *testing.T) {
	bc, _ := newTestBeatClock(t, 120, 70*time.Millisecond)
	t0 := time.Unix(100, 0)

	bc.Start(t0, time.Second)
	// No beat fired yet; only the predicted first beat counts
	assert.True(t, bc.IsOnBeat(t0.Add(950*time.Millisecond)))
	assert.False(t, bc.IsOnBeat(t0.Add(500*time.Millisecond)))
}

func TestIsOnBeatStoppedClock(t *testing.T) {
	bc, _ := newTestBeatClock(t, 120, 70*time.Millisecond)
	assert.False(t, bc.IsOnBeat(time.Unix(100, 0)))
}

func TestDriftRecoveryAvoidsCatchUpBurst(t *testing.T) {
	bc, col := newTestBeatClock(t, 120, 0)
	t0 := time.Unix(100, 0)

	bc.Start(t0, 0)
	bc.Tick(t0)
	require.Len(t, col.ticks, 1)

	// Stall 10 beats; a naive loop would fire 10 catch-up beats
	stalled := t0.Add(5 * time.Second)
	bc.Tick(stalled)

	require.Len(t, col.ticks, 2, "resync fires exactly one beat")
	assert.Equal(t, stalled, col.ticks[1].BeatTime)
	assert.Equal(t, stalled.Add(500*time.Millisecond), bc.NextBeat())
}

func TestPausePreservesBeatGrid(t *testing.T) {
	bc, col := newTestBeatClock(t, 120, 0)
	t0 := time.Unix(100, 0)

	bc.Start(t0, 0)
	bc.Tick(t0) // beat 0 at t0, next due t0+0.5s

	bc.Pause(t0.Add(200*time.Millisecond), true)
	bc.Tick(t0.Add(time.Second))
	require.Len(t, col.ticks, 1, "no beats while paused")

	// Resume after a 1s pause: the grid shifts by the pause duration
	bc.Pause(t0.Add(1200*time.Millisecond), false)
	assert.Equal(t, t0.Add(1500*time.Millisecond), bc.NextBeat())

	bc.Tick(t0.Add(1500 * time.Millisecond))
	require.Len(t, col.ticks, 2)
	assert.Equal(t, 1, col.ticks[1].BeatIndex, "index continues, grid not reset")
}

func TestStopRestoresSentinel(t *testing.T) {
	bc, _ := newTestBeatClock(t, 120, 0)
	t0 := time.Unix(100, 0)

	bc.Start(t0, 0)
	bc.Tick(t0)
	require.Equal(t, 0, bc.BeatIndex())

	bc.Stop()
	assert.False(t, bc.Running())
	assert.Equal(t, BeatIndexNone, bc.BeatIndex())

	bc.Tick(t0.Add(time.Second))
	assert.Equal(t, BeatIndexNone, bc.BeatIndex())
}

func TestInvalidTempoClamped(t *testing.T) {
	bc, _ := newTestBeatClock(t, -5, 0)
	assert.Equal(t, 500*time.Millisecond, bc.Period(), "fallback tempo is 120 bpm")
}

// A panicking subscriber must not stop the clock or starve other subscribers
func TestSubscriberPanicDoesNotStopClock(t *testing.T) {
	bus := event.NewBus(nil)
	bad := &panickyHandler{}
	col := &tickCollector{}
	bus.Subscribe(event.EventBeatTick, bad)
	bus.Subscribe(event.EventBeatTick, col)

	bc := NewBeatClock(bus, 120, 0, nil)
	t0 := time.Unix(100, 0)
	bc.Start(t0, 0)

	require.NotPanics(t, func() {
		bc.Tick(t0)
		bc.Tick(t0.Add(500 * time.Millisecond))
		bc.Tick(t0.Add(time.Second))
	})
	assert.Len(t, col.ticks, 3)
	assert.True(t, bc.Running())
}

type panickyHandler struct{}

func (panickyHandler) HandleEvent(event.Event) { panic("subscriber failure") }
