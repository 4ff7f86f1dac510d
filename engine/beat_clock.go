package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/vantor/beatstrike/event"
	"github.com/vantor/beatstrike/parameter"
)

// BeatsPerBar is the cycle length of the beat index
const BeatsPerBar = 4

// BeatIndexNone is the sentinel index before the first beat fires
const BeatIndexNone = -1

// BeatClock produces a periodic logical pulse from the absolute monotonic clock
//
// Beats are published on the bus as EventBeatTick. All subscribers of one tick
// observe the same BeatIndex and NextBeat baseline: the clock advances its own
// state before publishing
type BeatClock struct {
	bus    *event.Bus
	logger *zap.Logger

	bpm          float64
	period       time.Duration
	onBeatWindow time.Duration

	nextBeat  time.Time
	lastBeat  time.Time
	beatIndex int
	running   bool
	paused    bool
	pausedAt  time.Time
}

// NewBeatClock creates a stopped beat clock
// Out-of-range tempo and window values are clamped and logged, never rejected
func NewBeatClock(bus *event.Bus, bpm float64, onBeatWindow time.Duration, logger *zap.Logger) *BeatClock {
	if logger == nil {
		logger = zap.NewNop()
	}

	if bpm < parameter.MinBPM || bpm > parameter.MaxBPM {
		logger.Warn("beat clock tempo clamped",
			zap.Float64("bpm", bpm), zap.Float64("fallback", parameter.DefaultBPM))
		bpm = parameter.DefaultBPM
	}
	if onBeatWindow < 0 {
		logger.Warn("on-beat window clamped", zap.Duration("window", onBeatWindow))
		onBeatWindow = 0
	}

	return &BeatClock{
		bus:          bus,
		logger:       logger,
		bpm:          bpm,
		period:       time.Duration(60.0 / bpm * float64(time.Second)),
		onBeatWindow: onBeatWindow,
		beatIndex:    BeatIndexNone,
	}
}

// Start schedules the first beat at now + leadIn and arms the clock
// The beat index holds the before-first-beat sentinel until that beat fires
func (bc *BeatClock) Start(now time.Time, leadIn time.Duration) {
	if leadIn < 0 {
		leadIn = 0
	}
	bc.running = true
	bc.paused = false
	bc.beatIndex = BeatIndexNone
	bc.lastBeat = time.Time{}
	bc.nextBeat = now.Add(leadIn)
}

// Tick fires every beat due at now and advances the grid
//
// Drift recovery: when the caller has stalled for more than one full period
// past the due beat, the grid resynchronizes to now instead of firing a
// catch-up burst; exactly one beat fires at the resync point
func (bc *BeatClock) Tick(now time.Time) {
	if !bc.running || bc.paused {
		return
	}

	if behind := now.Sub(bc.nextBeat); behind > bc.period {
		bc.logger.Warn("beat clock resynchronized",
			zap.Duration("behind", behind), zap.Duration("period", bc.period))
		bc.nextBeat = now
	}

	for !now.Before(bc.nextBeat) {
		bc.fireBeat(now)
	}
}

func (bc *BeatClock) fireBeat(now time.Time) {
	bc.lastBeat = bc.nextBeat
	bc.nextBeat = bc.nextBeat.Add(bc.period)
	bc.beatIndex = (bc.beatIndex + 1) % BeatsPerBar

	bc.bus.Publish(event.Event{
		Type: event.EventBeatTick,
		Payload: &event.BeatTickPayload{
			BeatIndex: bc.beatIndex,
			BeatTime:  bc.lastBeat,
			NextBeat:  bc.nextBeat,
		},
		Timestamp: now,
	})
}

// IsOnBeat reports whether ts lies within the tolerance window of the nearest
// beat boundary, testing both the most recently fired beat and the next
// predicted one. Early and late presses are judged symmetrically
func (bc *BeatClock) IsOnBeat(ts time.Time) bool {
	if !bc.running {
		return false
	}

	if !bc.lastBeat.IsZero() && absDuration(ts.Sub(bc.lastBeat)) <= bc.onBeatWindow {
		return true
	}
	return absDuration(ts.Sub(bc.nextBeat)) <= bc.onBeatWindow
}

// Pause suspends or resumes tick processing without losing phase
// On resume the grid shifts by the pause duration, preserving beat spacing
func (bc *BeatClock) Pause(now time.Time, paused bool) {
	if !bc.running || bc.paused == paused {
		return
	}

	if paused {
		bc.paused = true
		bc.pausedAt = now
		return
	}

	shift := now.Sub(bc.pausedAt)
	if shift > 0 {
		bc.nextBeat = bc.nextBeat.Add(shift)
		if !bc.lastBeat.IsZero() {
			bc.lastBeat = bc.lastBeat.Add(shift)
		}
	}
	bc.paused = false
}

// Stop halts the clock and restores the before-first-beat sentinel
func (bc *BeatClock) Stop() {
	bc.running = false
	bc.paused = false
	bc.beatIndex = BeatIndexNone
}

// Running reports whether the clock has been started and not stopped
func (bc *BeatClock) Running() bool {
	return bc.running
}

// BeatIndex returns the index of the most recently fired beat, or the sentinel
func (bc *BeatClock) BeatIndex() int {
	return bc.beatIndex
}

// NextBeat returns the predicted time of the next beat
func (bc *BeatClock) NextBeat() time.Time {
	return bc.nextBeat
}

// Period returns the beat spacing 60/bpm
func (bc *BeatClock) Period() time.Duration {
	return bc.period
}

// OnBeatWindow returns the judgment half-width
func (bc *BeatClock) OnBeatWindow() time.Duration {
	return bc.onBeatWindow
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
