package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/vantor/beatstrike/engine"
	"github.com/vantor/beatstrike/event"
)

const (
	sampleRate = beep.SampleRate(48000)

	clickVolume  = 0.5
	strikeVolume = 0.4
	resetVolume  = 0.3
)

// Metronome plays a synthesized click on every beat tick and short cues for
// attack launches and combo resets. It is a bus subscriber; attach it with
// Subscribe on the event types it should voice
//
// All playback goes through one mixer so overlapping cues sum instead of
// cutting each other off
type Metronome struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	logger      *zap.Logger
	initialized bool
	muted       bool
}

// NewMetronome creates a silent metronome; call Initialize before use
func NewMetronome(logger *zap.Logger) *Metronome {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metronome{
		mixer:  &beep.Mixer{},
		logger: logger,
	}
}

// Initialize opens the speaker and starts the mixer
// Idempotent; returns the speaker error when the audio device is unavailable
func (m *Metronome) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(m.mixer)
	m.initialized = true
	return nil
}

// Cleanup silences the metronome
// beep has no speaker close, so clearing the mixer is the shutdown path
func (m *Metronome) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	m.mixer.Clear()
	m.initialized = false
}

// SetMuted toggles playback without tearing down the speaker
func (m *Metronome) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// HandleEvent voices the events the metronome is subscribed to
func (m *Metronome) HandleEvent(ev event.Event) {
	switch ev.Type {
	case event.EventBeatTick:
		p, ok := ev.Payload.(*event.BeatTickPayload)
		if !ok {
			return
		}
		accent := p.BeatIndex%engine.BeatsPerBar == 0
		m.play(CreateClickSound(accent, clickVolume, sampleRate))
	case event.EventAttackStarted:
		p, ok := ev.Payload.(*event.AttackStartedPayload)
		if !ok {
			return
		}
		m.play(CreateStrikeSound(p.Strong, strikeVolume, sampleRate))
	case event.EventComboReset:
		m.play(CreateResetSound(resetVolume, sampleRate))
	}
}

func (m *Metronome) play(s beep.Streamer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized || m.muted {
		return
	}
	m.mixer.Add(s)
}
