package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

const (
	clickDuration  = 30 * time.Millisecond
	clickAttack    = 2 * time.Millisecond
	clickRelease   = 20 * time.Millisecond
	strikeDuration = 120 * time.Millisecond
	strikeAttack   = 5 * time.Millisecond
	strikeRelease  = 80 * time.Millisecond
	buzzDuration   = 150 * time.Millisecond
	buzzAttack     = 10 * time.Millisecond
	buzzRelease    = 100 * time.Millisecond
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a new oscillator for wave generation
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	samples := rate.N(duration)
	return &oscillator{
		freq:     freq,
		duration: samples,
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, false
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		// Advance phase, keep in [0, 1)
		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope creates an ADSR envelope (simplified to just attack/release)
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, false
		}

		var vol float64 = 1.0

		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			remaining := e.totalSamples - e.position
			vol = float64(remaining) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// Helper to create a volume effect safely
// math.Log2(0) is -Inf, so we handle 0 volume by making it silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// CreateClickSound generates the metronome tick. The accented click marks the
// first beat of a bar with a higher pitch
func CreateClickSound(accent bool, volume float64, rate beep.SampleRate) beep.Streamer {
	freq := 880.0
	if accent {
		freq = 1760.0
	}
	osc := NewOscillator(freq, clickDuration, WaveSine, rate)
	shaped := NewEnvelope(osc, clickDuration, clickAttack, clickRelease, rate)
	return newVolume(shaped, volume)
}

// CreateStrikeSound generates the attack launch sound
// Strong attacks get a lower, longer square hit
func CreateStrikeSound(strong bool, volume float64, rate beep.SampleRate) beep.Streamer {
	if strong {
		osc := NewOscillator(220.0, strikeDuration, WaveSquare, rate)
		shaped := NewEnvelope(osc, strikeDuration, strikeAttack, strikeRelease, rate)
		return newVolume(shaped, volume)
	}
	osc := NewOscillator(440.0, strikeDuration/2, WaveSquare, rate)
	shaped := NewEnvelope(osc, strikeDuration/2, strikeAttack, strikeRelease/2, rate)
	return newVolume(shaped, volume*0.7)
}

// CreateResetSound generates a short harsh buzz for a combo reset
func CreateResetSound(volume float64, rate beep.SampleRate) beep.Streamer {
	osc := NewOscillator(100.0, buzzDuration, WaveSaw, rate)
	shaped := NewEnvelope(osc, buzzDuration, buzzAttack, buzzRelease, rate)
	return newVolume(shaped, volume)
}
