package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// TestOscillatorSine verifies sine wave generation
func TestOscillatorSine(t *testing.T) {
	rate := beep.SampleRate(44100)
	osc := NewOscillator(440.0, 100*time.Millisecond, WaveSine, rate)

	samples := make([][2]float64, 100)
	n, ok := osc.Stream(samples)

	if !ok {
		t.Error("Expected stream to return ok=true")
	}
	if n != 100 {
		t.Errorf("Expected to stream 100 samples, got %d", n)
	}

	for i := 0; i < n; i++ {
		if samples[i][0] < -1.0 || samples[i][0] > 1.0 {
			t.Errorf("Sample %d out of range: %f", i, samples[i][0])
		}
	}

	if osc.Err() != nil {
		t.Errorf("Expected no error, got: %v", osc.Err())
	}
}

// TestOscillatorSquare verifies square wave generation
func TestOscillatorSquare(t *testing.T) {
	rate := beep.SampleRate(44100)
	osc := NewOscillator(220.0, 50*time.Millisecond, WaveSquare, rate)

	samples := make([][2]float64, 50)
	n, ok := osc.Stream(samples)

	if !ok {
		t.Error("Expected stream to return ok=true")
	}

	// Square wave should only have values of -1.0 or 1.0
	for i := 0; i < n; i++ {
		val := samples[i][0]
		if val != -1.0 && val != 1.0 {
			t.Errorf("Square wave sample %d should be -1.0 or 1.0, got %f", i, val)
		}
	}
}

// TestOscillatorEndsAtDuration verifies the stream terminates
func TestOscillatorEndsAtDuration(t *testing.T) {
	rate := beep.SampleRate(44100)
	duration := 10 * time.Millisecond
	osc := NewOscillator(440.0, duration, WaveSine, rate)

	total := 0
	buf := make([][2]float64, 512)
	for {
		n, ok := osc.Stream(buf)
		total += n
		if !ok {
			break
		}
	}

	expected := rate.N(duration)
	if total != expected {
		t.Errorf("Expected %d total samples, got %d", expected, total)
	}
}

// TestEnvelopeShaping verifies attack ramps from silence
func TestEnvelopeShaping(t *testing.T) {
	rate := beep.SampleRate(44100)
	duration := 100 * time.Millisecond
	osc := NewOscillator(440.0, duration, WaveSquare, rate)
	env := NewEnvelope(osc, duration, 20*time.Millisecond, 20*time.Millisecond, rate)

	samples := make([][2]float64, 10)
	n, _ := env.Stream(samples)

	if n == 0 {
		t.Fatal("Expected samples from envelope")
	}

	// First sample sits at the start of the attack ramp
	if samples[0][0] != 0.0 {
		t.Errorf("Expected attack to start at silence, got %f", samples[0][0])
	}
}

// TestClickSoundPitches verifies the accent click is distinct
func TestClickSoundPitches(t *testing.T) {
	rate := beep.SampleRate(44100)

	for _, accent := range []bool{false, true} {
		click := CreateClickSound(accent, 0.5, rate)
		samples := make([][2]float64, 256)
		n, _ := click.Stream(samples)
		if n == 0 {
			t.Errorf("Expected samples from click (accent=%v)", accent)
		}
		for i := 0; i < n; i++ {
			if samples[i][0] < -1.0 || samples[i][0] > 1.0 {
				t.Errorf("Click sample %d out of range: %f", i, samples[i][0])
			}
		}
	}
}

// TestZeroVolumeIsSilent verifies the volume helper handles zero safely
func TestZeroVolumeIsSilent(t *testing.T) {
	rate := beep.SampleRate(44100)
	click := CreateClickSound(false, 0, rate)

	samples := make([][2]float64, 64)
	n, _ := click.Stream(samples)
	for i := 0; i < n; i++ {
		if samples[i][0] != 0.0 || samples[i][1] != 0.0 {
			t.Errorf("Expected silence at zero volume, sample %d is %f", i, samples[i][0])
		}
	}
}
