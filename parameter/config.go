package parameter

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the recognized tuning surface of the combat core
//
// All durations are expressed in seconds in the file/env form and converted to
// time.Duration by the accessor methods. Invalid values are clamped by
// Normalize, never rejected: a live session must not halt on bad tuning
type Config struct {
	// BPM is the tempo of the beat clock
	BPM float64 `yaml:"bpm" env:"BEATSTRIKE_BPM"`

	// OnBeatWindowSeconds is the half-width tolerance around a beat boundary
	OnBeatWindowSeconds float64 `yaml:"on_beat_window_seconds" env:"BEATSTRIKE_ON_BEAT_WINDOW_SECONDS"`

	// ComboThreshold is the streak length that fires a strong attack
	ComboThreshold int `yaml:"combo_threshold" env:"BEATSTRIKE_COMBO_THRESHOLD"`

	// AttackWindowSeconds fixes the hit window duration; 0 derives it from tempo
	AttackWindowSeconds float64 `yaml:"attack_window_seconds" env:"BEATSTRIKE_ATTACK_WINDOW_SECONDS"`

	// CooldownSeconds is the minimum spacing between accepted presses
	CooldownSeconds float64 `yaml:"cooldown_seconds" env:"BEATSTRIKE_COOLDOWN_SECONDS"`

	// ResetOnOffBeat resets the streak on an off-beat press
	ResetOnOffBeat bool `yaml:"reset_on_off_beat" env:"BEATSTRIKE_RESET_ON_OFF_BEAT"`

	// InactivityBeats resets the streak after this many beats without an
	// on-beat hit; 0 disables the rule
	InactivityBeats int `yaml:"inactivity_beats" env:"BEATSTRIKE_INACTIVITY_BEATS"`

	// ReactionBufferSeconds is subtracted from the derived window so the
	// player keeps reaction time before the next beat
	ReactionBufferSeconds float64 `yaml:"reaction_buffer_seconds" env:"BEATSTRIKE_REACTION_BUFFER_SECONDS"`

	// AimLockOnStrong locks aim input for the duration of a strong window
	AimLockOnStrong bool `yaml:"aim_lock_on_strong" env:"BEATSTRIKE_AIM_LOCK_ON_STRONG"`

	// Damage tiers
	BasicDamage  int `yaml:"basic_damage" env:"BEATSTRIKE_BASIC_DAMAGE"`
	StrongDamage int `yaml:"strong_damage" env:"BEATSTRIKE_STRONG_DAMAGE"`

	// Metronome enables the audible click in the demo binary
	Metronome bool `yaml:"metronome" env:"BEATSTRIKE_METRONOME"`
}

// Default returns the baseline configuration
func Default() *Config {
	return &Config{
		BPM:                   DefaultBPM,
		OnBeatWindowSeconds:   DefaultOnBeatWindowSeconds,
		ComboThreshold:        DefaultComboThreshold,
		AttackWindowSeconds:   0, // tempo-derived
		CooldownSeconds:       DefaultCooldownSeconds,
		ResetOnOffBeat:        true,
		InactivityBeats:       DefaultInactivityBeats,
		ReactionBufferSeconds: DefaultReactionBufferSeconds,
		AimLockOnStrong:       true,
		BasicDamage:           DefaultBasicDamage,
		StrongDamage:          DefaultStrongDamage,
		Metronome:             true,
	}
}

// Load builds a config from defaults, an optional YAML file, and environment
// overrides, then normalizes it. A missing path is not an error; an unreadable
// or malformed file is
func Load(path string, logger *zap.Logger) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}

	cfg.Normalize(logger)
	return cfg, nil
}

// Normalize clamps every field into its valid range, logging each correction
func (c *Config) Normalize(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c.BPM = clampFloat(logger, "bpm", c.BPM, MinBPM, MaxBPM, DefaultBPM)
	c.OnBeatWindowSeconds = clampFloat(logger, "on_beat_window_seconds",
		c.OnBeatWindowSeconds, 0, MaxOnBeatWindowSeconds, DefaultOnBeatWindowSeconds)

	if c.ComboThreshold < 1 || c.ComboThreshold > MaxComboThreshold {
		logger.Warn("config clamped", zap.String("field", "combo_threshold"),
			zap.Int("value", c.ComboThreshold), zap.Int("fallback", DefaultComboThreshold))
		c.ComboThreshold = DefaultComboThreshold
	}

	// 0 keeps the tempo-derived policy
	if c.AttackWindowSeconds != 0 {
		c.AttackWindowSeconds = clampFloat(logger, "attack_window_seconds",
			c.AttackWindowSeconds, MinAttackWindow.Seconds(), MaxAttackWindow.Seconds(),
			MinAttackWindow.Seconds())
	}

	c.CooldownSeconds = clampFloat(logger, "cooldown_seconds",
		c.CooldownSeconds, 0, 5, DefaultCooldownSeconds)

	if c.InactivityBeats < 0 || c.InactivityBeats > MaxInactivityBeats {
		logger.Warn("config clamped", zap.String("field", "inactivity_beats"),
			zap.Int("value", c.InactivityBeats), zap.Int("fallback", DefaultInactivityBeats))
		c.InactivityBeats = DefaultInactivityBeats
	}

	c.ReactionBufferSeconds = clampFloat(logger, "reaction_buffer_seconds",
		c.ReactionBufferSeconds, 0, 1, DefaultReactionBufferSeconds)

	if c.BasicDamage < 1 {
		logger.Warn("config clamped", zap.String("field", "basic_damage"),
			zap.Int("value", c.BasicDamage), zap.Int("fallback", DefaultBasicDamage))
		c.BasicDamage = DefaultBasicDamage
	}
	if c.StrongDamage < c.BasicDamage {
		logger.Warn("config clamped", zap.String("field", "strong_damage"),
			zap.Int("value", c.StrongDamage), zap.Int("fallback", DefaultStrongDamage))
		c.StrongDamage = DefaultStrongDamage
	}
}

// clampFloat returns v limited to [min, max]; NaN and Inf fall back
func clampFloat(logger *zap.Logger, field string, v, min, max, fallback float64) float64 {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		logger.Warn("config clamped", zap.String("field", field),
			zap.Float64("value", v), zap.Float64("fallback", fallback))
		return fallback
	case v < min:
		logger.Warn("config clamped", zap.String("field", field),
			zap.Float64("value", v), zap.Float64("min", min))
		return min
	case v > max:
		logger.Warn("config clamped", zap.String("field", field),
			zap.Float64("value", v), zap.Float64("max", max))
		return max
	default:
		return v
	}
}

// Duration accessors; Normalize has already bounded the second values

func (c *Config) OnBeatWindow() time.Duration {
	return secondsToDuration(c.OnBeatWindowSeconds)
}

// AttackWindow returns the fixed window duration, or 0 when tempo-derived
func (c *Config) AttackWindow() time.Duration {
	return secondsToDuration(c.AttackWindowSeconds)
}

func (c *Config) Cooldown() time.Duration {
	return secondsToDuration(c.CooldownSeconds)
}

func (c *Config) ReactionBuffer() time.Duration {
	return secondsToDuration(c.ReactionBufferSeconds)
}

// BeatPeriod returns the beat spacing 60/bpm
func (c *Config) BeatPeriod() time.Duration {
	return secondsToDuration(60.0 / c.BPM)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
