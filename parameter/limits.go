package parameter

import "time"

// Tempo bounds
const (
	MinBPM     = 20.0
	MaxBPM     = 300.0
	DefaultBPM = 120.0
)

// On-beat judgment window (half-width around a beat boundary)
const (
	DefaultOnBeatWindowSeconds = 0.07
	MaxOnBeatWindowSeconds     = 0.25
)

// Attack window bounds
// MinAttackWindow is the minimal safe duration invalid requests clamp to
const (
	MinAttackWindow = 50 * time.Millisecond
	MaxAttackWindow = 2 * time.Second

	DefaultReactionBufferSeconds = 0.10
)

// Combo defaults
const (
	DefaultComboThreshold  = 4
	DefaultCooldownSeconds = 0.12
	DefaultInactivityBeats = 2
	MaxComboThreshold      = 64
	MaxInactivityBeats     = 256
)

// Damage tiers
const (
	DefaultBasicDamage  = 10
	DefaultStrongDamage = 30
)
