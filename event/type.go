package event

import (
	"time"
)

// EventType represents the type of combat event
type EventType int

const (
	// EventBeatTick fires once per beat of the clock grid
	// Trigger: BeatClock.Tick crossing a beat boundary
	// Consumers: ComboController (inactivity), feedback collaborators | Payload: *BeatTickPayload
	EventBeatTick EventType = iota

	// EventAttackStarted signals a hit window has opened
	// Trigger: ComboController classifying a press
	// Consumers: feedback, demo collision feed | Payload: *AttackStartedPayload
	EventAttackStarted

	// EventDamageDealt signals one target took damage inside a window
	// Trigger: AttackWindowResolver.OnOverlap on a fresh damageable target
	// Consumers: feedback, scoring | Payload: *DamageDealtPayload
	EventDamageDealt

	// EventAttackWindowClosed signals the window deadline elapsed or the attack was aborted
	// Trigger: AttackWindowResolver auto-close timer or AbortWindow
	// Consumer: ComboController | Payload: *AttackWindowClosedPayload
	EventAttackWindowClosed

	// EventAttackResolved summarizes a completed (non-aborted) attack
	// Trigger: ComboController after consuming window results
	// Consumers: feedback, scoring | Payload: *AttackResolvedPayload
	EventAttackResolved

	// EventAttackAborted signals an in-flight attack was cancelled
	// Trigger: ComboController.AbortAttack
	// Consumers: feedback | Payload: *AttackAbortedPayload
	EventAttackAborted

	// EventStreakChanged signals the combo streak moved
	// Trigger: on-beat press, strong attack resolution
	// Consumers: feedback (streak display) | Payload: *StreakChangedPayload
	EventStreakChanged

	// EventComboReset signals the streak was reset with a reason
	// Trigger: off-beat press (policy), inactivity overflow, explicit ResetCombo
	// Consumers: feedback | Payload: *ComboResetPayload
	EventComboReset
)

// String returns the name of the event type for logging and debugging
func (e EventType) String() string {
	switch e {
	case EventBeatTick:
		return "BeatTick"
	case EventAttackStarted:
		return "AttackStarted"
	case EventDamageDealt:
		return "DamageDealt"
	case EventAttackWindowClosed:
		return "AttackWindowClosed"
	case EventAttackResolved:
		return "AttackResolved"
	case EventAttackAborted:
		return "AttackAborted"
	case EventStreakChanged:
		return "StreakChanged"
	case EventComboReset:
		return "ComboReset"
	default:
		return "Unknown"
	}
}

// Event is a single published event with metadata
// Events are immutable once published
type Event struct {
	Type      EventType
	Payload   any
	Timestamp time.Time
}
