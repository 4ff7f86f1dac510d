package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/vantor/beatstrike/core"
)

// BeatTickPayload carries the beat grid state for one fired beat
// All subscribers of the same tick observe the same BeatIndex and NextBeat baseline
type BeatTickPayload struct {
	BeatIndex int       // 0..3, cyclic
	BeatTime  time.Time // When this beat fired on the absolute clock
	NextBeat  time.Time // Predicted time of the following beat
}

// AttackStartedPayload announces an opened hit window
type AttackStartedPayload struct {
	AttackID uuid.UUID
	Attacker core.Entity
	Strong   bool
	Deadline time.Time
	Streak   int // Streak at the moment the attack fired
}

// DamageDealtPayload reports a single applied hit
type DamageDealtPayload struct {
	AttackID    uuid.UUID
	Attacker    core.Entity
	Target      core.Entity
	Amount      int
	KillingBlow bool
	Strong      bool
}

// AttackWindowClosedPayload signals window closure to the controller
type AttackWindowClosedPayload struct {
	AttackID uuid.UUID
	Aborted  bool
}

// AttackResolvedPayload summarizes a completed attack window
// Per-hit detail was already published as EventDamageDealt
type AttackResolvedPayload struct {
	AttackID uuid.UUID
	Attacker core.Entity
	Strong   bool
	Hits     int
	Kills    int
	Streak   int // Streak after resolution
}

// AttackAbortedPayload signals a cancelled in-flight attack
type AttackAbortedPayload struct {
	AttackID uuid.UUID
	Attacker core.Entity
	Strong   bool
}

// StreakChangedPayload carries the new streak value
type StreakChangedPayload struct {
	Streak int
	OnBeat bool // True when the change came from an on-beat press
}

// ComboResetPayload carries the reset reason for feedback and diagnostics
type ComboResetPayload struct {
	Reason      string
	PriorStreak int
}
