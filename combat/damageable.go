package combat

import (
	"time"

	"github.com/google/uuid"

	"github.com/vantor/beatstrike/core"
)

// Damageable is the target collaborator consulted before a hit is applied
// Implementations live outside the core (demo dummies, game entities)
type Damageable interface {
	// EntityID returns the stable identity used for per-window deduplication
	EntityID() core.Entity

	// Damageable reports whether the target can currently take damage
	Damageable() bool

	// TakeDamage applies the amount and reports whether it was a killing blow
	TakeDamage(amount int) (killed bool)
}

// DamageResult is one applied hit inside an attack window
type DamageResult struct {
	AttackID    uuid.UUID
	Attacker    core.Entity
	Target      core.Entity
	Amount      int
	KillingBlow bool
	Strong      bool
}

// PressSource is the input collaborator feeding timestamped presses
// Implementations call the installed handler once per press; a nil handler
// uninstalls the previous one
type PressSource interface {
	SetPressHandler(h func(at time.Time))
}
