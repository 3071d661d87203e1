// Package combat implements the round ledger, attack resolution and attack
// scheduling at the heart of real-time combat: who swings when, what a swing
// rolls, and when its damage lands.
package combat

import (
	"github.com/google/uuid"

	"github.com/dkoller/skirmish/internal/game/object"
)

// AttackResultType is the outcome of one weapon attack. The declaration
// order is the total order used to pick a buffer's best outcome, worst
// first.
type AttackResultType int

const (
	ResultInvalid AttackResultType = iota
	ResultMiss
	ResultAttackResisted
	ResultAttackFailed
	ResultParried
	ResultDeflected
	ResultHitSuccessful
	ResultCriticalHit
	ResultAutomaticHit
)

// String returns a human-readable outcome label.
func (t AttackResultType) String() string {
	switch t {
	case ResultMiss:
		return "missed"
	case ResultAttackResisted:
		return "resisted"
	case ResultAttackFailed:
		return "failed"
	case ResultParried:
		return "parried"
	case ResultDeflected:
		return "deflected"
	case ResultHitSuccessful:
		return "hit"
	case ResultCriticalHit:
		return "critical hit"
	case ResultAutomaticHit:
		return "automatic hit"
	default:
		return "invalid"
	}
}

// IsSuccessful reports whether the outcome lands damage.
func (t AttackResultType) IsSuccessful() bool {
	switch t {
	case ResultHitSuccessful, ResultCriticalHit, ResultAutomaticHit:
		return true
	default:
		return false
	}
}

// Tuning holds the fixed combat timers.
type Tuning struct {
	// RoundDuration is the full length of one combat round in seconds.
	RoundDuration float64
	// DamageDelay is the attack-to-damage interval in seconds.
	DamageDelay float64
	// DeactivateDelay is the stance cool-down after a round finishes.
	DeactivateDelay float64
}

// DefaultTuning returns the stock timers.
func DefaultTuning() Tuning {
	return Tuning{
		RoundDuration:   3.0,
		DamageDelay:     1.0,
		DeactivateDelay: 8.0,
	}
}

// Action is the surface the round ledger needs from an in-flight attack
// action. The action package provides the implementations.
type Action interface {
	// ID is the action's identity; registration is idempotent per id.
	ID() uuid.UUID
	// Target is the object the action attacks, InvalidID when untargeted.
	Target() object.ID
	// Completed reports whether the action has finished or been cancelled.
	Completed() bool
}

// ScriptRunner runs a creature's script hooks. The game layer provides the
// implementation; a nil runner disables hooks.
type ScriptRunner interface {
	// Run executes the script identified by resref on behalf of caller.
	Run(resref string, caller, triggerrer object.ID)
}
