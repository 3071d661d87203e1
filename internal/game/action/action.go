// Package action holds the deferred commands a creature works through one
// per tick: weapon attacks, feat attacks, scripted cutscene swings and
// saved-script continuations.
package action

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/game/projectiles"
)

// How close an attacker must get before swinging, in world units.
const attackRange = 2.0

// Type discriminates action implementations.
type Type int

const (
	TypeAttack Type = iota
	TypeUseFeat
	TypeCutsceneAttack
	TypeDoCommand
)

// String returns the action type name.
func (t Type) String() string {
	switch t {
	case TypeAttack:
		return "attack"
	case TypeUseFeat:
		return "use-feat"
	case TypeCutsceneAttack:
		return "cutscene-attack"
	case TypeDoCommand:
		return "do-command"
	default:
		return "unknown"
	}
}

// Action is one queued command. Execute is called every tick until the
// action marks itself completed; Cancel is called at most once, when the
// queue is cleared or the actor dies.
type Action interface {
	ID() uuid.UUID
	Type() Type
	Target() object.ID
	Completed() bool
	Execute(actor *object.Creature, dt float64)
	Cancel(actor *object.Creature)
}

// Services bundles everything an action needs to execute. One instance is
// shared by every action in the game.
type Services struct {
	Objects     *object.Registry
	Combat      *combat.Combat
	Resolver    *combat.Resolver
	Runner      combat.ScriptRunner
	Projectiles *projectiles.Table
	Random      dice.Source

	// ProjectileSpeed is in world units per second.
	ProjectileSpeed float32

	// AnimationNames resolves a cutscene animation row index to a model
	// animation name. Nil when no animation data is loaded.
	AnimationNames func(index int) string

	Logger *zap.Logger
}

type base struct {
	id        uuid.UUID
	typ       Type
	completed bool
}

func newBase(typ Type) base {
	return base{id: uuid.New(), typ: typ}
}

func (b *base) ID() uuid.UUID   { return b.id }
func (b *base) Type() Type      { return b.typ }
func (b *base) Completed() bool { return b.completed }

func (b *base) complete() { b.completed = true }

// navigateToAttackTarget walks the attacker into attack range. Once reached,
// the flag keeps later ticks from chasing a target that steps away mid-swing.
func navigateToAttackTarget(attacker *object.Creature, target object.Object, dt float64, reachedOnce *bool) bool {
	if *reachedOnce {
		return true
	}
	if !attacker.NavigateTo(target.Position(), attackRange, dt) {
		return false
	}
	*reachedOnce = true
	return true
}

// runAttackedScript fires the target's on-attacked script and remembers who
// swung, whether or not the attack lands.
func runAttackedScript(svc *Services, target object.Object, attacker *object.Creature) {
	creature, ok := target.(*object.Creature)
	if !ok {
		return
	}
	creature.SetLastAttacker(attacker.ID())
	if script := creature.OnAttackedScript(); script != "" && svc.Runner != nil {
		svc.Runner.Run(script, creature.ID(), attacker.ID())
	}
}
