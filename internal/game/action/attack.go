package action

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/game/projectiles"
)

// Attack is a standard weapon attack against one object. It walks the actor
// into range, registers with the combat ledger, swings on its turn, applies
// damage after the damage delay and completes when its round finishes.
type Attack struct {
	base
	svc    *Services
	target object.ID

	schedule *combat.AttackSchedule
	buffer   combat.AttackBuffer
	bolts    *projectiles.Sequence

	reachedTarget bool
}

// NewAttack creates an attack action against target.
//
// Precondition: svc is fully populated and target is valid.
func NewAttack(svc *Services, target object.ID) *Attack {
	return &Attack{
		base:     newBase(TypeAttack),
		svc:      svc,
		target:   target,
		schedule: combat.NewAttackSchedule(svc.Combat.Tuning().DamageDelay),
		bolts:    projectiles.NewSequence(svc.ProjectileSpeed, svc.Logger),
	}
}

// Target returns the object under attack.
func (a *Attack) Target() object.ID { return a.target }

// Result returns the best outcome rolled so far this round.
func (a *Attack) Result() combat.AttackResultType { return a.buffer.Result() }

// Projectiles returns the bolt sequence owned by this attack.
func (a *Attack) Projectiles() *projectiles.Sequence { return a.bolts }

// Execute advances the attack by one tick.
func (a *Attack) Execute(actor *object.Creature, dt float64) {
	target, ok := a.svc.Objects.Get(a.target)
	if !ok || target.IsDead() {
		a.finish(actor)
		return
	}

	if !navigateToAttackTarget(actor, target, dt, &a.reachedTarget) {
		return
	}
	actor.Face(target.Position())

	round := a.svc.Combat.AddAction(actor, a)
	state := a.schedule.Update(round, a, dt)

	switch state {
	case combat.Attack:
		actor.SetMovementRestricted(true)
		a.swing(actor, target, round)
		runAttackedScript(a.svc, target, actor)
		a.addProjectiles(actor)
		return
	case combat.Damage:
		a.buffer.ApplyEffects(target)
	case combat.Finish:
		a.finish(actor)
		return
	}

	switch state {
	case combat.WaitDamage, combat.Damage, combat.WaitFinish:
		a.bolts.Update(dt, actor, target)
	}
}

// Cancel aborts the attack, releasing the actor.
func (a *Attack) Cancel(actor *object.Creature) {
	a.finish(actor)
}

// swing rolls the main hand, the off hand when occupied, and plays the
// attack animation plus the duel opponent's reaction.
func (a *Attack) swing(actor *object.Creature, target object.Object, round *combat.Round) {
	if main := actor.Equipped(object.SlotMainHand); main != nil {
		a.buffer.AddWeaponAttack(a.svc.Resolver, actor, target, main, object.SlotMainHand, 0, 0, 0)

		if offhand := actor.Equipped(object.SlotOffHand); offhand != nil {
			a.buffer.AddWeaponAttack(a.svc.Resolver, actor, target, offhand, object.SlotOffHand, 0, 0, 0)
		}
	}
	// Unarmed attacks roll nothing; the animations still play.

	targetWield := wieldTypeOf(target)
	variant := attackAnimVariant(a.svc.Random)

	attackerWield := actor.WieldType()
	melee := !attackerWield.IsRanged()

	attackAnim := rangedAttackAnim(attackerWield, 1)
	if melee {
		attackAnim = meleeAttackAnim(attackerWield, targetWield, variant, round.Duel())
	}
	actor.PlayAnimation(attackAnim)

	a.svc.Logger.Debug("attack swing",
		zap.String("attacker", actor.Tag()),
		zap.String("target", target.Tag()),
		zap.Stringer("result", a.buffer.Result()),
		zap.String("animation", attackAnim))

	if round.Duel() {
		opponent := target.(*object.Creature)
		opponent.Face(actor.Position())
		opponent.PlayAnimation(reactionAnim(melee, targetWield, variant, a.buffer.Result()))
	}
}

// addProjectiles schedules the basic discharge pattern for the actor's
// weapon class, when one exists.
func (a *Attack) addProjectiles(actor *object.Creature) {
	spec := a.svc.Projectiles.Get(projectiles.AttackBasic, actor.WieldType(), actor.Appearance())
	if spec == nil {
		return
	}
	a.bolts.AddFromSpec(spec)
}

func (a *Attack) finish(actor *object.Creature) {
	actor.SetMovementRestricted(false)
	a.bolts.Reset()
	a.complete()
}
