package action

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/game/projectiles"
)

// FeatType identifies a combat feat. Each family of three shares one attack
// animation; the ranged families also share a discharge pattern.
type FeatType int

const (
	FeatNone FeatType = iota

	FeatCriticalStrike
	FeatImprovedCriticalStrike
	FeatMasterCriticalStrike

	FeatFlurry
	FeatImprovedFlurry
	FeatWhirlwindAttack

	FeatPowerAttack
	FeatImprovedPowerAttack
	FeatMasterPowerAttack

	FeatRapidShot
	FeatImprovedRapidShot
	FeatMultiShot

	FeatSniperShot
	FeatImprovedSniperShot
	FeatMasterSniperShot

	FeatPowerBlast
	FeatImprovedPowerBlast
	FeatMasterPowerBlast
)

// featAnimFormat returns the attack animation format for the feat family;
// ok is false for feats without a bespoke attack clip.
func featAnimFormat(feat FeatType) (string, bool) {
	switch feat {
	case FeatCriticalStrike, FeatImprovedCriticalStrike, FeatMasterCriticalStrike:
		return "f%da1", true
	case FeatFlurry, FeatImprovedFlurry, FeatWhirlwindAttack:
		return "f%da2", true
	case FeatPowerAttack, FeatImprovedPowerAttack, FeatMasterPowerAttack:
		return "f%da3", true
	case FeatRapidShot, FeatImprovedRapidShot, FeatMultiShot:
		return "b%da2", true
	case FeatSniperShot, FeatImprovedSniperShot, FeatMasterSniperShot:
		return "b%da3", true
	case FeatPowerBlast, FeatImprovedPowerBlast, FeatMasterPowerBlast:
		return "b%da4", true
	default:
		return "", false
	}
}

// featProjectileType returns the discharge pattern the feat fires with; ok
// is false for melee feats.
func featProjectileType(feat FeatType) (projectiles.AttackType, bool) {
	switch feat {
	case FeatRapidShot, FeatImprovedRapidShot, FeatMultiShot:
		return projectiles.AttackRapid, true
	case FeatSniperShot, FeatImprovedSniperShot, FeatMasterSniperShot:
		return projectiles.AttackSniper, true
	case FeatPowerBlast, FeatImprovedPowerBlast, FeatMasterPowerBlast:
		return projectiles.AttackPower, true
	default:
		return 0, false
	}
}

// UseFeat is a weapon attack performed through a combat feat. Resolution is
// identical to a standard attack; the feat selects the attack animation and
// the projectile discharge pattern.
type UseFeat struct {
	base
	svc    *Services
	feat   FeatType
	target object.ID

	schedule *combat.AttackSchedule
	buffer   combat.AttackBuffer
	bolts    *projectiles.Sequence

	reachedTarget bool
}

// NewUseFeat creates a feat attack against target.
func NewUseFeat(svc *Services, feat FeatType, target object.ID) *UseFeat {
	return &UseFeat{
		base:     newBase(TypeUseFeat),
		svc:      svc,
		feat:     feat,
		target:   target,
		schedule: combat.NewAttackSchedule(svc.Combat.Tuning().DamageDelay),
		bolts:    projectiles.NewSequence(svc.ProjectileSpeed, svc.Logger),
	}
}

// Target returns the object under attack.
func (a *UseFeat) Target() object.ID { return a.target }

// Feat returns the feat being used.
func (a *UseFeat) Feat() FeatType { return a.feat }

// Result returns the best outcome rolled so far this round.
func (a *UseFeat) Result() combat.AttackResultType { return a.buffer.Result() }

// Projectiles returns the bolt sequence owned by this attack.
func (a *UseFeat) Projectiles() *projectiles.Sequence { return a.bolts }

// Execute advances the feat attack by one tick.
func (a *UseFeat) Execute(actor *object.Creature, dt float64) {
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

// Cancel aborts the feat attack, releasing the actor.
func (a *UseFeat) Cancel(actor *object.Creature) {
	a.finish(actor)
}

func (a *UseFeat) swing(actor *object.Creature, target object.Object, round *combat.Round) {
	if main := actor.Equipped(object.SlotMainHand); main != nil {
		a.buffer.AddWeaponAttack(a.svc.Resolver, actor, target, main, object.SlotMainHand, 0, 0, 0)

		if offhand := actor.Equipped(object.SlotOffHand); offhand != nil {
			a.buffer.AddWeaponAttack(a.svc.Resolver, actor, target, offhand, object.SlotOffHand, 0, 0, 0)
		}
	}

	targetWield := wieldTypeOf(target)
	variant := attackAnimVariant(a.svc.Random)

	attackerWield := actor.WieldType()
	melee := !attackerWield.IsRanged()

	if format, ok := featAnimFormat(a.feat); ok {
		actor.PlayAnimation(fmt.Sprintf(format, attackerWield))
	}

	a.svc.Logger.Debug("feat swing",
		zap.String("attacker", actor.Tag()),
		zap.String("target", target.Tag()),
		zap.Int("feat", int(a.feat)),
		zap.Stringer("result", a.buffer.Result()))

	if round.Duel() {
		opponent := target.(*object.Creature)
		opponent.Face(actor.Position())
		opponent.PlayAnimation(reactionAnim(melee, targetWield, variant, a.buffer.Result()))
	}
}

func (a *UseFeat) addProjectiles(actor *object.Creature) {
	attackType, ok := featProjectileType(a.feat)
	if !ok {
		return
	}
	spec := a.svc.Projectiles.Get(attackType, actor.WieldType(), actor.Appearance())
	if spec == nil {
		return
	}
	a.bolts.AddFromSpec(spec)
}

func (a *UseFeat) finish(actor *object.Creature) {
	actor.SetMovementRestricted(false)
	a.bolts.Reset()
	a.complete()
}
