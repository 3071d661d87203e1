package action

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/object"
)

// CutsceneAttack is a scripted attack with a predetermined outcome: no
// rolls, a fixed damage amount and an animation chosen by row index. It
// still occupies a combat round so the timing matches real attacks.
type CutsceneAttack struct {
	base
	svc    *Services
	target object.ID

	animation int
	result    combat.AttackResultType
	damage    int

	schedule *combat.AttackSchedule
}

// NewCutsceneAttack creates a scripted attack. A negative damage means the
// attack deals none even when result says it landed.
func NewCutsceneAttack(svc *Services, target object.ID, animation int, result combat.AttackResultType, damage int) *CutsceneAttack {
	return &CutsceneAttack{
		base:      newBase(TypeCutsceneAttack),
		svc:       svc,
		target:    target,
		animation: animation,
		result:    result,
		damage:    damage,
		schedule:  combat.NewAttackSchedule(svc.Combat.Tuning().DamageDelay),
	}
}

// Target returns the object under attack.
func (a *CutsceneAttack) Target() object.ID { return a.target }

// Execute advances the scripted attack by one tick. Cutscene attackers do
// not chase their target; the director placed everyone already.
func (a *CutsceneAttack) Execute(actor *object.Creature, dt float64) {
	target, ok := a.svc.Objects.Get(a.target)
	if !ok {
		a.complete()
		return
	}

	actor.Face(target.Position())

	round := a.svc.Combat.AddAction(actor, a)
	state := a.schedule.Update(round, a, dt)

	switch state {
	case combat.Attack:
		actor.SetMovementRestricted(true)
		a.playAnimation(actor)
		runAttackedScript(a.svc, target, actor)
	case combat.Damage:
		if a.result.IsSuccessful() && a.damage >= 0 {
			target.ApplyDamage(object.DamageEffect{
				Amount: a.damage,
				Type:   object.DamageUniversal,
				Power:  object.PowerNormal,
				Source: actor.ID(),
			})
		}
	case combat.Finish:
		actor.SetMovementRestricted(false)
		a.complete()
	}
}

// Cancel aborts the scripted attack, releasing the actor.
func (a *CutsceneAttack) Cancel(actor *object.Creature) {
	actor.SetMovementRestricted(false)
	a.complete()
}

func (a *CutsceneAttack) playAnimation(actor *object.Creature) {
	if a.svc.AnimationNames == nil {
		return
	}
	name := a.svc.AnimationNames(a.animation)
	if name == "" {
		a.svc.Logger.Warn("cutscene attack: animation index out of bounds",
			zap.Int("index", a.animation))
		return
	}
	actor.PlayAnimation(name)
}
