package combat

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/object"
)

// Resolver computes single weapon attacks and their damage. It owns no
// combat state; everything it needs arrives per call.
type Resolver struct {
	src    dice.Source
	logger *zap.Logger
}

// NewResolver creates a resolver rolling with src.
//
// Precondition: src and logger are non-nil.
func NewResolver(src dice.Source, logger *zap.Logger) *Resolver {
	return &Resolver{src: src, logger: logger}
}

// weaponAttackBonus is the flat bonus added to an attack roll: the governing
// ability modifier plus aggregate attack-bonus effects, minus the dual-wield
// penalty when both hand slots are occupied.
func (r *Resolver) weaponAttackBonus(attacker *object.Creature, weapon *object.Item, slot object.Slot) int {
	modifier := attacker.StrengthModifier()
	if weapon.IsRanged() {
		modifier = attacker.DexterityModifier()
	}

	penalty := 0
	if attacker.IsDualWielding() {
		if slot == object.SlotOffHand {
			penalty = 10
		} else {
			penalty = 6
		}
	}

	effects := attacker.AttackBonus()

	r.logger.Debug("weapon attack bonus",
		zap.String("attacker", attacker.Tag()),
		zap.Int("modifier", modifier),
		zap.Int("effects", effects),
		zap.Int("penalty", penalty))

	return modifier + effects - penalty
}

// ComputeWeaponAttack resolves one swing of weapon from attacker against
// target and returns the outcome.
//
// A natural 1 always misses, before any bonus is considered. A natural 20
// always hits. Any hit whose roll falls inside the weapon's critical threat
// range (widened by threatBonus) is confirmed with an independent roll and
// upgraded to a critical on success.
//
// Precondition: attacker and weapon are non-nil.
func (r *Resolver) ComputeWeaponAttack(
	attacker *object.Creature, target object.Object, weapon *object.Item,
	slot object.Slot, rollBonus, threatBonus int,
) AttackResultType {
	// Non-creature targets defend at a flat 10.
	defense := 10
	if c, ok := target.(*object.Creature); ok {
		defense = c.Defense()
	}

	roll := dice.D20(r.src)
	if roll == 1 {
		r.logger.Debug("weapon attack: miss", zap.Int("roll", 1))
		return ResultMiss
	}

	bonus := r.weaponAttackBonus(attacker, weapon, slot) + rollBonus

	var result AttackResultType
	switch {
	case roll == 20:
		result = ResultAutomaticHit
	case roll+bonus >= defense:
		result = ResultHitSuccessful
	default:
		r.logger.Debug("weapon attack: miss",
			zap.Int("roll", roll),
			zap.Int("bonus", bonus),
			zap.Int("defense", defense))
		return ResultMiss
	}

	criticalThreat := weapon.CriticalThreat() + threatBonus
	if roll > 20-criticalThreat {
		confirmRoll := dice.D20(r.src)
		if confirmRoll+bonus >= defense {
			r.logger.Debug("weapon attack: critical hit",
				zap.Int("roll", roll),
				zap.Int("confirm_roll", confirmRoll),
				zap.Int("bonus", bonus),
				zap.Int("defense", defense),
				zap.Int("critical_threat", criticalThreat))
			return ResultCriticalHit
		}
	}

	r.logger.Debug("weapon attack",
		zap.Stringer("result", result),
		zap.Int("roll", roll),
		zap.Int("bonus", bonus),
		zap.Int("defense", defense),
		zap.Int("critical_threat", criticalThreat))

	return result
}

// ComputeWeaponDamage rolls weapon damage for a successful attack and
// returns exactly one damage effect. Confirmed criticals multiply the whole
// amount by the weapon's critical multiplier.
//
// Weapons with multiple damage flavors are not modeled; the weapon's single
// damage type is used.
func (r *Resolver) ComputeWeaponDamage(
	attacker *object.Creature, target object.Object, weapon *object.Item,
	result AttackResultType, damageBonus int,
) object.DamageEffect {
	multiplier := 1
	if result == ResultCriticalHit {
		multiplier = weapon.CriticalMultiplier()
	}

	amount := damageBonus + dice.Roll(weapon.Damage(), r.src).Total()

	r.logger.Debug("weapon damage",
		zap.String("attacker", attacker.Tag()),
		zap.String("target", target.Tag()),
		zap.Int("amount", amount),
		zap.Int("multiplier", multiplier))

	return object.DamageEffect{
		Amount: multiplier * amount,
		Type:   weapon.DamageType(),
		Power:  object.PowerNormal,
		Source: attacker.ID(),
	}
}
