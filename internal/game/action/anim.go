package action

import (
	"fmt"

	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/object"
)

// Combat animation names follow the model naming scheme: a one-letter
// family, the wield type digit and a variant digit. The "c" family is the
// cinematic duel set, "m" the armed non-duel set, "g" the combat stance set,
// "b" the blaster set and "f" the melee feat set.

func meleeAttackAnim(attackerWield, targetWield object.WieldType, variant int, duel bool) string {
	// Cinematic variants only play in a proper duel of melee fighters.
	if duel && targetWield.IsMelee() {
		return fmt.Sprintf("c%da%d", attackerWield, variant)
	}

	// Only two non-cinematic variants exist.
	variant = variant % 3

	if targetWield != object.WieldNone {
		return fmt.Sprintf("m%da%d", attackerWield, variant)
	}
	return fmt.Sprintf("g%da%d", attackerWield, variant)
}

func meleeDamageAnim(targetWield object.WieldType, variant int) string {
	if targetWield.IsMelee() {
		return fmt.Sprintf("c%dd%d", targetWield, variant)
	}
	// No flinch clip for a melee swing at a ranged fighter; fall back to
	// the combat stance.
	return fmt.Sprintf("g%dr1", targetWield)
}

func meleeParryAnim(targetWield object.WieldType, variant int) string {
	if targetWield.IsMelee() {
		return fmt.Sprintf("c%dp%d", targetWield, variant)
	}
	return fmt.Sprintf("g%dr1", targetWield)
}

func rangedAttackAnim(attackerWield object.WieldType, kind int) string {
	return fmt.Sprintf("b%da%d", attackerWield, kind)
}

func rangedDamageAnim(targetWield object.WieldType) string {
	return fmt.Sprintf("g%dd1", targetWield)
}

func rangedDodgeAnim(targetWield object.WieldType) string {
	return fmt.Sprintf("g%dg1", targetWield)
}

// attackAnimVariant picks one of the five cinematic variants.
func attackAnimVariant(src dice.Source) int {
	return src.Intn(5) + 1
}

// wieldTypeOf returns the target's wield type, WieldNone for anything that
// is not a creature.
func wieldTypeOf(target object.Object) object.WieldType {
	if c, ok := target.(*object.Creature); ok {
		return c.WieldType()
	}
	return object.WieldNone
}

// reactionAnim is the clip the duel opponent plays in response to an attack
// swing: a flinch when the attack lands, a parry or dodge when it fails.
func reactionAnim(melee bool, targetWield object.WieldType, variant int, result combat.AttackResultType) string {
	if result.IsSuccessful() {
		if melee {
			return meleeDamageAnim(targetWield, variant)
		}
		return rangedDamageAnim(targetWield)
	}
	if melee {
		return meleeParryAnim(targetWield, variant)
	}
	return rangedDodgeAnim(targetWield)
}
