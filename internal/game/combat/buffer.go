package combat

import "github.com/dkoller/skirmish/internal/game/object"

// attack is one recorded swing: its outcome and the damage it will deal.
type attack struct {
	result AttackResultType
	damage []object.DamageEffect
}

// AttackBuffer accumulates the attack results of one swing (main hand, and
// off hand when dual-wielding) so their damage can be applied together once
// the damage delay elapses.
type AttackBuffer struct {
	attacks []attack
	applied bool
}

// Record appends an outcome with its damage effects. Damage on an
// unsuccessful outcome is a caller bug and is recorded as-is.
func (b *AttackBuffer) Record(result AttackResultType, damage ...object.DamageEffect) {
	b.attacks = append(b.attacks, attack{result: result, damage: damage})
}

// AddWeaponAttack resolves one swing with r and records it; damage is rolled
// only when the swing lands.
func (b *AttackBuffer) AddWeaponAttack(
	r *Resolver, attacker *object.Creature, target object.Object, weapon *object.Item,
	slot object.Slot, rollBonus, threatBonus, damageBonus int,
) {
	result := r.ComputeWeaponAttack(attacker, target, weapon, slot, rollBonus, threatBonus)
	if !result.IsSuccessful() {
		b.Record(result)
		return
	}
	b.Record(result, r.ComputeWeaponDamage(attacker, target, weapon, result, damageBonus))
}

// Result returns the single best recorded outcome under the fixed total
// order, ResultInvalid when nothing was recorded.
func (b *AttackBuffer) Result() AttackResultType {
	best := ResultInvalid
	for _, a := range b.attacks {
		if a.result > best {
			best = a.result
		}
	}
	return best
}

// Len returns the number of recorded swings.
func (b *AttackBuffer) Len() int { return len(b.attacks) }

// ApplyEffects flushes every accumulated damage effect onto target.
//
// Precondition: called at most once per buffer; a second call panics. The
// damage delay guarantees a single Damage transition per swing, so a second
// call is an engine bug.
func (b *AttackBuffer) ApplyEffects(target object.Object) {
	if b.applied {
		panic("combat: AttackBuffer.ApplyEffects called twice")
	}
	b.applied = true
	for _, a := range b.attacks {
		for _, d := range a.damage {
			target.ApplyDamage(d)
		}
	}
}

// Reset clears the buffer for the next swing.
func (b *AttackBuffer) Reset() {
	b.attacks = b.attacks[:0]
	b.applied = false
}
