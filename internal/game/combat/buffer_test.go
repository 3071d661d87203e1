package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/object"
)

func TestAttackBuffer_Result(t *testing.T) {
	t.Run("empty buffer is invalid", func(t *testing.T) {
		var b combat.AttackBuffer
		assert.Equal(t, combat.ResultInvalid, b.Result())
	})

	t.Run("best outcome wins regardless of order", func(t *testing.T) {
		var b combat.AttackBuffer
		b.Record(combat.ResultMiss)
		b.Record(combat.ResultCriticalHit)
		b.Record(combat.ResultParried)
		assert.Equal(t, combat.ResultCriticalHit, b.Result())
		assert.Equal(t, 3, b.Len())
	})

	t.Run("result is the maximum of recorded outcomes", func(t *testing.T) {
		outcomes := []combat.AttackResultType{
			combat.ResultInvalid, combat.ResultMiss, combat.ResultAttackResisted,
			combat.ResultAttackFailed, combat.ResultParried, combat.ResultDeflected,
			combat.ResultHitSuccessful, combat.ResultCriticalHit, combat.ResultAutomaticHit,
		}
		rapid.Check(t, func(t *rapid.T) {
			recorded := rapid.SliceOfN(rapid.SampledFrom(outcomes), 1, 6).Draw(t, "recorded")

			var b combat.AttackBuffer
			best := combat.ResultInvalid
			for _, o := range recorded {
				b.Record(o)
				if o > best {
					best = o
				}
			}
			assert.Equal(t, best, b.Result())
		})
	})
}

func TestAttackBuffer_AddWeaponAttack(t *testing.T) {
	reg := object.NewRegistry()
	attacker := object.NewCreature(reg.NextID(), "attacker", 20)
	sword := newSword(t)

	t.Run("landed swing carries rolled damage", func(t *testing.T) {
		target := object.NewCreature(100, "target", 20)
		// Attack face 12 lands, damage die face 5.
		r := combat.NewResolver(forcedRolls(12, 5), zap.NewNop())

		var b combat.AttackBuffer
		b.AddWeaponAttack(r, attacker, target, sword, object.SlotMainHand, 0, 0, 0)
		require.Equal(t, combat.ResultHitSuccessful, b.Result())

		b.ApplyEffects(target)
		assert.Equal(t, 15, target.HP())
		assert.Equal(t, attacker.ID(), target.LastAttacker())
	})

	t.Run("missed swing deals nothing", func(t *testing.T) {
		target := object.NewCreature(101, "target", 20)
		r := combat.NewResolver(forcedRolls(2), zap.NewNop())

		var b combat.AttackBuffer
		b.AddWeaponAttack(r, attacker, target, sword, object.SlotMainHand, 0, 0, 0)
		require.Equal(t, combat.ResultMiss, b.Result())

		b.ApplyEffects(target)
		assert.Equal(t, 20, target.HP())
	})
}

func TestAttackBuffer_ApplyEffects(t *testing.T) {
	t.Run("second flush panics", func(t *testing.T) {
		target := object.NewCreature(102, "target", 20)

		var b combat.AttackBuffer
		b.Record(combat.ResultHitSuccessful, object.DamageEffect{Amount: 3})
		b.ApplyEffects(target)
		assert.PanicsWithValue(t, "combat: AttackBuffer.ApplyEffects called twice", func() {
			b.ApplyEffects(target)
		})
	})

	t.Run("reset arms the buffer again", func(t *testing.T) {
		target := object.NewCreature(103, "target", 20)

		var b combat.AttackBuffer
		b.Record(combat.ResultHitSuccessful, object.DamageEffect{Amount: 3})
		b.ApplyEffects(target)
		b.Reset()
		assert.Equal(t, 0, b.Len())

		b.Record(combat.ResultHitSuccessful, object.DamageEffect{Amount: 4})
		b.ApplyEffects(target)
		assert.Equal(t, 13, target.HP())
	})
}
