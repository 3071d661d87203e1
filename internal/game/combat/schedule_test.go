package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/combat"
)

func TestAttackSchedule(t *testing.T) {
	tuning := combat.DefaultTuning()

	setup := func(t *testing.T) (*combat.Combat, *combat.Round, combat.Action) {
		t.Helper()
		reg, a, b := newArena(t)
		c := combat.New(tuning, reg, nil, zap.NewNop())
		act := newStubAction(b.ID())
		round := c.AddAction(a, act)
		return c, round, act
	}

	t.Run("full timeline across a solo round", func(t *testing.T) {
		c, round, act := setup(t)
		s := combat.NewAttackSchedule(tuning.DamageDelay)

		// Round still pending: the action holds.
		assert.Equal(t, combat.WaitAttack, s.Update(round, act, 0.2))

		c.Update(0.2) // round grants the first slot
		require.Equal(t, combat.RoundFirstAction, round.State())
		assert.Equal(t, combat.Attack, s.Update(round, act, 0.2))
		assert.Equal(t, combat.WaitDamage, s.Update(round, act, 0.2))

		// Holds until one second of action time has elapsed.
		assert.Equal(t, combat.WaitDamage, s.Update(round, act, 0.2))
		assert.Equal(t, combat.Damage, s.Update(round, act, 0.3))
		assert.Equal(t, combat.WaitFinish, s.Update(round, act, 0.3))

		// Holds until the round itself finishes.
		assert.Equal(t, combat.WaitFinish, s.Update(round, act, 0.3))
		c.Update(1.5) // past the midpoint
		c.Update(1.5) // past the three second duration
		require.Equal(t, combat.RoundFinished, round.State())
		assert.Equal(t, combat.Finish, s.Update(round, act, 0.3))

		// Finish is terminal.
		assert.Equal(t, combat.Finish, s.Update(round, act, 10))
	})

	t.Run("stages never regress", func(t *testing.T) {
		c, round, act := setup(t)
		s := combat.NewAttackSchedule(tuning.DamageDelay)

		seen := s.State()
		for i := 0; i < 40; i++ {
			c.Update(0.1)
			got := s.Update(round, act, 0.1)
			assert.GreaterOrEqual(t, got, seen, "tick %d", i)
			seen = got
		}
		assert.Equal(t, combat.Finish, seen)
	})

	t.Run("second duellist waits for the midpoint", func(t *testing.T) {
		reg, a, b := newArena(t)
		c := combat.New(tuning, reg, nil, zap.NewNop())
		first := newStubAction(b.ID())
		second := newStubAction(a.ID())
		round := c.AddAction(a, first)
		c.AddAction(b, second)

		s := combat.NewAttackSchedule(tuning.DamageDelay)
		c.Update(0.2) // first slot only
		assert.Equal(t, combat.WaitAttack, s.Update(round, second, 0.2))

		c.Update(1.5) // past the midpoint
		require.Equal(t, combat.RoundSecondAction, round.State())
		assert.Equal(t, combat.Attack, s.Update(round, second, 0.2))
	})
}
