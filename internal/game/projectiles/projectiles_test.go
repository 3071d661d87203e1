package projectiles_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/game/projectiles"
)

func newShooters(t *testing.T) (*object.Creature, *object.Creature) {
	t.Helper()
	attacker := object.NewCreature(1, "attacker", 20)
	target := object.NewCreature(2, "target", 20)
	target.SetPosition(object.Point{X: 32})
	return attacker, target
}

func TestProjectile_Update(t *testing.T) {
	t.Run("flies at constant speed toward the impact point", func(t *testing.T) {
		attacker, target := newShooters(t)
		s := projectiles.NewSequence(16, zap.NewNop())
		s.AddFromSpec(&projectiles.Spec{
			Launches: []projectiles.Launch{{Time: 0, Hand: object.SlotMainHand}},
		})

		s.Update(0.01, attacker, target) // fires, barely moves
		require.Equal(t, 1, s.InFlight())

		// 32 units at 16 units per second takes two seconds.
		s.Update(1.0, attacker, target)
		assert.Equal(t, 1, s.InFlight())
		s.Update(1.5, attacker, target)
		assert.Equal(t, 0, s.InFlight())
		assert.Equal(t, 1, s.Fired())
	})

	t.Run("launches fire in pattern order as time passes", func(t *testing.T) {
		attacker, target := newShooters(t)
		s := projectiles.NewSequence(16, zap.NewNop())
		s.AddFromSpec(&projectiles.Spec{
			Launches: []projectiles.Launch{
				{Time: 0, Hand: object.SlotMainHand},
				{Time: 0.3, Hand: object.SlotOffHand},
			},
		})

		s.Update(0.1, attacker, target)
		assert.Equal(t, 1, s.Fired())
		s.Update(0.1, attacker, target)
		assert.Equal(t, 1, s.Fired())
		s.Update(0.2, attacker, target)
		assert.Equal(t, 2, s.Fired())
	})

	t.Run("trailing misses overshoot the target before retiring", func(t *testing.T) {
		attacker, target := newShooters(t)
		s := projectiles.NewSequence(16, zap.NewNop())
		s.AddFromSpec(&projectiles.Spec{
			Launches: []projectiles.Launch{
				{Time: 0, Hand: object.SlotMainHand},
				{Time: 0, Hand: object.SlotOffHand},
			},
			Misses: 1,
		})

		s.Update(0.01, attacker, target)
		require.Equal(t, 2, s.InFlight())
		assert.False(t, s.Bolts()[0].Missed())
		assert.True(t, s.Bolts()[1].Missed())

		// 32 units at 16 per second: the landing bolt arrives at two
		// seconds, the miss keeps flying four units past the impact point.
		s.Update(2.1, attacker, target)
		require.Equal(t, 1, s.InFlight())
		miss := s.Bolts()[0]
		assert.True(t, miss.Missed())
		assert.Greater(t, miss.Position().X, target.Position().X)

		s.Update(0.5, attacker, target)
		assert.Equal(t, 0, s.InFlight())
	})

	t.Run("reset clears pending and in-flight bolts", func(t *testing.T) {
		attacker, target := newShooters(t)
		s := projectiles.NewSequence(16, zap.NewNop())
		s.AddFromSpec(&projectiles.Spec{
			Launches: []projectiles.Launch{
				{Time: 0, Hand: object.SlotMainHand},
				{Time: 5, Hand: object.SlotMainHand},
			},
		})
		s.Update(0.1, attacker, target)
		require.Equal(t, 1, s.InFlight())

		s.Reset()
		assert.Equal(t, 0, s.InFlight())
		assert.Equal(t, 0, s.Fired())

		s.Update(10, attacker, target)
		assert.Equal(t, 0, s.Fired())
	})

	t.Run("zero speed is rejected", func(t *testing.T) {
		assert.PanicsWithValue(t, "projectiles: sequence speed must be positive", func() {
			projectiles.NewSequence(0, zap.NewNop())
		})
	})
}

func TestTable_Get(t *testing.T) {
	table := projectiles.DefaultTable()

	t.Run("ranged weapon classes have basic patterns", func(t *testing.T) {
		spec := table.Get(projectiles.AttackBasic, object.WieldBlasterPistol, 0)
		require.NotNil(t, spec)
		assert.Len(t, spec.Launches, 1)

		spec = table.Get(projectiles.AttackRapid, object.WieldBlasterRifle, 0)
		require.NotNil(t, spec)
		assert.Len(t, spec.Launches, 3)
		assert.Equal(t, 2, spec.Misses)
	})

	t.Run("melee attacks never fire bolts", func(t *testing.T) {
		assert.Nil(t, table.Get(projectiles.AttackBasic, object.WieldSingleBlade, 0))
		assert.Nil(t, table.Get(projectiles.AttackBasic, object.WieldNone, 0))
	})

	t.Run("missing rows are a silent content gap", func(t *testing.T) {
		assert.Nil(t, table.Get(projectiles.AttackSniper, object.WieldHeavyWeapon, 0))
	})
}

func TestLoadTable(t *testing.T) {
	const doc = `
humanoids:
  - wield: 5
    attack: 1
    misses: 1
    launches:
      - time: 0
        hand: 0
      - time: 0.25
        hand: 1
droids:
  - appearance: 42
    attack: 1
    launches:
      - time: 0.1
        hand: 0
`

	table, err := projectiles.LoadTable(strings.NewReader(doc))
	require.NoError(t, err)

	t.Run("humanoid row round-trips", func(t *testing.T) {
		spec := table.Get(projectiles.AttackBasic, object.WieldBlasterPistol, 0)
		require.NotNil(t, spec)
		assert.Equal(t, 1, spec.Misses)
		require.Len(t, spec.Launches, 2)
		assert.Equal(t, object.SlotOffHand, spec.Launches[1].Hand)
		assert.InDelta(t, 0.25, spec.Launches[1].Time, 1e-9)
	})

	t.Run("droid appearance wins over wield", func(t *testing.T) {
		spec := table.Get(projectiles.AttackBasic, object.WieldBlasterPistol, 42)
		require.NotNil(t, spec)
		assert.Len(t, spec.Launches, 1)
	})

	t.Run("droid rows apply even to melee wields", func(t *testing.T) {
		spec := table.Get(projectiles.AttackBasic, object.WieldNone, 42)
		require.NotNil(t, spec)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		_, err := projectiles.LoadTable(strings.NewReader("humanoids: [not a row"))
		assert.Error(t, err)
	})
}
