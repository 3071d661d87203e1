package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/action"
	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/game/projectiles"
)

// rollQueue feeds predetermined die faces; an exhausted queue keeps rolling
// ones.
type rollQueue struct {
	faces []int
}

func (q *rollQueue) Intn(n int) int {
	if n <= 0 {
		panic("rollQueue: Intn called with n <= 0")
	}
	if len(q.faces) == 0 {
		return 0
	}
	face := q.faces[0]
	q.faces = q.faces[1:]
	return (face - 1) % n
}

type scriptCall struct {
	resref     string
	caller     object.ID
	triggerrer object.ID
}

type scriptRecorder struct {
	calls []scriptCall
}

func (r *scriptRecorder) Run(resref string, caller, triggerrer object.ID) {
	r.calls = append(r.calls, scriptCall{resref, caller, triggerrer})
}

type fixture struct {
	svc      *action.Services
	runner   *scriptRecorder
	attacker *object.Creature
	target   *object.Creature
}

// newFixture builds two adjacent creatures and a service set rolling the
// given die faces.
func newFixture(t *testing.T, faces ...int) *fixture {
	t.Helper()
	logger := zap.NewNop()
	src := &rollQueue{faces: faces}

	reg := object.NewRegistry()
	attacker := object.NewCreature(reg.NextID(), "attacker", 20)
	target := object.NewCreature(reg.NextID(), "target", 20,
		object.WithScripts("k_attacked", ""))
	target.SetPosition(object.Point{X: 1})
	reg.Add(attacker)
	reg.Add(target)

	runner := &scriptRecorder{}
	cmb := combat.New(combat.DefaultTuning(), reg, runner, logger)

	return &fixture{
		svc: &action.Services{
			Objects:         reg,
			Combat:          cmb,
			Resolver:        combat.NewResolver(src, logger),
			Runner:          runner,
			Projectiles:     projectiles.DefaultTable(),
			Random:          src,
			ProjectileSpeed: 16,
			Logger:          logger,
		},
		runner:   runner,
		attacker: attacker,
		target:   target,
	}
}

// tick advances the combat ledger and the action by dt, mirroring the game
// loop ordering.
func (f *fixture) tick(a action.Action, dt float64) {
	f.svc.Combat.Update(dt)
	if !a.Completed() {
		a.Execute(f.attacker, dt)
	}
}

// run ticks until the action completes, failing the test if it never does.
func (f *fixture) run(t *testing.T, a action.Action, dt float64) {
	t.Helper()
	for i := 0; i < 200; i++ {
		f.tick(a, dt)
		if a.Completed() {
			return
		}
	}
	t.Fatal("action never completed")
}

func newSword() *object.Item {
	return object.NewItem("sword", object.WieldSingleBlade, dice.MustParse("1d8"), object.DamageSlashing, 1, 2)
}

func newPistol() *object.Item {
	return object.NewItem("pistol", object.WieldBlasterPistol, dice.MustParse("1d6"), object.DamageEnergy, 1, 2)
}

func TestAttack_Lifecycle(t *testing.T) {
	// Attack face 15 hits defense 10, damage die face 6, animation
	// variant draw 3.
	f := newFixture(t, 15, 6, 3)
	f.attacker.Equip(object.SlotMainHand, newSword())

	a := action.NewAttack(f.svc, f.target.ID())
	f.run(t, a, 0.5)

	t.Run("damage reached the target exactly once", func(t *testing.T) {
		assert.Equal(t, 14, f.target.HP())
		assert.Equal(t, combat.ResultHitSuccessful, a.Result())
	})

	t.Run("target ran its on-attacked script", func(t *testing.T) {
		require.NotEmpty(t, f.runner.calls)
		assert.Equal(t, scriptCall{"k_attacked", f.target.ID(), f.attacker.ID()}, f.runner.calls[0])
		assert.Equal(t, f.attacker.ID(), f.target.LastAttacker())
	})

	t.Run("attacker played a stance attack animation", func(t *testing.T) {
		// Unarmed target, variant 3 of an unarmed-target swing.
		assert.Contains(t, f.attacker.Animations(), "g2a0")
	})

	t.Run("movement lock released on finish", func(t *testing.T) {
		assert.False(t, f.attacker.MovementRestricted())
	})
}

func TestAttack_DeadTargetCompletesImmediately(t *testing.T) {
	f := newFixture(t)
	f.target.ApplyDamage(object.DamageEffect{Amount: 100})
	require.True(t, f.target.IsDead())

	a := action.NewAttack(f.svc, f.target.ID())
	f.tick(a, 0.1)
	assert.True(t, a.Completed())
	assert.Empty(t, f.svc.Combat.Rounds())
}

func TestAttack_WalksIntoRangeFirst(t *testing.T) {
	f := newFixture(t, 15, 6, 3)
	f.attacker.Equip(object.SlotMainHand, newSword())
	f.target.SetPosition(object.Point{X: 10})

	a := action.NewAttack(f.svc, f.target.ID())

	// Walk speed 4 against 8 units of gap: the first ticks only move.
	f.tick(a, 0.5)
	assert.Empty(t, f.svc.Combat.Rounds())
	assert.Greater(t, f.attacker.Position().X, float32(0))

	f.run(t, a, 0.5)
	assert.Equal(t, 14, f.target.HP())
}

func TestAttack_Cancel(t *testing.T) {
	f := newFixture(t, 15, 6, 3)
	f.attacker.Equip(object.SlotMainHand, newSword())

	a := action.NewAttack(f.svc, f.target.ID())
	f.tick(a, 0.5) // round pending
	f.tick(a, 0.5) // swing fires
	require.True(t, f.attacker.MovementRestricted())

	a.Cancel(f.attacker)
	assert.True(t, a.Completed())
	assert.False(t, f.attacker.MovementRestricted())

	t.Run("no damage lands after a cancel", func(t *testing.T) {
		hp := f.target.HP()
		f.tick(a, 5)
		assert.Equal(t, hp, f.target.HP())
	})
}

func TestAttack_DuelReaction(t *testing.T) {
	// Attacker swing: face 15 hits, damage 6, variant 4. Target swing is
	// scheduled but never fires before we stop ticking.
	f := newFixture(t, 15, 6, 4)
	f.attacker.Equip(object.SlotMainHand, newSword())
	f.target.Equip(object.SlotMainHand, newSword())

	a := action.NewAttack(f.svc, f.target.ID())
	retaliation := action.NewAttack(f.svc, f.attacker.ID())
	round := f.svc.Combat.AddAction(f.attacker, a)
	joined := f.svc.Combat.AddAction(f.target, retaliation)
	require.Same(t, round, joined)
	require.True(t, round.Duel())

	f.tick(a, 0.5) // round moves to first action
	f.tick(a, 0.5) // swing

	t.Run("attacker uses the cinematic duel clip", func(t *testing.T) {
		assert.Contains(t, f.attacker.Animations(), "c2a4")
	})

	t.Run("opponent flinches and faces the attacker", func(t *testing.T) {
		assert.Contains(t, f.target.Animations(), "c2d4")
	})
}

func TestAttack_RangedProjectiles(t *testing.T) {
	f := newFixture(t, 15, 4, 2)
	f.attacker.Equip(object.SlotMainHand, newPistol())
	f.target.SetPosition(object.Point{X: 1.5})

	a := action.NewAttack(f.svc, f.target.ID())
	f.tick(a, 0.5) // round pending
	f.tick(a, 0.5) // swing, bolt scheduled

	assert.Contains(t, f.attacker.Animations(), "b5a1")

	f.tick(a, 0.01) // wait-damage tick fires the due launch
	assert.Equal(t, 1, a.Projectiles().Fired())

	f.run(t, a, 0.5)
	assert.Equal(t, 0, a.Projectiles().InFlight())
}
