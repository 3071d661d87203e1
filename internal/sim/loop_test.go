package sim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game"
	"github.com/dkoller/skirmish/internal/game/action"
	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/sim"
)

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

func TestLoop_RunsBoundedTicks(t *testing.T) {
	g, _, target := duelWorld(t, 15, 6, 3)

	// 20 ticks of half a second covers a full round with slack.
	loop := sim.NewLoop(g, time.Millisecond, 0.5, 20, zap.NewNop())
	require.NoError(t, loop.Start())

	assert.Equal(t, 14, target.HP())
}

func TestLoop_StopUnblocksStart(t *testing.T) {
	g, _, _ := duelWorld(t)
	loop := sim.NewLoop(g, time.Millisecond, 0.1, 0, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- loop.Start() }()

	time.Sleep(5 * time.Millisecond)
	loop.Stop()
	loop.Stop() // idempotent

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestLoop_RejectsBadSteps(t *testing.T) {
	g, _, _ := duelWorld(t)
	assert.PanicsWithValue(t, "sim: loop interval must be positive", func() {
		sim.NewLoop(g, 0, 0.1, 0, zap.NewNop())
	})
	assert.PanicsWithValue(t, "sim: loop step must be positive", func() {
		sim.NewLoop(g, time.Millisecond, 0, 0, zap.NewNop())
	})
}

func duelWorld(t *testing.T, faces ...int) (*game.Game, *object.Creature, *object.Creature) {
	t.Helper()
	g := game.New(game.Options{Random: &rollQueue{faces: faces}}, zap.NewNop())

	reg := g.Objects()
	attacker := object.NewCreature(reg.NextID(), "attacker", 20)
	target := object.NewCreature(reg.NextID(), "target", 20)
	target.SetPosition(object.Point{X: 1})
	reg.Add(attacker)
	reg.Add(target)

	sword := object.NewItem("sword", object.WieldSingleBlade, dice.MustParse("1d8"), object.DamageSlashing, 1, 2)
	attacker.Equip(object.SlotMainHand, sword)

	g.Queue(attacker.ID()).Add(action.NewAttack(g.Actions(), target.ID()))
	return g, attacker, target
}
