package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game"
	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/message"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/script"
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

func newDuelGame(t *testing.T, faces ...int) (*game.Game, *object.Creature, *object.Creature) {
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
	return g, attacker, target
}

func mustBuild(t *testing.T, b *script.ProgramBuilder) *script.Program {
	t.Helper()
	program, err := b.Build()
	require.NoError(t, err)
	return program
}

func TestGame_ScriptedAttack(t *testing.T) {
	// Attack face 15 hits, damage die 6, animation variant 3.
	g, attacker, target := newDuelGame(t, 15, 6, 3)

	// ActionAttack(oAttackee, bPassive): last argument pushed first.
	program := mustBuild(t, script.NewProgramBuilder("k_attack").
		Add(script.Instruction{Type: script.InsCONSTI, Int: 0}).
		Add(script.Instruction{Type: script.InsCONSTO, Object: uint32(target.ID())}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 37, ArgCount: 2}).
		Add(script.Instruction{Type: script.InsRETN}))
	g.LoadProgram("k_attack", program)

	g.RunScript("k_attack", attacker.ID(), object.InvalidID)
	require.Equal(t, 1, g.Queue(attacker.ID()).Len())

	for i := 0; i < 12; i++ {
		g.Update(0.5)
	}

	assert.Equal(t, 14, target.HP())
	assert.Contains(t, attacker.Animations(), "g2a0")
	assert.Equal(t, 0, g.Queue(attacker.ID()).Len())
	assert.Equal(t, attacker.ID(), target.LastAttacker())
}

func TestGame_SpeakStringReachesListeners(t *testing.T) {
	g, speaker, listener := newDuelGame(t)

	// SetListenPattern(oObject, sPattern, nNumber) then
	// SpeakString(sStringToSpeak, nTalkVolume).
	program := mustBuild(t, script.NewProgramBuilder("k_speak").
		Add(script.Instruction{Type: script.InsCONSTI, Int: 4}).
		Add(script.Instruction{Type: script.InsCONSTS, Str: "foo"}).
		Add(script.Instruction{Type: script.InsCONSTO, Object: uint32(listener.ID())}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 176, ArgCount: 3}).
		Add(script.Instruction{Type: script.InsCONSTI, Int: int(message.VolumeShout)}).
		Add(script.Instruction{Type: script.InsCONSTS, Str: "foo"}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 221, ArgCount: 2}).
		Add(script.Instruction{Type: script.InsRETN}))
	g.LoadProgram("k_speak", program)

	type heard struct {
		speaker, listener object.ID
		number            int
		volume            message.TalkVolume
	}
	var got []heard
	g.SetMessageHandler(func(s, l object.ID, number int, volume message.TalkVolume) {
		got = append(got, heard{s, l, number, volume})
	})

	g.RunScript("k_speak", speaker.ID(), object.InvalidID)
	g.Update(0.1)

	assert.Equal(t, []heard{{speaker.ID(), listener.ID(), 4, message.VolumeShout}}, got)

	t.Run("drained messages do not repeat", func(t *testing.T) {
		g.Update(0.1)
		assert.Len(t, got, 1)
	})
}

func TestGame_DelayCommandContinuation(t *testing.T) {
	g, caller, listener := newDuelGame(t)
	g.Bus().AddListener(listener.ID(), "ping", 1)

	var deliveries int
	g.SetMessageHandler(func(_, _ object.ID, _ int, _ message.TalkVolume) {
		deliveries++
	})

	// The deferred body speaks "ping"; the main path schedules it through
	// DelayCommand(1.0, <continuation>) and returns.
	b := script.NewProgramBuilder("k_delay").
		Add(script.Instruction{Type: script.InsSTORESTATE}).
		Jump(script.InsJMP, "after").
		Add(script.Instruction{Type: script.InsCONSTI, Int: int(message.VolumeTalk)}).
		Add(script.Instruction{Type: script.InsCONSTS, Str: "ping"}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 221, ArgCount: 2}).
		Add(script.Instruction{Type: script.InsRETN}).
		Label("after").
		Add(script.Instruction{Type: script.InsCONSTF, Float: 1.0}).
		Add(script.Instruction{Type: script.InsACTION, Routine: 7, ArgCount: 2}).
		Add(script.Instruction{Type: script.InsRETN})
	g.LoadProgram("k_delay", mustBuild(t, b))

	g.RunScript("k_delay", caller.ID(), object.InvalidID)

	g.Update(0.5)
	assert.Equal(t, 0, deliveries, "continuation must wait out its delay")

	g.Update(0.6)
	assert.Equal(t, 1, deliveries)

	g.Update(0.5)
	assert.Equal(t, 1, deliveries, "continuation runs once")
}

func TestGame_RoutineQueries(t *testing.T) {
	g, attacker, target := newDuelGame(t, 15, 6, 3)

	callerArg, err := script.NewArgument(script.ArgCaller, script.OfObject(uint32(attacker.ID())))
	require.NoError(t, err)
	ctx := &script.ExecutionContext{Routines: g.Routines(), Args: []script.Argument{callerArg}}

	t.Run("GetIsObjectValid", func(t *testing.T) {
		rt, err := g.Routines().Get(42)
		require.NoError(t, err)

		v, err := rt.Invoke([]script.Variable{script.OfObject(uint32(target.ID()))}, ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, v.Int)

		v, err = rt.Invoke([]script.Variable{script.OfObject(9999)}, ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Int)
	})

	t.Run("GetLastAttacker before and after a fight", func(t *testing.T) {
		rt, err := g.Routines().Get(36)
		require.NoError(t, err)

		v, err := rt.Invoke([]script.Variable{script.OfObject(uint32(target.ID()))}, ctx)
		require.NoError(t, err)
		assert.Equal(t, script.ObjectInvalid, v.Object)

		attackRt, err := g.Routines().Get(37)
		require.NoError(t, err)
		_, err = attackRt.Invoke([]script.Variable{script.OfObject(uint32(target.ID())), script.OfInt(0)}, ctx)
		require.NoError(t, err)
		for i := 0; i < 12; i++ {
			g.Update(0.5)
		}

		v, err = rt.Invoke([]script.Variable{script.OfObject(uint32(target.ID()))}, ctx)
		require.NoError(t, err)
		assert.Equal(t, uint32(attacker.ID()), v.Object)
	})

	t.Run("unmapped index is an error", func(t *testing.T) {
		_, err := g.Routines().Get(777)
		assert.Error(t, err)
	})
}
