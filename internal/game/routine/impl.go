package routine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/action"
	"github.com/dkoller/skirmish/internal/game/combat"
	"github.com/dkoller/skirmish/internal/game/message"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/script"
)

// attackResultFromInt clamps a scripted outcome to the known range; content
// occasionally passes garbage here.
func attackResultFromInt(v int) combat.AttackResultType {
	if v < int(combat.ResultInvalid) || v > int(combat.ResultAutomaticHit) {
		return combat.ResultInvalid
	}
	return combat.AttackResultType(v)
}

// registerAll inserts every implemented routine under its stock compiler
// function id.
func (r *Registry) registerAll() {
	r.insert(0, "Random", script.TypeInt,
		[]script.Type{script.TypeInt}, r.routineRandom)
	r.insert(1, "PrintString", script.TypeVoid,
		[]script.Type{script.TypeString}, r.routinePrintString)
	r.insert(6, "AssignCommand", script.TypeVoid,
		[]script.Type{script.TypeObject, script.TypeAction}, r.routineAssignCommand)
	r.insert(7, "DelayCommand", script.TypeVoid,
		[]script.Type{script.TypeFloat, script.TypeAction}, r.routineDelayCommand)
	r.insert(8, "ExecuteScript", script.TypeVoid,
		[]script.Type{script.TypeString, script.TypeObject, script.TypeInt}, r.routineExecuteScript)
	r.insert(9, "ClearAllActions", script.TypeVoid,
		nil, r.routineClearAllActions)
	r.insert(36, "GetLastAttacker", script.TypeObject,
		[]script.Type{script.TypeObject}, r.routineGetLastAttacker)
	r.insert(37, "ActionAttack", script.TypeVoid,
		[]script.Type{script.TypeObject, script.TypeInt}, r.routineActionAttack)
	r.insert(42, "GetIsObjectValid", script.TypeInt,
		[]script.Type{script.TypeObject}, r.routineGetIsObjectValid)
	r.insert(176, "SetListenPattern", script.TypeVoid,
		[]script.Type{script.TypeObject, script.TypeString, script.TypeInt}, r.routineSetListenPattern)
	r.insert(221, "SpeakString", script.TypeVoid,
		[]script.Type{script.TypeString, script.TypeInt}, r.routineSpeakString)
	r.insert(287, "ActionUseFeat", script.TypeVoid,
		[]script.Type{script.TypeInt, script.TypeObject}, r.routineActionUseFeat)
	r.insert(294, "ActionDoCommand", script.TypeVoid,
		[]script.Type{script.TypeAction}, r.routineActionDoCommand)
	r.insert(503, "CutsceneAttack", script.TypeVoid,
		[]script.Type{script.TypeObject, script.TypeInt, script.TypeInt, script.TypeInt}, r.routineCutsceneAttack)
}

func (r *Registry) routineRandom(args []script.Variable, _ *script.ExecutionContext) (script.Variable, error) {
	n := args[0].Int
	if n <= 0 {
		return script.OfInt(0), nil
	}
	return script.OfInt(r.random.Intn(n)), nil
}

func (r *Registry) routinePrintString(args []script.Variable, _ *script.ExecutionContext) (script.Variable, error) {
	r.logger.Info(args[0].Str)
	return script.OfNull(), nil
}

func (r *Registry) routineAssignCommand(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	subject, err := r.resolveObject(args[0], ctx)
	if err != nil {
		return script.OfNull(), err
	}
	if args[1].Ctx == nil || args[1].Ctx.SavedState == nil {
		return script.OfNull(), fmt.Errorf("AssignCommand: action argument has no saved state")
	}
	r.world.Queue(subject.ID()).Add(action.NewDoCommand(r.actions, args[1].Ctx))
	return script.OfNull(), nil
}

func (r *Registry) routineDelayCommand(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	caller, err := r.caller(ctx)
	if err != nil {
		return script.OfNull(), err
	}
	if args[1].Ctx == nil || args[1].Ctx.SavedState == nil {
		return script.OfNull(), fmt.Errorf("DelayCommand: action argument has no saved state")
	}
	cmd := action.NewDoCommand(r.actions, args[1].Ctx)
	r.world.Queue(caller.ID()).AddDelayed(cmd, float64(args[0].Float))
	return script.OfNull(), nil
}

func (r *Registry) routineExecuteScript(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	target, err := r.resolveObject(args[1], ctx)
	if err != nil {
		return script.OfNull(), err
	}
	r.world.RunScript(args[0].Str, target.ID(), object.InvalidID)
	return script.OfNull(), nil
}

func (r *Registry) routineClearAllActions(_ []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	caller, err := r.callerCreature(ctx)
	if err != nil {
		return script.OfNull(), err
	}
	r.world.Queue(caller.ID()).Clear(caller)
	return script.OfNull(), nil
}

func (r *Registry) routineGetLastAttacker(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	obj, err := r.resolveObject(args[0], ctx)
	if err != nil {
		return script.OfObject(script.ObjectInvalid), nil
	}
	creature, ok := obj.(*object.Creature)
	if !ok || !creature.LastAttacker().IsValid() {
		return script.OfObject(script.ObjectInvalid), nil
	}
	return script.OfObject(uint32(creature.LastAttacker())), nil
}

func (r *Registry) routineActionAttack(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	target, err := r.resolveObject(args[0], ctx)
	if err != nil {
		return script.OfNull(), err
	}
	caller, err := r.callerCreature(ctx)
	if err != nil {
		return script.OfNull(), err
	}
	// The passive flag only affects interface feedback.
	_ = argOrInt(args, 1, 0)

	r.world.Queue(caller.ID()).Add(action.NewAttack(r.actions, target.ID()))
	return script.OfNull(), nil
}

func (r *Registry) routineGetIsObjectValid(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	if _, err := r.resolveObject(args[0], ctx); err != nil {
		return script.OfInt(0), nil
	}
	return script.OfInt(1), nil
}

func (r *Registry) routineSetListenPattern(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	listener, err := r.resolveObject(args[0], ctx)
	if err != nil {
		return script.OfNull(), err
	}
	number := argOrInt(args, 2, 0)
	r.world.Bus().AddListener(listener.ID(), args[1].Str, number)
	return script.OfNull(), nil
}

func (r *Registry) routineSpeakString(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	caller, err := r.caller(ctx)
	if err != nil {
		return script.OfNull(), err
	}
	volume := message.TalkVolume(argOrInt(args, 1, 0))
	r.world.Bus().AddMessage(caller.ID(), args[0].Str, volume)
	return script.OfNull(), nil
}

func (r *Registry) routineActionUseFeat(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	feat := action.FeatType(args[0].Int)
	target, err := r.resolveObject(args[1], ctx)
	if err != nil {
		return script.OfNull(), err
	}
	caller, err := r.callerCreature(ctx)
	if err != nil {
		return script.OfNull(), err
	}
	r.world.Queue(caller.ID()).Add(action.NewUseFeat(r.actions, feat, target.ID()))
	return script.OfNull(), nil
}

func (r *Registry) routineActionDoCommand(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	caller, err := r.caller(ctx)
	if err != nil {
		return script.OfNull(), err
	}
	if args[0].Ctx == nil || args[0].Ctx.SavedState == nil {
		return script.OfNull(), fmt.Errorf("ActionDoCommand: action argument has no saved state")
	}
	r.world.Queue(caller.ID()).Add(action.NewDoCommand(r.actions, args[0].Ctx))
	return script.OfNull(), nil
}

func (r *Registry) routineCutsceneAttack(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	target, err := r.resolveObject(args[0], ctx)
	if err != nil {
		return script.OfNull(), err
	}
	caller, err := r.callerCreature(ctx)
	if err != nil {
		return script.OfNull(), err
	}
	animation := argOrInt(args, 1, 0)
	result := argOrInt(args, 2, 0)
	damage := argOrInt(args, 3, -1)

	r.logger.Debug("cutscene attack queued",
		zap.Uint32("attacker", uint32(caller.ID())),
		zap.Uint32("target", uint32(target.ID())))

	cutscene := action.NewCutsceneAttack(r.actions, target.ID(), animation, attackResultFromInt(result), damage)
	r.world.Queue(caller.ID()).Add(cutscene)
	return script.OfNull(), nil
}
