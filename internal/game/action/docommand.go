package action

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/script"
)

// DoCommand resumes a saved script continuation on behalf of its actor. The
// continuation usually originates from an ACTION argument captured by
// AssignCommand or DelayCommand.
type DoCommand struct {
	base
	svc *Services
	cmd *script.ExecutionContext
}

// NewDoCommand wraps the captured continuation in an action.
//
// Precondition: cmd carries a saved state; a continuation without one has
// nothing to resume.
func NewDoCommand(svc *Services, cmd *script.ExecutionContext) *DoCommand {
	if cmd.SavedState == nil {
		panic("action: DoCommand requires a saved execution state")
	}
	return &DoCommand{base: newBase(TypeDoCommand), svc: svc, cmd: cmd}
}

// Target returns InvalidID; a continuation has no attack target.
func (a *DoCommand) Target() object.ID { return object.InvalidID }

// Execute resumes the continuation once and completes.
//
// The continuation may run on a different actor than the one that captured
// it, so the Caller argument is rebound to the current actor. The remaining
// arguments stay intact: a continuation of a door's on-opened script
// reassigned to a character must still answer GetLastOpenedBy.
func (a *DoCommand) Execute(actor *object.Creature, dt float64) {
	ctx := a.cmd.Clone()

	rebound := false
	for i := range ctx.Args {
		if ctx.Args[i].Kind == script.ArgCaller {
			ctx.Args[i].Var = script.OfObject(uint32(actor.ID()))
			rebound = true
			break
		}
	}
	if !rebound {
		arg, err := script.NewArgument(script.ArgCaller, script.OfObject(uint32(actor.ID())))
		if err != nil {
			a.svc.Logger.Error("do command: bind caller", zap.Error(err))
			a.complete()
			return
		}
		ctx.Args = append(ctx.Args, arg)
	}

	script.NewVM(a.cmd.SavedState.Program, ctx, a.svc.Logger).Run()
	a.complete()
}

// Cancel drops the continuation without running it.
func (a *DoCommand) Cancel(actor *object.Creature) {
	a.complete()
}
