package game

import (
	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/script"
)

// Runner executes registered script programs against the game's routine
// table. It backs every script hook in the engine: end-of-round scripts,
// on-attacked scripts and the ExecuteScript routine.
type Runner struct {
	game   *Game
	logger *zap.Logger
}

// Run executes the program registered under resref with caller bound as the
// context's Caller argument. Unregistered programs are skipped silently
// apart from a debug line; shipped content references scripts that were
// never written.
func (r *Runner) Run(resref string, caller, triggerrer object.ID) {
	program, ok := r.game.programs[resref]
	if !ok {
		r.logger.Debug("script not found", zap.String("resref", resref))
		return
	}

	ctx := &script.ExecutionContext{Routines: r.game.routines}
	if caller.IsValid() {
		arg, err := script.NewArgument(script.ArgCaller, script.OfObject(uint32(caller)))
		if err != nil {
			r.logger.Error("script runner: bind caller",
				zap.String("resref", resref), zap.Error(err))
			return
		}
		ctx.Args = append(ctx.Args, arg)
	}

	result := script.NewVM(program, ctx, r.logger).Run()
	r.logger.Debug("script finished",
		zap.String("resref", resref),
		zap.Uint32("caller", uint32(caller)),
		zap.Uint32("triggerrer", uint32(triggerrer)),
		zap.Int("result", result))
}
