// Package routine implements the engine routine table: the functions script
// programs call through the VM's ACTION instruction.
package routine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dkoller/skirmish/internal/game/action"
	"github.com/dkoller/skirmish/internal/game/dice"
	"github.com/dkoller/skirmish/internal/game/message"
	"github.com/dkoller/skirmish/internal/game/object"
	"github.com/dkoller/skirmish/internal/script"
)

// World is the slice of the game the routine table acts on.
type World interface {
	Objects() *object.Registry
	Queue(id object.ID) *action.Queue
	Bus() *message.Bus
	RunScript(resref string, caller, triggerrer object.ID)
}

type entry struct {
	name string
	ret  script.Type
	args []script.Type
	fn   func(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error)
}

func (e *entry) Name() string                   { return e.name }
func (e *entry) ReturnType() script.Type        { return e.ret }
func (e *entry) ArgumentCount() int             { return len(e.args) }
func (e *entry) ArgumentType(i int) script.Type { return e.args[i] }

func (e *entry) Invoke(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error) {
	return e.fn(args, ctx)
}

// Registry is the routine table. Indices match the stock script compiler's
// function ids, so compiled programs resolve without translation.
type Registry struct {
	world   World
	actions *action.Services
	random  dice.Source
	logger  *zap.Logger

	entries map[int]*entry
}

// NewRegistry builds the routine table on top of the given world.
func NewRegistry(world World, actions *action.Services, random dice.Source, logger *zap.Logger) *Registry {
	r := &Registry{
		world:   world,
		actions: actions,
		random:  random,
		logger:  logger,
		entries: make(map[int]*entry),
	}
	r.registerAll()
	return r
}

// Get satisfies script.Routines.
func (r *Registry) Get(index int) (script.Routine, error) {
	e, ok := r.entries[index]
	if !ok {
		return nil, fmt.Errorf("routine %d not implemented", index)
	}
	return e, nil
}

func (r *Registry) insert(index int, name string, ret script.Type, args []script.Type,
	fn func(args []script.Variable, ctx *script.ExecutionContext) (script.Variable, error)) {
	if _, dup := r.entries[index]; dup {
		panic(fmt.Sprintf("routine: duplicate index %d (%s)", index, name))
	}
	r.entries[index] = &entry{name: name, ret: ret, args: args, fn: fn}
}

// caller resolves the executing object from the context's Caller argument.
func (r *Registry) caller(ctx *script.ExecutionContext) (object.Object, error) {
	v, ok := ctx.FindArg(script.ArgCaller)
	if !ok {
		return nil, fmt.Errorf("no caller bound to this context")
	}
	obj, ok := r.world.Objects().Get(object.ID(v.Object))
	if !ok {
		return nil, fmt.Errorf("caller %d not found", v.Object)
	}
	return obj, nil
}

// callerCreature is caller narrowed to a creature.
func (r *Registry) callerCreature(ctx *script.ExecutionContext) (*object.Creature, error) {
	obj, err := r.caller(ctx)
	if err != nil {
		return nil, err
	}
	creature, ok := obj.(*object.Creature)
	if !ok {
		return nil, fmt.Errorf("caller %d is not a creature", obj.ID())
	}
	return creature, nil
}

// resolveObject maps a script object id to a game object, translating the
// self placeholder through the Caller argument.
func (r *Registry) resolveObject(v script.Variable, ctx *script.ExecutionContext) (object.Object, error) {
	id := v.Object
	if id == script.ObjectSelf {
		caller, ok := ctx.FindArg(script.ArgCaller)
		if !ok {
			return nil, fmt.Errorf("self reference without a caller")
		}
		id = caller.Object
	}
	obj, ok := r.world.Objects().Get(object.ID(id))
	if !ok {
		return nil, fmt.Errorf("object %d not found", id)
	}
	return obj, nil
}

// argOrInt returns args[i].Int when present, otherwise fallback. Trailing
// arguments with compiler defaults arrive missing.
func argOrInt(args []script.Variable, i, fallback int) int {
	if i >= len(args) {
		return fallback
	}
	return args[i].Int
}
