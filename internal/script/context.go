package script

// Routine is one entry of the external routine table: the sole mechanism by
// which ACTION instructions reach engine behavior.
type Routine interface {
	Name() string
	ReturnType() Type
	// ArgumentCount is the declared maximum; calls may pass fewer arguments.
	ArgumentCount() int
	// ArgumentType reports the declared type of argument i.
	//
	// Precondition: 0 <= i < ArgumentCount().
	ArgumentType(i int) Type
	// Invoke calls the routine. Implementations may read context arguments
	// (for example GetLastOpenedBy resolves the LastOpenedBy argument).
	Invoke(args []Variable, ctx *ExecutionContext) (Variable, error)
}

// Routines resolves routine table entries by index.
type Routines interface {
	Get(index int) (Routine, error)
}

// ExecutionState is a continuation: everything needed to resume a partially
// executed script in a fresh VM. Instances are shared between cloned
// execution contexts and must never be mutated after capture; resuming
// always copies the snapshots into a new stack.
type ExecutionState struct {
	Program   *Program
	InsOffset uint32
	Globals   []Variable
	Locals    []Variable
}

// ExecutionContext is the activation-like handle passed through one script
// run: the routine table, the named arguments of this run, and optionally a
// saved continuation to resume from.
//
// Lifetime: created fresh per script invocation, or cloned when a
// continuation captures it; discarded when the run (or the action wrapping
// it) completes.
type ExecutionContext struct {
	Routines   Routines
	SavedState *ExecutionState
	Args       []Argument
}

// FindArg returns the Variable bound to kind. When the same kind appears
// more than once, the last binding wins.
//
// Postcondition: ok is false iff no argument of that kind exists.
func (c *ExecutionContext) FindArg(kind ArgKind) (Variable, bool) {
	for i := len(c.Args) - 1; i >= 0; i-- {
		if c.Args[i].Kind == kind {
			return c.Args[i].Var, true
		}
	}
	return Variable{}, false
}

// Clone returns a shallow copy of the context with its own args slice. The
// saved state pointer is shared: snapshots are immutable.
func (c *ExecutionContext) Clone() *ExecutionContext {
	clone := &ExecutionContext{
		Routines:   c.Routines,
		SavedState: c.SavedState,
		Args:       make([]Argument, len(c.Args)),
	}
	copy(clone.Args, c.Args)
	return clone
}
