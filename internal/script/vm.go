package script

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	// startInstructionOffset is the byte offset of a program's first
	// instruction; everything before it is the compiled header.
	startInstructionOffset uint32 = 13

	// floatTolerance is used both for float equality and as the floor of
	// float division denominators.
	floatTolerance float32 = 1e-5

	// storeStateBodySkip is the distance from a STORE_STATE instruction to
	// the start of the deferred body it captures. It covers the STORE_STATE
	// itself plus the jump that skips the body during normal execution.
	storeStateBodySkip uint32 = 0x10
)

// VM executes a single Program to completion against an ExecutionContext.
// A VM is single-use; construct a new one per run.
type VM struct {
	program *Program
	ctx     *ExecutionContext
	logger  *zap.Logger

	stack         []Variable
	globalCount   int
	returnOffsets []uint32
	savedState    ExecutionState
	next          uint32

	trace  bool
	popped []string
	pushed []string
}

// handler executes one instruction. Handlers read vm.next as the default
// continuation and may overwrite it to jump.
type handler func(vm *VM, ins Instruction) error

// NewVM prepares a run of program under ctx.
//
// Precondition: ctx.Routines is non-nil if the program uses ACTION.
func NewVM(program *Program, ctx *ExecutionContext, logger *zap.Logger) *VM {
	return &VM{
		program: program,
		ctx:     ctx,
		logger:  logger,
		trace:   logger.Core().Enabled(zap.DebugLevel),
	}
}

// Run executes the program and returns its integer result, or -1 when the
// program leaves no integer on the stack or an instruction fails.
//
// Postcondition: a failed instruction halts execution; it is logged and
// mapped to -1 rather than propagated.
func (vm *VM) Run() int {
	insOff := startInstructionOffset

	if saved := vm.ctx.SavedState; saved != nil {
		for _, g := range saved.Globals {
			vm.stack = append(vm.stack, g)
		}
		vm.globalCount = len(vm.stack)
		for _, l := range saved.Locals {
			vm.stack = append(vm.stack, l)
		}
		insOff = saved.InsOffset
	}

	for insOff < vm.program.Length() {
		ins, ok := vm.program.Instruction(insOff)
		if !ok {
			vm.logger.Error("instruction not found",
				zap.String("program", vm.program.Name()),
				zap.Uint32("offset", insOff))
			return -1
		}

		vm.next = ins.NextOffset
		if vm.trace {
			vm.popped = vm.popped[:0]
			vm.pushed = vm.pushed[:0]
		}

		h, ok := handlers[ins.Type]
		if !ok {
			vm.logger.Error("unsupported instruction",
				zap.String("program", vm.program.Name()),
				zap.Uint32("offset", insOff),
				zap.Stringer("type", ins.Type))
			return -1
		}
		if err := h(vm, ins); err != nil {
			vm.logger.Error("instruction failed",
				zap.String("program", vm.program.Name()),
				zap.Uint32("offset", insOff),
				zap.Stringer("type", ins.Type),
				zap.Error(err))
			return -1
		}

		if vm.trace {
			vm.logger.Debug("executed",
				zap.String("program", vm.program.Name()),
				zap.Uint32("offset", insOff),
				zap.Stringer("type", ins.Type),
				zap.Strings("popped", vm.popped),
				zap.Strings("pushed", vm.pushed))
		}

		insOff = vm.next
	}

	if len(vm.stack) > 0 && vm.stack[len(vm.stack)-1].Type == TypeInt {
		return vm.stack[len(vm.stack)-1].Int
	}
	return -1
}

// SavedState returns the most recent STORE_STATE capture.
func (vm *VM) SavedState() ExecutionState { return vm.savedState }

func (vm *VM) push(v Variable) {
	vm.stack = append(vm.stack, v)
	if vm.trace {
		vm.pushed = append(vm.pushed, v.String())
	}
}

func (vm *VM) pop() (Variable, error) {
	if len(vm.stack) == 0 {
		return Variable{}, fmt.Errorf("pop from empty stack")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	if vm.trace {
		vm.popped = append(vm.popped, v.String())
	}
	return v, nil
}

func (vm *VM) popTyped(t Type) (Variable, error) {
	v, err := vm.pop()
	if err != nil {
		return Variable{}, err
	}
	if v.Type != t {
		return Variable{}, fmt.Errorf("expected %s on stack, got %s", t, v.Type)
	}
	return v, nil
}

func (vm *VM) popInt() (int, error) {
	v, err := vm.popTyped(TypeInt)
	return v.Int, err
}

func (vm *VM) popFloat() (float32, error) {
	v, err := vm.popTyped(TypeFloat)
	return v.Float, err
}

func (vm *VM) popString() (string, error) {
	v, err := vm.popTyped(TypeString)
	return v.Str, err
}

func (vm *VM) popObject() (uint32, error) {
	v, err := vm.popTyped(TypeObject)
	return v.Object, err
}

// popVector pops the three floats of a vector, z first.
func (vm *VM) popVector() (Vector, error) {
	z, err := vm.popFloat()
	if err != nil {
		return Vector{}, err
	}
	y, err := vm.popFloat()
	if err != nil {
		return Vector{}, err
	}
	x, err := vm.popFloat()
	if err != nil {
		return Vector{}, err
	}
	return Vector{X: x, Y: y, Z: z}, nil
}

// pushVector pushes v as three floats so that z lands on top.
func (vm *VM) pushVector(v Vector) {
	vm.push(OfFloat(v.X))
	vm.push(OfFloat(v.Y))
	vm.push(OfFloat(v.Z))
}

// Binary helpers pop the right operand first, then the left.

func (vm *VM) withInts(fn func(l, r int) (Variable, error)) error {
	r, err := vm.popInt()
	if err != nil {
		return err
	}
	l, err := vm.popInt()
	if err != nil {
		return err
	}
	v, err := fn(l, r)
	if err != nil {
		return err
	}
	vm.push(v)
	return nil
}

func (vm *VM) withIntFloat(fn func(l int, r float32) Variable) error {
	r, err := vm.popFloat()
	if err != nil {
		return err
	}
	l, err := vm.popInt()
	if err != nil {
		return err
	}
	vm.push(fn(l, r))
	return nil
}

func (vm *VM) withFloatInt(fn func(l float32, r int) Variable) error {
	r, err := vm.popInt()
	if err != nil {
		return err
	}
	l, err := vm.popFloat()
	if err != nil {
		return err
	}
	vm.push(fn(l, r))
	return nil
}

func (vm *VM) withFloats(fn func(l, r float32) Variable) error {
	r, err := vm.popFloat()
	if err != nil {
		return err
	}
	l, err := vm.popFloat()
	if err != nil {
		return err
	}
	vm.push(fn(l, r))
	return nil
}

func (vm *VM) withStrings(fn func(l, r string) Variable) error {
	r, err := vm.popString()
	if err != nil {
		return err
	}
	l, err := vm.popString()
	if err != nil {
		return err
	}
	vm.push(fn(l, r))
	return nil
}

func (vm *VM) withObjects(fn func(l, r uint32) Variable) error {
	r, err := vm.popObject()
	if err != nil {
		return err
	}
	l, err := vm.popObject()
	if err != nil {
		return err
	}
	vm.push(fn(l, r))
	return nil
}

func (vm *VM) withVectors(fn func(l, r Vector) Vector) error {
	r, err := vm.popVector()
	if err != nil {
		return err
	}
	l, err := vm.popVector()
	if err != nil {
		return err
	}
	vm.pushVector(fn(l, r))
	return nil
}

func (vm *VM) withVectorFloat(fn func(l Vector, r float32) Vector) error {
	r, err := vm.popFloat()
	if err != nil {
		return err
	}
	l, err := vm.popVector()
	if err != nil {
		return err
	}
	vm.pushVector(fn(l, r))
	return nil
}

func (vm *VM) withFloatVector(fn func(l float32, r Vector) Vector) error {
	r, err := vm.popVector()
	if err != nil {
		return err
	}
	l, err := vm.popFloat()
	if err != nil {
		return err
	}
	vm.pushVector(fn(l, r))
	return nil
}

func (vm *VM) withEngine(t Type, fn func(l, r EngineType) Variable) error {
	rv, err := vm.popTyped(t)
	if err != nil {
		return err
	}
	lv, err := vm.popTyped(t)
	if err != nil {
		return err
	}
	vm.push(fn(lv.Engine, rv.Engine))
	return nil
}

func boolToInt(b bool) Variable {
	if b {
		return OfInt(1)
	}
	return OfInt(0)
}

func floatsEqual(l, r float32) bool {
	return float32(math.Abs(float64(l-r))) < floatTolerance
}

func zeroOf(t Type) Variable {
	v := OfNull()
	v.Type = t
	return v
}

var handlers = map[InstructionType]handler{
	InsNOP:  func(*VM, Instruction) error { return nil },
	InsNOP2: func(*VM, Instruction) error { return nil },

	InsRSADDI:   func(vm *VM, _ Instruction) error { vm.push(OfInt(0)); return nil },
	InsRSADDF:   func(vm *VM, _ Instruction) error { vm.push(OfFloat(0)); return nil },
	InsRSADDS:   func(vm *VM, _ Instruction) error { vm.push(OfString("")); return nil },
	InsRSADDO:   func(vm *VM, _ Instruction) error { vm.push(OfObject(ObjectInvalid)); return nil },
	InsRSADDEFF: func(vm *VM, _ Instruction) error { vm.push(zeroOf(TypeEffect)); return nil },
	InsRSADDEVT: func(vm *VM, _ Instruction) error { vm.push(zeroOf(TypeEvent)); return nil },
	InsRSADDLOC: func(vm *VM, _ Instruction) error { vm.push(zeroOf(TypeLocation)); return nil },
	InsRSADDTAL: func(vm *VM, _ Instruction) error { vm.push(zeroOf(TypeTalent)); return nil },

	InsCONSTI: func(vm *VM, ins Instruction) error { vm.push(OfInt(ins.Int)); return nil },
	InsCONSTF: func(vm *VM, ins Instruction) error { vm.push(OfFloat(ins.Float)); return nil },
	InsCONSTS: func(vm *VM, ins Instruction) error { vm.push(OfString(ins.Str)); return nil },
	InsCONSTO: (*VM).executeCONSTO,

	InsCPDOWNSP: (*VM).executeCPDOWNSP,
	InsCPTOPSP:  (*VM).executeCPTOPSP,
	InsCPDOWNBP: (*VM).executeCPDOWNBP,
	InsCPTOPBP:  (*VM).executeCPTOPBP,
	InsMOVSP:    (*VM).executeMOVSP,
	InsDESTRUCT: (*VM).executeDESTRUCT,

	InsINCISP: func(vm *VM, ins Instruction) error { return vm.adjustInt(len(vm.stack)+ins.StackOffset/4, 1) },
	InsDECISP: func(vm *VM, ins Instruction) error { return vm.adjustInt(len(vm.stack)+ins.StackOffset/4, -1) },
	InsINCIBP: func(vm *VM, ins Instruction) error { return vm.adjustInt(vm.globalCount+ins.StackOffset/4, 1) },
	InsDECIBP: func(vm *VM, ins Instruction) error { return vm.adjustInt(vm.globalCount+ins.StackOffset/4, -1) },

	InsJMP: func(vm *VM, ins Instruction) error {
		vm.next = uint32(int(ins.Offset) + ins.JumpOffset)
		return nil
	},
	InsJSR: func(vm *VM, ins Instruction) error {
		vm.returnOffsets = append(vm.returnOffsets, ins.NextOffset)
		vm.next = uint32(int(ins.Offset) + ins.JumpOffset)
		return nil
	},
	InsJZ: func(vm *VM, ins Instruction) error {
		v, err := vm.popInt()
		if err != nil {
			return err
		}
		if v == 0 {
			vm.next = uint32(int(ins.Offset) + ins.JumpOffset)
		}
		return nil
	},
	InsJNZ: func(vm *VM, ins Instruction) error {
		v, err := vm.popInt()
		if err != nil {
			return err
		}
		if v != 0 {
			vm.next = uint32(int(ins.Offset) + ins.JumpOffset)
		}
		return nil
	},
	InsRETN: func(vm *VM, _ Instruction) error {
		if n := len(vm.returnOffsets); n > 0 {
			vm.next = vm.returnOffsets[n-1]
			vm.returnOffsets = vm.returnOffsets[:n-1]
		} else {
			vm.next = vm.program.Length()
		}
		return nil
	},

	InsSAVEBP: func(vm *VM, _ Instruction) error {
		vm.globalCount = len(vm.stack)
		vm.push(OfInt(vm.globalCount))
		return nil
	},
	InsRESTOREBP: func(vm *VM, _ Instruction) error {
		v, err := vm.popInt()
		if err != nil {
			return err
		}
		vm.globalCount = v
		return nil
	},

	InsLOGANDII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return boolToInt(l != 0 && r != 0), nil })
	},
	InsLOGORII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return boolToInt(l != 0 || r != 0), nil })
	},
	InsINCORII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return OfInt(l | r), nil })
	},
	InsEXCORII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return OfInt(l ^ r), nil })
	},
	InsBOOLANDII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return OfInt(l & r), nil })
	},

	InsEQUALII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return boolToInt(l == r), nil })
	},
	InsEQUALFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return boolToInt(floatsEqual(l, r)) })
	},
	InsEQUALSS: func(vm *VM, _ Instruction) error {
		return vm.withStrings(func(l, r string) Variable { return boolToInt(l == r) })
	},
	InsEQUALOO: func(vm *VM, _ Instruction) error {
		return vm.withObjects(func(l, r uint32) Variable { return boolToInt(l == r) })
	},
	InsEQUALEFFEFF: func(vm *VM, _ Instruction) error {
		return vm.withEngine(TypeEffect, func(l, r EngineType) Variable { return boolToInt(l == r) })
	},
	InsEQUALEVTEVT: func(vm *VM, _ Instruction) error {
		return vm.withEngine(TypeEvent, func(l, r EngineType) Variable { return boolToInt(l == r) })
	},
	InsEQUALLOCLOC: func(vm *VM, _ Instruction) error {
		return vm.withEngine(TypeLocation, func(l, r EngineType) Variable { return boolToInt(l == r) })
	},
	InsEQUALTALTAL: func(vm *VM, _ Instruction) error {
		return vm.withEngine(TypeTalent, func(l, r EngineType) Variable { return boolToInt(l == r) })
	},
	InsEQUALTT: func(vm *VM, ins Instruction) error { return vm.compareStructs(ins, true) },

	InsNEQUALII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return boolToInt(l != r), nil })
	},
	InsNEQUALFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return boolToInt(!floatsEqual(l, r)) })
	},
	InsNEQUALSS: func(vm *VM, _ Instruction) error {
		return vm.withStrings(func(l, r string) Variable { return boolToInt(l != r) })
	},
	InsNEQUALOO: func(vm *VM, _ Instruction) error {
		return vm.withObjects(func(l, r uint32) Variable { return boolToInt(l != r) })
	},
	InsNEQUALEFFEFF: func(vm *VM, _ Instruction) error {
		return vm.withEngine(TypeEffect, func(l, r EngineType) Variable { return boolToInt(l != r) })
	},
	InsNEQUALEVTEVT: func(vm *VM, _ Instruction) error {
		return vm.withEngine(TypeEvent, func(l, r EngineType) Variable { return boolToInt(l != r) })
	},
	InsNEQUALLOCLOC: func(vm *VM, _ Instruction) error {
		return vm.withEngine(TypeLocation, func(l, r EngineType) Variable { return boolToInt(l != r) })
	},
	InsNEQUALTALTAL: func(vm *VM, _ Instruction) error {
		return vm.withEngine(TypeTalent, func(l, r EngineType) Variable { return boolToInt(l != r) })
	},
	InsNEQUALTT: func(vm *VM, ins Instruction) error { return vm.compareStructs(ins, false) },

	InsGEQII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return boolToInt(l >= r), nil })
	},
	InsGEQFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return boolToInt(l >= r) })
	},
	InsGTII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return boolToInt(l > r), nil })
	},
	InsGTFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return boolToInt(l > r) })
	},
	InsLTII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return boolToInt(l < r), nil })
	},
	InsLTFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return boolToInt(l < r) })
	},
	InsLEQII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return boolToInt(l <= r), nil })
	},
	InsLEQFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return boolToInt(l <= r) })
	},

	InsSHLEFTII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) {
			if r < 0 {
				return Variable{}, fmt.Errorf("negative shift count %d", r)
			}
			return OfInt(l << r), nil
		})
	},
	// SHRIGHTII preserves the sign of the left operand: negative values are
	// negated, shifted, and negated back.
	InsSHRIGHTII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) {
			if r < 0 {
				return Variable{}, fmt.Errorf("negative shift count %d", r)
			}
			if l < 0 {
				return OfInt(-(-l >> r)), nil
			}
			return OfInt(l >> r), nil
		})
	},
	InsUSHRIGHTII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) {
			if r < 0 {
				return Variable{}, fmt.Errorf("negative shift count %d", r)
			}
			return OfInt(int(int32(uint32(int32(l)) >> uint(r)))), nil
		})
	},

	InsADDII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return OfInt(l + r), nil })
	},
	InsADDIF: func(vm *VM, _ Instruction) error {
		return vm.withIntFloat(func(l int, r float32) Variable { return OfFloat(float32(l) + r) })
	},
	InsADDFI: func(vm *VM, _ Instruction) error {
		return vm.withFloatInt(func(l float32, r int) Variable { return OfFloat(l + float32(r)) })
	},
	InsADDFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return OfFloat(l + r) })
	},
	InsADDSS: func(vm *VM, _ Instruction) error {
		return vm.withStrings(func(l, r string) Variable { return OfString(l + r) })
	},
	InsADDVV: func(vm *VM, _ Instruction) error {
		return vm.withVectors(func(l, r Vector) Vector {
			return Vector{X: l.X + r.X, Y: l.Y + r.Y, Z: l.Z + r.Z}
		})
	},

	InsSUBII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return OfInt(l - r), nil })
	},
	InsSUBIF: func(vm *VM, _ Instruction) error {
		return vm.withIntFloat(func(l int, r float32) Variable { return OfFloat(float32(l) - r) })
	},
	InsSUBFI: func(vm *VM, _ Instruction) error {
		return vm.withFloatInt(func(l float32, r int) Variable { return OfFloat(l - float32(r)) })
	},
	InsSUBFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return OfFloat(l - r) })
	},
	InsSUBVV: func(vm *VM, _ Instruction) error {
		return vm.withVectors(func(l, r Vector) Vector {
			return Vector{X: l.X - r.X, Y: l.Y - r.Y, Z: l.Z - r.Z}
		})
	},

	InsMULII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) { return OfInt(l * r), nil })
	},
	InsMULIF: func(vm *VM, _ Instruction) error {
		return vm.withIntFloat(func(l int, r float32) Variable { return OfFloat(float32(l) * r) })
	},
	InsMULFI: func(vm *VM, _ Instruction) error {
		return vm.withFloatInt(func(l float32, r int) Variable { return OfFloat(l * float32(r)) })
	},
	InsMULFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return OfFloat(l * r) })
	},
	InsMULVF: func(vm *VM, _ Instruction) error {
		return vm.withVectorFloat(func(l Vector, r float32) Vector {
			return Vector{X: l.X * r, Y: l.Y * r, Z: l.Z * r}
		})
	},
	InsMULFV: func(vm *VM, _ Instruction) error {
		return vm.withFloatVector(func(l float32, r Vector) Vector {
			return Vector{X: l * r.X, Y: l * r.Y, Z: l * r.Z}
		})
	},

	InsDIVII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) {
			if r == 0 {
				return Variable{}, fmt.Errorf("integer division by zero")
			}
			return OfInt(l / r), nil
		})
	},
	// Float divisions clamp the denominator away from zero.
	InsDIVIF: func(vm *VM, _ Instruction) error {
		return vm.withIntFloat(func(l int, r float32) Variable {
			return OfFloat(float32(l) / max(floatTolerance, r))
		})
	},
	InsDIVFI: func(vm *VM, _ Instruction) error {
		return vm.withFloatInt(func(l float32, r int) Variable { return OfFloat(l / float32(r)) })
	},
	InsDIVFF: func(vm *VM, _ Instruction) error {
		return vm.withFloats(func(l, r float32) Variable { return OfFloat(l / max(floatTolerance, r)) })
	},
	InsDIVVF: func(vm *VM, _ Instruction) error {
		return vm.withVectorFloat(func(l Vector, r float32) Vector {
			return Vector{X: l.X / r, Y: l.Y / r, Z: l.Z / r}
		})
	},
	InsDIVFV: func(vm *VM, _ Instruction) error {
		return vm.withFloatVector(func(l float32, r Vector) Vector {
			return Vector{X: l / r.X, Y: l / r.Y, Z: l / r.Z}
		})
	},
	InsMODII: func(vm *VM, _ Instruction) error {
		return vm.withInts(func(l, r int) (Variable, error) {
			if r == 0 {
				return Variable{}, fmt.Errorf("modulo by zero")
			}
			return OfInt(l % r), nil
		})
	},

	InsNEGI: func(vm *VM, _ Instruction) error {
		v, err := vm.popInt()
		if err != nil {
			return err
		}
		vm.push(OfInt(-v))
		return nil
	},
	InsNEGF: func(vm *VM, _ Instruction) error {
		v, err := vm.popFloat()
		if err != nil {
			return err
		}
		vm.push(OfFloat(-v))
		return nil
	},
	InsNOTI: func(vm *VM, _ Instruction) error {
		v, err := vm.popInt()
		if err != nil {
			return err
		}
		vm.push(boolToInt(v == 0))
		return nil
	},

	InsACTION:     (*VM).executeACTION,
	InsSTORESTATE: (*VM).executeSTORESTATE,
}

// executeCONSTO pushes the instruction's object id, resolving the self
// sentinel to the context's caller when the caller argument is present.
func (vm *VM) executeCONSTO(ins Instruction) error {
	if ins.Object == ObjectSelf {
		if caller, ok := vm.ctx.FindArg(ArgCaller); ok {
			vm.push(caller)
		} else {
			vm.push(OfObject(ObjectInvalid))
		}
		return nil
	}
	vm.push(OfObject(ins.Object))
	return nil
}

func (vm *VM) executeCPDOWNSP(ins Instruction) error {
	count := ins.Size / 4
	srcIdx := len(vm.stack) - count
	dstIdx := len(vm.stack) + ins.StackOffset/4
	if srcIdx < 0 || dstIdx < 0 || dstIdx+count > len(vm.stack) {
		return fmt.Errorf("CPDOWNSP out of range: src=%d dst=%d count=%d depth=%d", srcIdx, dstIdx, count, len(vm.stack))
	}
	copy(vm.stack[dstIdx:dstIdx+count], vm.stack[srcIdx:srcIdx+count])
	return nil
}

func (vm *VM) executeCPTOPSP(ins Instruction) error {
	count := ins.Size / 4
	srcIdx := len(vm.stack) + ins.StackOffset/4
	if srcIdx < 0 || srcIdx+count > len(vm.stack) {
		return fmt.Errorf("CPTOPSP out of range: src=%d count=%d depth=%d", srcIdx, count, len(vm.stack))
	}
	for i := 0; i < count; i++ {
		vm.push(vm.stack[srcIdx+i])
	}
	return nil
}

func (vm *VM) executeCPDOWNBP(ins Instruction) error {
	count := ins.Size / 4
	srcIdx := len(vm.stack) - count
	dstIdx := vm.globalCount + ins.StackOffset/4
	if srcIdx < 0 || dstIdx < 0 || dstIdx+count > len(vm.stack) {
		return fmt.Errorf("CPDOWNBP out of range: src=%d dst=%d count=%d depth=%d", srcIdx, dstIdx, count, len(vm.stack))
	}
	copy(vm.stack[dstIdx:dstIdx+count], vm.stack[srcIdx:srcIdx+count])
	return nil
}

func (vm *VM) executeCPTOPBP(ins Instruction) error {
	count := ins.Size / 4
	srcIdx := vm.globalCount + ins.StackOffset/4
	if srcIdx < 0 || srcIdx+count > len(vm.stack) {
		return fmt.Errorf("CPTOPBP out of range: src=%d count=%d depth=%d", srcIdx, count, len(vm.stack))
	}
	for i := 0; i < count; i++ {
		vm.push(vm.stack[srcIdx+i])
	}
	return nil
}

func (vm *VM) executeMOVSP(ins Instruction) error {
	count := -ins.StackOffset / 4
	if count < 0 || count > len(vm.stack) {
		return fmt.Errorf("MOVSP out of range: count=%d depth=%d", count, len(vm.stack))
	}
	for i := 0; i < count; i++ {
		if _, err := vm.pop(); err != nil {
			return err
		}
	}
	return nil
}

// executeDESTRUCT removes Size/4 slots from the stack top while preserving
// SizeNoDestroy/4 slots found StackOffset/4 bytes into the destroyed block.
func (vm *VM) executeDESTRUCT(ins Instruction) error {
	count := ins.Size / 4
	startIdx := len(vm.stack) - count
	keepIdx := startIdx + ins.StackOffset/4
	keepCount := ins.SizeNoDestroy / 4
	if startIdx < 0 || keepIdx < 0 || keepIdx+keepCount > len(vm.stack) {
		return fmt.Errorf("DESTRUCT out of range: start=%d keep=%d keepCount=%d depth=%d", startIdx, keepIdx, keepCount, len(vm.stack))
	}
	kept := make([]Variable, keepCount)
	copy(kept, vm.stack[keepIdx:keepIdx+keepCount])
	vm.stack = append(vm.stack[:startIdx], kept...)
	return nil
}

func (vm *VM) adjustInt(idx, delta int) error {
	if idx < 0 || idx >= len(vm.stack) {
		return fmt.Errorf("stack index %d out of range (depth %d)", idx, len(vm.stack))
	}
	if vm.stack[idx].Type != TypeInt {
		return fmt.Errorf("expected int at stack index %d, got %s", idx, vm.stack[idx].Type)
	}
	vm.stack[idx].Int += delta
	return nil
}

// compareStructs pops two blocks of Size/4 variables each and pushes whether
// they match elementwise.
func (vm *VM) compareStructs(ins Instruction, wantEqual bool) error {
	count := ins.Size / 4
	if 2*count > len(vm.stack) {
		return fmt.Errorf("struct compare of %d slots on stack of depth %d", count, len(vm.stack))
	}
	leftIdx := len(vm.stack) - 2*count
	rightIdx := len(vm.stack) - count
	equal := true
	for i := 0; i < count; i++ {
		if !vm.stack[leftIdx+i].Equal(vm.stack[rightIdx+i]) {
			equal = false
			break
		}
	}
	vm.stack = vm.stack[:leftIdx]
	vm.push(boolToInt(equal == wantEqual))
	return nil
}

// executeACTION pops the routine's arguments per its declared signature,
// invokes it, and pushes its return value if any.
//
// Action-typed arguments capture a clone of the execution context carrying a
// private copy of the most recent STORE_STATE snapshot.
func (vm *VM) executeACTION(ins Instruction) error {
	if vm.ctx.Routines == nil {
		return fmt.Errorf("no routine table bound")
	}
	routine, err := vm.ctx.Routines.Get(ins.Routine)
	if err != nil {
		return fmt.Errorf("resolving routine %d: %w", ins.Routine, err)
	}
	if ins.ArgCount > routine.ArgumentCount() {
		return fmt.Errorf("routine %s takes %d arguments, bytecode supplies %d", routine.Name(), routine.ArgumentCount(), ins.ArgCount)
	}

	args := make([]Variable, 0, ins.ArgCount)
	for i := 0; i < ins.ArgCount; i++ {
		switch routine.ArgumentType(i) {
		case TypeVector:
			vec, err := vm.popVector()
			if err != nil {
				return fmt.Errorf("routine %s argument %d: %w", routine.Name(), i, err)
			}
			args = append(args, OfVector(vec))
		case TypeAction:
			cloned := vm.ctx.Clone()
			saved := vm.savedState
			cloned.SavedState = &saved
			args = append(args, OfAction(cloned))
		default:
			v, err := vm.pop()
			if err != nil {
				return fmt.Errorf("routine %s argument %d: %w", routine.Name(), i, err)
			}
			if v.Type != routine.ArgumentType(i) {
				return fmt.Errorf("routine %s argument %d: expected %s, got %s", routine.Name(), i, routine.ArgumentType(i), v.Type)
			}
			args = append(args, v)
		}
	}

	ret, err := routine.Invoke(args, vm.ctx)
	if err != nil {
		return fmt.Errorf("invoking %s: %w", routine.Name(), err)
	}
	switch routine.ReturnType() {
	case TypeVoid:
	case TypeVector:
		// Engine routines return vectors component-reversed relative to
		// vector operands: z first, so x ends up on top of the stack.
		vm.push(OfFloat(ret.Vec.Z))
		vm.push(OfFloat(ret.Vec.Y))
		vm.push(OfFloat(ret.Vec.X))
	default:
		vm.push(ret)
	}
	return nil
}

// executeSTORESTATE snapshots the globals below the base pointer and the
// topmost SizeLocals/4 slots, to be replayed when the deferred body runs.
func (vm *VM) executeSTORESTATE(ins Instruction) error {
	globalCount := ins.Size / 4
	localCount := ins.SizeLocals / 4
	if globalCount > vm.globalCount || localCount > len(vm.stack) {
		return fmt.Errorf("STORE_STATE out of range: globals=%d locals=%d bp=%d depth=%d", globalCount, localCount, vm.globalCount, len(vm.stack))
	}
	globals := make([]Variable, globalCount)
	copy(globals, vm.stack[vm.globalCount-globalCount:vm.globalCount])
	locals := make([]Variable, localCount)
	copy(locals, vm.stack[len(vm.stack)-localCount:])

	vm.savedState = ExecutionState{
		Program:   vm.program,
		InsOffset: ins.Offset + storeStateBodySkip,
		Globals:   globals,
		Locals:    locals,
	}
	return nil
}
