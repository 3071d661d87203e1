// Package script implements the stack-based virtual machine that executes
// compiled game scripts, together with its value model: Variable, Argument,
// ExecutionContext and saved execution state (continuations).
package script

import (
	"fmt"
	"strconv"
	"strings"
)

// Object id sentinels. The zero value is the invalid object, so an
// uninitialized object Variable never aliases a real object.
const (
	ObjectInvalid uint32 = 0
	// ObjectSelf is the "self" placeholder resolved against the Caller
	// argument of the running context.
	ObjectSelf uint32 = 0xFFFFFFFF
)

// Type identifies the payload carried by a Variable.
type Type int

const (
	TypeVoid Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeObject
	TypeVector
	TypeEffect
	TypeEvent
	TypeLocation
	TypeTalent
	// TypeAction wraps a cloned ExecutionContext holding a saved
	// continuation; it is how deferred commands travel through routine calls.
	TypeAction
)

// String returns the lower-case type name.
func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeVector:
		return "vector"
	case TypeEffect:
		return "effect"
	case TypeEvent:
		return "event"
	case TypeLocation:
		return "location"
	case TypeTalent:
		return "talent"
	case TypeAction:
		return "action"
	default:
		return "unknown"
	}
}

// Vector is the script-level 3-component vector. Scripts pass vectors as
// three consecutive float stack slots; Vector only exists off-stack.
type Vector struct {
	X, Y, Z float32
}

// EngineType is an opaque engine-side value (effect, event, location or
// talent) carried through the script stack by reference. Implementations
// must be pointer types: two engine values are equal only when they are the
// same instance.
type EngineType any

// Variable is one script-level value. Exactly one payload field is
// meaningful per Type; construct Variables through the Of* factories, never
// by direct field assignment.
//
// Invariant: Type determines the meaningful payload field.
type Variable struct {
	Type   Type
	Int    int
	Float  float32
	Str    string
	Object uint32
	Vec    Vector
	Engine EngineType
	// Ctx is the Action payload: a cloned execution context carrying a
	// saved continuation.
	Ctx *ExecutionContext
}

// OfNull returns the void Variable.
func OfNull() Variable {
	return Variable{Type: TypeVoid}
}

// OfInt returns an Int Variable.
func OfInt(value int) Variable {
	return Variable{Type: TypeInt, Int: value}
}

// OfFloat returns a Float Variable.
func OfFloat(value float32) Variable {
	return Variable{Type: TypeFloat, Float: value}
}

// OfString returns a String Variable.
func OfString(value string) Variable {
	return Variable{Type: TypeString, Str: value}
}

// OfObject returns an Object Variable holding an object id.
func OfObject(id uint32) Variable {
	return Variable{Type: TypeObject, Object: id}
}

// OfVector returns a Vector Variable.
func OfVector(value Vector) Variable {
	return Variable{Type: TypeVector, Vec: value}
}

// OfEffect returns an Effect Variable wrapping an opaque engine value.
func OfEffect(value EngineType) Variable {
	return Variable{Type: TypeEffect, Engine: value}
}

// OfEvent returns an Event Variable wrapping an opaque engine value.
func OfEvent(value EngineType) Variable {
	return Variable{Type: TypeEvent, Engine: value}
}

// OfLocation returns a Location Variable wrapping an opaque engine value.
func OfLocation(value EngineType) Variable {
	return Variable{Type: TypeLocation, Engine: value}
}

// OfTalent returns a Talent Variable wrapping an opaque engine value.
func OfTalent(value EngineType) Variable {
	return Variable{Type: TypeTalent, Engine: value}
}

// OfAction returns an Action Variable wrapping an execution context.
func OfAction(ctx *ExecutionContext) Variable {
	return Variable{Type: TypeAction, Ctx: ctx}
}

// Equal reports whether v and other hold the same type and payload.
// Engine and Action payloads compare by identity.
//
// Postcondition: Variables of different Type are never equal.
func (v Variable) Equal(other Variable) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeVoid:
		return true
	case TypeInt:
		return v.Int == other.Int
	case TypeFloat:
		return v.Float == other.Float
	case TypeString:
		return v.Str == other.Str
	case TypeObject:
		return v.Object == other.Object
	case TypeVector:
		return v.Vec == other.Vec
	case TypeEffect, TypeEvent, TypeLocation, TypeTalent:
		return v.Engine == other.Engine
	case TypeAction:
		return v.Ctx == other.Ctx
	default:
		return false
	}
}

// Negate returns the arithmetic negation of an Int or Float Variable.
//
// Postcondition: returns an error for every other type.
func (v Variable) Negate() (Variable, error) {
	switch v.Type {
	case TypeInt:
		return OfInt(-v.Int), nil
	case TypeFloat:
		return OfFloat(-v.Float), nil
	default:
		return Variable{}, fmt.Errorf("negate not implemented for variable type %s", v.Type)
	}
}

// String renders the variable for tracing: "type:value".
func (v Variable) String() string {
	switch v.Type {
	case TypeVoid:
		return "void"
	case TypeInt:
		return fmt.Sprintf("int:%d", v.Int)
	case TypeFloat:
		return fmt.Sprintf("float:%g", v.Float)
	case TypeString:
		return fmt.Sprintf("string:%q", v.Str)
	case TypeObject:
		return fmt.Sprintf("object:%d", v.Object)
	case TypeVector:
		return fmt.Sprintf("vector:[%g,%g,%g]", v.Vec.X, v.Vec.Y, v.Vec.Z)
	default:
		return v.Type.String()
	}
}

// ArgKind names one execution-context slot passed to a script run.
type ArgKind int

const (
	ArgCaller ArgKind = iota
	ArgScriptVar
	ArgUserDefinedEventNumber
	ArgClickingObject
	ArgEnteringObject
	ArgExitingObject
	ArgLastClosedBy
	ArgLastOpenedBy
	ArgLastPerceived
	ArgLastPerceptionHeard
	ArgLastPerceptionInaudible
	ArgLastPerceptionSeen
	ArgLastPerceptionVanished
)

// isObjectKind reports whether the kind carries an object Variable; the
// remaining kinds carry an Int.
func (k ArgKind) isObjectKind() bool {
	switch k {
	case ArgCaller, ArgClickingObject, ArgEnteringObject, ArgExitingObject,
		ArgLastClosedBy, ArgLastOpenedBy, ArgLastPerceived:
		return true
	default:
		return false
	}
}

// String returns the canonical kind name used in the "kind:value" wire form.
func (k ArgKind) String() string {
	switch k {
	case ArgCaller:
		return "Caller"
	case ArgScriptVar:
		return "ScriptVar"
	case ArgUserDefinedEventNumber:
		return "UserDefinedEventNumber"
	case ArgClickingObject:
		return "ClickingObject"
	case ArgEnteringObject:
		return "EnteringObject"
	case ArgExitingObject:
		return "ExitingObject"
	case ArgLastClosedBy:
		return "LastClosedBy"
	case ArgLastOpenedBy:
		return "LastOpenedBy"
	case ArgLastPerceived:
		return "LastPerceived"
	case ArgLastPerceptionHeard:
		return "LastPerceptionHeard"
	case ArgLastPerceptionInaudible:
		return "LastPerceptionInaudible"
	case ArgLastPerceptionSeen:
		return "LastPerceptionSeen"
	case ArgLastPerceptionVanished:
		return "LastPerceptionVanished"
	default:
		return "unknown"
	}
}

var argKindNames = map[string]ArgKind{
	"Caller":                  ArgCaller,
	"ScriptVar":               ArgScriptVar,
	"UserDefinedEventNumber":  ArgUserDefinedEventNumber,
	"ClickingObject":          ArgClickingObject,
	"EnteringObject":          ArgEnteringObject,
	"ExitingObject":           ArgExitingObject,
	"LastClosedBy":            ArgLastClosedBy,
	"LastOpenedBy":            ArgLastOpenedBy,
	"LastPerceived":           ArgLastPerceived,
	"LastPerceptionHeard":     ArgLastPerceptionHeard,
	"LastPerceptionInaudible": ArgLastPerceptionInaudible,
	"LastPerceptionSeen":      ArgLastPerceptionSeen,
	"LastPerceptionVanished":  ArgLastPerceptionVanished,
}

// Argument is one named execution-context slot: a kind plus the Variable
// bound to it.
//
// Invariant, checked at construction: object kinds hold a non-self Object
// Variable; the remaining kinds hold an Int Variable.
type Argument struct {
	Kind ArgKind
	Var  Variable
}

// NewArgument builds an Argument, validating the kind/variable pairing.
//
// Postcondition: on success the Argument satisfies the kind invariant.
func NewArgument(kind ArgKind, v Variable) (Argument, error) {
	a := Argument{Kind: kind, Var: v}
	if kind.isObjectKind() {
		if v.Type != TypeObject || v.Object == ObjectSelf {
			return Argument{}, fmt.Errorf("%s: expected an object != self", a)
		}
		return a, nil
	}
	if v.Type != TypeInt {
		return Argument{}, fmt.Errorf("%s: expected an integer", a)
	}
	return a, nil
}

// String renders the argument as "kind:type:value".
func (a Argument) String() string {
	return a.Kind.String() + ":" + a.Var.String()
}

// ParseArgument parses the "kind:value" form produced by debugging tools and
// test fixtures. Object kinds parse value as an object id, the rest as an
// integer.
func ParseArgument(s string) (Argument, error) {
	kindStr, valueStr, ok := strings.Cut(s, ":")
	if !ok {
		return Argument{}, fmt.Errorf("parsing argument %q: expected format kind:value", s)
	}
	kind, ok := argKindNames[kindStr]
	if !ok {
		return Argument{}, fmt.Errorf("parsing argument %q: unsupported kind %q", s, kindStr)
	}
	if kind.isObjectKind() {
		id, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil {
			return Argument{}, fmt.Errorf("parsing argument %q: %w", s, err)
		}
		return NewArgument(kind, OfObject(uint32(id)))
	}
	n, err := strconv.Atoi(valueStr)
	if err != nil {
		return Argument{}, fmt.Errorf("parsing argument %q: %w", s, err)
	}
	return NewArgument(kind, OfInt(n))
}
