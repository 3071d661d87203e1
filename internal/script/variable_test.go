package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableEqual(t *testing.T) {
	t.Run("payload comparison per type", func(t *testing.T) {
		assert.True(t, OfInt(3).Equal(OfInt(3)))
		assert.False(t, OfInt(3).Equal(OfInt(4)))
		assert.True(t, OfString("a").Equal(OfString("a")))
		assert.True(t, OfObject(7).Equal(OfObject(7)))
		assert.True(t, OfVector(Vector{1, 2, 3}).Equal(OfVector(Vector{1, 2, 3})))
		assert.False(t, OfVector(Vector{1, 2, 3}).Equal(OfVector(Vector{1, 2, 4})))
	})

	t.Run("different types never compare equal", func(t *testing.T) {
		assert.False(t, OfInt(1).Equal(OfFloat(1)))
		assert.False(t, OfObject(0).Equal(OfInt(0)))
	})

	t.Run("engine values compare by identity", func(t *testing.T) {
		type effect struct{ power int }
		a := &effect{power: 1}
		b := &effect{power: 1}
		assert.True(t, OfEffect(a).Equal(OfEffect(a)))
		assert.False(t, OfEffect(a).Equal(OfEffect(b)))
	})

	t.Run("actions compare by context identity", func(t *testing.T) {
		ctx := &ExecutionContext{}
		assert.True(t, OfAction(ctx).Equal(OfAction(ctx)))
		assert.False(t, OfAction(ctx).Equal(OfAction(&ExecutionContext{})))
	})
}

func TestVariableNegate(t *testing.T) {
	neg, err := OfInt(5).Negate()
	require.NoError(t, err)
	assert.Equal(t, OfInt(-5), neg)

	neg, err = OfFloat(2.5).Negate()
	require.NoError(t, err)
	assert.Equal(t, OfFloat(-2.5), neg)

	_, err = OfString("x").Negate()
	assert.Error(t, err)
}

func TestVariableString(t *testing.T) {
	assert.Equal(t, "int:42", OfInt(42).String())
	assert.Equal(t, "float:1.5", OfFloat(1.5).String())
	assert.Equal(t, `string:"hi"`, OfString("hi").String())
	assert.Equal(t, "object:7", OfObject(7).String())
	assert.Equal(t, "void", OfNull().String())
}

func TestNewArgument(t *testing.T) {
	t.Run("object kinds require a non-self object", func(t *testing.T) {
		_, err := NewArgument(ArgCaller, OfObject(5))
		assert.NoError(t, err)

		_, err = NewArgument(ArgCaller, OfObject(ObjectSelf))
		assert.Error(t, err)

		_, err = NewArgument(ArgEnteringObject, OfInt(5))
		assert.Error(t, err)
	})

	t.Run("numeric kinds require an integer", func(t *testing.T) {
		_, err := NewArgument(ArgScriptVar, OfInt(3))
		assert.NoError(t, err)

		_, err = NewArgument(ArgUserDefinedEventNumber, OfFloat(3))
		assert.Error(t, err)

		_, err = NewArgument(ArgScriptVar, OfObject(3))
		assert.Error(t, err)
	})
}

func TestParseArgument(t *testing.T) {
	t.Run("object kind", func(t *testing.T) {
		arg, err := ParseArgument("Caller:12")
		require.NoError(t, err)
		assert.Equal(t, ArgCaller, arg.Kind)
		assert.Equal(t, OfObject(12), arg.Var)
	})

	t.Run("numeric kind", func(t *testing.T) {
		arg, err := ParseArgument("ScriptVar:-3")
		require.NoError(t, err)
		assert.Equal(t, ArgScriptVar, arg.Kind)
		assert.Equal(t, OfInt(-3), arg.Var)
	})

	t.Run("round trip through String", func(t *testing.T) {
		arg, err := ParseArgument("LastOpenedBy:9")
		require.NoError(t, err)
		assert.Equal(t, "LastOpenedBy:object:9", arg.String())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, s := range []string{"", "Caller", "Bogus:1", "ScriptVar:x", "Caller:-1"} {
			_, err := ParseArgument(s)
			assert.Error(t, err, s)
		}
	})
}

func TestFindArg(t *testing.T) {
	first, err := NewArgument(ArgScriptVar, OfInt(1))
	require.NoError(t, err)
	second, err := NewArgument(ArgScriptVar, OfInt(2))
	require.NoError(t, err)
	caller, err := NewArgument(ArgCaller, OfObject(10))
	require.NoError(t, err)

	ctx := &ExecutionContext{Args: []Argument{first, caller, second}}

	t.Run("last binding of a kind wins", func(t *testing.T) {
		v, ok := ctx.FindArg(ArgScriptVar)
		require.True(t, ok)
		assert.Equal(t, OfInt(2), v)
	})

	t.Run("missing kind reports not found", func(t *testing.T) {
		_, ok := ctx.FindArg(ArgExitingObject)
		assert.False(t, ok)
	})

	t.Run("clones see the same arguments but not later mutations", func(t *testing.T) {
		clone := ctx.Clone()
		v, ok := clone.FindArg(ArgCaller)
		require.True(t, ok)
		assert.Equal(t, OfObject(10), v)

		replacement, err := NewArgument(ArgCaller, OfObject(11))
		require.NoError(t, err)
		ctx.Args[1] = replacement

		v, _ = clone.FindArg(ArgCaller)
		assert.Equal(t, OfObject(10), v)
	})
}
