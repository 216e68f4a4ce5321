package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgtm98/ToyCComp/internal/types"
)

func TestNewPrePopulatesRuntimeExterns(t *testing.T) {
	tab := New()
	for _, name := range []string{"print", "print_char", "print_str", "print_ln"} {
		sym := tab.Lookup(name)
		require.NotNil(t, sym, "expected extern %q to be predefined", name)
		assert.True(t, sym.IsExtern)
		assert.Equal(t, FuncSym, sym.Kind)
	}
	printStr := tab.Lookup("print_str")
	require.Len(t, printStr.Params, 1)
	assert.True(t, printStr.Params[0].Type.IsPointer())
	printLn := tab.Lookup("print_ln")
	assert.Len(t, printLn.Params, 1)
}

func TestDefineVarStoresTypeAndLabel(t *testing.T) {
	tab := New()
	tab.DefineVar(1, "x", types.IntType)
	sym := tab.Lookup("x")
	require.NotNil(t, sym)
	assert.Equal(t, types.IntType, sym.Type)
	assert.Equal(t, "gv_x", sym.Label)
}

func TestDeclareFuncForwardDeclarationThenDefine(t *testing.T) {
	tab := New()
	params := []Param{{Name: "n", Type: types.IntType}}
	tab.DeclareFunc(1, "fact", types.LongType, params)
	sym := tab.Lookup("fact")
	require.NotNil(t, sym)
	assert.False(t, sym.Defined)

	// Redeclaring the same signature before a body is fine.
	tab.DeclareFunc(2, "fact", types.LongType, params)
	tab.MarkDefined(3, "fact")
	assert.True(t, tab.Lookup("fact").Defined)
}

func TestGlobalsAndFunctionsPreserveDeclarationOrder(t *testing.T) {
	tab := New()
	tab.DefineVar(1, "a", types.IntType)
	tab.DeclareFunc(2, "f", types.VoidType, nil)
	tab.DefineVar(3, "b", types.CharType)

	globals := tab.Globals()
	require.Len(t, globals, 2)
	assert.Equal(t, "a", globals[0].Name)
	assert.Equal(t, "b", globals[1].Name)

	funcs := tab.Functions()
	var userFuncs []string
	for _, f := range funcs {
		if !f.IsExtern {
			userFuncs = append(userFuncs, f.Name)
		}
	}
	assert.Equal(t, []string{"f"}, userFuncs)
}
