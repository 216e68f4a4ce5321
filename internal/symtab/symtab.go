// Package symtab implements ToyCComp's symbol table: a single global,
// append-only table capped at 255 entries (§4's resource limit). Unlike the
// teacher's per-function local scopes, ToyCComp has no stack frames for user
// data: every user variable lives in .bss, so there is exactly one scope.
package symtab

import (
	"github.com/mgtm98/ToyCComp/internal/diag"
	"github.com/mgtm98/ToyCComp/internal/types"
)

// MaxSymbols is the hard cap on distinct names the table will hold, matching
// the resource limit carried over from the teacher's token-cache sizing
// philosophy (bounded, fatal-on-overflow resources throughout the compiler).
const MaxSymbols = 255

// Kind distinguishes a variable binding from a function binding.
type Kind int

const (
	VarSym Kind = iota
	FuncSym
)

// Param is one formal parameter of a function declaration: name and type,
// in declaration order.
type Param struct {
	Name string
	Type *types.Type
}

// Symbol is one entry in the global table. Function entries carry Params and
// Defined (set once the body is parsed, so forward declarations and a single
// later definition are both representable); variable entries carry only
// Type.
type Symbol struct {
	Name     string
	Kind     Kind
	Type     *types.Type
	Params   []Param
	Defined  bool
	Label    string // .bss/.data label or function entry label
	IsExtern bool   // runtime externs (print, print_char, ...) never get .bss storage
}

// Table is the single global symbol table. Zero value is not usable; build
// one with New.
type Table struct {
	order []string
	byName map[string]*Symbol
}

// New returns a table pre-populated with ToyCComp's four runtime externs
// (§6's runtime interface): print(long), print_char(char), print_str(char*),
// print_ln(char*). These are callable from source but never get .bss storage
// or a locally generated body — the code generator emits `call` to their
// linked symbol names.
func New() *Table {
	t := &Table{byName: make(map[string]*Symbol)}
	t.defineExtern("print", types.VoidType, Param{"v", types.LongType})
	t.defineExtern("print_char", types.VoidType, Param{"c", types.CharType})
	t.defineExtern("print_str", types.VoidType, Param{"s", types.PointerOf(types.CharType)})
	t.defineExtern("print_ln", types.VoidType, Param{"s", types.PointerOf(types.CharType)})
	return t
}

func (t *Table) defineExtern(name string, ret *types.Type, params ...Param) {
	sym := &Symbol{
		Name: name, Kind: FuncSym, Type: ret, Params: params,
		Defined: true, Label: name, IsExtern: true,
	}
	t.byName[name] = sym
	t.order = append(t.order, name)
}

// ParamGlobalName is the symbol name a formal parameter is stored under (its
// .bss label is this name with the usual gv_ prefix): a function's single
// formal parameter is just a global the prologue
// initializes from the incoming argument register, since ToyCComp carries
// no stack frames for user data.
func ParamGlobalName(funcName, paramName string) string {
	return funcName + "$" + paramName
}

// Lookup returns the symbol bound to name, or nil if undefined.
func (t *Table) Lookup(name string) *Symbol {
	return t.byName[name]
}

// DefineVar declares a global variable. Fatal (via diag) on redeclaration or
// on exceeding MaxSymbols.
func (t *Table) DefineVar(line int, name string, ty *types.Type) *Symbol {
	if existing := t.byName[name]; existing != nil {
		diag.Fatal(diag.Symtab, line, "redeclaration of '%s'", name)
	}
	t.checkCapacity(line, name)
	sym := &Symbol{Name: name, Kind: VarSym, Type: ty, Label: "gv_" + name}
	t.byName[name] = sym
	t.order = append(t.order, name)
	return sym
}

// DeclareFunc registers name as a function with the given return type and
// parameters. Calling it again with a matching signature before a body is
// parsed is a no-op forward declaration; a signature mismatch, or
// redeclaring a name already defined as a variable, is fatal.
func (t *Table) DeclareFunc(line int, name string, ret *types.Type, params []Param) *Symbol {
	if existing := t.byName[name]; existing != nil {
		if existing.Kind != FuncSym {
			diag.Fatal(diag.Symtab, line, "'%s' redeclared as a different kind of symbol", name)
		}
		if !sameSignature(existing, ret, params) {
			diag.Fatal(diag.Symtab, line, "conflicting declaration of '%s'", name)
		}
		return existing
	}
	t.checkCapacity(line, name)
	sym := &Symbol{Name: name, Kind: FuncSym, Type: ret, Params: params, Label: name}
	t.byName[name] = sym
	t.order = append(t.order, name)
	return sym
}

// MarkDefined records that name's function body has been parsed. Fatal if
// the function already has a body (duplicate definition).
func (t *Table) MarkDefined(line int, name string) {
	sym := t.byName[name]
	if sym.Defined {
		diag.Fatal(diag.Symtab, line, "redefinition of function '%s'", name)
	}
	sym.Defined = true
}

func sameSignature(sym *Symbol, ret *types.Type, params []Param) bool {
	if !sym.Type.Equal(ret) || len(sym.Params) != len(params) {
		return false
	}
	for i := range params {
		if !sym.Params[i].Type.Equal(params[i].Type) {
			return false
		}
	}
	return true
}

func (t *Table) checkCapacity(line int, name string) {
	if len(t.order) >= MaxSymbols {
		diag.Fatal(diag.Symtab, line, "symbol table full (limit %d), while declaring '%s'", MaxSymbols, name)
	}
}

// Globals returns every variable symbol in declaration order, for .bss/.data
// layout by the code generator.
func (t *Table) Globals() []*Symbol {
	var out []*Symbol
	for _, name := range t.order {
		sym := t.byName[name]
		if sym.Kind == VarSym {
			out = append(out, sym)
		}
	}
	return out
}

// Functions returns every function symbol in declaration order.
func (t *Table) Functions() []*Symbol {
	var out []*Symbol
	for _, name := range t.order {
		sym := t.byName[name]
		if sym.Kind == FuncSym {
			out = append(out, sym)
		}
	}
	return out
}
