// Package codegen walks ToyCComp's typed AST post-order and emits x86-64
// assembly through a Writer, following the lowering rules in §4.4. It is
// grounded on the teacher's ygen package (a separate walk-and-emit pass
// reading a textual IR) but adapted to walk ast.Node directly in-process
// and to target Intel-syntax x86-64/NASM instead of WUT-4 assembly.
package codegen

import (
	"github.com/mgtm98/ToyCComp/internal/ast"
	"github.com/mgtm98/ToyCComp/internal/diag"
	"github.com/mgtm98/ToyCComp/internal/symtab"
	"github.com/mgtm98/ToyCComp/internal/types"
)

// Generator holds the per-compile state the teacher keeps as package
// globals in ygen: the output writer, the register pool, and a flag
// tracking whether the current function's body has already emitted a
// return (so the epilogue knows whether it needs a default zero-return).
type Generator struct {
	w    *Writer
	syms *symtab.Table

	regs           *RegPool
	returnObserved bool
	exitLabel      string
}

// New builds a Generator writing through w against the completed, fully
// type-checked symbol table syms.
func New(w *Writer, syms *symtab.Table) *Generator {
	return &Generator{w: w, syms: syms}
}

// Generate walks the program's top-level declaration chain in source
// order, emitting each function's assembly directly and buffering each
// global variable's .bss/.data entry, then flushes the tail sections.
func (g *Generator) Generate(program *ast.Node) {
	for n := program; n != nil; n = n.Next {
		switch n.Kind {
		case ast.FUNC_DECL:
			g.genFunc(n)
		case ast.VAR_DECL:
			g.genGlobalVarDecl(n)
		default:
			diag.Fatal(diag.CG, n.Line, "unexpected top-level node kind %s", n.Kind)
		}
	}
	g.w.Wrapup()
}

// elemWidthAndCount returns the bit width of one storage element and the
// element count for a .bss/.data reservation of type t: for an array, the
// base element's width and the array length; otherwise t's own width and a
// count of one.
func elemWidthAndCount(t *types.Type) (width int, nelem int) {
	if t.ArrayLen > 0 {
		return t.Base.Width, t.ArrayLen
	}
	return t.Width, 1
}

func (g *Generator) genGlobalVarDecl(n *ast.Node) {
	sym := g.syms.Lookup(n.StrValue)
	width, nelem := elemWidthAndCount(sym.Type)

	switch {
	case n.Left == nil:
		g.w.AddGlobalVar(sym.Label, width, nelem)
	case n.Left.Kind == ast.INT_LIT:
		g.w.SetGlobalInitial(sym.Label, n.Left.IntValue, width)
	default:
		// Not reached for parsed input: the parser rejects a non-constant
		// top-level initializer, and a function-local declaration's
		// initializer is handled by genLocalVarDecl instead.
		diag.Fatal(diag.CG, n.Line, "non-constant initializer for top-level variable '%s'", n.StrValue)
	}
}

func (g *Generator) genFunc(n *ast.Node) {
	sym := g.syms.Lookup(n.StrValue)
	g.regs = NewRegPool()
	g.returnObserved = false
	g.exitLabel = g.w.NewLabel("ret")

	g.w.FuncPrologue(sym.Label)
	for _, param := range sym.Params {
		mangled := symtab.ParamGlobalName(sym.Name, param.Name)
		paramSym := g.syms.Lookup(mangled)
		g.w.AddGlobalVar(paramSym.Label, paramSym.Type.Width, 1)
		g.w.StoreArgToGlobal(paramSym.Label, paramSym.Type.Width)
	}

	g.genStmt(n.Left)

	if !g.returnObserved {
		width := sym.Type.Width
		if sym.Type.IsVoid() {
			width = 8
		}
		g.w.InitImm(Accumulator, 0, width)
	}
	// Every `return`, wherever it appears in the body, jumps here rather
	// than emitting its own pop/ret — the epilogue proper is emitted
	// exactly once, at the end of the body, per §4.4.
	g.w.Label(g.exitLabel)
	g.w.FuncEpilogue()
}

// genStmt dispatches a statement node. GLUE nodes are walked Left then
// Right; every other statement kind is generated directly. genStmt always
// leaves the register pool fully free on return, per §8's invariant.
func (g *Generator) genStmt(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.EMPTY:
		return
	case ast.GLUE:
		g.genStmt(n.Left)
		g.genStmt(n.Right)
	case ast.VAR_DECL:
		g.genLocalVarDecl(n)
	case ast.IF:
		g.genIf(n)
	case ast.WHILE:
		g.genWhile(n)
	case ast.DO_WHILE:
		g.genDoWhile(n)
	case ast.FOR:
		g.genFor(n)
	case ast.BREAK:
		g.genBreak(n)
	case ast.RETURN:
		g.genReturn(n)
	default:
		// An expression used as a statement (assignment or a call whose
		// result is discarded).
		reg := g.genExpr(n)
		g.regs.Free(n.Line, reg)
	}
	if !g.regs.AllFree() {
		diag.Fatal(diag.CG, n.Line, "register pool not empty at statement boundary")
	}
}

func (g *Generator) genLocalVarDecl(n *ast.Node) {
	sym := g.syms.Lookup(n.StrValue)
	width, nelem := elemWidthAndCount(sym.Type)
	g.w.AddGlobalVar(sym.Label, width, nelem)
	if n.Left == nil {
		return
	}
	reg := g.genExpr(n.Left)
	g.w.SetGlobal(sym.Label, reg, width)
	g.regs.Free(n.Line, reg)
}

func (g *Generator) genIf(n *ast.Node) {
	cond := g.genExpr(n.Left)
	elseLabel := g.w.NewLabel("else")
	endLabel := g.w.NewLabel("endif")

	g.w.JmpNe(cond, 1, 8, elseLabel)
	g.regs.Free(n.Line, cond)

	g.genStmt(n.Right)
	g.w.Jmp(endLabel)
	g.w.Label(elseLabel)
	if n.Next != nil {
		g.genStmt(n.Next)
	}
	g.w.Label(endLabel)
}

func (g *Generator) genWhile(n *ast.Node) {
	start := g.w.NewLabel("wstart")
	end := g.w.NewLabel("wend")
	n.StrValue = end

	g.w.Label(start)
	cond := g.genExpr(n.Left)
	g.w.JmpNe(cond, 1, 8, end)
	g.regs.Free(n.Line, cond)

	g.genStmt(n.Right)
	g.w.Jmp(start)
	g.w.Label(end)
}

func (g *Generator) genDoWhile(n *ast.Node) {
	start := g.w.NewLabel("dstart")
	end := g.w.NewLabel("dend")
	n.StrValue = end

	g.w.Label(start)
	g.genStmt(n.Left)
	cond := g.genExpr(n.Right)
	g.w.JmpEq(cond, 1, 8, start)
	g.regs.Free(n.Line, cond)
	g.w.Label(end)
}

func (g *Generator) genFor(n *ast.Node) {
	rest := n.Next // GLUE{Left: update, Right: body}
	start := g.w.NewLabel("fstart")
	end := g.w.NewLabel("fend")
	n.StrValue = end

	g.genStmt(n.Left) // init
	g.w.Label(start)
	cond := g.genExpr(n.Right)
	g.w.JmpNe(cond, 1, 8, end)
	g.regs.Free(n.Line, cond)

	g.genStmt(rest.Right) // body
	g.genStmt(rest.Left)  // update
	g.w.Jmp(start)
	g.w.Label(end)
}

func (g *Generator) genBreak(n *ast.Node) {
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case ast.WHILE, ast.DO_WHILE, ast.FOR:
			g.w.Jmp(g.loopEndLabel(p))
			return
		}
	}
	diag.Fatal(diag.CG, n.Line, "'break' outside a loop reached code generation")
}

// loopEndLabel recovers the end label minted for loop node p. WHILE,
// DO_WHILE, and FOR have no other use for StrValue, so §4.4's "node's value
// holds end" is realized by stashing the label string there directly.
func (g *Generator) loopEndLabel(p *ast.Node) string {
	return p.StrValue
}

func (g *Generator) genReturn(n *ast.Node) {
	g.returnObserved = true
	sym := g.syms.Lookup(n.StrValue)
	if n.Left != nil {
		reg := g.genExpr(n.Left)
		g.w.FuncReturn(reg, sym.Type.Width)
		g.regs.Free(n.Line, reg)
	}
	g.w.Jmp(g.exitLabel)
}

// genExpr walks an expression node post-order, returning the register
// handle holding its value.
func (g *Generator) genExpr(n *ast.Node) int {
	switch n.Kind {
	case ast.INT_LIT:
		reg := g.regs.Alloc(n.Line)
		g.w.InitImm(reg, n.IntValue, n.Type.Width)
		return reg

	case ast.STR_LIT:
		label := g.w.GenerateStringLiteral([]byte(n.StrValue))
		reg := g.regs.Alloc(n.Line)
		g.w.AddressOf(reg, label)
		return reg

	case ast.IDENT:
		sym := g.syms.Lookup(n.StrValue)
		reg := g.regs.Alloc(n.Line)
		if sym.Type.ArrayLen > 0 {
			// An array used as a value decays to the address of its first
			// element, same as a pointer, rather than loading its contents.
			g.w.AddressOf(reg, sym.Label)
			return reg
		}
		g.w.GetGlobal(reg, sym.Label, sym.Type.Width)
		return reg

	case ast.ADDRESSOF:
		sym := g.syms.Lookup(n.StrValue)
		reg := g.regs.Alloc(n.Line)
		g.w.AddressOf(reg, sym.Label)
		return reg

	case ast.PTRDREF:
		addr := g.genExpr(n.Left)
		if n.Type.IsPointer() {
			return addr
		}
		reg := g.regs.Alloc(n.Line)
		g.w.LoadMem(reg, addr, n.Type.Width)
		g.regs.Free(n.Line, addr)
		return reg

	case ast.OFFSET_SCALE:
		reg := g.genExpr(n.Left)
		return g.scaleInto(reg, n)

	case ast.ADD, ast.SUB, ast.MUL, ast.DIV:
		return g.genArith(n)

	case ast.CMP_EQ, ast.CMP_NE, ast.CMP_GT, ast.CMP_GE, ast.CMP_LT, ast.CMP_LE:
		return g.genCompare(n)

	case ast.ASSIGN:
		return g.genAssign(n)

	case ast.FUNC_CALL:
		return g.genCall(n)

	default:
		diag.Fatal(diag.CG, n.Line, "unknown AST node kind %s in expression context", n.Kind)
		panic("unreachable")
	}
}

// scaleInto implements OFFSET_SCALE: multiply reg by the element size
// stashed in n.IntValue (§4.3/§4.4), via a scratch register holding the
// immediate.
func (g *Generator) scaleInto(reg int, n *ast.Node) int {
	scaleReg := g.regs.Alloc(n.Line)
	g.w.InitImm(scaleReg, n.IntValue, 64)
	g.w.Mul(reg, scaleReg, 64)
	g.regs.Free(n.Line, scaleReg)
	return reg
}

func (g *Generator) genArith(n *ast.Node) int {
	left := g.genExpr(n.Left)
	right := g.genExpr(n.Right)
	width := n.Type.Width

	switch n.Kind {
	case ast.ADD:
		g.w.Add(left, right, width)
	case ast.SUB:
		g.w.Sub(left, right, width)
	case ast.MUL:
		g.w.Mul(left, right, width)
	case ast.DIV:
		g.w.Div(left, right, width)
	}
	g.regs.Free(n.Line, right)
	return left
}

var ccByKind = map[ast.Kind]string{
	ast.CMP_EQ: "EQ", ast.CMP_NE: "NE", ast.CMP_GT: "GT",
	ast.CMP_GE: "GE", ast.CMP_LT: "LT", ast.CMP_LE: "LE",
}

func (g *Generator) genCompare(n *ast.Node) int {
	left := g.genExpr(n.Left)
	right := g.genExpr(n.Right)
	width := n.Left.Type.Width
	if n.Right.Type.Width > width {
		width = n.Right.Type.Width
	}
	g.w.Cmp(left, right, width)
	g.regs.Free(n.Line, right)
	g.w.SetCC(ccByKind[n.Kind], left, 64)
	return left
}

// genAssign evaluates the right-hand side, then stores it through the
// target: an IDENT stores directly to its global, a PTRDREF stores through
// the address produced by its inner expression.
func (g *Generator) genAssign(n *ast.Node) int {
	value := g.genExpr(n.Right)
	width := n.Type.Width

	switch n.Left.Kind {
	case ast.IDENT:
		sym := g.syms.Lookup(n.Left.StrValue)
		g.w.SetGlobal(sym.Label, value, width)
	case ast.PTRDREF:
		addr := g.genExpr(n.Left.Left)
		g.w.StoreMem(addr, value, width)
		g.regs.Free(n.Line, addr)
	default:
		diag.Fatal(diag.CG, n.Line, "unsupported assignment target node kind %s", n.Left.Kind)
	}
	return value
}

func (g *Generator) genCall(n *ast.Node) int {
	sym := g.syms.Lookup(n.StrValue)
	argReg := noArg
	if n.Left != nil {
		argReg = g.genExpr(n.Left)
	}

	needReturn := !sym.Type.IsVoid()
	resultReg := Accumulator
	if needReturn {
		resultReg = g.regs.Alloc(n.Line)
	}
	g.w.FuncCall(sym.Label, argReg, needReturn, resultReg, sym.Type.Width)
	if argReg != noArg {
		g.regs.Free(n.Line, argReg)
	}
	return resultReg
}
