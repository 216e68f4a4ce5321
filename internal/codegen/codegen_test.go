package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgtm98/ToyCComp/internal/lexer"
	"github.com/mgtm98/ToyCComp/internal/parser"
	"github.com/mgtm98/ToyCComp/internal/symtab"
)

// generate runs the full lex+parse+codegen pipeline in-process and returns
// the emitted assembly text. There is no subprocess/exec boundary: this
// module has no separate binary per pipeline stage to shell out to.
func generate(t *testing.T, src string) string {
	t.Helper()
	lex := lexer.NewFromReader(strings.NewReader(src), "test.c")
	syms := symtab.New()
	p := parser.New(lex, syms)
	program := p.ParseProgram()

	var out strings.Builder
	w := NewWriter(&out)
	New(w, syms).Generate(program)
	return out.String()
}

func TestGenerateEmitsFunctionPrologueAndEpilogue(t *testing.T) {
	asm := generate(t, `void main() { }`)
	assert.Contains(t, asm, "global main")
	assert.Contains(t, asm, "main:")
	assert.Contains(t, asm, "push rbp")
	assert.Contains(t, asm, "mov rbp, rsp")
	assert.Contains(t, asm, "pop rbp")
	assert.Contains(t, asm, "ret")
}

func TestGenerateDeclaresRuntimeExterns(t *testing.T) {
	asm := generate(t, `void main() { }`)
	for _, name := range []string{"print", "print_char", "print_str", "print_ln"} {
		assert.Contains(t, asm, "extern "+name)
	}
}

func TestGenerateEmitsGNUStackNote(t *testing.T) {
	asm := generate(t, `void main() { }`)
	assert.Contains(t, asm, "section .note.GNU-stack noalloc noexec nowrite progbits")
}

func TestGenerateGlobalVarGetsBssReservation(t *testing.T) {
	asm := generate(t, `int counter; void main() { }`)
	assert.Contains(t, asm, "section .bss")
	assert.Contains(t, asm, "gv_counter: resd 1")
}

func TestGenerateTopLevelConstantInitializerGetsDataEntry(t *testing.T) {
	asm := generate(t, `int limit = 10; void main() { }`)
	assert.Contains(t, asm, "section .data")
	assert.Contains(t, asm, "gv_limit: dd 10")
}

func TestGenerateArithmeticUsesScratchRegisters(t *testing.T) {
	asm := generate(t, `void main() { int a; int b; a = 1; b = 2; a = a + b; }`)
	assert.Contains(t, asm, "add r12d, r13d")
}

func TestGenerateFunctionCallRoutesSingleArgThroughRdi(t *testing.T) {
	asm := generate(t, `void nl() { } void main() { nl(); print(5); }`)
	assert.Contains(t, asm, "mov rdi, r12")
	assert.Contains(t, asm, "call print")
}

func TestGenerateReturnJumpsToSharedExitLabel(t *testing.T) {
	asm := generate(t, `
		int f(int n) {
			if (n) {
				return 1;
			}
			return 0;
		}
	`)
	// Both returns should jump to the same minted label, and that label
	// should appear exactly once as a definition (the shared epilogue).
	retJumps := strings.Count(asm, "jmp L_ret0")
	assert.Equal(t, 2, retJumps)
	assert.Equal(t, 1, strings.Count(asm, "L_ret0:"))
}

func TestGenerateWhileLoopCondAndBackEdge(t *testing.T) {
	// Label indices: the function's shared exit label is minted first
	// (L_ret0), then the loop's start/end labels (L_wstart1/L_wend2).
	asm := generate(t, `void main() { int i; i = 0; while (i < 3) { i = i + 1; } }`)
	assert.Contains(t, asm, "L_wstart1:")
	assert.Contains(t, asm, "setl")
	assert.Contains(t, asm, "jne L_wend2")
	assert.Contains(t, asm, "jmp L_wstart1")
	assert.Contains(t, asm, "L_wend2:")
}

func TestGenerateBreakJumpsToEnclosingLoopEndLabel(t *testing.T) {
	asm := generate(t, `void main() { while (1) { break; } }`)
	assert.Contains(t, asm, "jmp L_wend2")
}

func TestGenerateStringLiteralGoesToDataSection(t *testing.T) {
	asm := generate(t, `void main() { print_str("hi"); }`)
	assert.Contains(t, asm, "L_str0: db 104, 105")
}

func TestGenerateArrayIndexStoresThroughPointerArithmetic(t *testing.T) {
	asm := generate(t, `void main() { char a[4]; a[1] = 65; }`)
	require.Contains(t, asm, "lea r")
	assert.Contains(t, asm, "mov byte [r")
}

func TestGenerateRegisterPoolFreedAtStatementBoundaries(t *testing.T) {
	// If the register pool invariant in genStmt ever regressed, a long chain
	// of independent statements would eventually exhaust the four-slot pool
	// and fatal out (which os.Exit()s the test binary); simply completing
	// without hanging/exiting is the observable signal here.
	asm := generate(t, `
		void main() {
			int a; int b; int c; int d; int e; int f;
			a = 1; b = 2; c = 3; d = 4; e = 5; f = 6;
			a = a + b; b = b + c; c = c + d; d = d + e; e = e + f;
		}
	`)
	assert.Contains(t, asm, "main:")
}
