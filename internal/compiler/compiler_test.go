package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSource writes src to a temp .c file and returns its path, the way
// an end user invokes toyccomp against a real file on disk (§6).
func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.c")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileFileProducesAssemblyForMinimalProgram(t *testing.T) {
	path := writeSource(t, `void main() { print(42); }`)

	var out strings.Builder
	err := CompileFile(path, &out)
	require.NoError(t, err)

	asm := out.String()
	assert.Contains(t, asm, "global main")
	assert.Contains(t, asm, "extern print")
	assert.Contains(t, asm, "section .note.GNU-stack noalloc noexec nowrite progbits")
}

func TestCompileFileHandlesGlobalsFunctionsAndControlFlow(t *testing.T) {
	// Exercises §8's breadth in one program: a global, a function with a
	// parameter, a loop, and a conditional.
	path := writeSource(t, `
		int total;

		int add_one(int n) {
			return n + 1;
		}

		void main() {
			int i;
			i = 0;
			while (i < 5) {
				if (i == 3) {
					total = add_one(total);
				}
				i = i + 1;
			}
			print(total);
		}
	`)

	var out strings.Builder
	err := CompileFile(path, &out)
	require.NoError(t, err)

	asm := out.String()
	assert.Contains(t, asm, "global add_one")
	assert.Contains(t, asm, "global main")
	assert.Contains(t, asm, "section .bss")
	assert.Contains(t, asm, "gv_total")
}
