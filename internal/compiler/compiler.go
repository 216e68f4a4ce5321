// Package compiler orchestrates the lexer, parser, and code generator into
// one in-process pipeline. It is grounded on the teacher's lang/ya driver
// (lex -> parse -> sem -> gen -> asm, each a subprocess piping text over
// stdin/stdout), but per §2's "single-pass, self-contained" architecture
// the stages here are direct function calls against shared in-memory data
// (the AST and the symbol table) rather than subprocesses piping text.
package compiler

import (
	"io"
	"os"

	"github.com/mgtm98/ToyCComp/internal/codegen"
	"github.com/mgtm98/ToyCComp/internal/lexer"
	"github.com/mgtm98/ToyCComp/internal/logging"
	"github.com/mgtm98/ToyCComp/internal/parser"
	"github.com/mgtm98/ToyCComp/internal/symtab"
)

// CompileFile reads source from path, runs it through the lexer, parser,
// and code generator, and writes the resulting assembly to out. Diagnostics
// are fatal (internal/diag.Fatal exits the process directly), and it always
// returns nil: a failed write to out is not detected or reported.
func CompileFile(path string, out io.Writer) error {
	logging.Logger.Infof("compiling %s", path)

	lex := lexer.Open(path)
	syms := symtab.New()
	p := parser.New(lex, syms)

	program := p.ParseProgram()
	logging.Logger.Debugf("parsed %s: %d globals, %d functions", path, len(syms.Globals()), len(syms.Functions()))

	w := codegen.NewWriter(out)
	gen := codegen.New(w, syms)
	gen.Generate(program)
	logging.Logger.Debugf("generated assembly for %s", path)

	return nil
}

// CompileToFile is CompileFile with the conventional out.s output path from
// §6's CLI contract: the assembly is written to out.s in the current
// working directory.
func CompileToFile(path string) error {
	outPath := "out.s"
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := CompileFile(path, f); err != nil {
		return err
	}
	logging.Logger.Infof("wrote %s", outPath)
	return nil
}
