// Package diag implements the compiler's fatal-error reporting surface.
// Every error in ToyCComp is fatal at the point of detection (§7): there is
// no recovery, so reporting a diagnostic always terminates the process.
package diag

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Component tags the subsystem that raised a diagnostic, per §7's taxonomy.
type Component string

const (
	Scanner  Component = "SCANNER"
	Decl     Component = "DECL"
	Expr     Component = "EXPR"
	Stmt     Component = "STMT"
	Symtab   Component = "SYMTAB"
	DataType Component = "DATATYPE"
	CG       Component = "CG"
	ASM      Component = "ASM"
)

// Error is a fatal compiler diagnostic. It implements error so it can be
// wrapped with github.com/pkg/errors while still carrying the component tag
// and line used for the human-readable "[ERROR] [COMPONENT] line: message"
// report line.
type Error struct {
	Component Component
	Line      int
	Msg       string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Component, e.Line, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.Component, e.Msg)
}

// New builds an *Error without raising it. Useful when a caller wants to
// decide whether to wrap further before calling Fatal.
func New(c Component, line int, format string, args ...interface{}) *Error {
	return &Error{Component: c, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Fatal prints "[ERROR] <component> line <n>: <message>" to stdout (per the
// CLI contract in §6, diagnostics go to the human-readable standard stream)
// and terminates the process with a non-zero exit status. There is no
// partial-output guarantee and no return from Fatal. With TOYC_DEBUG set,
// the stack captured by errors.WithStack is also printed to stderr, so the
// wrapping is load-bearing for diagnosing the compiler itself, not just the
// source it's compiling.
func Fatal(c Component, line int, format string, args ...interface{}) {
	err := errors.WithStack(New(c, line, format, args...))
	fmt.Printf("[ERROR] %s\n", rootMessage(err))
	if os.Getenv("TOYC_DEBUG") != "" {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
	}
	os.Exit(1)
}

// rootMessage unwraps an errors.WithStack-wrapped diagnostic back to its
// formatted message, so Fatal's output never leaks a Go stack trace onto
// the user-visible stream.
func rootMessage(err error) string {
	type causer interface{ Cause() error }
	for {
		if c, ok := err.(causer); ok {
			err = c.Cause()
			continue
		}
		break
	}
	return err.Error()
}
