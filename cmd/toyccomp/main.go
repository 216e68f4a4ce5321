// toyccomp is the command-line entry point for the compiler: one source
// file in, out.s written to the working directory, per §6. The teacher's
// driver (lang/ya/main.go) parses flags with the stdlib flag package and
// shells out to five subprocess stages; this CLI instead has exactly one
// positional argument and calls straight into internal/compiler, grounded
// on the Cobra-based CLI surface brought in from the pack's gix tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgtm98/ToyCComp/internal/compiler"
	"github.com/mgtm98/ToyCComp/internal/logging"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "toyccomp <input-file>",
		Short:         "Compile a ToyC source file to x86-64 NASM assembly",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(args[0])
		},
	}
	return cmd
}

func runCompile(inputFile string) error {
	if _, err := os.Stat(inputFile); err != nil {
		return fmt.Errorf("cannot open input file %s: %w", inputFile, err)
	}
	logging.Logger.Debugf("TOYC_DEBUG=%q TOYC_INFO=%q", os.Getenv("TOYC_DEBUG"), os.Getenv("TOYC_INFO"))
	return compiler.CompileToFile(inputFile)
}
