package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wstok/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wstok",
		Short:         "Whitespace tokenizer with byte and character offsets",
		Long:          `wstok splits text into maximal runs of non-whitespace characters and reports each token with its byte range, character range and ordinal.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newTokenizeCmd())
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "only report error diagnostics")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics kept per input")
	flags.String("config", "", "path to wstok.toml (default: search upwards from the working directory)")

	flags.String("trace", "", "trace output file (- for stderr, .ndjson for NDJSON)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")

	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime execution trace to this file")
	return root
}

// main runs the root command and exits with status 1 on any error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		root.PrintErrln("error:", err)
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
