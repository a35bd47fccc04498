package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wstok/internal/config"
	"wstok/internal/trace"
)

// setupTracing builds the tracer described by cfg and attaches it to the
// command context. The returned cleanup takes the command's result and
// flushes the tracer. In ring mode it also dumps the retained events to
// stderr; at the error level it dumps them only when runErr is non-nil.
func setupTracing(cmd *cobra.Command, cfg config.TraceConfig) (func(runErr error), error) {
	level, err := trace.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff && cfg.Output == "" {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(error) {}, nil
	}
	if level == trace.LevelOff {
		// an output file without a level means the user wants something
		level = trace.LevelPhase
	}

	mode, err := trace.ParseMode(cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	ringSize, err := cmd.Root().PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: cfg.Output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	dump := func(runErr error) bool {
		if level == trace.LevelError {
			return runErr != nil
		}
		return mode == trace.ModeRing
	}
	cleanup := func(runErr error) {
		if ring, ok := ringOf(tracer); ok && dump(runErr) {
			if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func ringOf(t trace.Tracer) (*trace.RingTracer, bool) {
	switch t := t.(type) {
	case *trace.RingTracer:
		return t, true
	case *trace.MultiTracer:
		return t.Ring()
	default:
		return nil, false
	}
}
