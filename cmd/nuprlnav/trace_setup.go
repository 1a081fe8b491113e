package main

import (
	"cmp"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nuprlnav/internal/trace"
)

var activeTracer trace.Tracer = trace.Nop

type traceFlags struct {
	output, level, mode, format string
	ringSize                    int
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var tf traceFlags
	var err error
	for name, dst := range map[string]*string{
		"trace":        &tf.output,
		"trace-level":  &tf.level,
		"trace-mode":   &tf.mode,
		"trace-format": &tf.format,
	} {
		if *dst, err = flags.GetString(name); err != nil {
			return tf, err
		}
	}
	tf.ringSize, err = flags.GetInt("trace-ring-size")
	return tf, err
}

// setupTracing builds the tracer from the --trace flags, with the [trace]
// table of nuprlnav.toml filling whatever the flags leave empty.
func setupTracing(cmd *cobra.Command) error {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return err
	}
	if tf.level == "" || tf.output == "" {
		// a broken config is reported by the command itself
		if cfg, cfgErr := loadConfig(cmd, ""); cfgErr == nil {
			tf.level = cmp.Or(tf.level, cfg.Trace.Level)
			tf.output = cmp.Or(tf.output, cfg.Trace.Output)
		}
	}
	if tf.level == "" && tf.output != "" {
		tf.level = "phase"
	}

	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return err
	}
	if level == trace.LevelOff {
		return nil
	}
	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return err
	}
	format, err := trace.ParseFormat(tf.format)
	if err != nil {
		return err
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	})
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	activeTracer = tracer
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	return nil
}

// closeTracing flushes and closes the tracer. A ring-only tracer has no
// other output, so it is dumped to stderr first.
func closeTracing(cmd *cobra.Command) {
	errOut := cmd.ErrOrStderr()
	if ring, ok := activeTracer.(*trace.RingTracer); ok {
		if err := ring.Dump(errOut, trace.FormatText); err != nil {
			fmt.Fprintf(errOut, "trace: dump: %v\n", err)
		}
	}
	if err := activeTracer.Close(); err != nil {
		fmt.Fprintf(errOut, "trace: close: %v\n", err)
	}
}

// dumpTraceOnPanic prints the ring buffer, if any, and re-panics.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if ring := trace.FindRing(activeTracer); ring != nil {
		fmt.Fprintln(os.Stderr, "nuprlnav: panic, last trace events:")
		_ = ring.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}
