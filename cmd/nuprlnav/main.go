package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nuprlnav/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "nuprlnav",
	Short: "Navigate Nuprl proofs: holes, goals and checker diagnostics",
	Long: `nuprlnav runs the Nuprl proof checker over a document and answers
navigation questions about the result: which proof node encloses a
position, where the unfinished holes are, and what went wrong.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}
		if err := setupTracing(cmd); err != nil {
			return err
		}
		return setupProfiling(cmd)
	},
}

func main() {
	defer dumpTraceOnPanic()
	rootCmd.Version = version.Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(holesCmd)
	rootCmd.AddCommand(whereCmd)
	rootCmd.AddCommand(reduceCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.String("config", "", "path to nuprlnav.toml (default: search upwards)")
	flags.String("checker", "", "proof checker binary (overrides [checker].binary)")
	flags.Duration("timeout", 0, "checker timeout (overrides [checker].timeout)")
	flags.Bool("no-cache", false, "do not read or write the snapshot cache")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	err := rootCmd.Execute()
	stopProfiling()
	closeTracing(rootCmd)
	if err != nil {
		os.Exit(1)
	}
}

// applyColorFlag configures fatih/color from --color.
func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return &flagError{flag: "color", value: mode, want: "auto|on|off"}
	}
	return nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
