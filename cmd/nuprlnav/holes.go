package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nuprlnav/internal/holes"
	"nuprlnav/internal/source"
)

var holesCmd = &cobra.Command{
	Use:   "holes [flags] FILE",
	Short: "List the unfinished proof nodes of a file",
	Long: `List every hole of FILE in document order. With --next or --prev, print
only the hole after or before --at, wrapping around at the ends. Positions
are 1-based LINE:COL.`,
	Args: cobra.ExactArgs(1),
	RunE: runHoles,
}

func init() {
	holesCmd.Flags().String("at", "1:1", "cursor position for --next/--prev (LINE:COL)")
	holesCmd.Flags().Bool("next", false, "print the next hole after --at")
	holesCmd.Flags().Bool("prev", false, "print the previous hole before --at")
	holesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type holeEntry struct {
	Line   uint32 `json:"line"`
	Col    uint32 `json:"col"`
	Object string `json:"object"`
	Goal   string `json:"goal"`
	Source string `json:"source"`
}

func runHoles(cmd *cobra.Command, args []string) error {
	atFlag, _ := cmd.Flags().GetString("at")
	next, _ := cmd.Flags().GetBool("next")
	prev, _ := cmd.Flags().GetBool("prev")
	format, _ := cmd.Flags().GetString("format")
	if next && prev {
		return fmt.Errorf("--next and --prev are mutually exclusive")
	}
	if format != "pretty" && format != "json" {
		return &flagError{flag: "format", value: format, want: "pretty|json"}
	}
	at, err := parsePosition(atFlag)
	if err != nil {
		return err
	}

	e, err := loadEnv(cmd, args[0])
	if err != nil {
		return err
	}
	doc, err := openDocument(cmd.Context(), e, args[0], at)
	if err != nil {
		return err
	}
	for _, msg := range doc.out.takeErrors() {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
	lib, src, err := doc.library()
	if err != nil {
		return err
	}

	found := holes.Collect(lib, src)
	if next || prev {
		spans := make([]source.Span, len(found))
		for i := range found {
			spans[i] = found[i].Span
		}
		pick := holes.NextIndex
		if prev {
			pick = holes.PreviousIndex
		}
		i := pick(spans, at)
		if i < 0 {
			return fmt.Errorf("%s: no holes", doc.path)
		}
		found = found[i : i+1]
	}

	entries := make([]holeEntry, 0, len(found))
	for _, h := range found {
		entries = append(entries, holeEntry{
			Line:   h.Span.Start.Line + 1,
			Col:    h.Span.Start.Col + 1,
			Object: h.Object.Name,
			Goal:   string(h.Node.Goal.Concl),
			Source: doc.text.Slice(h.Span),
		})
	}
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	cwd, _ := os.Getwd()
	printHoles(cmd.OutOrStdout(), source.RelativePath(doc.path, cwd), entries)
	return nil
}

func printHoles(out io.Writer, path string, entries []holeEntry) {
	for _, h := range entries {
		fmt.Fprintf(out, "%s:%d:%d: %s ⊢ %s\n", path, h.Line, h.Col, h.Object, h.Goal)
		if snippet, _, _ := strings.Cut(h.Source, "\n"); snippet != "" {
			fmt.Fprintf(out, "    %s\n", snippet)
		}
	}
}
