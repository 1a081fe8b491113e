package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"nuprlnav/internal/holes"
	"nuprlnav/internal/source"
	"nuprlnav/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [flags] FILE",
	Short: "Browse the holes of FILE in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().String("ui", "auto", "interactive UI (auto|on|off)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	uiFlag, _ := cmd.Flags().GetString("ui")
	tui, err := useTUI(uiFlag)
	if err != nil {
		return err
	}
	e, err := loadEnv(cmd, args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if !tui {
		return printBrowseFallback(ctx, cmd, e, args[0])
	}

	var doc *document
	load := func() ui.LoadResult {
		var err error
		if doc == nil {
			doc, err = openDocument(ctx, e, args[0], source.Position{})
			if err != nil {
				return ui.LoadResult{Err: err}
			}
		} else {
			text, readErr := os.ReadFile(doc.path)
			if readErr != nil {
				return ui.LoadResult{Library: doc.session.Library(), Err: readErr}
			}
			doc.checkErr = doc.session.Save(ctx, doc.path, string(text))
		}
		res := ui.LoadResult{Library: doc.session.Library(), Err: doc.checkErr}
		if msgs := doc.out.takeErrors(); len(msgs) > 0 && doc.checkErr == nil {
			res.Notice = msgs[0]
		}
		return res
	}

	model := ui.NewBrowseModel(absPath(args[0]), load)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

// printBrowseFallback prints what the browser would show, for pipes.
func printBrowseFallback(ctx context.Context, cmd *cobra.Command, e *env, path string) error {
	doc, err := openDocument(ctx, e, path, source.Position{})
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
	fmt.Fprintf(cmd.OutOrStdout(), "Holes remaining in file: %d\n", len(found))
	for _, h := range found {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:%s\n%s\n", doc.path, h.Span.Start.Human(), ui.RenderNode(h.Object, h.Node, 100))
	}
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
