package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nuprlnav/internal/proof"
	"nuprlnav/internal/session"
	"nuprlnav/internal/source"
	"nuprlnav/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] FILE",
	Short: "Re-check FILE on every save and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before re-checking")
}

// consolePresenter prints one line per check.
type consolePresenter struct {
	mu   sync.Mutex
	out  io.Writer
	path string
}

func (p *consolePresenter) DisplayCurrentProof(view session.ProofView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stamp := color.New(color.Faint).Sprint(time.Now().Format("15:04:05"))
	if view.NumHoles == nil {
		fmt.Fprintf(p.out, "%s %s: not part of the checked library\n", stamp, p.path)
		return
	}
	count := color.New(color.FgGreen, color.Bold)
	if *view.NumHoles > 0 {
		count = color.New(color.FgYellow, color.Bold)
	}
	fmt.Fprintf(p.out, "%s %s: Holes remaining in file: %s\n", stamp, p.path, count.Sprint(*view.NumHoles))
}

func (p *consolePresenter) DisplayReduced(_, _ *proof.Term) {}

func (p *consolePresenter) Highlight(string, *source.Span) {}

func (p *consolePresenter) ShowError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, color.New(color.FgRed).Sprint(message))
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	e, err := loadEnv(cmd, path)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	presenter := &consolePresenter{out: cmd.OutOrStdout(), path: path}
	sess := session.New(session.Options{Runner: e.runner, Presenter: presenter, Cache: e.cache, WorkspaceRoot: e.root})

	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_ = sess.Open(ctx, session.Document{Path: path, Text: string(text)}, source.Position{})

	w, err := watch.New(path, func(p string) {
		text, err := os.ReadFile(p)
		if err != nil {
			presenter.ShowError(fmt.Sprintf("failed to read %s: %v", p, err))
			return
		}
		_ = sess.Save(ctx, path, string(text))
	}, watch.Options{
		Debounce: debounce,
		OnError: func(err error) {
			presenter.ShowError(fmt.Sprintf("watch: %v", err))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w.Start(ctx)
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", path)
	<-ctx.Done()
	w.Stop()
	return nil
}
