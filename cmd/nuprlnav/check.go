package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"nuprlnav/internal/checker"
	"nuprlnav/internal/holes"
	"nuprlnav/internal/observ"
	"nuprlnav/internal/source"
	"nuprlnav/internal/testkit"
	"nuprlnav/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] FILE...",
	Short: "Run the proof checker and summarise diagnostics and holes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel checker runs (0=auto)")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("strict", false, "also verify the span layout of the checker output")
	checkCmd.Flags().String("ui", "auto", "progress UI for several files (auto|on|off)")
	checkCmd.Flags().Bool("timings", false, "report how long each file spent in each phase")
}

type checkOptions struct {
	strict  bool
	timings bool
}

// checkReport is the per-file outcome of `check`.
type checkReport struct {
	Path       string         `json:"path"`
	Holes      *int           `json:"holes"`
	Diagnostic string         `json:"diagnostic,omitempty"`
	Failure    string         `json:"failure,omitempty"`
	Violation  string         `json:"violation,omitempty"`
	Cached     bool           `json:"cached,omitempty"`
	Timings    *observ.Report `json:"timings,omitempty"`
	Messages   []string       `json:"-"`
}

func (r checkReport) failed() bool {
	return r.Failure != "" || r.Diagnostic != "" || r.Violation != ""
}

func (r checkReport) summary() string {
	switch {
	case r.Failure != "" && !r.Cached:
		return "checker failed"
	case r.Holes == nil:
		return "not in library"
	case *r.Holes == 1:
		return "1 hole"
	default:
		return fmt.Sprintf("%d holes", *r.Holes)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return &flagError{flag: "format", value: format, want: "pretty|json"}
	}
	var opts checkOptions
	if opts.strict, err = cmd.Flags().GetBool("strict"); err != nil {
		return err
	}
	if opts.timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	tui, err := useTUI(uiFlag)
	if err != nil {
		return err
	}

	e, err := loadEnv(cmd, args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var reports []checkReport
	if format == "pretty" && len(args) > 1 && tui {
		reports, err = runChecksWithUI(ctx, e, args, jobs, opts)
	} else {
		reports, err = runChecks(ctx, e, args, jobs, opts, nil)
	}
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		printCheckReports(cmd.OutOrStdout(), reports)
	}
	failed := 0
	for _, r := range reports {
		if r.failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) did not check cleanly", failed, len(reports))
	}
	return nil
}

// runChecks checks every file with at most jobs checker processes. Each
// file gets its own session; results keep argument order. progress, when
// set, receives status events and is not closed.
func runChecks(ctx context.Context, e *env, files []string, jobs int, opts checkOptions, progress chan<- ui.Event) ([]checkReport, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	reports := make([]checkReport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if progress != nil {
				progress <- ui.Event{File: path, Status: ui.StatusChecking}
			}
			report, err := checkOne(gctx, e, path, opts)
			if err != nil {
				return err
			}
			reports[i] = report
			if progress != nil {
				status := ui.StatusDone
				if report.failed() {
					status = ui.StatusFailed
				}
				progress <- ui.Event{File: path, Status: status, Summary: report.summary()}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func checkOne(ctx context.Context, e *env, path string, opts checkOptions) (checkReport, error) {
	timer := observ.NewTimer()
	phase := timer.Begin("check")
	doc, err := openDocument(ctx, e, path, source.Position{})
	if err != nil {
		return checkReport{}, err
	}
	timer.End(phase, "")
	if doc.checkErr != nil && !checker.IsFailure(doc.checkErr) {
		// cancelled, not a verdict on the file
		return checkReport{}, doc.checkErr
	}
	report := checkReport{Path: doc.path, Messages: doc.out.takeErrors()}
	if doc.checkErr != nil {
		report.Failure = doc.checkErr.Error()
	}
	lib, src, libErr := doc.library()
	if lib != nil && doc.checkErr != nil {
		report.Cached = true
	}
	if libErr == nil {
		timer.Measure("holes", func() string {
			n := holes.Count(lib, src)
			report.Holes = &n
			return fmt.Sprintf("%d found", n)
		})
	}
	if doc.checkErr == nil && len(report.Messages) > 0 {
		report.Diagnostic = report.Messages[0]
	}
	if opts.strict && lib != nil {
		timer.Measure("layout", func() string {
			if err := testkit.CheckLibraryInvariants(lib); err != nil {
				report.Violation = err.Error()
				return "violated"
			}
			return ""
		})
	}
	if opts.timings {
		r := timer.Report()
		report.Timings = &r
	}
	return report, nil
}

func printCheckReports(out io.Writer, reports []checkReport) {
	okLabel := color.New(color.FgGreen, color.Bold).Sprint("ok")
	failLabel := color.New(color.FgRed, color.Bold).Sprint("error")
	warnLabel := color.New(color.FgYellow).Sprint("cached")
	for _, r := range reports {
		label := okLabel
		switch {
		case r.Failure != "" && r.Cached:
			label = warnLabel
		case r.failed():
			label = failLabel
		}
		fmt.Fprintf(out, "%s %s (%s)\n", label, r.Path, r.summary())
		if r.Failure != "" {
			fmt.Fprintf(out, "  Failed to run the proof checker: %s\n", r.Failure)
		}
		if r.Diagnostic != "" {
			fmt.Fprintf(out, "  %s\n", r.Diagnostic)
		}
		if r.Violation != "" {
			fmt.Fprintf(out, "  layout: %s\n", r.Violation)
		}
		if r.Timings != nil {
			r.Timings.WriteSummary(out, "    ")
		}
	}
}
