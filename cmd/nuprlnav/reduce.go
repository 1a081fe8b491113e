package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nuprlnav/internal/checker"
	"nuprlnav/internal/diag"
	"nuprlnav/internal/project"
	"nuprlnav/internal/proof"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [flags] EXPR|-",
	Short: "Evaluate an expression with the checker",
	Long: `Reduce EXPR (or stdin for "-"). By default the checker takes
[reduce].max_steps steps; --all reduces to normal form. With --file, the
definitions of that file are in scope.`,
	Args: cobra.ExactArgs(1),
	RunE: runReduce,
}

func init() {
	reduceCmd.Flags().Int("steps", 0, "number of reduction steps (default [reduce].max_steps)")
	reduceCmd.Flags().Bool("all", false, "reduce to normal form")
	reduceCmd.Flags().String("file", "", "document whose definitions are in scope")
	reduceCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runReduce(cmd *cobra.Command, args []string) error {
	steps, _ := cmd.Flags().GetInt("steps")
	all, _ := cmd.Flags().GetBool("all")
	file, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return &flagError{flag: "format", value: format, want: "pretty|json"}
	}
	if steps < 0 {
		return fmt.Errorf("--steps must not be negative")
	}

	expr := args[0]
	if expr == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read expression: %w", err)
		}
		expr = string(data)
	}
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("empty expression")
	}

	if file != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		file = abs
	}
	e, err := loadEnv(cmd, file)
	if err != nil {
		return err
	}

	req := checker.ReduceRequest{Expr: expr}
	if !all {
		if steps == 0 {
			steps = e.cfg.Reduce.MaxSteps
		}
		req.MaxSteps = &steps
	}
	if file != "" {
		req.WorkDir = project.WorkingPath(e.root, file)
		req.File = file
	} else {
		req.WorkDir = e.root
	}

	out, err := e.runner.Reduce(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to run the proof checker: %w", err)
	}
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Original *string           `json:"original"`
			Reduced  *string           `json:"reduced"`
			Errors   []diag.Diagnostic `json:"errors,omitempty"`
		}{termString(out.Original), termString(out.Reduced), out.Errors})
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Original.Text())
	fmt.Fprintln(cmd.OutOrStdout(), "⟶ "+out.Reduced.Text())
	if report, ok := diag.First(nil, out.Errors); ok {
		return errors.New(report.String())
	}
	return nil
}

func termString(t *proof.Term) *string {
	if t == nil {
		return nil
	}
	v := string(*t)
	return &v
}
