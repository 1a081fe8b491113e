package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"nuprlnav/internal/ui"
)

var whereCmd = &cobra.Command{
	Use:   "where [flags] FILE LINE:COL",
	Short: "Show the proof node enclosing a position",
	Args:  cobra.ExactArgs(2),
	RunE:  runWhere,
}

func init() {
	whereCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runWhere(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return &flagError{flag: "format", value: format, want: "pretty|json"}
	}
	pos, err := parsePosition(args[1])
	if err != nil {
		return err
	}
	e, err := loadEnv(cmd, args[0])
	if err != nil {
		return err
	}
	doc, err := openDocument(cmd.Context(), e, args[0], pos)
	if err != nil {
		return err
	}
	for _, msg := range doc.out.takeErrors() {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
	if _, _, err := doc.library(); err != nil {
		return err
	}
	if n := doc.text.LineCount(); int(pos.Line) >= n {
		return fmt.Errorf("%s: line %d is past the end of the file (%d lines)", doc.path, pos.Line+1, n)
	}

	view := doc.session.View()
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	if view.Node == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s:%s: no proof context here\n", doc.path, pos.Human())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s:%s: %s, node %d\n", doc.path, pos.Human(), view.Object.Name, view.Node.ID)
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderNode(view.Object, view.Node, 100))
	return nil
}
