package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"nuprlnav/internal/server"
	"nuprlnav/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the editor protocol server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd, "")
	if err != nil {
		return err
	}
	srv := server.NewServer(os.Stdin, os.Stdout, server.Options{
		Runner:        e.runner,
		Cache:         e.cache,
		Version:       version.Version,
		WorkspaceRoot: e.root,
	})
	if err := srv.Run(cmd.Context()); err != nil {
		if errors.Is(err, server.ErrExit) {
			return nil
		}
		if errors.Is(err, server.ErrExitWithoutShutdown) {
			return errors.New("exit without shutdown")
		}
		return err
	}
	return nil
}
