package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nuprlnav/internal/checker"
	"nuprlnav/internal/project"
	"nuprlnav/internal/snapcache"
)

// env is everything a command needs to run the checker.
type env struct {
	cfg    project.Config
	root   string // workspace root handed to the checker; "" means the document
	runner *checker.ProcessRunner
	cache  *snapcache.Cache
}

// loadConfig honours --config, otherwise searches upwards from startDir
// (or the working directory).
func loadConfig(cmd *cobra.Command, startDir string) (project.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, err
	}
	if path != "" {
		return project.Load(path)
	}
	if startDir == "" {
		startDir = "."
	}
	return project.Discover(startDir)
}

// loadEnv builds the checker environment for a document. docPath may be
// empty for commands that have no document.
func loadEnv(cmd *cobra.Command, docPath string) (*env, error) {
	startDir := ""
	if docPath != "" {
		startDir = filepath.Dir(docPath)
	}
	cfg, err := loadConfig(cmd, startDir)
	if err != nil {
		return nil, err
	}
	flags := cmd.Root().PersistentFlags()

	binary := cfg.Checker.Binary
	if flagBinary, _ := flags.GetString("checker"); flagBinary != "" {
		binary = flagBinary
	}
	timeout, err := cfg.CheckerTimeout()
	if err != nil {
		return nil, err
	}
	if flagTimeout, _ := flags.GetDuration("timeout"); flagTimeout > 0 {
		timeout = flagTimeout
	}

	e := &env{
		cfg:    cfg,
		root:   cfg.Root(),
		runner: checker.NewProcessRunner(binary, timeout, cfg.Checker.Args...),
	}
	noCache, _ := flags.GetBool("no-cache")
	if cfg.CacheEnabled() && !noCache {
		cache, err := snapcache.Open(cfg.Cache.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "nuprlnav: snapshot cache disabled: %v\n", err)
		} else {
			e.cache = cache
		}
	}
	return e, nil
}
