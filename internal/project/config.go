// Package project finds and reads nuprlnav.toml.
package project

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the decoded nuprlnav.toml. Zero values mean "use the default".
type Config struct {
	Checker CheckerConfig `toml:"checker"`
	Reduce  ReduceConfig  `toml:"reduce"`
	Cache   CacheConfig   `toml:"cache"`
	Trace   TraceConfig   `toml:"trace"`

	// Path is the file the config came from, empty for defaults.
	Path string `toml:"-"`
}

type CheckerConfig struct {
	Binary  string   `toml:"binary"`
	Timeout string   `toml:"timeout"`
	Args    []string `toml:"args"`
}

type ReduceConfig struct {
	MaxSteps int `toml:"max_steps"`
}

type CacheConfig struct {
	Enabled *bool  `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

const (
	defaultBinary   = "nuprl"
	defaultTimeout  = 30 * time.Second
	defaultMaxSteps = 1
)

// Default returns the configuration used without a nuprlnav.toml.
func Default() Config {
	return Config{
		Checker: CheckerConfig{Binary: defaultBinary, Timeout: defaultTimeout.String()},
		Reduce:  ReduceConfig{MaxSteps: defaultMaxSteps},
		Trace:   TraceConfig{Level: "off"},
	}
}

// Load decodes path on top of Default. Unknown keys are an error so typos
// do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("checker", "binary") && strings.TrimSpace(cfg.Checker.Binary) == "" {
		return Config{}, fmt.Errorf("%s: [checker].binary must not be empty", path)
	}
	if _, err := cfg.CheckerTimeout(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Reduce.MaxSteps < 0 {
		return Config{}, fmt.Errorf("%s: [reduce].max_steps must not be negative", path)
	}
	cfg.Path = path
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	if cfg.Trace.Output != "" && cfg.Trace.Output != "-" && !filepath.IsAbs(cfg.Trace.Output) {
		cfg.Trace.Output = filepath.Join(filepath.Dir(path), cfg.Trace.Output)
	}
	return cfg, nil
}

// Discover loads the nearest nuprlnav.toml above startDir, or Default.
func Discover(startDir string) (Config, error) {
	path, ok, err := FindConfigFile(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// CheckerTimeout parses [checker].timeout.
func (c Config) CheckerTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.Checker.Timeout) == "" {
		return defaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Checker.Timeout)
	if err != nil {
		return 0, fmt.Errorf("[checker].timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("[checker].timeout must be positive, got %s", d)
	}
	return d, nil
}

// CacheEnabled reports whether the snapshot cache is on; it defaults to on.
func (c Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// Root returns the directory of the config file, or "" for defaults.
func (c Config) Root() string {
	if c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}
