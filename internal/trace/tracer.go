package trace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// StorageMode says where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory, dumped on demand
	ModeBoth
)

func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config describes the tracer to build.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "" or "-" for stderr, otherwise a rotated file
	RingSize   int

	// Rotation of file outputs, in lumberjack units. Zero picks a default.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	switch cfg.Mode {
	case ModeStream, 0:
		return cfg.stream(), nil
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeBoth:
		return &fanout{level: cfg.Level, tracers: []Tracer{cfg.stream(), NewRingTracer(cfg.RingSize, cfg.Level)}}, nil
	}
	return nil, fmt.Errorf("unknown storage mode: %d", cfg.Mode)
}

func (cfg Config) stream() *StreamTracer {
	return NewStreamTracer(cfg.writer(), cfg.Level, formatFor(cfg.Format, cfg.OutputPath))
}

// stderr without a Close, so closing the tracer leaves it open.
type stderrWriter struct{ io.Writer }

func (cfg Config) writer() io.Writer {
	switch {
	case cfg.Output != nil:
		return cfg.Output
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return stderrWriter{os.Stderr}
	}
	// lumberjack opens the file, and makes its directory, on first write
	return &lumberjack.Logger{
		Filename:   cfg.OutputPath,
		MaxSize:    orDefault(cfg.MaxSizeMB, 10),
		MaxBackups: orDefault(cfg.MaxBackups, 3),
		MaxAge:     cfg.MaxAgeDays,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
