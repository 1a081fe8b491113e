package main

import (
	"os"
	"strings"
)

// useTUI resolves a --ui value. "auto" asks for a terminal on both stdin
// and stdout; the TUI reads keys and redraws in place.
func useTUI(value string) (bool, error) {
	return resolveUI(value, func() bool { return isTerminal(os.Stdout) && isTerminal(os.Stdin) })
}

func resolveUI(value string, interactive func() bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return interactive(), nil
	}
	return false, &flagError{flag: "ui", value: value, want: "auto|on|off"}
}
