package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the project file looked up from a document upwards.
const ConfigFileName = "nuprlnav.toml"

// FindConfigFile walks up from startDir to locate nuprlnav.toml.
func FindConfigFile(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// WorkingPath picks the directory handed to the checker: the workspace
// root when there is one, otherwise the document itself.
func WorkingPath(workspaceRoot, docPath string) string {
	if workspaceRoot != "" {
		return workspaceRoot
	}
	return docPath
}
