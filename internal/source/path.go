package source

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePath gives editor paths and checker paths one comparable form:
// absolute, cleaned, forward slashes, Unicode NFC.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return norm.NFC.String(filepath.ToSlash(filepath.Clean(p)))
}

// SamePath reports whether two paths name the same file after normalization.
func SamePath(a, b string) bool {
	return a != "" && NormalizePath(a) == NormalizePath(b)
}

// RelativePath returns p relative to base when p lives under base, and the
// normalized absolute path otherwise.
func RelativePath(p, base string) string {
	abs := NormalizePath(p)
	if base == "" {
		return abs
	}
	rel, err := filepath.Rel(NormalizePath(base), abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return abs
	}
	return filepath.ToSlash(rel)
}
