package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"nuprlnav/internal/proof"
	"nuprlnav/internal/session"
	"nuprlnav/internal/source"
)

// collector is a presenter that keeps what the session shows, for
// commands that print once at the end.
type collector struct {
	mu       sync.Mutex
	view     session.ProofView
	errors   []string
	original *proof.Term
	reduced  *proof.Term
}

func (c *collector) DisplayCurrentProof(view session.ProofView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = view
}

func (c *collector) DisplayReduced(original, reduced *proof.Term) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.original, c.reduced = original, reduced
}

func (c *collector) Highlight(string, *source.Span) {}

func (c *collector) ShowError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, message)
}

// takeErrors returns and clears the collected messages.
func (c *collector) takeErrors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.errors
	c.errors = nil
	return out
}

// document is a file opened in its own session.
type document struct {
	path    string
	text    *source.Text
	session *session.Session
	out     *collector
	// checkErr is the checker failure, if any. The session may still
	// hold a cached library.
	checkErr error
}

// openDocument reads path and runs the first check. It fails only when
// the file cannot be read.
func openDocument(ctx context.Context, e *env, path string, pos source.Position) (*document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	out := &collector{}
	sess := session.New(session.Options{Runner: e.runner, Presenter: out, Cache: e.cache, WorkspaceRoot: e.root})
	checkErr := sess.Open(ctx, session.Document{Path: abs, Text: string(text)}, pos)
	return &document{path: abs, text: source.NewText(text), session: sess, out: out, checkErr: checkErr}, nil
}

// library returns the adopted library or explains why there is none.
func (d *document) library() (*proof.Library, source.SourceID, error) {
	lib := d.session.Library()
	if lib == nil {
		if d.checkErr != nil {
			return nil, 0, d.checkErr
		}
		return nil, 0, fmt.Errorf("%s: the checker reported no proof library", d.path)
	}
	src, ok := lib.SourceByPath(d.path)
	if !ok {
		return lib, 0, fmt.Errorf("%s: file is not part of the checked library", d.path)
	}
	return lib, src, nil
}

// parsePosition reads a 1-based "LINE:COL" into a zero-based position.
func parsePosition(value string) (source.Position, error) {
	lineStr, colStr, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found {
		colStr = "1"
	}
	line, err := strconv.ParseUint(lineStr, 10, 32)
	if err != nil || line == 0 {
		return source.Position{}, fmt.Errorf("invalid position %q (expected LINE:COL, 1-based)", value)
	}
	col, err := strconv.ParseUint(colStr, 10, 32)
	if err != nil || col == 0 {
		return source.Position{}, fmt.Errorf("invalid position %q (expected LINE:COL, 1-based)", value)
	}
	return source.Position{Line: uint32(line - 1), Col: uint32(col - 1)}, nil
}
