// Package session keeps the checked library, the active document and the
// cursor in sync, and turns editor events into view updates.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"nuprlnav/internal/checker"
	"nuprlnav/internal/holes"
	"nuprlnav/internal/index"
	"nuprlnav/internal/project"
	"nuprlnav/internal/proof"
	"nuprlnav/internal/snapcache"
	"nuprlnav/internal/source"
	"nuprlnav/internal/trace"
)

// ErrNoDocument is returned by operations that need an active document.
var ErrNoDocument = errors.New("no active document")

// Document is the editor buffer the session follows.
type Document struct {
	Path    string
	Text    string
	Version int32
}

// Options wires a session to its collaborators. Runner is required; the
// rest may be nil.
type Options struct {
	Runner        checker.Runner
	Presenter     Presenter
	Editor        Editor
	Cache         *snapcache.Cache
	WorkspaceRoot string
}

// Session is the sync controller. All methods are safe for concurrent use.
type Session struct {
	runner    checker.Runner
	presenter Presenter
	editor    Editor
	cache     *snapcache.Cache
	root      string

	mu      sync.Mutex
	lib     *proof.Library
	doc     Document
	hasDoc  bool
	pos     source.Position
	pending bool
	running bool

	// requestSeq counts recheck requests, appliedSeq is the request whose
	// result is currently adopted.
	requestSeq uint64
	appliedSeq uint64
}

// New creates a session with no library and no document.
func New(opts Options) *Session {
	s := &Session{
		runner:    opts.Runner,
		presenter: opts.Presenter,
		editor:    opts.Editor,
		cache:     opts.Cache,
		root:      opts.WorkspaceRoot,
	}
	if s.presenter == nil {
		s.presenter = nopPresenter{}
	}
	if s.editor == nil {
		s.editor = nopPresenter{}
	}
	return s
}

// SetWorkspaceRoot changes the directory handed to the checker.
func (s *Session) SetWorkspaceRoot(root string) {
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
}

// Library returns the adopted library, or nil before the first good check.
func (s *Session) Library() *proof.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lib
}

// Document returns the active document.
func (s *Session) Document() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.hasDoc
}

// Position returns the cursor.
func (s *Session) Position() source.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Open makes doc the active document (initial open or editor switch),
// checks it and publishes the view at pos. A failed check still
// publishes a view from whatever library is available.
func (s *Session) Open(ctx context.Context, doc Document, pos source.Position) error {
	ctx, span := trace.Start(ctx, trace.ScopeEvent, "session.open")
	span.WithExtra("path", doc.Path)
	s.mu.Lock()
	s.doc = doc
	s.hasDoc = true
	s.pos = pos
	s.mu.Unlock()

	err := s.Recheck(ctx)
	s.Reposition(ctx)
	span.Fail(err).End("")
	return err
}

// Save re-checks the saved document. A non-empty text replaces the stored
// buffer.
func (s *Session) Save(ctx context.Context, path, text string) error {
	ctx, span := trace.Start(ctx, trace.ScopeEvent, "session.save")
	s.mu.Lock()
	if !s.hasDoc || !source.SamePath(s.doc.Path, path) {
		s.mu.Unlock()
		span.End("not active")
		return nil
	}
	if text != "" {
		s.doc.Text = text
	}
	s.mu.Unlock()

	err := s.Recheck(ctx)
	s.Reposition(ctx)
	span.Fail(err).End("")
	return err
}

// Change records an edit. Navigation keeps using the last checked
// library until the next save.
func (s *Session) Change(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDoc || !source.SamePath(s.doc.Path, doc.Path) {
		return
	}
	if doc.Version != 0 && doc.Version < s.doc.Version {
		return
	}
	s.doc.Text = doc.Text
	s.doc.Version = doc.Version
}

// Select moves the cursor in the active document and republishes.
func (s *Session) Select(ctx context.Context, path string, pos source.Position) {
	s.mu.Lock()
	if !s.hasDoc || !source.SamePath(s.doc.Path, path) {
		s.mu.Unlock()
		return
	}
	s.pos = pos
	s.mu.Unlock()
	s.Reposition(ctx)
}

// Recheck runs the checker on the active document. Requests that arrive
// while a check is running are folded into a single follow-up run, and
// only the newest result is published.
func (s *Session) Recheck(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasDoc {
		s.mu.Unlock()
		return ErrNoDocument
	}
	s.requestSeq++
	if s.running {
		s.pending = true
		s.mu.Unlock()
		trace.Point(ctx, trace.ScopeEvent, "session.recheck_coalesced", "")
		return nil
	}
	s.running = true
	s.mu.Unlock()

	var err error
	for {
		s.mu.Lock()
		seq := s.requestSeq
		doc := s.doc
		root := s.root
		s.pending = false
		s.mu.Unlock()

		err = s.checkOnce(ctx, seq, doc, root)

		s.mu.Lock()
		if !s.pending || ctx.Err() != nil {
			s.running = false
			s.pending = false
			s.mu.Unlock()
			return err
		}
		s.mu.Unlock()
	}
}

func (s *Session) checkOnce(ctx context.Context, seq uint64, doc Document, root string) error {
	ctx, span := trace.Start(ctx, trace.ScopeCheck, "session.check")
	span.WithExtra("seq", fmt.Sprint(seq))
	workDir := project.WorkingPath(root, doc.Path)
	out, err := s.runner.Check(ctx, checker.CheckRequest{WorkDir: workDir, Path: doc.Path, Text: doc.Text})
	fromCache := false
	if err != nil {
		if cached, ok := s.fromCache(ctx, workDir, doc.Path); ok {
			out, fromCache = cached, true
		}
	} else if out.Library != nil {
		s.store(ctx, workDir, doc, out)
	}

	s.mu.Lock()
	if seq <= s.appliedSeq {
		s.mu.Unlock()
		span.End("stale")
		return err
	}
	s.appliedSeq = seq
	latest := seq == s.requestSeq
	switch {
	case fromCache:
		if s.lib == nil {
			s.lib = out.Library
		}
	case out != nil && out.Library != nil:
		s.lib = out.Library
	}
	s.mu.Unlock()

	if latest {
		if err != nil {
			s.presenter.ShowError(fmt.Sprintf("Failed to run the proof checker: %v", err))
		} else if report, ok := out.FirstError(); ok {
			s.presenter.ShowError(report.String())
		}
	}
	detail := "ok"
	if fromCache {
		detail = "cache"
	}
	span.Fail(err).End(detail)
	return err
}

// fromCache is consulted only while no library has been adopted yet.
func (s *Session) fromCache(ctx context.Context, workDir, path string) (*checker.CheckOutput, bool) {
	if s.cache == nil || s.Library() != nil {
		return nil, false
	}
	entry, ok, err := s.cache.Get(snapcache.KeyFor(workDir, path))
	if err != nil {
		trace.Point(ctx, trace.ScopeCheck, "snapcache.get", err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	out, err := checker.DecodeCheckOutput(entry.Raw)
	if err != nil || out.Library == nil {
		return nil, false
	}
	trace.Point(ctx, trace.ScopeCheck, "snapcache.hit", path)
	return out, true
}

func (s *Session) store(ctx context.Context, workDir string, doc Document, out *checker.CheckOutput) {
	if s.cache == nil {
		return
	}
	err := s.cache.Put(snapcache.KeyFor(workDir, doc.Path), snapcache.Entry{
		WorkDir: workDir,
		Path:    doc.Path,
		TextSum: snapcache.SumText(doc.Text),
		Raw:     out.Raw,
	})
	if err != nil {
		trace.Point(ctx, trace.ScopeCheck, "snapcache.put", err.Error())
	}
}

// snapshot is the state Reposition works from.
type snapshot struct {
	lib    *proof.Library
	doc    Document
	hasDoc bool
	pos    source.Position
}

func (s *Session) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{lib: s.lib, doc: s.doc, hasDoc: s.hasDoc, pos: s.pos}
}

// View computes the proof view for the current cursor without publishing.
func (s *Session) View() ProofView {
	view, _ := viewAt(s.snapshot())
	return view
}

func viewAt(snap snapshot) (ProofView, *source.Span) {
	var view ProofView
	if !snap.hasDoc {
		return view, nil
	}
	src, ok := snap.lib.SourceByPath(snap.doc.Path)
	if !ok {
		return view, nil
	}
	n := holes.Count(snap.lib, src)
	view.NumHoles = &n
	m, ok := index.Resolve(snap.lib, src, snap.pos)
	if !ok {
		return view, nil
	}
	view.Object = m.Object
	view.Node = m.Node
	if !m.HasNodeMeta {
		return view, nil
	}
	sp := m.NodeMeta.Span
	return view, &sp
}

// Reposition publishes the proof view and highlight for the cursor. It
// depends only on the library, document and cursor, so repeating it
// publishes the same thing.
func (s *Session) Reposition(ctx context.Context) ProofView {
	_, span := trace.Start(ctx, trace.ScopeQuery, "session.reposition")
	snap := s.snapshot()
	view, hl := viewAt(snap)
	s.presenter.DisplayCurrentProof(view)
	if snap.hasDoc {
		s.presenter.Highlight(snap.doc.Path, hl)
	}
	span.End("")
	return view
}

// Holes lists the hole spans of path in document order.
func (s *Session) Holes(path string) ([]source.Span, bool) {
	lib := s.Library()
	src, ok := lib.SourceByPath(path)
	if !ok {
		return nil, false
	}
	return holes.In(lib, src), true
}

// ViewAt resolves an arbitrary position without moving the cursor.
func (s *Session) ViewAt(path string, pos source.Position) ProofView {
	view, _ := viewAt(snapshot{lib: s.Library(), doc: Document{Path: path}, hasDoc: true, pos: pos})
	return view
}
