package session

import (
	"context"
	"fmt"

	"nuprlnav/internal/checker"
	"nuprlnav/internal/diag"
	"nuprlnav/internal/holes"
	"nuprlnav/internal/index"
	"nuprlnav/internal/project"
	"nuprlnav/internal/proof"
	"nuprlnav/internal/source"
	"nuprlnav/internal/trace"
)

// NextHole moves the cursor to the next hole of the active document,
// wrapping at the end. It reports false when there is nowhere to go.
func (s *Session) NextHole(ctx context.Context) bool {
	return s.jumpToHole(ctx, "session.next_hole", holes.Next)
}

// PreviousHole is NextHole backwards.
func (s *Session) PreviousHole(ctx context.Context) bool {
	return s.jumpToHole(ctx, "session.previous_hole", holes.Previous)
}

func (s *Session) jumpToHole(ctx context.Context, name string, pick func([]source.Span, source.Position) (source.Span, bool)) bool {
	ctx, span := trace.Start(ctx, trace.ScopeEvent, name)
	snap := s.snapshot()
	if !snap.hasDoc {
		span.End("no document")
		return false
	}
	src, ok := snap.lib.SourceByPath(snap.doc.Path)
	if !ok {
		span.End("unknown file")
		return false
	}
	target, ok := pick(holes.In(snap.lib, src), snap.pos)
	if !ok {
		span.End("no holes")
		return false
	}
	s.moveTo(ctx, snap.doc.Path, target.Start)
	span.End(target.Start.Human())
	return true
}

// JumpToNode moves the cursor to the start of a proof node. A node in
// another file is only revealed; the host then switches editors and the
// session follows through Open.
func (s *Session) JumpToNode(ctx context.Context, objID proof.ObjectID, nodeID proof.NodeID) bool {
	ctx, span := trace.Start(ctx, trace.ScopeEvent, "session.jump_to_node")
	snap := s.snapshot()
	m, ok := index.Lookup(snap.lib, objID, nodeID)
	if !ok {
		span.End("unknown node")
		return false
	}
	path, ok := snap.lib.SourcePath(m.NodeMeta.Span.Source)
	if !ok {
		span.End("unknown source")
		return false
	}
	target := m.NodeMeta.Span.Start
	current, known := snap.lib.SourceByPath(snap.doc.Path)
	if !snap.hasDoc || !known || current != m.NodeMeta.Span.Source {
		s.editor.Reveal(path, target)
		span.End("reveal")
		return true
	}
	s.moveTo(ctx, snap.doc.Path, target)
	span.End(target.Human())
	return true
}

// moveTo updates the cursor, tells the editor and republishes.
func (s *Session) moveTo(ctx context.Context, path string, pos source.Position) {
	s.mu.Lock()
	s.pos = pos
	s.mu.Unlock()
	s.editor.MoveCursor(path, pos)
	s.Reposition(ctx)
}

// Reduce evaluates expr with the active document's definitions in scope.
// A nil maxSteps reduces to normal form.
func (s *Session) Reduce(ctx context.Context, expr string, maxSteps *int) (*checker.ReduceOutput, error) {
	ctx, span := trace.Start(ctx, trace.ScopeEvent, "session.reduce")
	s.mu.Lock()
	req := checker.ReduceRequest{Expr: expr, MaxSteps: maxSteps}
	if s.hasDoc {
		req.WorkDir = project.WorkingPath(s.root, s.doc.Path)
		req.File = s.doc.Path
	} else {
		req.WorkDir = s.root
	}
	lib := s.lib
	s.mu.Unlock()

	out, err := s.runner.Reduce(ctx, req)
	if err != nil {
		s.presenter.ShowError(fmt.Sprintf("Failed to run the proof checker: %v", err))
		span.Fail(err).End("")
		return nil, err
	}
	s.presenter.DisplayReduced(out.Original, out.Reduced)
	var sources map[source.SourceID]source.Source
	if lib != nil {
		sources = lib.Sources
	}
	if report, ok := diag.First(sources, out.Errors); ok {
		s.presenter.ShowError(report.String())
	}
	span.End("")
	return out, nil
}
