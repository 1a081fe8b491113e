package server

import (
	"nuprlnav/internal/proof"
	"nuprlnav/internal/session"
	"nuprlnav/internal/source"
)

// The server is the session's presenter and editor: every callback becomes
// a notification to the host.

func (s *Server) DisplayCurrentProof(view session.ProofView) {
	s.notify("display_current_proof", view)
}

func (s *Server) DisplayReduced(original, reduced *proof.Term) {
	s.notify("display_reduced", reducedParams{Original: termPtr(original), Reduced: termPtr(reduced)})
}

func (s *Server) Highlight(path string, span *source.Span) {
	params := highlightParams{URI: pathToURI(path)}
	if span != nil {
		r := rangeOf(*span)
		params.Range = &r
	}
	s.notify("nuprl/highlight", params)
}

func (s *Server) ShowError(message string) {
	s.notify("nuprl/showError", messageParams{Message: message})
}

// MoveCursor is a reveal in the current editor; the host answers with a
// selection change that the session already agrees with.
func (s *Server) MoveCursor(path string, pos source.Position) {
	s.Reveal(path, pos)
}

func (s *Server) Reveal(path string, pos source.Position) {
	s.notify("nuprl/reveal", revealParams{URI: pathToURI(path), Position: fromSource(pos)})
}

func termPtr(t *proof.Term) *string {
	if t == nil {
		return nil
	}
	v := string(*t)
	return &v
}
