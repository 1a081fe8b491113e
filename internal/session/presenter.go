package session

import (
	"nuprlnav/internal/proof"
	"nuprlnav/internal/source"
)

// ProofView is what the proof panel shows for the cursor. Object and Node
// are nil outside any proof; NumHoles is nil when the document is not part
// of the checked library.
type ProofView struct {
	Object   *proof.Object    `json:"obj"`
	Node     *proof.ProofNode `json:"proofNode"`
	NumHoles *int             `json:"numHoles"`
}

// Presenter receives everything the session wants displayed.
type Presenter interface {
	DisplayCurrentProof(view ProofView)
	DisplayReduced(original, reduced *proof.Term)
	// Highlight marks span in path; a nil span clears the highlight.
	Highlight(path string, span *source.Span)
	ShowError(message string)
}

// Editor moves the host's cursor.
type Editor interface {
	MoveCursor(path string, pos source.Position)
	// Reveal opens path at pos. The host answers with an editor switch.
	Reveal(path string, pos source.Position)
}

type nopPresenter struct{}

func (nopPresenter) DisplayCurrentProof(ProofView) {}
func (nopPresenter) DisplayReduced(_, _ *proof.Term) {}
func (nopPresenter) Highlight(string, *source.Span) {}
func (nopPresenter) ShowError(string) {}
func (nopPresenter) MoveCursor(string, source.Position) {}
func (nopPresenter) Reveal(string, source.Position) {}
