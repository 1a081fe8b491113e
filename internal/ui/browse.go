package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nuprlnav/internal/holes"
	"nuprlnav/internal/index"
	"nuprlnav/internal/proof"
	"nuprlnav/internal/source"
)

// conflictWarning is shown for nodes whose rule did not apply.
const conflictWarning = "Could not apply inference rule to goal"

// LoadResult is one check of the browsed file. Notice is the formatted
// first diagnostic, if any.
type LoadResult struct {
	Library *proof.Library
	Notice  string
	Err     error
}

// Loader checks the browsed file. It runs off the UI goroutine.
type Loader func() LoadResult

type loadedMsg LoadResult

// BrowseModel lists the holes of one file and shows the goal of the
// selected one.
type BrowseModel struct {
	path    string
	load    Loader
	spinner spinner.Model
	loading bool

	lib    *proof.Library
	src    source.SourceID
	known  bool
	holes  []holes.Hole
	spans  []source.Span
	cursor int
	pos    source.Position

	notice string
	err    error
	width  int
	height int
}

// NewBrowseModel returns a model that loads path with load on start; r
// reloads.
func NewBrowseModel(path string, load Loader) *BrowseModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return &BrowseModel{path: path, load: load, spinner: sp, loading: true, cursor: -1, width: 100, height: 30}
}

func (m *BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m *BrowseModel) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		return loadedMsg(load())
	}
}

func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.apply(LoadResult(msg))
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width, m.height = msg.Width, msg.Height
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "n", "j", "down":
			m.step(holes.NextIndex)
		case "p", "k", "up":
			m.step(holes.PreviousIndex)
		case "r":
			if !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.loadCmd())
			}
		}
	}
	return m, nil
}

// apply adopts a load result. A failed load keeps the previous library.
func (m *BrowseModel) apply(res LoadResult) {
	m.loading = false
	m.err = res.Err
	m.notice = res.Notice
	if res.Library != nil {
		m.lib = res.Library
	}
	m.src, m.known = m.lib.SourceByPath(m.path)
	m.holes, m.spans = nil, nil
	if m.known {
		m.holes = holes.Collect(m.lib, m.src)
		m.spans = make([]source.Span, len(m.holes))
		for i := range m.holes {
			m.spans[i] = m.holes[i].Span
		}
	}
	m.cursor = -1
	if len(m.spans) > 0 {
		m.cursor = holes.NextIndex(m.spans, m.pos)
		m.pos = m.spans[m.cursor].Start
	}
}

func (m *BrowseModel) step(pick func([]source.Span, source.Position) int) {
	i := pick(m.spans, m.pos)
	if i < 0 {
		return
	}
	m.cursor = i
	m.pos = m.spans[i].Start
}

// Selected returns the hole under the cursor.
func (m *BrowseModel) Selected() (holes.Hole, bool) {
	if m.cursor < 0 || m.cursor >= len(m.holes) {
		return holes.Hole{}, false
	}
	return m.holes[m.cursor], true
}

func (m *BrowseModel) View() string {
	var b strings.Builder
	header := m.path
	if m.loading {
		header = m.spinner.View() + " checking " + header
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	switch {
	case m.known:
		b.WriteString(fmt.Sprintf("Holes remaining in file: %d\n", len(m.holes)))
	case !m.loading:
		b.WriteString(dimStyle.Render("file is not part of the checked library") + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Failed to run the proof checker: "+m.err.Error()) + "\n")
	}
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n")

	listWidth := m.width * 2 / 5
	if listWidth < 24 {
		listWidth = 24
	}
	goalWidth := m.width - listWidth - 6
	if goalWidth < 24 {
		goalWidth = 24
	}
	left := paneStyle.Width(listWidth).Render(m.listView(listWidth - 2))
	right := paneStyle.Width(goalWidth).Render(m.goalView(goalWidth - 2))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("n/j next · p/k previous · r recheck · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *BrowseModel) listView(width int) string {
	if len(m.holes) == 0 {
		return dimStyle.Render("no holes")
	}
	var b strings.Builder
	for i, h := range m.holes {
		line := fmt.Sprintf("%s  %s", h.Span.Start.Human(), h.Node.Goal.Concl)
		line = truncate(line, width-2)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		if i < len(m.holes)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *BrowseModel) goalView(width int) string {
	if !m.known {
		return dimStyle.Render("no proof context here")
	}
	match, ok := index.Resolve(m.lib, m.src, m.pos)
	if !ok {
		return dimStyle.Render("no proof context here")
	}
	return RenderNode(match.Object, match.Node, width)
}

// RenderNode formats a node the way the proof panel shows it: visible
// hypotheses, the conclusion, then the extract or "??".
func RenderNode(obj *proof.Object, node *proof.ProofNode, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(truncate(obj.Name, width)))
	b.WriteString("\n")
	for i, hyp := range node.Goal.Hyps {
		if hyp.Hidden {
			continue
		}
		b.WriteString(truncate(fmt.Sprintf("%d. %s : %s", i+1, hyp.Var, hyp.Ty), width))
		b.WriteString("\n")
	}
	b.WriteString(truncate("⊢ "+string(node.Goal.Concl), width))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(truncate("extract: "+node.Extract.Text(), width)))
	if node.Conflict {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(conflictWarning))
	}
	return b.String()
}
