package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Status is where one file is in a multi-file check.
type Status uint8

const (
	StatusQueued Status = iota
	StatusChecking
	StatusDone
	StatusFailed
)

var statusLabels = [...]string{"queued", "checking", "done", "error"}

var statusStyles = [...]lipgloss.Style{
	dimStyle,
	selectedStyle,
	lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	errorStyle,
}

func (s Status) String() string {
	if int(s) < len(statusLabels) {
		return statusLabels[s]
	}
	return "queued"
}

func (s Status) finished() bool { return s == StatusDone || s == StatusFailed }

// Event moves File to Status. Summary is shown once the file is finished,
// e.g. "2 holes".
type Event struct {
	File    string
	Status  Status
	Summary string
}

type row struct {
	file    string
	status  Status
	summary string
}

// checkBoard lists the files of a check run with a spinner while events
// arrive and a bar for the finished fraction.
type checkBoard struct {
	title   string
	events  <-chan Event
	rows    []row
	byFile  map[string]int
	spin    spinner.Model
	bar     progress.Model
	width   int
	closed  bool
}

type eventMsg Event
type closedMsg struct{}

// NewProgressModel follows events for files until the channel is closed,
// then quits.
func NewProgressModel(title string, files []string, events <-chan Event) tea.Model {
	b := &checkBoard{
		title:  title,
		events: events,
		rows:   make([]row, len(files)),
		byFile: make(map[string]int, len(files)),
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(selectedStyle)),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:  80,
	}
	for i, f := range files {
		b.rows[i] = row{file: f}
		b.byFile[f] = i
	}
	b.bar.Width = b.width - 4
	return b
}

func (b *checkBoard) Init() tea.Cmd {
	return tea.Batch(b.spin.Tick, b.next())
}

// next waits for one event; a closed channel ends the run.
func (b *checkBoard) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-b.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (b *checkBoard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return b, tea.Batch(b.apply(Event(msg)), b.next())
	case closedMsg:
		b.closed = true
		return b, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return b, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			b.width = msg.Width
			b.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !b.closed {
			var cmd tea.Cmd
			b.spin, cmd = b.spin.Update(msg)
			return b, cmd
		}
	case progress.FrameMsg:
		m, cmd := b.bar.Update(msg)
		b.bar = m.(progress.Model)
		return b, cmd
	}
	return b, nil
}

func (b *checkBoard) apply(ev Event) tea.Cmd {
	i, ok := b.byFile[ev.File]
	if !ok {
		return nil
	}
	b.rows[i].status, b.rows[i].summary = ev.Status, ev.Summary
	return b.bar.SetPercent(b.fraction())
}

// fraction counts a running file as half done.
func (b *checkBoard) fraction() float64 {
	if len(b.rows) == 0 {
		return 1
	}
	var n float64
	for _, r := range b.rows {
		switch {
		case r.status.finished():
			n++
		case r.status == StatusChecking:
			n += 0.5
		}
	}
	return n / float64(len(b.rows))
}

func (b *checkBoard) counts() (finished, failed int) {
	for _, r := range b.rows {
		if r.status.finished() {
			finished++
		}
		if r.status == StatusFailed {
			failed++
		}
	}
	return finished, failed
}

func (b *checkBoard) View() string {
	if len(b.rows) == 0 {
		return ""
	}
	var sb strings.Builder
	mark := b.spin.View()
	if b.closed {
		mark = "✓"
	}
	sb.WriteString(titleStyle.Render(mark + " " + b.title))
	sb.WriteString("\n\n")

	nameWidth := max(b.width-16, 20)
	for _, r := range b.rows {
		label := statusStyles[r.status].Render(fmt.Sprintf("%-9s", r.status))
		fmt.Fprintf(&sb, "  %s %s", label, truncate(r.file, nameWidth))
		if r.summary != "" && r.status.finished() {
			sb.WriteString("  " + dimStyle.Render(r.summary))
		}
		sb.WriteByte('\n')
	}

	finished, failed := b.counts()
	sb.WriteByte('\n')
	if b.closed {
		sb.WriteString(b.bar.ViewAs(1))
	} else {
		sb.WriteString(b.bar.View())
	}
	footer := fmt.Sprintf(" %d/%d", finished, len(b.rows))
	if failed > 0 {
		footer += errorStyle.Render(fmt.Sprintf(", %d failed", failed))
	}
	sb.WriteString(footer)
	sb.WriteByte('\n')
	return sb.String()
}

// truncate cuts value to width display columns, marking the cut with "…".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width, "…")
}
