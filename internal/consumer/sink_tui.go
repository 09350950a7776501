package consumer

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/novafacing/catapult/internal/wire"
)

// TUISink renders the decoded event stream as a scrolling, colorized table
// with running per-kind counts, selected with `--sink=tui` on
// catapult-consumer. Analogous to galago's cmd/galago colorized trace
// output, but built as a Bubble Tea program instead of raw ANSI writes
// (SPEC_FULL §3).
type TUISink struct {
	mu      sync.Mutex
	program *tea.Program
	events  chan tea.Msg
}

type tuiEventMsg jsonEvent

type tuiModel struct {
	tbl    table.Model
	counts map[string]int
	rows   int
}

const tuiMaxRows = 500

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Kind", Width: 14},
		{Title: "PC", Width: 18},
		{Title: "Detail", Width: 50},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(false), table.WithHeight(30))

	style := table.DefaultStyles()
	style.Header = style.Header.Bold(true).Foreground(lipgloss.Color("86"))
	style.Selected = style.Selected.Foreground(lipgloss.Color("229"))
	t.SetStyles(style)

	return tuiModel{tbl: t, counts: make(map[string]int)}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tuiEventMsg:
		m.counts[msg.Kind]++
		rows := m.tbl.Rows()
		rows = append(rows, table.Row{msg.Kind, renderPC(msg), renderDetail(msg)})
		if len(rows) > tuiMaxRows {
			rows = rows[len(rows)-tuiMaxRows:]
		}
		m.tbl.SetRows(rows)
		m.rows++
	}
	return m, nil
}

func (m tuiModel) View() string {
	title := fmt.Sprintf("catapult consumer — %d events", m.rows)
	for _, k := range []string{"pc", "instruction", "memory_access", "syscall", "load"} {
		if n := m.counts[k]; n > 0 {
			title += fmt.Sprintf("  %s=%d", k, n)
		}
	}
	header := lipgloss.NewStyle().Bold(true).Render(title)
	return header + "\n" + m.tbl.View() + "\n(q to quit)\n"
}

func renderPC(e tuiEventMsg) string {
	if e.PC != nil {
		return fmt.Sprintf("%#x", *e.PC)
	}
	return ""
}

func renderDetail(e tuiEventMsg) string {
	switch e.Kind {
	case "syscall":
		return fmt.Sprintf("num=%d rv=%d", deref(e.Num), deref(e.RV))
	case "memory_access":
		write := e.IsWrite != nil && *e.IsWrite
		return fmt.Sprintf("addr=%#x write=%v", deref(e.Addr), write)
	case "instruction":
		return e.Opcode
	case "load":
		return fmt.Sprintf("min=%#x max=%#x entry=%#x", deref(e.Min), deref(e.Max), deref(e.Entry))
	default:
		return ""
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NewTUISink starts the Bubble Tea program in the background and returns a
// sink that feeds it decoded events.
func NewTUISink() *TUISink {
	s := &TUISink{events: make(chan tea.Msg, 1024)}
	s.program = tea.NewProgram(newTUIModel())

	go func() {
		for msg := range s.events {
			s.program.Send(msg)
		}
	}()

	go func() {
		_, _ = s.program.Run()
	}()

	return s
}

func (s *TUISink) Handle(e wire.Event) error {
	s.events <- tuiEventMsg(toJSONEvent(e))
	return nil
}

func (s *TUISink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.events)
	s.program.Quit()
	return nil
}
