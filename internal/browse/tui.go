package browse

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/feedtrack/internal/tracker"
)

// ViewMode represents the current view mode
type ViewMode int

// View modes for the browser
const (
	ListViewMode ViewMode = iota
	DetailViewMode
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12")).
			Bold(true)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Model is the Bubble Tea model for the browser
type Model struct {
	records  []tracker.Record
	cursor   int
	viewMode ViewMode
	width    int
	height   int
}

// NewModel creates a browser model
func NewModel(records []tracker.Record) Model {
	return Model{
		records:  records,
		viewMode: ListViewMode,
	}
}

// Cursor returns the index of the highlighted record
func (m Model) Cursor() int {
	return m.cursor
}

// Mode returns the active view mode
func (m Model) Mode() ViewMode {
	return m.viewMode
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.viewMode {
		case ListViewMode:
			return m.updateListView(msg)
		case DetailViewMode:
			return m.updateDetailView(msg)
		}
	}

	return m, nil
}

func (m Model) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}

	case "enter":
		if len(m.records) > 0 {
			m.viewMode = DetailViewMode
		}
	}

	return m, nil
}

func (m Model) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace":
		m.viewMode = ListViewMode
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	if m.viewMode == DetailViewMode {
		return m.renderDetailView()
	}
	return m.renderListView()
}

func (m Model) renderListView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Tracked feeds (%d)", len(m.records))))
	b.WriteString("\n\n")

	visibleStart, visibleEnd := m.visibleRange()
	for i := visibleStart; i < visibleEnd; i++ {
		line := FormatListItem(i, m.records[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ or j/k: navigate • enter: details • q: quit"))

	return b.String()
}

// visibleRange keeps the cursor roughly centered when the list is taller than the window
func (m Model) visibleRange() (int, int) {
	start, end := 0, len(m.records)
	if m.height <= 0 {
		return start, end
	}

	maxVisible := m.height - 6 // header, footer and padding
	if maxVisible <= 0 || maxVisible >= len(m.records) {
		return start, end
	}

	start = max(m.cursor-maxVisible/2, 0)
	end = start + maxVisible
	if end > len(m.records) {
		end = len(m.records)
		start = max(end-maxVisible, 0)
	}
	return start, end
}

func (m Model) renderDetailView() string {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return "No feed selected"
	}

	var b strings.Builder
	b.WriteString(FormatDetail(m.cursor, m.records[m.cursor]))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("esc: back to list • q: quit"))

	return b.String()
}

// Run starts the Bubble Tea program
func Run(records []tracker.Record) error {
	if len(records) == 0 {
		fmt.Println("There is no feed on the list")
		return nil
	}

	p := tea.NewProgram(NewModel(records), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
