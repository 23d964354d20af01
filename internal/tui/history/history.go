package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wrkbench/internal/storage"
	"wrkbench/internal/tui/result"
	"wrkbench/internal/tui/styles"
)

// Lister is the part of the history store the browser needs.
type Lister interface {
	List() ([]storage.HistoryItem, error)
}

type Model struct {
	Store Lister
	Table table.Model
	Items []storage.HistoryItem
	Err   error

	// Selected is non-nil while the detail view is open.
	Selected *storage.HistoryItem

	Width  int
	Height int
}

func NewModel(store Lister) Model {
	columns := []table.Column{
		{Title: "Started", Width: 20},
		{Title: "Status", Width: 10},
		{Title: "Targets", Width: 30},
		{Title: "Endpoints", Width: 9},
		{Title: "Duration", Width: 10},
		{Title: "wrk", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := Model{
		Store: store,
		Table: t,
	}
	m.Refresh()
	return m
}

// Row renders one run as table cells.
func Row(item storage.HistoryItem) table.Row {
	names := make([]string, 0, len(item.Targets))
	for _, t := range item.Targets {
		names = append(names, t.Name)
	}
	return table.Row{
		item.Timestamp.Local().Format("2006-01-02 15:04:05"),
		item.Status,
		strings.Join(names, ","),
		fmt.Sprintf("%d", len(item.Endpoints)),
		item.Duration().Round(time.Second).String(),
		fmt.Sprintf("-t%d -c%d -d%s", item.Config.Threads, item.Config.Connections, item.Config.Duration),
	}
}

func (m *Model) Refresh() {
	items, err := m.Store.List()
	m.Items, m.Err = items, err

	rows := make([]table.Row, len(items))
	for i, item := range items {
		rows[i] = Row(item)
	}
	m.Table.SetRows(rows)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Table.SetWidth(msg.Width - 4)
		if h := msg.Height - 6; h > 3 {
			m.Table.SetHeight(h)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.Selected != nil {
				m.Selected = nil
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			if i := m.Table.Cursor(); i >= 0 && i < len(m.Items) {
				item := m.Items[i]
				m.Selected = &item
			}
			return m, nil
		case "r":
			m.Refresh()
			return m, nil
		}
	}

	if m.Selected != nil {
		return m, nil
	}
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

// Detail renders one run in full.
func Detail(item storage.HistoryItem) string {
	s := strings.Builder{}
	s.WriteString(styles.Title.Render("Run " + item.ID))
	s.WriteString("\n\n")
	fmt.Fprintf(&s, "%s %s\n", styles.Subtle.Render("Status   :"), styles.Status(item.Status))
	fmt.Fprintf(&s, "%s %s (%s)\n", styles.Subtle.Render("Started  :"), item.Timestamp.Local().Format(time.RFC3339), item.Duration().Round(time.Second))
	fmt.Fprintf(&s, "%s %s\n", styles.Subtle.Render("Endpoints:"), strings.Join(item.Endpoints, " "))
	fmt.Fprintf(&s, "%s %s\n\n", styles.Subtle.Render("Output   :"), item.OutputDir)
	if len(item.Summaries) > 0 {
		s.WriteString(result.RenderSummaries(item.Summaries))
		s.WriteString("\n")
	}
	for _, e := range item.Errors {
		s.WriteString(styles.Error.Render("✗ " + e))
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) View() string {
	if m.Err != nil {
		return styles.Error.Render(fmt.Sprintf("could not read history: %v", m.Err))
	}
	if m.Selected != nil {
		return Detail(*m.Selected) + "\n" + styles.RenderKey("esc", "back")
	}
	if len(m.Items) == 0 {
		return styles.Subtle.Render("No runs recorded yet.")
	}
	return styles.Box.Render(m.Table.View()) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.RenderKey("enter", "details"), "  ",
			styles.RenderKey("r", "refresh"), "  ",
			styles.RenderKey("q", "quit"),
		)
}
