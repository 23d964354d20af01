package live

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wrkbench/internal/orchestrator"
	"wrkbench/internal/tui/components"
	"wrkbench/internal/tui/result"
	"wrkbench/internal/tui/styles"
)

// channelClosedMsg means the orchestrator goroutine finished.
type channelClosedMsg struct{}

type EventMsg orchestrator.Event

func waitForEvent(sub orchestrator.Events) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return channelClosedMsg{}
		}
		return EventMsg(ev)
	}
}

type completed struct {
	Target   string
	Endpoint string
	RPS      float64
	Err      error
}

// Model follows a run through its events and ends on the summary view.
type Model struct {
	Events orchestrator.Events
	Cancel context.CancelFunc

	Progress progress.Model
	Spinner  spinner.Model
	RpsLine  components.Sparkline

	Step    int
	Steps   int
	Current string
	Recent  []completed

	Outcome  *orchestrator.Outcome
	Err      error
	Stopping bool
	Done     bool

	Width  int
	Height int
}

const recentRows = 8

func NewModel(events orchestrator.Events, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Active

	return Model{
		Events:   events,
		Cancel:   cancel,
		Progress: progress.New(progress.WithDefaultGradient()),
		Spinner:  sp,
		RpsLine:  components.NewSparkline(40, "Requests/sec per endpoint", styles.Active),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, waitForEvent(m.Events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.Done {
				return m, tea.Quit
			}
			if !m.Stopping && m.Cancel != nil {
				m.Cancel()
			}
			m.Stopping = true
		}
		return m, nil

	case EventMsg:
		cmd := m.apply(orchestrator.Event(msg))
		return m, tea.Batch(cmd, waitForEvent(m.Events))

	case channelClosedMsg:
		m.Done = true
		if m.Stopping {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 4
		if w := msg.Width - 8; w > 10 {
			m.RpsLine.Width = w
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m *Model) apply(ev orchestrator.Event) tea.Cmd {
	m.Step, m.Steps = ev.Step, ev.Steps

	switch ev.Kind {
	case orchestrator.EventEndpointStarted:
		m.Current = fmt.Sprintf("%s %s", ev.Target, ev.URL)

	case orchestrator.EventEndpointDone:
		c := completed{Target: ev.Target, Endpoint: ev.Endpoint, Err: ev.Err}
		if ev.Record != nil && ev.Record.RequestsPerSec != nil {
			c.RPS = *ev.Record.RequestsPerSec
		}
		if ev.Err == nil {
			m.RpsLine.Add(c.RPS)
		}
		m.Recent = append(m.Recent, c)
		if len(m.Recent) > recentRows {
			m.Recent = m.Recent[len(m.Recent)-recentRows:]
		}

	case orchestrator.EventRunDone:
		m.Outcome = ev.Outcome
		m.Err = ev.Err
		m.Current = ""
	}

	if m.Steps == 0 {
		return nil
	}
	return m.Progress.SetPercent(float64(m.Step) / float64(m.Steps))
}

func (m Model) status() string {
	switch {
	case m.Outcome == nil:
		return "interrupted"
	case m.Outcome.Cancelled:
		return "cancelled"
	case m.Outcome.Completed():
		return "completed"
	default:
		return "partial"
	}
}

func (m Model) View() string {
	if m.Done {
		r := result.NewModel(nil, m.status())
		if m.Outcome != nil {
			r.Summaries = m.Outcome.Summaries
		}
		return r.View()
	}

	s := strings.Builder{}

	s.WriteString(styles.Title.Render(fmt.Sprintf("Benchmarking  %d/%d", m.Step, m.Steps)))
	s.WriteString("\n\n")

	if m.Current != "" {
		s.WriteString(m.Spinner.View() + " " + styles.Text.Render(m.Current))
		s.WriteString("\n\n")
	}

	var rows []string
	for _, c := range m.Recent {
		if c.Err != nil {
			rows = append(rows, styles.Error.Render(fmt.Sprintf("✗ %-10s %-28s %v", c.Target, c.Endpoint, c.Err)))
			continue
		}
		rows = append(rows, fmt.Sprintf("%s %-10s %-28s %s",
			styles.Success.Render("✓"), c.Target, c.Endpoint,
			styles.Value.Render(fmt.Sprintf("%.2f req/s", c.RPS))))
	}
	if len(rows) > 0 {
		s.WriteString(styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
		s.WriteString("\n\n")
	}

	s.WriteString(styles.Box.Render(m.RpsLine.View()))
	s.WriteString("\n\n")
	s.WriteString(m.Progress.View())
	s.WriteString("\n\n")

	if m.Stopping {
		s.WriteString(styles.Warn.Render("Stopping, waiting for the current run to exit..."))
	} else {
		s.WriteString(styles.RenderKey("q", "stop"))
	}

	return s.String()
}
