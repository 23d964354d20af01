package prompt

import (
	"errors"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wrkbench/internal/orchestrator"
	"wrkbench/internal/tui/styles"
)

var ErrCancelled = errors.New("prompt cancelled")

// Result is what the form produced.
type Result struct {
	Targets []orchestrator.Target
	Vars    map[string]string
}

type Field struct {
	Label string
	Name  string // target name, or var name
	IsVar bool
	Input textinput.Model
}

// Model asks for one base URL per target name and for each var. Empty URLs
// skip the target.
type Model struct {
	Fields []Field
	Focus  int

	Submitted bool
	Cancelled bool
	Err       string

	Width  int
	Height int
}

// NewModel builds the form. urls pre-fills known base URLs by target name.
func NewModel(names []string, urls map[string]string, vars map[string]string) Model {
	m := Model{}

	for _, name := range names {
		t := textinput.New()
		t.Placeholder = "http://localhost:8000 (blank to skip)"
		t.SetValue(urls[name])
		t.Width = 50
		m.Fields = append(m.Fields, Field{Label: name + " base URL", Name: name, Input: t})
	}

	for _, key := range sortedKeys(vars) {
		t := textinput.New()
		t.SetValue(vars[key])
		t.Width = 10
		m.Fields = append(m.Fields, Field{Label: key, Name: key, IsVar: true, Input: t})
	}

	m.setFocus(0)
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) setFocus(i int) {
	if len(m.Fields) == 0 {
		return
	}
	if i >= len(m.Fields) {
		i = 0
	} else if i < 0 {
		i = len(m.Fields) - 1
	}
	m.Focus = i

	for j := range m.Fields {
		if j == m.Focus {
			m.Fields[j].Input.Focus()
			m.Fields[j].Input.PromptStyle = styles.Active
			m.Fields[j].Input.TextStyle = styles.Active
		} else {
			m.Fields[j].Input.Blur()
			m.Fields[j].Input.PromptStyle = lipgloss.NewStyle()
			m.Fields[j].Input.TextStyle = lipgloss.NewStyle()
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Cancelled = true
			return m, tea.Quit

		case "ctrl+s":
			return m.submit()

		case "enter":
			if m.Focus == len(m.Fields)-1 {
				return m.submit()
			}
			m.setFocus(m.Focus + 1)
			return m, nil

		case "tab", "down":
			m.setFocus(m.Focus + 1)
			return m, nil

		case "shift+tab", "up":
			m.setFocus(m.Focus - 1)
			return m, nil
		}
	}

	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.Width = ws.Width
		m.Height = ws.Height
	}

	cmds := make([]tea.Cmd, len(m.Fields))
	for i := range m.Fields {
		m.Fields[i].Input, cmds[i] = m.Fields[i].Input.Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if len(m.Result().Targets) == 0 {
		m.Err = "enter at least one base URL"
		return m, nil
	}
	m.Submitted = true
	return m, tea.Quit
}

// Result reads the form state.
func (m Model) Result() Result {
	r := Result{Vars: map[string]string{}}
	for _, f := range m.Fields {
		v := strings.TrimSpace(f.Input.Value())
		if f.IsVar {
			r.Vars[f.Name] = v
			continue
		}
		if v != "" {
			r.Targets = append(r.Targets, orchestrator.Target{Name: f.Name, BaseURL: v})
		}
	}
	return r
}

func (m Model) View() string {
	s := strings.Builder{}

	s.WriteString(styles.Title.Render("Benchmark targets"))
	s.WriteString("\n\n")

	for i := range m.Fields {
		s.WriteString(styles.Subtle.Render(m.Fields[i].Label))
		s.WriteString("\n")
		s.WriteString(m.Fields[i].Input.View())
		s.WriteString("\n\n")
	}

	if m.Err != "" {
		s.WriteString(styles.Error.Render(m.Err))
		s.WriteString("\n")
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		styles.RenderKey("enter", "next / start"), "  ",
		styles.RenderKey("ctrl+s", "start"), "  ",
		styles.RenderKey("esc", "cancel"),
	))

	return styles.Box.Render(s.String())
}

// Run shows the form and blocks until it is submitted or cancelled.
func Run(names []string, urls map[string]string, vars map[string]string) (Result, error) {
	final, err := tea.NewProgram(NewModel(names, urls, vars)).Run()
	if err != nil {
		return Result{}, err
	}
	m := final.(Model)
	if !m.Submitted {
		return Result{}, ErrCancelled
	}
	return m.Result(), nil
}

func sortedKeys(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
