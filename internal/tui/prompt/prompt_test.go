package prompt

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrkbench/internal/orchestrator"
)

func TestModel_ResultSkipsBlankTargets(t *testing.T) {
	m := NewModel([]string{"django", "gin"}, map[string]string{"gin": "http://localhost:8080"}, map[string]string{"queries": "20"})
	require.Len(t, m.Fields, 3)

	r := m.Result()
	assert.Equal(t, []orchestrator.Target{{Name: "gin", BaseURL: "http://localhost:8080"}}, r.Targets)
	assert.Equal(t, map[string]string{"queries": "20"}, r.Vars)
}

func TestModel_FocusWraps(t *testing.T) {
	m := NewModel([]string{"a", "b"}, nil, nil)
	assert.Equal(t, 0, m.Focus)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, next.(Model).Focus)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, next.(Model).Focus)
}

func TestModel_SubmitNeedsATarget(t *testing.T) {
	m := NewModel([]string{"a"}, nil, nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(Model)
	assert.False(t, got.Submitted)
	assert.NotEmpty(t, got.Err)
	assert.Nil(t, cmd)

	got.Fields[0].Input.SetValue("http://localhost:9000")
	next, cmd = got.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, next.(Model).Submitted)
	assert.NotNil(t, cmd)
}

func TestModel_Cancel(t *testing.T) {
	m := NewModel([]string{"a"}, nil, nil)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(Model).Cancelled)
	assert.False(t, next.(Model).Submitted)
}
