package phases_test

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alkime/stretch/internal/tui/components/phases"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

type modelMock struct {
	t          *testing.T
	name       string
	updated    atomic.Bool
	initCalled atomic.Bool
}

func (m *modelMock) Init() tea.Cmd {
	m.initCalled.Store(true)
	return nil
}

func (m *modelMock) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(mockMsg); ok {
		m.t.Logf("modelMock %s got %#v", m.name, msg)
		m.updated.Store(true)
		if msg.triggerForward {
			return m, phases.NextPhaseCmd
		}
	}

	return m, nil
}

func (m *modelMock) View() string { return m.name }

type mockMsg struct {
	triggerForward bool
}

type outputChecker struct {
	intervl, timeout time.Duration
}

func (o outputChecker) Check(t *testing.T, tm *teatest.TestModel, check func(buf []byte) bool) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), check,
		teatest.WithCheckInterval(o.intervl),
		teatest.WithDuration(o.timeout))
}

func (o outputChecker) CheckString(t *testing.T, tm *teatest.TestModel, substr string) {
	t.Helper()
	o.Check(t, tm, func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	})
}
