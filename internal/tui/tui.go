// Package tui is the terminal front-end of a stretching session.
package tui

import (
	"strings"

	"github.com/alkime/stretch/internal/session"
	"github.com/alkime/stretch/internal/tui/components/phases"
	"github.com/alkime/stretch/internal/tui/style"
	"github.com/alkime/stretch/internal/tui/workflow"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const snapshotBuffer = 4

// Session is the part of the session controller the TUI drives.
type Session interface {
	Snapshot() session.Snapshot
	Subscribe(buf int) (<-chan session.Snapshot, func())
	Navigation() <-chan session.Route
	Close()
}

type model struct {
	sess        Session
	keys        workflow.GlobalKeyMap
	phases      phases.Model
	snapshots   <-chan session.Snapshot
	unsubscribe func()
	last        session.Snapshot
}

// New creates the root model. The session is closed when the user quits.
func New(sess Session) tea.Model {
	snapshots, unsubscribe := sess.Subscribe(snapshotBuffer)
	initial := sess.Snapshot()

	return &model{
		sess: sess,
		keys: workflow.DefaultGlobalKeyMap(),
		phases: phases.New([]phases.Phase{
			phases.NewPhase("Session", workflow.NewSession(initial)),
			phases.NewPhase("Results", workflow.NewResults()),
		}),
		snapshots:   snapshots,
		unsubscribe: unsubscribe,
		last:        initial,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.phases.Init(),
		workflow.WaitForSnapshot(m.snapshots),
		workflow.WaitForNavigation(m.sess.Navigation()),
	)
}

func (m *model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMsg := teaMsg.(type) {
	case tea.KeyMsg:
		if key.Matches(typedMsg, m.keys.ForceQuit) || key.Matches(typedMsg, m.keys.Quit) {
			return m, m.quit()
		}

	case workflow.SnapshotMsg:
		m.last = typedMsg.Snapshot
		cmd := m.delegate(typedMsg)
		return m, tea.Batch(cmd, workflow.WaitForSnapshot(m.snapshots))

	case workflow.FeedClosedMsg:
		return m, nil

	case workflow.NavigateMsg:
		if typedMsg.Route != session.RouteRecord || m.phases.Last() {
			return m, nil
		}
		last := m.last
		return m, tea.Sequence(phases.NextPhaseCmd, func() tea.Msg {
			return workflow.SnapshotMsg{Snapshot: last}
		})

	case workflow.FinishedMsg:
		return m, m.quit()
	}

	return m, m.delegate(teaMsg)
}

func (m *model) delegate(teaMsg tea.Msg) tea.Cmd {
	updated, cmd := m.phases.Update(teaMsg)
	m.phases = updated.(phases.Model) //nolint:forcetypeassert // phases.Model always returns phases.Model

	return cmd
}

func (m *model) quit() tea.Cmd {
	m.unsubscribe()
	m.sess.Close()

	return tea.Quit
}

func (m *model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Subtitle.Render("Stretch · " + m.phases.CurrentPhaseName()))
	sb.WriteString("\n\n")
	sb.WriteString(m.phases.View())

	return sb.String()
}
