package workflow

import (
	"fmt"
	"strings"

	"github.com/alkime/stretch/internal/session"
	"github.com/alkime/stretch/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	resultsTitle = "운동 기록"
	noResults    = "기록된 운동이 없습니다"
)

// resultsScreen lists the routine's exercises with the sets completed.
type resultsScreen struct {
	keys resultsKeyMap
	snap session.Snapshot
}

// NewResults creates the results ("record") screen.
func NewResults() tea.Model {
	return &resultsScreen{keys: defaultResultsKeyMap()}
}

func (r *resultsScreen) Init() tea.Cmd {
	return nil
}

func (r *resultsScreen) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMsg := teaMsg.(type) {
	case SnapshotMsg:
		r.snap = typedMsg.Snapshot
	case tea.KeyMsg:
		if key.Matches(typedMsg, r.keys.Finish) {
			return r, func() tea.Msg { return FinishedMsg{} }
		}
	}

	return r, nil
}

func (r *resultsScreen) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render(resultsTitle))
	if r.snap.RoutineID != "" {
		sb.WriteString(style.Muted.Render("  routine " + r.snap.RoutineID))
	}
	sb.WriteString("\n\n")

	if len(r.snap.Exercises) == 0 {
		sb.WriteString(style.Muted.Render(noResults))
		sb.WriteString("\n")
	}

	for i, ex := range r.snap.Exercises {
		sb.WriteString(style.Label.Render(fmt.Sprintf("%d. %s", i+1, ex.Name)))
		sb.WriteString("  ")
		sb.WriteString(renderDots(ex.Sets, r.snap.MaxSets))
		sb.WriteString(style.Muted.Render(fmt.Sprintf("  %d/%d sets", ex.Sets, r.snap.MaxSets)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(renderKeyHelp(r.keys.Finish, "\n"))
	sb.WriteString(renderGlobalKeyHelp())

	return sb.String()
}
