package workflow

import (
	"github.com/alkime/stretch/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// SnapshotMsg carries the latest session state.
type SnapshotMsg struct {
	Snapshot session.Snapshot
}

// FeedClosedMsg is sent once the snapshot subscription has ended.
type FeedClosedMsg struct{}

// NavigateMsg is sent when the session asks to move to another view.
type NavigateMsg struct {
	Route session.Route
}

// FinishedMsg is sent when the user leaves the results screen.
type FinishedMsg struct{}

// WaitForSnapshot blocks on the next snapshot. Re-issue it after every
// SnapshotMsg to keep the feed flowing.
func WaitForSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return FeedClosedMsg{}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// WaitForNavigation blocks until the session emits a route.
func WaitForNavigation(ch <-chan session.Route) tea.Cmd {
	return func() tea.Msg {
		route, ok := <-ch
		if !ok {
			return nil
		}
		return NavigateMsg{Route: route}
	}
}
