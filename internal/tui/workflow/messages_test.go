package workflow

import (
	"testing"

	"github.com/alkime/stretch/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestWaitForSnapshot(t *testing.T) {
	ch := make(chan session.Snapshot, 1)
	ch <- session.Snapshot{Phase: session.PhaseWaiting}

	cmd := WaitForSnapshot(ch)
	assert.Equal(t, SnapshotMsg{Snapshot: session.Snapshot{Phase: session.PhaseWaiting}}, cmd())

	close(ch)
	assert.Equal(t, FeedClosedMsg{}, cmd())
}

func TestWaitForNavigation(t *testing.T) {
	ch := make(chan session.Route, 1)
	ch <- session.RouteRecord

	cmd := WaitForNavigation(ch)
	assert.Equal(t, NavigateMsg{Route: session.RouteRecord}, cmd())

	close(ch)
	assert.Nil(t, cmd())
}

func TestRenderDots(t *testing.T) {
	tests := []struct {
		filled, total int
		want          string
	}{
		{filled: 0, total: 3, want: "○○○"},
		{filled: 2, total: 3, want: "●●○"},
		{filled: 4, total: 3, want: "●●●"},
		{filled: -1, total: 2, want: "○○"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, renderDots(tt.filled, tt.total))
	}
}
