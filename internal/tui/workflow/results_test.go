package workflow

import (
	"testing"
	"time"

	"github.com/alkime/stretch/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsScreen_View(t *testing.T) {
	t.Run("lists exercises with sets", func(t *testing.T) {
		snap := waitingSnapshot()
		snap.Completed = true
		snap.Exercises = []session.ExerciseProgress{
			{Name: "목 스트레칭", Sets: 3},
			{Name: "어깨 돌리기", Sets: 3},
		}

		r := NewResults()
		r, _ = r.Update(SnapshotMsg{Snapshot: snap})
		v := r.View()

		assert.Contains(t, v, resultsTitle)
		assert.Contains(t, v, "routine 7")
		assert.Contains(t, v, "1. 목 스트레칭")
		assert.Contains(t, v, "2. 어깨 돌리기")
		assert.Contains(t, v, "3/3 sets")
		assert.NotContains(t, v, noResults)
	})

	t.Run("empty routine", func(t *testing.T) {
		v := NewResults().View()
		assert.Contains(t, v, noResults)
	})
}

func TestResultsScreen_Finish(t *testing.T) {
	tm := teatest.NewTestModel(t, NewResults(), teatest.WithInitialTermSize(80, 24))
	defaultChecker().checkString(t, tm, resultsTitle)

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	// FinishedMsg is handled by the root model; here it only has to be emitted.
	r := NewResults()
	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, FinishedMsg{}, cmd())

	require.NoError(t, tm.Quit())
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}
