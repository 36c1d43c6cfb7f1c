package workflow

import (
	"bytes"
	"testing"
	"time"

	"github.com/alkime/stretch/internal/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// outputChecker provides helpers for testing teatest output.
type outputChecker struct {
	intervl, timeout time.Duration
}

func defaultChecker() outputChecker {
	return outputChecker{
		intervl: 50 * time.Millisecond,
		timeout: 3 * time.Second,
	}
}

func (o outputChecker) check(t *testing.T, tm *teatest.TestModel, checkFunc func(buf []byte) bool) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), checkFunc,
		teatest.WithCheckInterval(o.intervl),
		teatest.WithDuration(o.timeout))
}

func (o outputChecker) checkString(t *testing.T, tm *teatest.TestModel, substr string) {
	t.Helper()
	o.check(t, tm, func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	})
}

func waitingSnapshot() session.Snapshot {
	return session.Snapshot{
		SessionID:     "s-1",
		RoutineID:     "7",
		Phase:         session.PhaseWaiting,
		ExerciseName:  "목 스트레칭",
		ExerciseIndex: 0,
		ExerciseCount: 2,
		StepIndex:     1,
		StepCount:     3,
		StepNumber:    2,
		SetCount:      1,
		MaxSets:       3,
		Description:   "고개를 천천히 오른쪽으로 기울이세요",
		Exercises: []session.ExerciseProgress{
			{Name: "목 스트레칭", Sets: 1},
			{Name: "어깨 돌리기", Sets: 0},
		},
	}
}
