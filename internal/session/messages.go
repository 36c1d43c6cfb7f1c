package session

import (
	"time"

	"github.com/alkime/stretch/internal/backend"
	"github.com/alkime/stretch/internal/routine"
)

// message is a completion posted back to the event loop. Each carries the
// epoch it was started in; the loop drops stale ones.
type message interface {
	stamp() uint64
}

type stamped uint64

func (s stamped) stamp() uint64 { return uint64(s) }

type loadedMsg struct {
	stamped
	// exercises is nil when only the steps were requested.
	exercises []routine.Exercise
	steps     []routine.PoseStep
}

type loadFailedMsg struct {
	stamped
	// exercises is set when only the step load failed.
	exercises []routine.Exercise
	err       error
}

type descriptionDueMsg struct{ stamped }

type waitExpiredMsg struct{ stamped }

// afterSpeech says what to do once a feedback utterance ends.
type afterSpeech int

const (
	thenWait afterSpeech = iota
	thenCooldown
	thenMove
)

type speechDoneMsg struct {
	stamped
	next afterSpeech
}

type verdictMsg struct {
	stamped
	verdict backend.Verdict
	err     error
	took    time.Duration
}

type cooldownDoneMsg struct{ stamped }

type moveDueMsg struct{ stamped }

type navigateMsg struct{ stamped }
