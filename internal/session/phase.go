package session

import "fmt"

// Phase is the state of the session machine. Exactly one is active.
type Phase int

const (
	// PhaseLoading waits for step data and the description debounce.
	PhaseLoading Phase = iota
	// PhaseDescription speaks the current step's description.
	PhaseDescription
	// PhaseWaiting collects pose samples until the wait timer expires.
	PhaseWaiting
	// PhaseFeedback evaluates the captured pose and speaks the result.
	PhaseFeedback
	// PhaseMoving pauses briefly after a match before advancing.
	PhaseMoving
	// PhaseComplete is terminal. Nothing leaves it.
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseDescription:
		return "description"
	case PhaseWaiting:
		return "waiting"
	case PhaseFeedback:
		return "feedback"
	case PhaseMoving:
		return "moving"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Route is a navigation target emitted by the controller.
type Route string

// RouteRecord is the results view shown after a completed routine.
const RouteRecord Route = "/record"
