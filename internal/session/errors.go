package session

import "errors"

var (
	// ErrMissingLandmarks means the wait timer expired with no pose sample.
	ErrMissingLandmarks = errors.New("no pose landmarks captured")
	// ErrMissingExerciseMetadata means the current exercise or step has no id.
	ErrMissingExerciseMetadata = errors.New("exercise metadata missing")
	// ErrNetworkFailure wraps comparison call failures, timeouts included.
	ErrNetworkFailure = errors.New("pose comparison failed")
	// ErrDataLoad means routine or step data could not be loaded. It is not
	// retried.
	ErrDataLoad = errors.New("failed to load routine data")
	// ErrClosed is returned by PushSample after teardown.
	ErrClosed = errors.New("session closed")
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("session already running")
)
