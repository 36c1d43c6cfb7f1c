// Package routine holds the workout data model and the pure progression
// function that walks a routine exercise by exercise, set by set, step by step.
package routine

// Exercise is one named activity within a routine.
type Exercise struct {
	ID          int
	Name        string
	Description string
	Repetition  int
	Order       int
}

// PoseStep is one target posture of an exercise. Number is the backend's
// step_number and is passed back verbatim when comparing poses; it is not
// assumed to be contiguous or 1-based.
type PoseStep struct {
	ID          int
	Number      int
	Description string
	// Template is the backend's opaque pose template. It is never inspected.
	Template   string
	ExerciseID int
}

// Routine is an ordered sequence of exercises. The order is the one the
// backend returned and is never renumbered.
type Routine struct {
	ID        string
	Exercises []Exercise
}

// Exercise returns the exercise at index i.
func (r Routine) Exercise(i int) (Exercise, bool) {
	if i < 0 || i >= len(r.Exercises) {
		return Exercise{}, false
	}

	return r.Exercises[i], true
}
