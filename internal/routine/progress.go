package routine

import "fmt"

// Position locates the user within a routine.
type Position struct {
	ExerciseIndex int
	StepIndex     int
	SetCount      int
}

func (p Position) String() string {
	return fmt.Sprintf("exercise=%d step=%d set=%d", p.ExerciseIndex, p.StepIndex, p.SetCount)
}

// Advancement classifies what a call to Advance did.
type Advancement int

const (
	// StepAdvanced moved to the next step of the same set.
	StepAdvanced Advancement = iota
	// SetAdvanced finished a set and restarted the steps of the same exercise.
	SetAdvanced
	// ExerciseAdvanced finished the last set and moved to the next exercise.
	// The caller must load the new exercise's steps.
	ExerciseAdvanced
	// RoutineCompleted finished the last set of the last exercise.
	RoutineCompleted
)

func (a Advancement) String() string {
	switch a {
	case StepAdvanced:
		return "step"
	case SetAdvanced:
		return "set"
	case ExerciseAdvanced:
		return "exercise"
	case RoutineCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Progress is the result of Advance.
type Progress struct {
	Position Position
	Kind     Advancement
}

// Advance computes the position after the current step has been matched.
//
// It never mutates its inputs. stepCount is the number of pose steps of the
// current exercise, exerciseCount the number of exercises in the routine.
// On RoutineCompleted the returned position keeps the final exercise index
// with SetCount at maxSets.
func Advance(pos Position, stepCount, exerciseCount, maxSets int) Progress {
	if pos.StepIndex+1 < stepCount {
		pos.StepIndex++
		return Progress{Position: pos, Kind: StepAdvanced}
	}

	pos.StepIndex = 0
	pos.SetCount = min(pos.SetCount+1, maxSets)

	if pos.SetCount < maxSets {
		return Progress{Position: pos, Kind: SetAdvanced}
	}

	if pos.ExerciseIndex+1 < exerciseCount {
		pos.ExerciseIndex++
		pos.SetCount = 0
		return Progress{Position: pos, Kind: ExerciseAdvanced}
	}

	return Progress{Position: pos, Kind: RoutineCompleted}
}
