package session

// ExerciseProgress is one row of the results view.
type ExerciseProgress struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
}

// Snapshot is an immutable copy of the observable session state.
type Snapshot struct {
	SessionID     string             `json:"session_id"`
	RoutineID     string             `json:"routine_id"`
	Phase         Phase              `json:"phase"`
	ExerciseName  string             `json:"exercise_name"`
	ExerciseIndex int                `json:"exercise_index"`
	ExerciseCount int                `json:"exercise_count"`
	StepIndex     int                `json:"step_index"`
	StepCount     int                `json:"step_count"`
	StepNumber    int                `json:"step_number"`
	SetCount      int                `json:"set_count"`
	MaxSets       int                `json:"max_sets"`
	Description   string             `json:"description"`
	Speaking      bool               `json:"speaking"`
	Feedback      string             `json:"feedback,omitempty"`
	LoadError     string             `json:"load_error,omitempty"`
	Exercises     []ExerciseProgress `json:"exercises,omitempty"`
	Completed     bool               `json:"completed"`
	Closed        bool               `json:"closed"`
}

// SetDots returns the number of filled set-progress dots.
func (s Snapshot) SetDots() int {
	return min(s.SetCount, s.MaxSets)
}
