package backend

import (
	"encoding/json"

	"github.com/alkime/stretch/internal/pose"
	"github.com/alkime/stretch/internal/routine"
)

type exercisesResponse struct {
	Exercises []exerciseDTO `json:"exercises"`
}

type exerciseDTO struct {
	ExerciseID  int    `json:"exercise_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Repetition  int    `json:"repetition"`
	Order       int    `json:"order"`
}

func (d exerciseDTO) toExercise() routine.Exercise {
	return routine.Exercise{
		ID:          d.ExerciseID,
		Name:        d.Name,
		Description: d.Description,
		Repetition:  d.Repetition,
		Order:       d.Order,
	}
}

type poseStepDTO struct {
	ID              int             `json:"id"`
	StepNumber      int             `json:"step_number"`
	Keypoints       json.RawMessage `json:"keypoints"`
	PoseDescription string          `json:"pose_description"`
	Exercise        int             `json:"exercise"`
}

func (d poseStepDTO) toPoseStep() routine.PoseStep {
	return routine.PoseStep{
		ID:          d.ID,
		Number:      d.StepNumber,
		Description: d.PoseDescription,
		Template:    templateString(d.Keypoints),
		ExerciseID:  d.Exercise,
	}
}

type compareRequest struct {
	Keypoints pose.Keypoints `json:"keypoints"`
}

type compareResponse struct {
	Match        bool   `json:"match"`
	FeedbackText string `json:"feedback_text"`
	CKText       string `json:"ck_text"`
}

// templateString keeps the pose template opaque. Some deployments send it as
// a JSON-encoded string, others as a raw object.
func templateString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(raw)
}
