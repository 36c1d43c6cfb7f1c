package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alkime/stretch/internal/backend"
	"github.com/alkime/stretch/internal/metrics"
	"github.com/alkime/stretch/internal/pose"
	"github.com/alkime/stretch/internal/routine"
	"github.com/alkime/stretch/internal/speech"
)

// Display placeholders.
const (
	PlaceholderExerciseName = "로딩 중..."
	PlaceholderDescription  = "포즈 설명을 불러오는 중입니다..."
	MissingExerciseName     = "운동 이름 없음"
	MissingDescription      = "포즈 설명 없음"
)

const (
	DefaultMaxSets          = 3
	DefaultPoseWaitTime     = 15 * time.Second
	DefaultNextStepWaitTime = 500 * time.Millisecond
	DefaultDescriptionDelay = 400 * time.Millisecond
	DefaultCompletionDelay  = 3 * time.Second

	eventBuffer  = 16
	sampleBuffer = 8
)

// Cues are the fixed utterances of a session.
type Cues struct {
	Match           string
	Mismatch        string
	NotRecognized   string
	MissingMetadata string
	NetworkError    string
}

// DefaultCues returns the Korean cue set.
func DefaultCues() Cues {
	return Cues{
		Match:           "정답입니다",
		Mismatch:        "자세를 다시 한 번 확인해 주세요",
		NotRecognized:   "자세가 인식되지 않았어요. 카메라 앞에 전신이 보이도록 서 주세요",
		MissingMetadata: "운동 정보를 찾을 수 없어요. 잠시 후 다시 시도해 주세요",
		NetworkError:    "서버와 연결이 원활하지 않아요. 다시 시도할게요",
	}
}

// Config holds the timing and routine parameters of a session.
type Config struct {
	RoutineID string

	PoseWaitTime        time.Duration
	NextStepWaitTime    time.Duration
	DescriptionDebounce time.Duration
	CompletionDelay     time.Duration
	// RetryCooldown pauses after a negative verdict's utterance before
	// waiting again. Zero disables it.
	RetryCooldown time.Duration
	MaxSets       int

	Cues Cues
}

// DefaultConfig returns a config with the standard timings.
func DefaultConfig(routineID string) Config {
	return Config{
		RoutineID:           routineID,
		PoseWaitTime:        DefaultPoseWaitTime,
		NextStepWaitTime:    DefaultNextStepWaitTime,
		DescriptionDebounce: DefaultDescriptionDelay,
		CompletionDelay:     DefaultCompletionDelay,
		MaxSets:             DefaultMaxSets,
		Cues:                DefaultCues(),
	}
}

// Validate returns an error if the config cannot drive a session.
func (c Config) Validate() error {
	var errs []error

	if c.RoutineID == "" {
		errs = append(errs, errors.New("routine id is required"))
	}
	if c.PoseWaitTime <= 0 {
		errs = append(errs, errors.New("pose wait time must be positive"))
	}
	if c.NextStepWaitTime < 0 || c.DescriptionDebounce < 0 || c.CompletionDelay < 0 || c.RetryCooldown < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if c.MaxSets < 1 {
		errs = append(errs, errors.New("max sets must be at least 1"))
	}

	return errors.Join(errs...)
}

// Loader fetches routine data.
type Loader interface {
	Exercises(ctx context.Context, routineID string) ([]routine.Exercise, error)
	PoseSteps(ctx context.Context, exerciseID int) ([]routine.PoseStep, error)
}

// Comparer evaluates a pose snapshot against a step.
type Comparer interface {
	Compare(ctx context.Context, keypoints pose.Keypoints, exerciseID, stepNumber int) (backend.Verdict, error)
}

// Speaker plays utterances one at a time.
type Speaker interface {
	Enqueue(ctx context.Context, text string) speech.Outcome
	Stop()
}

// Deps are the collaborators of a Controller. Loader and Comparer are
// required; the rest have defaults.
type Deps struct {
	Loader   Loader
	Comparer Comparer
	Speaker  Speaker
	Clock    Clock
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

type silentSpeaker struct{}

func (silentSpeaker) Enqueue(context.Context, string) speech.Outcome { return speech.OutcomeSkipped }
func (silentSpeaker) Stop()                                          {}
