// Package session drives a guided stretching routine. One event loop owns
// all session state; timers, speech, and backend calls run elsewhere and
// report back with epoch-stamped messages.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alkime/stretch/internal/metrics"
	"github.com/alkime/stretch/internal/pose"
	"github.com/alkime/stretch/internal/routine"
	"github.com/alkime/stretch/pkg/channels"
	"github.com/google/uuid"
)

// Controller runs one session.
type Controller struct {
	cfg     Config
	deps    Deps
	id      string
	logger  *slog.Logger
	metrics *metrics.Metrics

	events  chan message
	samples chan pose.Sample
	done    chan struct{}

	runCtx context.Context
	cancel context.CancelFunc

	closeOnce    sync.Once
	running      atomic.Bool
	completeOnce sync.Once
	completed    chan struct{}
	navigation   chan Route

	hub    *channels.Hub[Snapshot]
	snapMu sync.RWMutex
	snap   Snapshot

	// loop-owned state below
	epoch        uint64
	phase        Phase
	timer        Timer
	buffer       pose.SampleBuffer
	processing   bool
	speaking     bool
	exercises    []routine.Exercise
	steps        []routine.PoseStep
	pos          routine.Position
	exerciseName string
	description  string
	feedback     string
	loadErr      error
	lastDescKey  string
	finished     bool
}

// New creates a controller. Call Run to start it.
func New(cfg Config, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = realClock{}
	}
	if deps.Speaker == nil {
		deps.Speaker = silentSpeaker{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.MaxSets < 1 {
		cfg.MaxSets = DefaultMaxSets
	}

	id := uuid.NewString()
	runCtx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		cfg:          cfg,
		deps:         deps,
		id:           id,
		logger:       deps.Logger.With("component", "session", "session_id", id),
		metrics:      deps.Metrics,
		events:       make(chan message, eventBuffer),
		samples:      make(chan pose.Sample, sampleBuffer),
		done:         make(chan struct{}),
		runCtx:       runCtx,
		cancel:       cancel,
		completed:    make(chan struct{}),
		navigation:   make(chan Route, 1),
		hub:          channels.NewHub[Snapshot](),
		phase:        PhaseLoading,
		exerciseName: PlaceholderExerciseName,
		description:  PlaceholderDescription,
	}
	c.snap = c.buildSnapshot(false)
	c.hub.Publish(c.snap)

	return c
}

// ID returns the session id.
func (c *Controller) ID() string {
	return c.id
}

// Run runs the event loop until the routine completes and navigation is
// emitted, Close is called, or ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	if c.deps.Loader == nil || c.deps.Comparer == nil {
		c.Close()
		c.teardown()
		return errors.New("session requires a loader and a comparer")
	}

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	if c.Closed() {
		c.teardown()
		return ctx.Err()
	}

	c.logger.Info("session started", "routine_id", c.cfg.RoutineID)
	c.enter(PhaseLoading)
	c.loadRoutine()

	for {
		select {
		case <-c.done:
			c.teardown()
			if err := ctx.Err(); err != nil {
				return err
			}
			return nil

		case s := <-c.samples:
			c.handleSample(s)

		case m := <-c.events:
			if m.stamp() != c.epoch {
				c.logger.Debug("dropping stale message", "type", fmt.Sprintf("%T", m), "epoch", m.stamp(), "current", c.epoch)
				continue
			}

			c.handle(m)
			if c.finished {
				c.Close()
				c.teardown()
				return nil
			}
		}
	}
}

// PushSample hands a pose sample to the loop. It never blocks; samples are
// dropped when the loop is behind.
func (c *Controller) PushSample(s pose.Sample) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	if s.ReceivedAt.IsZero() {
		s.ReceivedAt = c.deps.Clock.Now()
	}

	if err := channels.SendNonBlock(c.samples, s); err != nil {
		c.metrics.ObserveSample(metrics.SampleDropped)
	}

	return nil
}

// Close tears the session down. It is idempotent and safe from any goroutine.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
	})
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Subscribe returns a channel of snapshots, starting with the current one.
// Slow readers skip intermediate snapshots. The channel closes after the
// final closed snapshot.
func (c *Controller) Subscribe(buf int) (<-chan Snapshot, func()) {
	return c.hub.SubscribeLatest(buf)
}

// Snapshot returns the latest published state.
func (c *Controller) Snapshot() Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()

	return c.snap
}

// Completed is closed once the routine completes.
func (c *Controller) Completed() <-chan struct{} {
	return c.completed
}

// Navigation receives RouteRecord CompletionDelay after completion.
func (c *Controller) Navigation() <-chan Route {
	return c.navigation
}

// post delivers m to the loop, or drops it after teardown.
func (c *Controller) post(m message) {
	select {
	case c.events <- m:
	case <-c.done:
	}
}

func (c *Controller) stamp() stamped {
	return stamped(c.epoch)
}

// schedule replaces the active timer.
func (c *Controller) schedule(d time.Duration, m message) {
	c.stopTimer()
	c.timer = c.deps.Clock.AfterFunc(d, func() { c.post(m) })
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// enter makes p the active phase and invalidates everything in flight.
func (c *Controller) enter(p Phase) {
	c.stopTimer()
	c.epoch++
	c.phase = p

	if p != PhaseWaiting {
		c.buffer.Reset()
	}

	c.metrics.ObservePhase(p.String())
	c.logger.Debug("phase entered", "phase", p.String(), "position", c.pos.String())
	c.publish()
}

func (c *Controller) handleSample(s pose.Sample) {
	if c.phase != PhaseWaiting || s.Empty() {
		c.metrics.ObserveSample(metrics.SampleDropped)
		return
	}

	c.buffer.Put(s)
	c.metrics.ObserveSample(metrics.SampleAccepted)
}

func (c *Controller) handle(m message) {
	switch m := m.(type) {
	case loadedMsg:
		c.onLoaded(m)
	case loadFailedMsg:
		c.onLoadFailed(m)
	case descriptionDueMsg:
		c.announce()
	case speechDoneMsg:
		c.onSpeechDone(m)
	case waitExpiredMsg:
		c.evaluate()
	case verdictMsg:
		c.onVerdict(m)
	case cooldownDoneMsg:
		c.enterWaiting()
	case moveDueMsg:
		c.advance()
	case navigateMsg:
		c.navigate()
	default:
		c.logger.Warn("unknown message", "type", fmt.Sprintf("%T", m))
	}
}

func (c *Controller) loadRoutine() {
	st := c.stamp()
	routineID := c.cfg.RoutineID
	exerciseIndex := c.pos.ExerciseIndex

	go func() {
		exercises, err := c.deps.Loader.Exercises(c.runCtx, routineID)
		if err == nil && len(exercises) == 0 {
			err = fmt.Errorf("routine %s has no exercises", routineID)
		}
		if err != nil {
			c.post(loadFailedMsg{stamped: st, err: err})
			return
		}

		if exerciseIndex >= len(exercises) {
			c.post(loadFailedMsg{stamped: st, err: fmt.Errorf("exercise index %d out of range", exerciseIndex)})
			return
		}

		steps, err := c.loadSteps(exercises[exerciseIndex])
		if err != nil {
			c.post(loadFailedMsg{stamped: st, exercises: exercises, err: err})
			return
		}

		c.post(loadedMsg{stamped: st, exercises: exercises, steps: steps})
	}()
}

func (c *Controller) loadExercise(ex routine.Exercise) {
	st := c.stamp()

	go func() {
		steps, err := c.loadSteps(ex)
		if err != nil {
			c.post(loadFailedMsg{stamped: st, err: err})
			return
		}

		c.post(loadedMsg{stamped: st, steps: steps})
	}()
}

func (c *Controller) loadSteps(ex routine.Exercise) ([]routine.PoseStep, error) {
	steps, err := c.deps.Loader.PoseSteps(c.runCtx, ex.ID)
	if err != nil {
		return nil, err
	}

	if len(steps) == 0 {
		return nil, fmt.Errorf("exercise %d has no pose steps", ex.ID)
	}

	return steps, nil
}

func (c *Controller) onLoaded(m loadedMsg) {
	if m.exercises != nil {
		c.exercises = m.exercises
	}
	c.steps = m.steps
	c.loadErr = nil

	ex := c.showExercise()

	c.logger.Info("exercise loaded",
		"exercise_id", ex.ID,
		"exercise", c.exerciseName,
		"steps", len(c.steps),
		"last_step_number", c.steps[len(c.steps)-1].Number,
	)

	c.loadStep()
}

// loadStep shows the current step and schedules its announcement.
func (c *Controller) loadStep() {
	step := c.steps[c.pos.StepIndex]
	c.description = step.Description
	if c.description == "" {
		c.description = MissingDescription
	}
	c.publish()

	c.schedule(c.cfg.DescriptionDebounce, descriptionDueMsg{stamped: c.stamp()})
}

// onLoadFailed leaves the session in loading with placeholder text. Loads
// are not retried.
func (c *Controller) onLoadFailed(m loadFailedMsg) {
	c.loadErr = fmt.Errorf("%w: %w", ErrDataLoad, m.err)
	if m.exercises != nil {
		c.exercises = m.exercises
	}

	if len(c.exercises) > 0 {
		c.showExercise()
	} else {
		c.exerciseName = MissingExerciseName
	}
	c.description = MissingDescription

	c.logger.Error("failed to load routine data", "error", c.loadErr)
	c.publish()
}

func (c *Controller) announce() {
	step := c.steps[c.pos.StepIndex]
	ex, _ := c.currentExercise()
	key := fmt.Sprintf("%d-%d-%s", c.pos.ExerciseIndex, step.Number, step.Description)

	c.enter(PhaseDescription)

	text := step.Description
	if key == c.lastDescKey {
		text = ""
	}
	c.lastDescKey = key

	c.logger.Debug("announcing step", "exercise_id", ex.ID, "step_number", step.Number, "repeat", text == "")
	c.speak(text, thenWait)
}

// speak plays text off the loop and reports back with a speechDoneMsg.
func (c *Controller) speak(text string, next afterSpeech) {
	st := c.stamp()
	c.speaking = text != ""
	c.publish()

	go func() {
		c.deps.Speaker.Enqueue(c.runCtx, text)
		c.post(speechDoneMsg{stamped: st, next: next})
	}()
}

func (c *Controller) onSpeechDone(m speechDoneMsg) {
	c.speaking = false

	switch m.next {
	case thenWait:
		c.enterWaiting()
	case thenCooldown:
		if c.cfg.RetryCooldown > 0 {
			c.publish()
			c.schedule(c.cfg.RetryCooldown, cooldownDoneMsg{stamped: c.stamp()})
			return
		}
		c.enterWaiting()
	case thenMove:
		c.enter(PhaseMoving)
		c.schedule(c.cfg.NextStepWaitTime, moveDueMsg{stamped: c.stamp()})
	}
}

// enterWaiting starts a fresh pose capture window.
func (c *Controller) enterWaiting() {
	c.enter(PhaseWaiting)
	c.buffer.Reset()
	c.processing = false
	c.schedule(c.cfg.PoseWaitTime, waitExpiredMsg{stamped: c.stamp()})
}

func (c *Controller) evaluate() {
	if c.processing {
		return
	}
	c.processing = true

	received := c.buffer.Received()
	sample, ok := c.buffer.Take()
	c.enter(PhaseFeedback)

	if !ok {
		c.logger.Info("evaluation skipped", "error", ErrMissingLandmarks)
		c.metrics.ObserveEvaluation(metrics.ResultNoLandmarks, 0)
		c.giveFeedback(c.cfg.Cues.NotRecognized, thenWait)
		return
	}

	ex, ok := c.currentExercise()
	step := c.steps[c.pos.StepIndex]
	if !ok || ex.ID == 0 {
		c.logger.Error("evaluation skipped", "error", ErrMissingExerciseMetadata, "position", c.pos.String())
		c.metrics.ObserveEvaluation(metrics.ResultNoMetadata, 0)
		c.giveFeedback(c.cfg.Cues.MissingMetadata, thenWait)
		return
	}

	st := c.stamp()
	keypoints := sample.Keypoints
	clock := c.deps.Clock

	c.logger.Debug("evaluating pose",
		"position", c.pos.String(),
		"samples", received,
		"sample_age", clock.Now().Sub(sample.ReceivedAt),
	)

	go func() {
		started := clock.Now()
		verdict, err := c.deps.Comparer.Compare(c.runCtx, keypoints, ex.ID, step.Number)
		c.post(verdictMsg{stamped: st, verdict: verdict, err: err, took: clock.Now().Sub(started)})
	}()
}

func (c *Controller) onVerdict(m verdictMsg) {
	if m.err != nil {
		err := fmt.Errorf("%w: %w", ErrNetworkFailure, m.err)
		c.logger.Error("pose comparison failed", "error", err)
		c.metrics.ObserveEvaluation(metrics.ResultNetworkError, m.took)
		c.giveFeedback(c.cfg.Cues.NetworkError, thenWait)
		return
	}

	text := m.verdict.Message()

	if !m.verdict.Match {
		if text == "" {
			text = c.cfg.Cues.Mismatch
		}
		c.logger.Info("pose mismatch", "position", c.pos.String(), "took", m.took)
		c.metrics.ObserveEvaluation(metrics.ResultMismatch, m.took)
		c.giveFeedback(text, thenCooldown)
		return
	}

	if text == "" {
		text = c.cfg.Cues.Match
	}
	c.logger.Info("pose matched", "position", c.pos.String(), "took", m.took)
	c.metrics.ObserveEvaluation(metrics.ResultMatch, m.took)
	c.giveFeedback(text, thenMove)
}

func (c *Controller) giveFeedback(text string, next afterSpeech) {
	c.feedback = text
	c.speak(text, next)
}

func (c *Controller) advance() {
	progress := routine.Advance(c.pos, len(c.steps), len(c.exercises), c.cfg.MaxSets)
	c.pos = progress.Position

	c.logger.Info("routine advanced", "kind", progress.Kind.String(), "position", c.pos.String())

	switch progress.Kind {
	case routine.StepAdvanced, routine.SetAdvanced:
		c.feedback = ""
		c.enter(PhaseLoading)
		c.loadStep()

	case routine.ExerciseAdvanced:
		c.feedback = ""
		c.steps = nil
		c.description = PlaceholderDescription
		ex := c.showExercise()
		c.enter(PhaseLoading)
		c.loadExercise(ex)

	case routine.RoutineCompleted:
		c.complete()
	}
}

func (c *Controller) complete() {
	c.enter(PhaseComplete)

	c.completeOnce.Do(func() {
		close(c.completed)
	})
	c.metrics.ObserveCompletion()
	c.logger.Info("routine completed", "routine_id", c.cfg.RoutineID, "exercises", len(c.exercises))

	c.schedule(c.cfg.CompletionDelay, navigateMsg{stamped: c.stamp()})
}

func (c *Controller) navigate() {
	select {
	case c.navigation <- RouteRecord:
	default:
	}

	c.logger.Info("navigating", "route", string(RouteRecord))
	c.finished = true
}

// teardown runs on the loop after Close.
func (c *Controller) teardown() {
	c.stopTimer()
	c.cancel()
	c.deps.Speaker.Stop()
	c.epoch++
	c.speaking = false
	c.processing = false
	c.buffer.Reset()

	snap := c.buildSnapshot(true)
	c.snapMu.Lock()
	c.snap = snap
	c.snapMu.Unlock()
	subscribers, dropped := c.hub.Len(), c.hub.Dropped()
	c.hub.Publish(snap)
	c.hub.Close()

	c.logger.Info("session closed",
		"phase", c.phase.String(),
		"position", c.pos.String(),
		"subscribers", subscribers,
		"dropped_snapshots", dropped,
	)
}

// showExercise displays the current exercise's name and returns it.
func (c *Controller) showExercise() routine.Exercise {
	ex, _ := c.currentExercise()

	c.exerciseName = ex.Name
	if c.exerciseName == "" {
		c.exerciseName = MissingExerciseName
	}

	return ex
}

func (c *Controller) currentExercise() (routine.Exercise, bool) {
	return routine.Routine{ID: c.cfg.RoutineID, Exercises: c.exercises}.Exercise(c.pos.ExerciseIndex)
}

func (c *Controller) publish() {
	snap := c.buildSnapshot(false)

	c.snapMu.Lock()
	c.snap = snap
	c.snapMu.Unlock()

	c.hub.Publish(snap)
}

func (c *Controller) buildSnapshot(closed bool) Snapshot {
	snap := Snapshot{
		SessionID:     c.id,
		RoutineID:     c.cfg.RoutineID,
		Phase:         c.phase,
		ExerciseName:  c.exerciseName,
		ExerciseIndex: c.pos.ExerciseIndex,
		ExerciseCount: len(c.exercises),
		StepIndex:     c.pos.StepIndex,
		StepCount:     len(c.steps),
		SetCount:      c.pos.SetCount,
		MaxSets:       c.cfg.MaxSets,
		Description:   c.description,
		Speaking:      c.speaking,
		Feedback:      c.feedback,
		Completed:     c.phase == PhaseComplete,
		Closed:        closed,
	}

	if c.pos.StepIndex < len(c.steps) {
		snap.StepNumber = c.steps[c.pos.StepIndex].Number
	}

	if c.loadErr != nil {
		snap.LoadError = c.loadErr.Error()
	}

	snap.Exercises = make([]ExerciseProgress, len(c.exercises))
	for i, ex := range c.exercises {
		sets := 0
		switch {
		case snap.Completed || i < c.pos.ExerciseIndex:
			sets = c.cfg.MaxSets
		case i == c.pos.ExerciseIndex:
			sets = c.pos.SetCount
		}
		snap.Exercises[i] = ExerciseProgress{Name: ex.Name, Sets: sets}
	}

	return snap
}
