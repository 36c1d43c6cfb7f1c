// Package speech speaks session cues, one utterance at a time.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/stretch/internal/audio"
)

// ErrAudioPlayback marks a synthesis or playback failure. It is logged and
// never returned to callers of Enqueue.
var ErrAudioPlayback = errors.New("audio playback failed")

// Synthesizer turns text into audio. A nil clip with a nil error means the
// provider had nothing to say.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) (*audio.Clip, error)
}

// Player starts playback of a clip.
type Player interface {
	Play(ctx context.Context, clip *audio.Clip) (audio.Playback, error)
}

// Outcome is how an utterance ended.
type Outcome int

const (
	// OutcomeCompleted covers both normal completion and failures.
	OutcomeCompleted Outcome = iota
	// OutcomeSkipped means there was nothing to play.
	OutcomeSkipped
	// OutcomeInterrupted means a newer utterance or Stop cut this one off.
	OutcomeInterrupted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Options configures an Engine.
type Options struct {
	Synthesizer  Synthesizer
	Player       Player
	LanguageCode string
	Logger       *slog.Logger
	// OnOutcome, if set, is called once per Enqueue.
	OnOutcome func(Outcome)
	// OnFailure, if set, is called for every synthesis or playback error.
	OnFailure func(error)
}

// Engine plays at most one utterance at a time. A new Enqueue stops the
// active utterance before starting; nothing is queued.
type Engine struct {
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	active *utterance
}

type utterance struct {
	cancel      context.CancelFunc
	playback    audio.Playback
	interrupted bool
}

// NewEngine creates an engine. A nil synthesizer or player makes every
// utterance a no-op.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		opts:   opts,
		logger: logger.With("component", "speech"),
	}
}

// Enqueue speaks text and blocks until playback ends or fails. Any active
// utterance is interrupted first, even when text resolves as skipped.
func (e *Engine) Enqueue(ctx context.Context, text string) Outcome {
	outcome := e.speak(ctx, text)
	if e.opts.OnOutcome != nil {
		e.opts.OnOutcome(outcome)
	}

	return outcome
}

// Stop interrupts the active utterance, if any.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		e.active.interrupt()
		e.active = nil
	}
}

// Speaking reports whether an utterance is active.
func (e *Engine) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active != nil
}

func (e *Engine) speak(ctx context.Context, text string) Outcome {
	if text == "" || e.opts.Synthesizer == nil || e.opts.Player == nil {
		e.Stop()
		return OutcomeSkipped
	}

	uctx, cancel := context.WithCancel(ctx)
	u := &utterance{cancel: cancel}

	e.mu.Lock()
	if e.active != nil {
		e.active.interrupt()
	}
	e.active = u
	e.mu.Unlock()

	defer e.release(u)

	clip, err := e.opts.Synthesizer.Synthesize(uctx, text, e.opts.LanguageCode)
	if e.wasInterrupted(uctx, u) {
		return OutcomeInterrupted
	}
	if err != nil {
		e.fail(fmt.Errorf("%w: failed to synthesize speech: %w", ErrAudioPlayback, err))
		return OutcomeCompleted
	}
	if clip == nil {
		e.logger.Debug("synthesizer returned no audio", "text", text)
		return OutcomeCompleted
	}

	// Play only starts the device, so it runs under the lock: a superseding
	// Enqueue either sees the playback and stops it or finds u interrupted.
	e.mu.Lock()
	if u.interrupted {
		e.mu.Unlock()
		return OutcomeInterrupted
	}
	playback, err := e.opts.Player.Play(uctx, clip)
	u.playback = playback
	e.mu.Unlock()

	if err != nil {
		e.fail(fmt.Errorf("%w: failed to start playback: %w", ErrAudioPlayback, err))
		return OutcomeCompleted
	}

	err = <-playback.Done()
	if e.wasInterrupted(uctx, u) {
		return OutcomeInterrupted
	}
	if err != nil {
		e.fail(fmt.Errorf("%w: %w", ErrAudioPlayback, err))
	}

	return OutcomeCompleted
}

func (e *Engine) wasInterrupted(ctx context.Context, u *utterance) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return u.interrupted || ctx.Err() != nil
}

func (e *Engine) release(u *utterance) {
	e.mu.Lock()
	if e.active == u {
		e.active = nil
	}
	e.mu.Unlock()

	u.cancel()
}

func (e *Engine) fail(err error) {
	e.logger.Error("utterance failed", "error", err)
	if e.opts.OnFailure != nil {
		e.opts.OnFailure(err)
	}
}

// interrupt must be called with the engine lock held.
func (u *utterance) interrupt() {
	u.interrupted = true
	u.cancel()
	if u.playback != nil {
		u.playback.Stop()
	}
}
