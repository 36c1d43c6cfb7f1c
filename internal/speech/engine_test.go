package speech_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alkime/stretch/internal/audio"
	"github.com/alkime/stretch/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSynthesizer struct {
	clip  *audio.Clip
	err   error
	calls atomic.Int32
}

func (m *mockSynthesizer) Synthesize(_ context.Context, _ string, _ string) (*audio.Clip, error) {
	m.calls.Add(1)
	return m.clip, m.err
}

type mockPlayback struct {
	once     sync.Once
	done     chan error
	stopped  atomic.Bool
	finished atomic.Bool
}

func (p *mockPlayback) Done() <-chan error { return p.done }

func (p *mockPlayback) Stop() {
	p.once.Do(func() {
		p.stopped.Store(true)
		p.finished.Store(true)
		p.done <- audio.ErrStopped
	})
}

func (p *mockPlayback) finish(err error) {
	p.once.Do(func() {
		p.finished.Store(true)
		p.done <- err
	})
}

// mockPlayer records every playback. With autoFinish set, playbacks drain
// immediately.
type mockPlayer struct {
	autoFinish bool
	playErr    error

	mu        sync.Mutex
	playbacks []*mockPlayback
	maxActive int
}

func (m *mockPlayer) setAutoFinish(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoFinish = v
}

func (m *mockPlayer) Play(_ context.Context, _ *audio.Clip) (audio.Playback, error) {
	if m.playErr != nil {
		return nil, m.playErr
	}

	pb := &mockPlayback{done: make(chan error, 1)}

	m.mu.Lock()
	m.playbacks = append(m.playbacks, pb)
	active := 0
	for _, p := range m.playbacks {
		if !p.finished.Load() {
			active++
		}
	}
	m.maxActive = max(m.maxActive, active)
	autoFinish := m.autoFinish
	m.mu.Unlock()

	if autoFinish {
		pb.finish(nil)
	}

	return pb, nil
}

func (m *mockPlayer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.playbacks)
}

func (m *mockPlayer) playback(i int) *mockPlayback {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playbacks[i]
}

func testClip() *audio.Clip {
	return &audio.Clip{PCM: make([]byte, 480), SampleRate: 24000, Channels: 1}
}

func TestEngine_Enqueue_SkipsEmptyText(t *testing.T) {
	synth := &mockSynthesizer{clip: testClip()}
	player := &mockPlayer{autoFinish: true}
	engine := speech.NewEngine(speech.Options{Synthesizer: synth, Player: player})

	outcome := engine.Enqueue(context.Background(), "")

	assert.Equal(t, speech.OutcomeSkipped, outcome)
	assert.Zero(t, synth.calls.Load())
	assert.False(t, engine.Speaking())
}

func TestEngine_Enqueue_NoSynthesizer(t *testing.T) {
	engine := speech.NewEngine(speech.Options{Player: &mockPlayer{}})

	assert.Equal(t, speech.OutcomeSkipped, engine.Enqueue(context.Background(), "안녕하세요"))
}

func TestEngine_Enqueue_Completes(t *testing.T) {
	var outcomes []speech.Outcome
	synth := &mockSynthesizer{clip: testClip()}
	player := &mockPlayer{autoFinish: true}
	engine := speech.NewEngine(speech.Options{
		Synthesizer:  synth,
		Player:       player,
		LanguageCode: "ko-KR",
		OnOutcome:    func(o speech.Outcome) { outcomes = append(outcomes, o) },
	})

	outcome := engine.Enqueue(context.Background(), "정답입니다")

	assert.Equal(t, speech.OutcomeCompleted, outcome)
	assert.Equal(t, 1, player.count())
	assert.False(t, engine.Speaking())
	assert.Equal(t, []speech.Outcome{speech.OutcomeCompleted}, outcomes)
}

func TestEngine_Enqueue_FailuresResolveCompleted(t *testing.T) {
	tests := []struct {
		name   string
		synth  *mockSynthesizer
		player *mockPlayer
	}{
		{
			name:   "synthesis error",
			synth:  &mockSynthesizer{err: errors.New("quota exceeded")},
			player: &mockPlayer{autoFinish: true},
		},
		{
			name:   "play error",
			synth:  &mockSynthesizer{clip: testClip()},
			player: &mockPlayer{playErr: errors.New("no device")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failures []error
			engine := speech.NewEngine(speech.Options{
				Synthesizer: tt.synth,
				Player:      tt.player,
				OnFailure:   func(err error) { failures = append(failures, err) },
			})

			outcome := engine.Enqueue(context.Background(), "자세를 다시 한 번 확인해 주세요")

			assert.Equal(t, speech.OutcomeCompleted, outcome)
			require.Len(t, failures, 1)
			assert.ErrorIs(t, failures[0], speech.ErrAudioPlayback)
			assert.False(t, engine.Speaking())
		})
	}
}

func TestEngine_Enqueue_NilClip(t *testing.T) {
	player := &mockPlayer{autoFinish: true}
	engine := speech.NewEngine(speech.Options{Synthesizer: &mockSynthesizer{}, Player: player})

	assert.Equal(t, speech.OutcomeCompleted, engine.Enqueue(context.Background(), "text"))
	assert.Zero(t, player.count())
}

func TestEngine_Enqueue_SupersedesActiveUtterance(t *testing.T) {
	synth := &mockSynthesizer{clip: testClip()}
	player := &mockPlayer{}
	engine := speech.NewEngine(speech.Options{Synthesizer: synth, Player: player})

	first := make(chan speech.Outcome, 1)
	go func() { first <- engine.Enqueue(context.Background(), "first") }()

	require.Eventually(t, func() bool { return player.count() == 1 }, time.Second, time.Millisecond)
	assert.True(t, engine.Speaking())

	player.setAutoFinish(true)
	second := engine.Enqueue(context.Background(), "second")

	assert.Equal(t, speech.OutcomeCompleted, second)
	assert.Equal(t, speech.OutcomeInterrupted, <-first)
	assert.True(t, player.playback(0).stopped.Load())
	assert.Equal(t, 1, player.maxActive)
	assert.False(t, engine.Speaking())
}

func TestEngine_Enqueue_SkippedTextInterruptsActive(t *testing.T) {
	synth := &mockSynthesizer{clip: testClip()}
	player := &mockPlayer{}
	engine := speech.NewEngine(speech.Options{Synthesizer: synth, Player: player})

	first := make(chan speech.Outcome, 1)
	go func() { first <- engine.Enqueue(context.Background(), "first") }()

	require.Eventually(t, func() bool { return player.count() == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, speech.OutcomeSkipped, engine.Enqueue(context.Background(), ""))
	assert.Equal(t, speech.OutcomeInterrupted, <-first)
	assert.True(t, player.playback(0).stopped.Load())
	assert.Equal(t, 1, player.count(), "nothing new is played")
	assert.False(t, engine.Speaking())
}

func TestEngine_Stop(t *testing.T) {
	player := &mockPlayer{}
	engine := speech.NewEngine(speech.Options{Synthesizer: &mockSynthesizer{clip: testClip()}, Player: player})

	result := make(chan speech.Outcome, 1)
	go func() { result <- engine.Enqueue(context.Background(), "long description") }()

	require.Eventually(t, func() bool { return player.count() == 1 }, time.Second, time.Millisecond)

	engine.Stop()

	assert.Equal(t, speech.OutcomeInterrupted, <-result)
	assert.False(t, engine.Speaking())

	// no-op without an active utterance
	engine.Stop()
}

func TestEngine_Enqueue_ContextCanceled(t *testing.T) {
	player := &mockPlayer{}
	engine := speech.NewEngine(speech.Options{Synthesizer: &mockSynthesizer{clip: testClip()}, Player: player})

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan speech.Outcome, 1)
	go func() { result <- engine.Enqueue(ctx, "text") }()

	require.Eventually(t, func() bool { return player.count() == 1 }, time.Second, time.Millisecond)
	cancel()
	// the mock ignores ctx; a real player ends the playback on cancel
	player.playback(0).finish(context.Canceled)

	assert.Equal(t, speech.OutcomeInterrupted, <-result)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "completed", speech.OutcomeCompleted.String())
	assert.Equal(t, "skipped", speech.OutcomeSkipped.String())
	assert.Equal(t, "interrupted", speech.OutcomeInterrupted.String())
	assert.Equal(t, "Outcome(9)", speech.Outcome(9).String())
}
