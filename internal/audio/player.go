package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

var (
	// ErrStopped is reported by a Playback that was stopped before it drained.
	ErrStopped = errors.New("playback stopped")
	// ErrPlayerClosed is returned by Play after Close.
	ErrPlayerClosed = errors.New("player closed")
)

// Playback is one clip being played.
type Playback interface {
	// Done receives exactly one value when playback ends: nil when the clip
	// drained, ErrStopped after Stop, or the context error.
	Done() <-chan error
	// Stop ends playback early. Safe to call more than once.
	Stop()
}

// device is the part of a malgo device a playback drives.
type device interface {
	Stop() error
	Uninit()
}

// Player plays clips on the default playback device. Each clip gets its own
// malgo device; the malgo context is shared and released by Close.
type Player struct {
	conf DeviceConfig

	mu     sync.Mutex
	mgCtx  *malgo.AllocatedContext
	closed bool
	live   map[*playback]struct{}
	liveWG sync.WaitGroup
}

// NewPlayer creates a player. The audio backend is initialized lazily.
func NewPlayer(conf DeviceConfig) *Player {
	return &Player{conf: conf, live: make(map[*playback]struct{})}
}

// Play starts playing clip and returns immediately.
func (p *Player) Play(ctx context.Context, clip *Clip) (Playback, error) {
	if clip == nil {
		return nil, errors.New("clip is nil")
	}

	if err := clip.Validate(); err != nil {
		return nil, fmt.Errorf("invalid clip: %w", err)
	}

	pb := newPlayback(clip.PCM)

	mgCtx, err := p.acquire(pb)
	if err != nil {
		return nil, err
	}

	conf := p.conf.forClip(*clip)

	devCnf := malgo.DefaultDeviceConfig(malgo.Playback)
	devCnf.Playback.Format = conf.Format
	devCnf.Playback.Channels = uint32(conf.PlaybackChannels)
	devCnf.SampleRate = uint32(conf.SampleRate)

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			pb.fill(out)
		},
	})
	if err != nil {
		p.release(pb)
		return nil, fmt.Errorf("failed to initialize malgo playback device: %w", err)
	}

	if err := mgDevice.Start(); err != nil {
		mgDevice.Uninit()
		p.release(pb)
		return nil, fmt.Errorf("failed to start malgo playback device: %w", err)
	}

	go p.supervise(ctx, pb, mgDevice)

	return pb, nil
}

// Close stops every running playback, waits for their devices to be
// released, then releases the audio backend. Later Plays fail with
// ErrPlayerClosed.
func (p *Player) Close() {
	p.mu.Lock()
	p.closed = true
	for pb := range p.live {
		pb.Stop()
	}
	p.mu.Unlock()

	p.liveWG.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	uninitializeContext(p.mgCtx)
	p.mgCtx = nil
}

// acquire registers pb as live and returns the shared context, creating it
// on first use. A registered playback holds Close back until released.
func (p *Player) acquire(pb *playback) (*malgo.AllocatedContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPlayerClosed
	}

	if p.mgCtx == nil {
		mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		p.mgCtx = mgCtx
	}

	p.track(pb)

	return p.mgCtx, nil
}

// track must be called with p.mu held.
func (p *Player) track(pb *playback) {
	p.live[pb] = struct{}{}
	p.liveWG.Add(1)
}

func (p *Player) release(pb *playback) {
	p.mu.Lock()
	delete(p.live, pb)
	p.mu.Unlock()

	p.liveWG.Done()
}

func (p *Player) supervise(ctx context.Context, pb *playback, dev device) {
	defer p.release(pb)
	pb.supervise(ctx, dev)
}

type playback struct {
	mu      sync.Mutex
	pcm     []byte
	offset  int
	drained chan struct{}

	stopOnce sync.Once
	stopC    chan struct{}
	done     chan error
}

func newPlayback(pcm []byte) *playback {
	return &playback{
		pcm:     pcm,
		drained: make(chan struct{}, 1),
		stopC:   make(chan struct{}),
		done:    make(chan error, 1),
	}
}

func (pb *playback) Done() <-chan error {
	return pb.done
}

func (pb *playback) Stop() {
	pb.stopOnce.Do(func() { close(pb.stopC) })
}

// fill runs on the audio thread. It must never block.
func (pb *playback) fill(out []byte) {
	pb.mu.Lock()
	n := copy(out, pb.pcm[pb.offset:])
	pb.offset += n
	finished := pb.offset >= len(pb.pcm)
	pb.mu.Unlock()

	clear(out[n:])

	if finished {
		select {
		case pb.drained <- struct{}{}:
		default:
		}
	}
}

func (pb *playback) supervise(ctx context.Context, mgDevice device) {
	var result error

	select {
	case <-pb.drained:
	case <-pb.stopC:
		result = ErrStopped
	case <-ctx.Done():
		result = ctx.Err()
	}

	if err := mgDevice.Stop(); err != nil && result == nil {
		result = fmt.Errorf("failed to stop malgo playback device: %w", err)
	}
	mgDevice.Uninit()

	pb.done <- result
	close(pb.done)
}
