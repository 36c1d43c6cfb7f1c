package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alkime/stretch/internal/audio"
	"github.com/alkime/stretch/internal/backend"
	"github.com/alkime/stretch/internal/config"
	"github.com/alkime/stretch/internal/keyring"
	"github.com/alkime/stretch/internal/metrics"
	"github.com/alkime/stretch/internal/server"
	"github.com/alkime/stretch/internal/session"
	"github.com/alkime/stretch/internal/speech"
	"github.com/alkime/stretch/internal/workdir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SessionFlags are shared by every command that runs a session. Set flags
// override the environment.
type SessionFlags struct {
	Routine  string        `flag:"" env:"ROUTINE_ID" help:"Routine id (remembered for next time)"`
	Port     string        `flag:"" optional:"" help:"HTTP port for landmark ingest (overrides PORT)"`
	MaxSets  int           `flag:"" optional:"" help:"Sets per exercise (overrides MAX_SETS)"`
	PoseWait time.Duration `flag:"" optional:"" help:"How long a pose is held before it is checked, e.g. 10s (overrides POSE_WAIT_TIME)"`
	TTS      string        `flag:"" optional:"" help:"Speech provider: google, openai or none (overrides TTS_PROVIDER)"`
}

// apply copies set flags onto cfg and revalidates it.
func (f *SessionFlags) apply(cfg *config.Config) error {
	if f.Port != "" {
		cfg.Port = f.Port
	}
	if f.MaxSets != 0 {
		cfg.MaxSets = f.MaxSets
	}
	if f.PoseWait != 0 {
		cfg.PoseWaitTime = f.PoseWait
	}
	if f.TTS != "" {
		cfg.TTSProvider = f.TTS
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// app is a fully wired session with its HTTP surface.
type app struct {
	controller *session.Controller
	server     *server.Server
	player     *audio.Player
}

func (a *app) Close() {
	a.controller.Close()
	a.player.Close()
}

func buildApp(cfg *config.Config, logger *slog.Logger, routineFlag string) (*app, error) {
	routineID, err := workdir.ResolveRoutineID(routineFlag)
	if err != nil {
		return nil, err
	}

	sessCfg := sessionConfig(cfg, routineID)
	if err := sessCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	player := audio.NewPlayer(audio.DeviceConfig{})
	engine := speech.NewEngine(speech.Options{
		Synthesizer:  newSynthesizer(cfg, logger),
		Player:       player,
		LanguageCode: cfg.TTSLanguage,
		Logger:       logger,
		OnOutcome:    func(o speech.Outcome) { m.ObserveUtterance(o.String()) },
		OnFailure:    func(error) { m.ObserveSpeechFailure() },
	})

	client := backend.NewClient(cfg.APIBaseURL,
		backend.WithCompareTimeout(cfg.CompareTimeout),
		backend.WithLoadTimeout(cfg.LoadTimeout),
	)

	ctrl := session.New(sessCfg, session.Deps{
		Loader:   client,
		Comparer: client,
		Speaker:  engine,
		Logger:   logger,
		Metrics:  m,
	})

	return &app{
		controller: ctrl,
		server:     server.New(cfg, logger, ctrl, registry),
		player:     player,
	}, nil
}

func sessionConfig(cfg *config.Config, routineID string) session.Config {
	sc := session.DefaultConfig(routineID)
	sc.PoseWaitTime = cfg.PoseWaitTime
	sc.NextStepWaitTime = cfg.NextStepWaitTime
	sc.DescriptionDebounce = cfg.DescriptionDebounce
	sc.CompletionDelay = cfg.CompletionDelay
	sc.RetryCooldown = cfg.RetryCooldown
	sc.MaxSets = cfg.MaxSets

	return sc
}

// newSynthesizer returns nil when speech is off, which makes every cue silent.
func newSynthesizer(cfg *config.Config, logger *slog.Logger) speech.Synthesizer {
	switch cfg.TTSProvider {
	case config.TTSGoogle:
		apiKey := keyring.Resolve(keyring.GoogleTTS, cfg.GoogleTTSAPIKey)
		if apiKey == "" {
			logger.Warn("Google TTS key not configured; cues will fail until one is set")
		}
		return speech.NewGoogleSynthesizer(apiKey, cfg.TTSVoice)

	case config.TTSOpenAI:
		apiKey := keyring.Resolve(keyring.OpenAI, cfg.OpenAIAPIKey)
		if apiKey == "" {
			logger.Warn("OpenAI key not configured; cues will fail until one is set")
		}
		return speech.NewOpenAISynthesizer(apiKey, cfg.TTSVoice)

	default:
		logger.Info("speech disabled", "provider", cfg.TTSProvider)
		return nil
	}
}
