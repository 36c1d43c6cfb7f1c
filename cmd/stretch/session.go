package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alkime/stretch/internal/config"
	"github.com/alkime/stretch/internal/logger"
	"github.com/alkime/stretch/internal/tui"
	"github.com/alkime/stretch/internal/workdir"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// SessionCmd is the default command that runs the terminal UI.
type SessionCmd struct {
	SessionFlags `embed:""`
}

// Run executes the session command.
func (c *SessionCmd) Run() error {
	cfg, err := loadConfig(&c.SessionFlags)
	if err != nil {
		return err
	}

	// Ensure working directory exists
	if err := workdir.Prep(); err != nil {
		return fmt.Errorf("failed to prepare working directory: %w", err)
	}

	logPath, err := workdir.LogPath()
	if err != nil {
		return fmt.Errorf("failed to determine log path: %w", err)
	}

	log, closer, err := logger.SetupFileLogger(cfg, logPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := buildApp(cfg, log, c.Routine)
	if err != nil {
		return err
	}
	defer a.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	p := tea.NewProgram(tui.New(a.controller), tea.WithContext(gctx))

	g.Go(func() error {
		return ignoreCanceled(a.controller.Run(gctx))
	})

	g.Go(func() error {
		return a.server.Run(gctx)
	})

	// The UI outlives the controller so the results screen stays up.
	g.Go(func() error {
		defer cancel()

		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("session ended with error", "error", err)
		return err
	}

	fmt.Println("\nsession finished. bye!")

	return nil
}

// ServeCmd runs a session without the terminal UI.
type ServeCmd struct {
	SessionFlags `embed:""`
}

// Run executes the serve command. It exits once the routine is complete.
func (c *ServeCmd) Run() error {
	cfg, err := loadConfig(&c.SessionFlags)
	if err != nil {
		return err
	}

	log := logger.SetupLogger(cfg)
	log.Info("Starting stretch server",
		"env", cfg.Env,
		"port", cfg.Port,
		"tts_provider", cfg.TTSProvider,
	)

	a, err := buildApp(cfg, log, c.Routine)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		if err := ignoreCanceled(a.controller.Run(gctx)); err != nil {
			return err
		}

		select {
		case route := <-a.controller.Navigation():
			log.Info("routine complete", "route", string(route), "session_id", a.controller.ID())
		default:
		}

		return nil
	})

	g.Go(func() error {
		return a.server.Run(gctx)
	})

	return g.Wait()
}

func loadConfig(flags *SessionFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := flags.apply(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		slog.Debug("session canceled")
		return nil
	}
	return err
}
