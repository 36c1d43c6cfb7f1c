package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// CLI defines the stretch command structure.
type CLI struct {
	// Default command (runs when no subcommand given)
	Session SessionCmd `cmd:"" default:"withargs" help:"Run a guided session in the terminal UI"`

	// Subcommands
	Serve   ServeCmd   `cmd:"" help:"Run a session headless with JSON logs"`
	Devices DevicesCmd `cmd:"" help:"List available audio playback devices"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration"`
}

func main() {
	// Text logger for CLI output until a command installs its own
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("stretch"),
		kong.Description("Guided stretching sessions with pose feedback."),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
