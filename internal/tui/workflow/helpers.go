package workflow

import (
	"strings"

	"github.com/alkime/stretch/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
)

const (
	dotFilled = "●"
	dotEmpty  = "○"
)

func renderKeyHelp(keyBinding key.Binding, suffix ...string) string {
	s := style.Help.Render("[") + style.Key.Render(keyBinding.Help().Key) +
		style.Help.Render("] ") +
		style.Help.Render(keyBinding.Help().Desc)

	s += strings.Join(suffix, "")

	return s
}

func renderGlobalKeyHelp() string {
	km := DefaultGlobalKeyMap()
	s := renderKeyHelp(km.Quit, " ")
	s += renderKeyHelp(km.ForceQuit, "\n")
	return s
}

// renderDots draws filled dots for completed sets followed by empty ones.
func renderDots(filled, total int) string {
	filled = max(0, min(filled, total))

	var sb strings.Builder
	sb.WriteString(style.DotFilled.Render(strings.Repeat(dotFilled, filled)))
	sb.WriteString(style.DotEmpty.Render(strings.Repeat(dotEmpty, total-filled)))

	return sb.String()
}
