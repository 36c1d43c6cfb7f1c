// Package workflow provides the screens of a stretching session: the live
// session screen and the results screen shown once the routine is done.
package workflow

import "github.com/charmbracelet/bubbles/key"

// GlobalKeyMap holds the bindings available on every screen.
type GlobalKeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultGlobalKeyMap returns the default global bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "end session"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}

type resultsKeyMap struct {
	Finish key.Binding
}

func defaultResultsKeyMap() resultsKeyMap {
	return resultsKeyMap{
		Finish: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "finish"),
		),
	}
}
