// Package tui provides the primary terminal user interface implementation.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/remote"
	"github.com/zapper-tv/zapper/session"
)

// Session is the part of session.Session the interface drives directly.
type Session interface {
	Registry() *channel.Registry
	State() session.State
	ManualReconnect()
	SetVisible(visible bool)
}

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Session    Session
	Controller *remote.Controller
	// Bridge must be the same one wired into the session, overlay and controller.
	Bridge *Bridge
	// Start is the registry index played on startup, -1 for none.
	Start int
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(options *Options) error {
	bubble, err := newBubble(options)
	if err != nil {
		return err
	}
	defer options.Bridge.Close()

	_, err = tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithReportFocus()).Run()
	return err
}
