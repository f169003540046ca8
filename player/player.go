// Package player defines the playback adapter the session drives, and its mpv implementation.
package player

import (
	"fmt"
	"strings"

	"github.com/samber/mo"
	"github.com/zapper-tv/zapper/channel"
)

// State is the player's coarse playback state.
type State int

const (
	StateIdle State = iota
	StateBuffering
	StatePlaying
	StatePaused
	StateComplete
	StateError
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateBuffering:
		return "buffering"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Event is a playback notification.
type Event string

const (
	EventPlay              Event = "play"
	EventPause             Event = "pause"
	EventComplete          Event = "complete"
	EventError             Event = "error"
	EventBuffering         Event = "buffering"
	EventPlayAttemptFailed Event = "playAttemptFailed"
)

// Handler receives events. Handlers run on the adapter's event goroutine
// and must not call back into the adapter while holding their own locks.
type Handler func(Event)

// Config describes what to play.
type Config struct {
	File      string
	Title     string
	Autostart bool
	DRM       mo.Option[channel.DRM]
}

// ConfigFor builds the playback configuration of a channel.
func ConfigFor(c channel.Channel) Config {
	return Config{
		File:      c.URL,
		Title:     c.Name,
		Autostart: true,
		DRM:       c.DRM(),
	}
}

// Adapter is a media player the session can configure and observe.
type Adapter interface {
	// Setup replaces whatever is playing with cfg.
	Setup(cfg Config) error

	// State reports the current playback state.
	State() State

	// On registers h for e.
	On(e Event, h Handler) Subscription

	// Off removes a registration. Unknown subscriptions are ignored.
	Off(s Subscription)

	// Remove tears the player down.
	Remove() error
}

// New returns the adapter for the named player. Only mpv is supported.
func New(name string, args []string, socket string) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mpv":
		m := NewMPV(args...)
		if socket != "" {
			m.Attach(socket)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported player %q", name)
	}
}
