// Package playertest provides a scriptable player.Adapter for tests.
package playertest

import (
	"errors"
	"sync"

	"github.com/zapper-tv/zapper/player"
)

// Fake records configurations and emits events on demand.
// Setup puts it in StateBuffering unless SetupErr is set.
type Fake struct {
	player.Dispatcher

	mu       sync.Mutex
	state    player.State
	setups   []player.Config
	removed  int
	setupErr error
}

var _ player.Adapter = (*Fake)(nil)

// New returns an idle Fake.
func New() *Fake {
	return &Fake{}
}

// Setup implements player.Adapter.
func (f *Fake) Setup(cfg player.Config) error {
	f.mu.Lock()
	f.setups = append(f.setups, cfg)
	err := f.setupErr
	if err == nil {
		f.state = player.StateBuffering
	} else {
		f.state = player.StateError
	}
	f.mu.Unlock()

	if err != nil {
		f.Emit(player.EventPlayAttemptFailed)
	}
	return err
}

// State implements player.Adapter.
func (f *Fake) State() player.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Remove implements player.Adapter.
func (f *Fake) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed++
	f.state = player.StateIdle
	return nil
}

// SetState changes the reported state without emitting anything.
func (f *Fake) SetState(s player.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
}

// Fire sets the state implied by e and emits it.
func (f *Fake) Fire(e player.Event) {
	switch e {
	case player.EventPlay:
		f.SetState(player.StatePlaying)
	case player.EventPause:
		f.SetState(player.StatePaused)
	case player.EventComplete:
		f.SetState(player.StateComplete)
	case player.EventError, player.EventPlayAttemptFailed:
		f.SetState(player.StateError)
	case player.EventBuffering:
		f.SetState(player.StateBuffering)
	}
	f.Emit(e)
}

// FailSetup makes subsequent Setup calls fail.
func (f *Fake) FailSetup(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setupErr = nil
	if fail {
		f.setupErr = errors.New("playback refused")
	}
}

// Setups returns every configuration passed to Setup, oldest first.
func (f *Fake) Setups() []player.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]player.Config(nil), f.setups...)
}

// Files returns the File of every configuration passed to Setup.
func (f *Fake) Files() []string {
	setups := f.Setups()
	files := make([]string, len(setups))
	for i, cfg := range setups {
		files[i] = cfg.File
	}
	return files
}

// Removed reports how many times Remove was called.
func (f *Fake) Removed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removed
}
