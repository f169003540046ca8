// Package prefs persists the few UI choices that survive a restart.
package prefs

import (
	"sync"

	"github.com/metafates/gache"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/where"
)

// Preferences are stored as JSON in where.Preferences().
type Preferences struct {
	// RemoteHidden hides the remote-control hint panel.
	RemoteHidden bool `json:"remote_hidden"`
	// LastChannel is the 1-based number of the last channel played, 0 if none.
	LastChannel int `json:"last_channel"`
}

var (
	cacher     *gache.Cache[Preferences]
	cacherOnce sync.Once
	mu         sync.Mutex
)

func store() *gache.Cache[Preferences] {
	cacherOnce.Do(func() {
		cacher = gache.New[Preferences](&gache.Options{
			Path:       where.Preferences(),
			FileSystem: &filesystem.GacheFs{},
		})
	})
	return cacher
}

// Load returns the saved preferences, or the zero value when none were saved.
func Load() (Preferences, error) {
	mu.Lock()
	defer mu.Unlock()
	return load()
}

func load() (Preferences, error) {
	saved, expired, err := store().Get()
	if err != nil {
		return Preferences{}, err
	}
	if expired {
		return Preferences{}, nil
	}
	return saved, nil
}

// Save replaces the saved preferences.
func Save(p Preferences) error {
	mu.Lock()
	defer mu.Unlock()
	return store().Set(p)
}

// Update applies fn to the saved preferences and writes the result back.
func Update(fn func(*Preferences)) error {
	mu.Lock()
	defer mu.Unlock()

	p, err := load()
	if err != nil {
		return err
	}

	fn(&p)
	return store().Set(p)
}
