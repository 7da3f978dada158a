// Package filesystem routes every disk access through a swappable afero backend.
//
// Tests switch to an in-memory backend so config, cache and history files never touch the host.
package filesystem

import (
	"sync"

	"github.com/spf13/afero"
)

var (
	mu      sync.RWMutex
	backend = afero.Afero{Fs: afero.NewOsFs()}
)

// API returns the active afero.Afero instance.
func API() afero.Afero {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetOsFs restores the native operating system backend.
func SetOsFs() {
	set(afero.NewOsFs())
}

// SetMemMapFs installs a volatile in-memory backend.
func SetMemMapFs() {
	set(afero.NewMemMapFs())
}

func set(fs afero.Fs) {
	mu.Lock()
	defer mu.Unlock()
	backend = afero.Afero{Fs: fs}
}
