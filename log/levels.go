// SPDX-License-Identifier: MIT

package log

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// LevelManager tracks per-component log level overrides. Overrides apply to
// loggers created by WithComponent after the override is set; callers that
// need live changes should create their component logger per operation.
type LevelManager struct {
	mu        sync.RWMutex
	overrides map[string]zerolog.Level
}

// Levels is the process-wide level manager consulted by WithComponent.
var Levels = &LevelManager{overrides: make(map[string]zerolog.Level)}

// Set installs a level override for the given component. The level string is
// parsed with zerolog semantics ("trace", "debug", "info", "warn", "error").
func (m *LevelManager) Set(component, level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse level %q: %w", level, err)
	}
	m.mu.Lock()
	m.overrides[component] = parsed
	m.mu.Unlock()
	return nil
}

// Get returns the override for component, if one exists.
func (m *LevelManager) Get(component string) (zerolog.Level, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lvl, ok := m.overrides[component]
	return lvl, ok
}

// Reset removes the override for component, restoring the global level.
func (m *LevelManager) Reset(component string) {
	m.mu.Lock()
	delete(m.overrides, component)
	m.mu.Unlock()
}

// Snapshot returns the current overrides as component -> level name.
func (m *LevelManager) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.overrides))
	for component, lvl := range m.overrides {
		out[component] = lvl.String()
	}
	return out
}
