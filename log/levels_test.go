// SPDX-License-Identifier: MIT

package log

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelManager_SetGet(t *testing.T) {
	m := &LevelManager{overrides: make(map[string]zerolog.Level)}

	require.NoError(t, m.Set("cache", "debug"))

	lvl, ok := m.Get("cache")
	require.True(t, ok)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	_, ok = m.Get("other")
	assert.False(t, ok)
}

func TestLevelManager_InvalidLevel(t *testing.T) {
	m := &LevelManager{overrides: make(map[string]zerolog.Level)}

	err := m.Set("cache", "loud")
	require.Error(t, err)

	_, ok := m.Get("cache")
	assert.False(t, ok, "failed Set must not install an override")
}

func TestLevelManager_Reset(t *testing.T) {
	m := &LevelManager{overrides: make(map[string]zerolog.Level)}

	require.NoError(t, m.Set("pipeline", "warn"))
	m.Reset("pipeline")

	_, ok := m.Get("pipeline")
	assert.False(t, ok)
}

func TestLevelManager_Snapshot(t *testing.T) {
	m := &LevelManager{overrides: make(map[string]zerolog.Level)}

	require.NoError(t, m.Set("cache", "debug"))
	require.NoError(t, m.Set("conf", "error"))

	snap := m.Snapshot()
	assert.Equal(t, map[string]string{
		"cache": "debug",
		"conf":  "error",
	}, snap)

	// Snapshot is a copy, mutating it must not affect the manager.
	snap["cache"] = "trace"
	lvl, ok := m.Get("cache")
	require.True(t, ok)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestWithComponent_UsesOverride(t *testing.T) {
	require.NoError(t, Levels.Set("override-test", "error"))
	defer Levels.Reset("override-test")

	l := WithComponent("override-test")
	assert.Equal(t, zerolog.ErrorLevel, l.GetLevel())
}
