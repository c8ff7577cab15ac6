// SPDX-License-Identifier: MIT

package conf

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfigFile(t, "key: before\n")

	f, err := NewFile(path)
	require.NoError(t, err)

	w := NewWatcher(f)
	changed := make(chan struct{}, 1)
	w.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("key: after\n"), 0o600))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload notification")
	}

	v, ok := f.Lookup("key")
	require.True(t, ok)
	assert.Equal(t, "after", v)
}

func TestWatcher_KeepsLastGoodOnBrokenFile(t *testing.T) {
	path := writeConfigFile(t, "key: good\n")

	f, err := NewFile(path)
	require.NoError(t, err)

	w := NewWatcher(f)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte(":[ broken"), 0o600))

	// Give the debounced reload a chance to run, then confirm the old value
	// is still served.
	waitFor(t, 2*time.Second, func() bool {
		v, ok := f.Lookup("key")
		return ok && v == "good"
	})
}
