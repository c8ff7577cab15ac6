// SPDX-License-Identifier: MIT

package conf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/genutil/log"
)

// Watcher hot-reloads a File provider when its backing file changes. Reloads
// are debounced because editors and atomic-rename writers emit bursts of
// events for a single save.
type Watcher struct {
	file     *File
	debounce time.Duration
	logger   zerolog.Logger

	mu        sync.RWMutex
	listeners []func()

	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given File provider.
func NewWatcher(file *File) *Watcher {
	return &Watcher{
		file:     file,
		debounce: 200 * time.Millisecond,
		logger:   log.WithComponent("conf"),
	}
}

// OnChange registers a callback invoked after every successful reload.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Start begins watching until ctx is cancelled. A reload that fails keeps the
// previous configuration; the watcher stays active.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.file.Path()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}
	w.watcher = watcher

	w.logger.Info().
		Str("event", "conf.watcher_started").
		Str(log.FieldPath, w.file.Path()).
		Msg("watching config file for changes")

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	var pending *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).
				Str("event", "conf.watcher_error").
				Msg("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	if err := w.file.Reload(); err != nil {
		w.logger.Error().Err(err).
			Str("event", "conf.reload_failed").
			Str(log.FieldPath, w.file.Path()).
			Msg("config reload failed, keeping previous configuration")
		return
	}

	w.logger.Info().
		Str("event", "conf.reload_success").
		Str(log.FieldPath, w.file.Path()).
		Msg("configuration reloaded")

	w.mu.RLock()
	listeners := append([]func(){}, w.listeners...)
	w.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}
