package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize config watcher")

// Watch reloads the config at path whenever it changes and passes each
// successfully loaded Config to onChange. Load and watcher errors go to
// onError (which may be nil); the watch keeps running after them.
//
// The parent directory is watched rather than the file so that editors
// replacing the file by rename are still seen. Bursts of events within
// debounce collapse into one reload. Watch returns once the watcher is
// running; it stops when ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Config), onError func(error)) error {
	if onChange == nil {
		return fmt.Errorf("%w: onChange is required", ErrWatcherFailed)
	}
	if onError == nil {
		onError = func(error) {}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	go watchLoop(ctx, watcher, abs, debounce, onChange, onError)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, debounce time.Duration, onChange func(*Config), onError func(error)) {
	defer watcher.Close()

	// Armed only by matching events.
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				onError(fmt.Errorf("reloading %s: %w", path, err))
				continue
			}
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			onError(fmt.Errorf("watching %s: %w", path, err))
		}
	}
}
