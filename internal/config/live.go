package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/eresus/internal/logger"
)

// reloadDebounce collapses the burst of events editors emit on save.
const reloadDebounce = 200 * time.Millisecond

// Live holds the current configuration and swaps it when the settings file
// changes. Readers always see a complete, validated Config.
type Live struct {
	path    string
	current atomic.Pointer[Config]
}

// NewLive wraps an already loaded configuration read from path.
func NewLive(path string, cfg *Config) *Live {
	l := &Live{path: filepath.Clean(path)}
	l.current.Store(cfg)

	return l
}

// Current returns the active configuration.
func (l *Live) Current() *Config {
	return l.current.Load()
}

// TimerSettings returns the active timer settings.
func (l *Live) TimerSettings() Timers {
	return l.current.Load().Timers
}

// Reload reads the file again. An invalid file leaves the active settings untouched.
func (l *Live) Reload() error {
	cfg, err := Load(l.path)
	if err != nil {
		return err
	}

	l.current.Store(cfg)

	return nil
}

// Watch reloads the settings whenever the file is written, until ctx is done.
func (l *Live) Watch(ctx context.Context) error {
	ctx = logger.WithName(ctx, "settings")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	absPath, err := filepath.Abs(l.path)
	if err != nil {
		return fmt.Errorf("resolve settings path: %w", err)
	}

	// Watch the directory: editors often replace the file instead of writing it.
	if err = watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch settings dir: %w", err)
	}

	var debounce *time.Timer

	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if name, _ := filepath.Abs(event.Name); name != absPath {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}

			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := l.Reload(); err != nil {
					logger.ErrorKV(ctx, "Settings reload failed, keeping previous values", "error", err)

					return
				}

				logger.InfoKV(ctx, "Settings reloaded", "timers", l.TimerSettings())
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorKV(ctx, "Settings watcher error", "error", err)
		}
	}
}
