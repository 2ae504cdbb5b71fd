package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bassista/trackctl/internal/logger"
)

// StartWatcher reloads the config file on change and calls onReload with the
// fresh configuration. Only hot-applicable settings should be taken from it
// (log level in particular); component wiring is fixed at startup.
//
// It watches the parent directory (not the file) so atomic replace sequences
// (temp+rename) are still observed. Events are filtered by basename and
// debounced to avoid double reloads on write+chmod/rename cycles. The caller
// owns the context: cancel it to stop the goroutine and close the watcher.
func StartWatcher(ctx context.Context, confPath string, onReload func(*Config)) error {
	if onReload == nil {
		return fmt.Errorf("onReload callback is required")
	}

	dir := confPath
	if dir == "" {
		dir = "."
	}
	base := "config.yaml"

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	log := logger.WithComponent("config-watch")

	reload := func() {
		cfg, err := LoadConfig(dir)
		if err != nil {
			log.Warnf("config reload failed, keeping current settings: %v", err)
			return
		}
		log.Info("config reloaded")
		onReload(cfg)
	}

	go func() {
		defer watcher.Close()

		// debounce coalesces bursty fsnotify events (write+chmod/rename)
		// into a single reload.
		var debounce *time.Timer
		schedule := func() {
			if debounce != nil {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			debounce = time.AfterFunc(200*time.Millisecond, reload)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Remove|fsnotify.Rename) != 0 {
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("watcher error: %v", err)
			}
		}
	}()

	return nil
}
