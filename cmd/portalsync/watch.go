package main

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gatewaykit/portalsync/pkg/config"
	"github.com/gatewaykit/portalsync/pkg/observability"
)

// watchConfig re-reads the config file on change and applies the log
// level without a restart. Other settings require a restart.
func watchConfig(path string, logger *observability.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory rather than the file itself so atomic
	// rename-based rewrites keep being observed.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	target, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || name != target {
					continue
				}
				cfg, err := config.Load(path)
				if err != nil {
					logger.WithError(err).Warn("Ignoring invalid config file change")
					continue
				}
				logger.SetLevel(cfg.ParsedLogLevel())
				logger.WithField("log_level", cfg.LogLevel).Info("Applied config file change")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warn("Config watcher error")
			}
		}
	}()

	return watcher, nil
}
