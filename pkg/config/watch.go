package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/webtools/peerlink/pkg/logger"
)

// Watch reloads the config file at path whenever it changes on disk and
// passes the fresh config to fn. It blocks until ctx is done.
//
// The parent directory is watched rather than the file itself, editors
// often replace the file instead of writing into it.
func Watch(ctx context.Context, path string, fn func(Config), log *logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err = watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	name := filepath.Clean(path)
	log.Info().Str("path", name).Msg("Config watch has started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Config watch has ended")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			var conf Config
			if _, err := LoadConfig(&conf, path); err != nil {
				log.Warn().Err(err).Msg("Config reload has failed")
				continue
			}
			log.Info().Str("path", name).Msg("Config reloaded")
			fn(conf)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Config watch error")
		}
	}
}
