package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"eisendo/internal/logx"
)

// Watch reloads the config file on change and applies the log level
// immediately. Other fields require a restart; onChange receives the fresh
// config so callers can pick up what they can apply live.
func Watch(ctx context.Context, path string, log zerolog.Logger, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: editors and configmap updates
	// replace the file, which drops a file-level watch.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}
	base := filepath.Base(path)

	go func() {
		defer func() { _ = w.Close() }()

		var debounce *time.Timer
		reload := func() {
			cfg, err := Load(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("config reload failed, keeping previous")
				return
			}
			logx.SetLevel(cfg.Logging.Level)
			log.Info().Str("path", path).Str("level", cfg.Logging.Level).Msg("config reloaded")
			if onChange != nil {
				onChange(cfg)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				// Editors fire bursts of events per save.
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(250*time.Millisecond, reload)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()

	return nil
}
