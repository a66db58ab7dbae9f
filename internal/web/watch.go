package web

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/njchilds90/scicalc/internal/config"
	"github.com/njchilds90/scicalc/internal/logging"
)

// watchConfig reloads the config file after it settles. The directory is
// watched rather than the file so editors that save by rename are seen.
func (s *Server) watchConfig(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("config watcher unavailable", zap.Error(err))
		return nil
	}
	defer w.Close()

	target, err := filepath.Abs(s.cfgPath)
	if err != nil {
		target = filepath.Clean(s.cfgPath)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		s.logger.Warn("config watcher: cannot watch directory", zap.String("dir", filepath.Dir(target)), zap.Error(err))
		return nil
	}
	s.logger.Debug("watching config", zap.String("path", target))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Debounce rapid saves.
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("config watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			s.reload()
		}
	}
}

// reload keeps the running configuration when the new file is invalid.
func (s *Server) reload() {
	cfg, err := config.Load(s.cfgPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		s.logger.Warn("config reload rejected", zap.String("path", s.cfgPath), zap.Error(err))
		return
	}
	s.apply(cfg)
	if s.level != nil && !s.verbose {
		if l, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
			s.level.SetLevel(l)
		}
	}
	s.logger.Info("config reloaded", zap.String("path", s.cfgPath), zap.Int("precision", cfg.Precision))
}
