package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay coalesces the events of one save. os.WriteFile truncates
// before writing, and an empty file would otherwise load as the defaults.
const reloadDelay = 150 * time.Millisecond

// Watcher reloads the config file when it changes on disk and hands the
// new configuration to onChange. Invalid edits are logged and ignored.
type Watcher struct {
	svc      *Service
	log      *zap.Logger
	onChange func(prev, next Config)
	watcher  *fsnotify.Watcher
	target   string
	debounce func(func())

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher starts watching svc's file. The directory is watched rather
// than the file so editors that replace the file are still seen.
func NewWatcher(svc *Service, log *zap.Logger, onChange func(prev, next Config)) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	target := filepath.Clean(svc.Path())
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(target), err)
	}

	w := &Watcher{
		svc:      svc,
		log:      log,
		onChange: onChange,
		watcher:  fw,
		target:   target,
		debounce: debounce.New(reloadDelay),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.debounce(w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	if w.closed.Load() {
		return
	}
	prev := w.svc.Get()
	if err := w.svc.Load(); err != nil {
		w.log.Warn("config reload rejected, keeping previous values",
			zap.String("path", w.target),
			zap.Error(err))
		return
	}
	next := w.svc.Get()
	w.log.Info("config reloaded", zap.String("path", w.target))
	if w.onChange != nil {
		w.onChange(prev, next)
	}
}
