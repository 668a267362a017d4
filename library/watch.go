package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch keeps the library in sync with its root directories until
// `ctx` is cancelled. It returns once the watches are installed.
func (lib *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range lib.roots {
		if err := lib.addDirs(watcher, root); err != nil {
			_ = watcher.Close()
			return err
		}
	}
	lib.logger.Debug("library watcher started", zap.Strings("roots", lib.roots), zap.Bool("recursive", lib.recursive))

	d := debouncer{delay: lib.debounce, timers: make(map[string]*time.Timer)}
	go func() {
		defer watcher.Close()
		defer d.stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				lib.handleEvent(watcher, &d, ev)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				lib.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

// addDirs watches `dir`, and its sub directories when recursive.
func (lib *Library) addDirs(watcher *fsnotify.Watcher, dir string) error {
	if !lib.recursive {
		return watcher.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func (lib *Library) handleEvent(watcher *fsnotify.Watcher, d *debouncer, ev fsnotify.Event) {
	path := ev.Name
	lib.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !lib.recursive {
				return
			}
			if err := lib.addDirs(watcher, path); err != nil {
				lib.logger.Debug("watcher failed to add directory", zap.String("path", path), zap.Error(err))
			}
			lib.syncDirectory(path)
			return
		}
		if matchExtension(path, lib.extensions) {
			d.schedule(path, func() { lib.update(path) })
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		d.cancel(path)
		if matchExtension(path, lib.extensions) {
			lib.remove(path)
		}
	}
}

func (lib *Library) syncDirectory(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if matchExtension(path, lib.extensions) {
			lib.update(path)
		}
		return nil
	})
}

// debouncer delays a callback until no new event is received for the same key.
type debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func (d *debouncer) schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

func (d *debouncer) cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
