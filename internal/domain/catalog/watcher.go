package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces bursts of editor writes into one reload
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a catalog directory when simulation files change
type Watcher struct {
	catalog  *Catalog
	dir      string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onReload func(LoadReport)
	logger   *zap.Logger

	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
}

// Watch starts watching dir and every directory below it. onReload, if
// set, runs on the watcher goroutine after each reload.
func (c *Catalog) Watch(dir string, debounce time.Duration, onReload func(LoadReport)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		catalog:  c,
		dir:      dir,
		fsw:      fsw,
		debounce: debounce,
		onReload: onReload,
		logger:   c.logger,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	if err := w.addTree(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Stop terminates the watcher and waits for its goroutine
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		<-w.finished
	})
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watching directory %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer close(w.finished)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				// New subdirectories must be watched explicitly
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if !relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Catalog watcher error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	report, err := w.catalog.Reload(w.dir)
	if err != nil {
		w.logger.Error("Failed to reload catalog", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	if w.onReload != nil {
		w.onReload(report)
	}
}

// relevant reports whether event touches a simulation file
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	ok, _ := doublestar.Match("*.{yaml,yml,toml}", filepath.Base(event.Name))
	return ok
}
