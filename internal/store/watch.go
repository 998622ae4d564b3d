package store

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debouncer coalesces bursts of Notify calls into one fn call after the
// burst has been quiet for the delay. fn never runs concurrently with itself.
type Debouncer struct {
	fn    func()
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	running bool
	stopped bool
	// idle is signalled on d.mu when a run finishes.
	idle *sync.Cond
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	d := &Debouncer{fn: fn, delay: delay}
	d.idle = sync.NewCond(&d.mu)
	return d
}

func (d *Debouncer) Notify() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.onTimer)
		return
	}
	d.timer.Reset(d.delay)
}

// Stop drops anything pending and returns once a run already in progress
// has finished. fn must not call Stop.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	for d.running {
		d.idle.Wait()
	}
}

func (d *Debouncer) onTimer() {
	d.mu.Lock()
	if d.running {
		// Another run is in flight; try again once it is done.
		d.timer.Reset(d.delay)
		d.mu.Unlock()
		return
	}
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.running = true
	d.mu.Unlock()

	d.fn()

	d.mu.Lock()
	d.running = false
	d.idle.Broadcast()
	if d.pending && !d.stopped {
		d.timer.Reset(d.delay)
	}
	d.mu.Unlock()
}

// Watch calls notify after markdown files under root change, at most once per
// quiet period of delay. It blocks until ctx is done.
func Watch(ctx context.Context, root string, delay time.Duration, notify func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := addTree(w, root); err != nil {
		return err
	}
	deb := NewDebouncer(delay, notify)
	defer deb.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(w, ev.Name); err != nil {
						log.Printf("watch %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if relevant(ev) {
				deb.Notify()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".md")
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
