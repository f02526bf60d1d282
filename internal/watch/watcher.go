// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// DefaultDebounce is the quiet period before a burst of events is reported.
const DefaultDebounce = 250 * time.Millisecond

// MinRefreshInterval spaces notifications while files keep changing, so a
// build that writes every few hundred milliseconds does not run git status
// continuously.
const MinRefreshInterval = time.Second

// ignoredDirs are never watched. .git is handled separately.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"target":       true,
	"dist":         true,
}

// gitFiles are the entries under .git whose changes alter the working-tree
// status: staging rewrites index, checkouts and commits move HEAD.
var gitFiles = map[string]bool{
	"index": true,
	"HEAD":  true,
}

// =============================================================================
// WATCHER
// =============================================================================

// Watcher reports working-tree changes under a repository root.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	notify   func()

	mu      sync.Mutex
	pending bool
	last    time.Time
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a watcher for root that calls notify once per debounced burst
// of changes. notify runs on the watcher's goroutine.
func New(root string, debounce time.Duration, notify func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		root:     root,
		watcher:  fsw,
		debounce: debounce,
		notify:   notify,
		limiter:  rate.NewLimiter(rate.Every(MinRefreshInterval), 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch registers the root, its subdirectories and the .git directory, then
// starts processing events in the background.
func (w *Watcher) Watch() error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	gitDir := filepath.Join(w.root, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		if err := w.watcher.Add(gitDir); err != nil {
			log.Printf("WATCH_ERROR | path=%s error=%v", gitDir, err)
		}
	}

	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// addRecursive adds dir and every non-ignored subdirectory.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && shouldIgnore(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("WATCH_ERROR | path=%s error=%v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !shouldIgnore(info.Name()) {
					_ = w.addRecursive(event.Name)
				}
			}
			w.mark()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("WATCH_ERROR | root=%s error=%v", w.root, err)
		}
	}
}

// relevant filters out git's internal churn except the files that change
// what status reports.
func (w *Watcher) relevant(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if parts[0] != ".git" {
		return true
	}
	return len(parts) == 2 && gitFiles[parts[1]]
}

func (w *Watcher) mark() {
	w.mu.Lock()
	w.pending = true
	w.last = time.Now()
	w.mu.Unlock()
}

// processPending fires notify once the event stream has been quiet for the
// debounce period and the previous notification is at least
// MinRefreshInterval old. A change held back by the limiter stays pending.
func (w *Watcher) processPending() {
	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			fire := w.pending && time.Since(w.last) >= w.debounce && w.limiter.Allow()
			if fire {
				w.pending = false
			}
			w.mu.Unlock()

			if fire && w.notify != nil {
				w.notify()
			}
		}
	}
}

func shouldIgnore(name string) bool {
	if name == ".git" {
		return true
	}
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	return ignoredDirs[name]
}
