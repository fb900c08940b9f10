// Package watch monitors the chains root for new or updated sampler stats
// files and triggers re-validation once writes settle.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"valska/internal/logging"
)

// TriggerFunc is invoked with the chain directories whose stats files
// settled past the debounce window.
type TriggerFunc func(ctx context.Context, chainDirs []string)

// ChainsWatcher watches the chains root and fires a trigger when sampler
// stats files appear or change. Samplers rewrite stats repeatedly while
// converging, so events are debounced.
type ChainsWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	chainsRoot  string
	trigger     TriggerFunc
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity for debugging.
type Stats struct {
	Events        int
	Triggered     int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// NewChainsWatcher creates a watcher over the given chains root.
func NewChainsWatcher(chainsRoot string, trigger TriggerFunc) (*ChainsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ChainsWatcher{
		watcher:     watcher,
		chainsRoot:  chainsRoot,
		trigger:     trigger,
		debounceMap: make(map[string]time.Time),
		debounceDur: 2 * time.Second, // samplers rewrite stats in bursts
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
// Existing chain subdirectories are added to the watch set recursively.
func (cw *ChainsWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	if cw.running {
		cw.mu.Unlock()
		return nil
	}
	cw.running = true
	cw.mu.Unlock()

	if err := cw.addRecursive(cw.chainsRoot); err != nil {
		logging.Get(logging.CategoryWatch).Warn("Initial watch of %s failed: %v", cw.chainsRoot, err)
	} else {
		logging.Watch("Watching chains root: %s", cw.chainsRoot)
	}

	go cw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for cleanup.
func (cw *ChainsWatcher) Stop() {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return
	}
	cw.running = false
	cw.mu.Unlock()

	close(cw.stopCh)
	<-cw.doneCh

	if err := cw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("Error closing watcher: %v", err)
	}
	logging.Watch("Stopped")
}

// Snapshot returns a copy of the activity counters.
func (cw *ChainsWatcher) Snapshot() Stats {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.stats
}

// addRecursive watches a directory and all its subdirectories.
func (cw *ChainsWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return cw.watcher.Add(path)
		}
		return nil
	})
}

// run is the main event loop.
func (cw *ChainsWatcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	debounceTicker := time.NewTicker(250 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("Context cancelled")
			return

		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleEvent(event)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("Watcher error: %v", err)
			cw.mu.Lock()
			cw.stats.Errors++
			cw.mu.Unlock()

		case <-debounceTicker.C:
			cw.processDebounced(ctx)
		}
	}
}

// isStatsFile reports whether a path looks like a sampler stats file.
func isStatsFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "stats.dat") || strings.HasSuffix(base, ".stats")
}

// handleEvent processes a single filesystem event.
func (cw *ChainsWatcher) handleEvent(event fsnotify.Event) {
	// New chain directories need to enter the watch set
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := cw.addRecursive(event.Name); err != nil {
				logging.Get(logging.CategoryWatch).Warn("Failed to watch new dir %s: %v", event.Name, err)
			}
			return
		}
	}

	if !isStatsFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	logging.WatchDebug("Stats event: %s %s", event.Op, event.Name)

	cw.mu.Lock()
	cw.stats.Events++
	cw.stats.LastEventTime = time.Now()
	cw.stats.LastEventPath = event.Name
	cw.debounceMap[filepath.Dir(event.Name)] = time.Now()
	cw.mu.Unlock()
}

// processDebounced fires the trigger for chain dirs whose last event settled
// past the debounce window.
func (cw *ChainsWatcher) processDebounced(ctx context.Context) {
	cw.mu.Lock()
	now := time.Now()
	var settled []string
	for dir, eventTime := range cw.debounceMap {
		if now.Sub(eventTime) >= cw.debounceDur {
			settled = append(settled, dir)
			delete(cw.debounceMap, dir)
		}
	}
	if len(settled) > 0 {
		cw.stats.Triggered++
	}
	cw.mu.Unlock()

	if len(settled) == 0 || cw.trigger == nil {
		return
	}

	logging.Watch("Triggering re-validation for %d chain dir(s)", len(settled))
	cw.trigger(ctx, settled)
}
