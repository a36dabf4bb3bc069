package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/pders01/mifind/internal/debuglog"
)

const (
	DefaultWatchDebounce = 300 * time.Millisecond
	DefaultUpdateRate    = 20
)

// WatchOptions tunes a Watcher.
type WatchOptions struct {
	Debounce time.Duration
	// UpdateRate limits index updates per second.
	UpdateRate float64
	Burst      int
}

// Watcher applies filesystem events below the indexer roots. Events for the
// same path are debounced and updates are rate limited.
type Watcher struct {
	ix      *Indexer
	fsw     *fsnotify.Watcher
	limiter *rate.Limiter
	delay   time.Duration
	changes chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewWatcher watches every non-skipped directory below the roots and starts
// the event loop.
func NewWatcher(ix *Indexer, opts WatchOptions) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultWatchDebounce
	}
	if opts.UpdateRate <= 0 {
		opts.UpdateRate = DefaultUpdateRate
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		ix:      ix,
		fsw:     fsw,
		limiter: rate.NewLimiter(rate.Limit(opts.UpdateRate), opts.Burst),
		delay:   opts.Debounce,
		changes: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		timers:  make(map[string]*time.Timer),
	}

	for _, root := range ix.Roots() {
		w.addTree(root)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changes delivers a signal after one or more updates were applied.
// Signals coalesce while nobody is receiving.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Close stops the loop and every pending update, and waits for updates
// already being applied.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsw.Close()

	w.mu.Lock()
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	w.wg.Wait()
	return err
}

func (w *Watcher) addTree(dir string) {
	if w.ix.skippedPath(dir) {
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && w.ix.Skip(d.Name(), true) {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			debuglog.Warnf("watcher: add %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debuglog.Warnf("watcher: %v", err)
		}
	}
}

// schedule applies path once no event for it arrived for the debounce delay.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.delay, func() { w.fire(path, t) })
	w.timers[path] = t
}

// fire runs when t expires. A newer timer for the same path keeps its
// entry.
func (w *Watcher) fire(path string, t *time.Timer) {
	w.mu.Lock()
	if w.timers[path] == t {
		delete(w.timers, path)
	}
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()

	defer w.wg.Done()
	w.apply(path)
}

func (w *Watcher) apply(path string) {
	if err := w.limiter.Wait(w.ctx); err != nil {
		return
	}
	if err := w.ix.Update(w.ctx, path); err != nil {
		debuglog.Warnf("watcher: update %s: %v", path, err)
		return
	}
	w.addTree(path)

	select {
	case w.changes <- struct{}{}:
	default:
	}
}
