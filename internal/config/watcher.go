package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/plus3/fixedgate/internal/repro"
	"github.com/rs/zerolog"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reloads the config file when it changes and publishes the resulting
// timer settings. Only the newest settings are kept if the consumer lags.
type Watcher struct {
	path    string
	base    Config
	changed map[string]bool
	log     zerolog.Logger

	updates chan repro.Settings
	ready   chan struct{}

	mu       sync.Mutex
	debounce *time.Timer
	closed   bool
}

// NewWatcher creates a watcher for path. Reloads start from base and honour
// the same changed flags as the initial load.
func NewWatcher(path string, base Config, changed map[string]bool, log zerolog.Logger) *Watcher {
	return &Watcher{
		path:    path,
		base:    base,
		changed: changed,
		log:     log.With().Str("component", "config-watcher").Logger(),
		updates: make(chan repro.Settings, 1),
		ready:   make(chan struct{}),
	}
}

// Updates is closed when Run returns.
func (w *Watcher) Updates() <-chan repro.Settings { return w.updates }

// Ready is closed once the watch is installed (or failed to install).
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches the directory holding the config file until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer w.shutdown()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Error().Err(err).Msg("failed to create watcher")
		close(w.ready)
		return
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory instead.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		w.log.Error().Err(err).Str("dir", dir).Msg("failed to watch")
		close(w.ready)
		return
	}
	w.log.Info().Str("path", w.path).Msg("watching config")
	close(w.ready)

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) debounceReload(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(delay, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path, w.base, w.changed)
	if err != nil {
		w.log.Warn().Err(err).Msg("ignoring invalid config")
		return
	}
	w.publish(cfg.Settings())
}

func (w *Watcher) publish(s repro.Settings) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	// Drop a stale, unread value so the send never blocks.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- s
	w.log.Debug().
		Dur("interval", s.Interval).
		Stringer("policy", s.Policy).
		Int("max_steps", s.MaxSteps).
		Msg("config reloaded")
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.closed = true
	close(w.updates)
}
