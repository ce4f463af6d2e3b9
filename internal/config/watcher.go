package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Runtime holds the current dynamic configuration. Readers always see a
// complete snapshot; a reload swaps the whole value.
type Runtime struct {
	current atomic.Pointer[Dynamic]
}

// NewRuntime starts from d.
func NewRuntime(d Dynamic) *Runtime {
	r := &Runtime{}
	r.Store(d)
	return r
}

// Load returns the current snapshot.
func (r *Runtime) Load() Dynamic {
	return *r.current.Load()
}

// Store replaces the snapshot.
func (r *Runtime) Store(d Dynamic) {
	r.current.Store(&d)
}

// Watcher reloads the dynamic section of a config file when it changes.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	runtime  *Runtime
	logger   *zap.Logger
	mu       sync.Mutex
	onChange []func(Dynamic)
	stopCh   chan struct{}
	doneCh   chan struct{}
	debounce time.Duration
}

// NewWatcher watches path and publishes into runtime.
func NewWatcher(path string, runtime *Runtime, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watching the directory also catches editors that save by rename.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &Watcher{
		path:     path,
		watcher:  fw,
		runtime:  runtime,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}, nil
}

// OnChange registers a callback run after every successful reload.
func (w *Watcher) OnChange(fn func(Dynamic)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Start begins watching for configuration changes
func (w *Watcher) Start() {
	go w.loop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))
}

// Stop ends the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
	w.logger.Info("Configuration watcher stopped")
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.Reload(); err != nil {
				w.logger.Error("Invalid configuration, keeping current", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// Reload reads the file, validates the dynamic section and publishes it.
// Fields missing from the file keep their current values, and environment
// overrides still win over the file. On error the current snapshot is kept.
func (w *Watcher) Reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var file struct {
		Dynamic struct {
			Pagination struct {
				DefaultPerPage *int `yaml:"default_per_page"`
				MaxPerPage     *int `yaml:"max_per_page"`
			} `yaml:"pagination"`
			Roles map[string][]string `yaml:"roles"`
		} `yaml:"dynamic"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	old := w.runtime.Load()
	next := old
	if v := file.Dynamic.Pagination.DefaultPerPage; v != nil {
		next.Pagination.DefaultPerPage = *v
	}
	if v := file.Dynamic.Pagination.MaxPerPage; v != nil {
		next.Pagination.MaxPerPage = *v
	}
	if file.Dynamic.Roles != nil {
		next.Roles = file.Dynamic.Roles
	}
	applyDynamicEnv(&next)
	if err := ValidateDynamic(next); err != nil {
		return err
	}

	w.runtime.Store(next)
	if !reflect.DeepEqual(old, next) {
		w.logger.Info("Configuration reloaded",
			zap.Int("default_per_page", next.Pagination.DefaultPerPage),
			zap.Int("max_per_page", next.Pagination.MaxPerPage),
			zap.Int("roles", len(next.Roles)),
		)
	}

	w.mu.Lock()
	handlers := append([]func(Dynamic){}, w.onChange...)
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(next)
	}
	return nil
}
