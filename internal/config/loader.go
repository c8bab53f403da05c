package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/lineage/internal/metrics"
)

const (
	defaultQueryWorkers   = 8
	defaultQueueDepth     = 1000
	defaultQueryTimeoutMs = 2000
	defaultYearThreshold  = 1980
)

// Loader reads a YAML lineage file and watches it for changes.
// When a validate hook is set, a config that fails it never becomes current.
type Loader struct {
	path     string
	validate func(*LineageConfig) error
	mu       sync.RWMutex
	current  *LineageConfig
	onChange []func(*LineageConfig)
}

// NewLoader creates a Loader and performs the initial load.
// validate may be nil; Validate is the usual choice.
func NewLoader(path string, validate func(*LineageConfig) error) (*Loader, error) {
	l := &Loader{path: path, validate: validate}
	cfg, err := l.read()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the watched file.
func (l *Loader) Path() string { return l.path }

// Config returns the current (latest) configuration.
func (l *Loader) Config() *LineageConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*LineageConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that reloads the config on file changes.
// The parent directory is watched so editors that replace the file by rename
// are picked up too. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", dir, err)
	}
	target := filepath.Clean(l.path)

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if _, err := l.Reload(); err != nil {
					slog.Warn("config reload failed, keeping previous", "path", l.path, "err", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file.
// On error the previous config stays current and no callback runs.
func (l *Loader) Reload() (*LineageConfig, error) {
	cfg, err := l.read()
	if err != nil {
		status := "error"
		if errors.Is(err, ErrInvalid) {
			status = "invalid"
		}
		metrics.Reloads.WithLabelValues(status).Inc()
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*LineageConfig), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) read() (*LineageConfig, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	if l.validate != nil {
		if err := l.validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Load reads and decodes a config file and applies defaults.
// It does not validate; see Validate.
func Load(path string) (*LineageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes and applies defaults.
func Parse(data []byte) (*LineageConfig, error) {
	var cfg LineageConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *LineageConfig) {
	if cfg.Engine.QueryWorkers == 0 {
		cfg.Engine.QueryWorkers = defaultQueryWorkers
	}
	if cfg.Engine.QueueDepth == 0 {
		cfg.Engine.QueueDepth = defaultQueueDepth
	}
	if cfg.Engine.QueryTimeoutMs == 0 {
		cfg.Engine.QueryTimeoutMs = defaultQueryTimeoutMs
	}
	if cfg.Engine.YearThreshold == nil {
		year := defaultYearThreshold
		cfg.Engine.YearThreshold = &year
	}
}
