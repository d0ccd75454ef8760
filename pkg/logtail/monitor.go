package logtail

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logresolve"
)

// PathResolver maps a category to the file it is written to.
type PathResolver interface {
	ResolveFile(ctx context.Context, cat logresolve.Category) (string, error)
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	Categories   []logresolve.Category
	Resolver     PathResolver
	Hub          *Hub
	Supervisor   *Supervisor
	PollInterval time.Duration
	Notify       bool
	Logger       *logging.ColoredLogger
}

// Monitor keeps one watcher per category running and publishes their lines
// to the hub.
type Monitor struct {
	opts   MonitorOptions
	logger *logging.ColoredLogger

	mu    sync.RWMutex
	paths map[logresolve.Category]string
}

// NewMonitor creates a Monitor. Missing Hub, Supervisor and Logger are
// filled with defaults.
func NewMonitor(opts MonitorOptions) *Monitor {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Hub == nil {
		opts.Hub = NewHub()
	}
	if opts.Supervisor == nil {
		opts.Supervisor = NewSupervisor(time.Second, time.Minute, opts.Logger)
	}
	if len(opts.Categories) == 0 {
		opts.Categories = logresolve.Categories
	}
	return &Monitor{
		opts:   opts,
		logger: opts.Logger,
		paths:  make(map[logresolve.Category]string),
	}
}

// Hub returns the hub lines are published to.
func (m *Monitor) Hub() *Hub { return m.opts.Hub }

// Paths returns the file currently followed for each category. Categories
// without a running watcher are absent.
func (m *Monitor) Paths() map[logresolve.Category]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[logresolve.Category]string, len(m.paths))
	for k, v := range m.paths {
		out[k] = v
	}
	return out
}

// Run blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, cat := range m.opts.Categories {
		wg.Add(1)
		go func(cat logresolve.Category) {
			defer wg.Done()
			m.opts.Supervisor.Supervise(ctx, "tail:"+string(cat), m.follower(cat))
		}(cat)
	}
	wg.Wait()
}

// follower returns the supervised task for cat. Every start re-resolves the
// path. After the file was replaced or removed the next start reads the new
// file from its beginning.
func (m *Monitor) follower(cat logresolve.Category) func(context.Context) error {
	fromStart := false
	return func(ctx context.Context) error {
		path, err := m.opts.Resolver.ResolveFile(ctx, cat)
		if err != nil {
			return err
		}

		m.setPath(cat, path)
		defer m.setPath(cat, "")

		opts := []Option{
			WithPollInterval(m.opts.PollInterval),
			WithNotify(m.opts.Notify),
			WithLogger(m.logger),
		}
		if fromStart {
			opts = append(opts, WithFromStart())
		}

		m.logger.ComponentInfo(logging.ComponentTail, "Following log file",
			zap.String("category", string(cat)),
			zap.String("path", path),
			zap.Bool("from_start", fromStart))

		w := NewWatcher(path, func(text string) {
			m.opts.Hub.Publish(Line{
				Category: string(cat),
				Path:     path,
				Text:     text,
				Time:     time.Now().UTC(),
			})
		}, opts...)

		err = w.Run(ctx)
		fromStart = errors.Is(err, ErrFileReplaced) || errors.Is(err, fs.ErrNotExist)
		return err
	}
}

func (m *Monitor) setPath(cat logresolve.Category, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if path == "" {
		delete(m.paths, cat)
		return
	}
	m.paths[cat] = path
}
