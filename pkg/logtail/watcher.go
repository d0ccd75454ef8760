// Package logtail follows log files as they grow and reads their recent
// history.
package logtail

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
)

// DefaultPollInterval is how long the watcher sleeps when no new data is
// available.
const DefaultPollInterval = 500 * time.Millisecond

// ErrFileReplaced is returned when the path now names a different file,
// typically after rename-based rotation.
var ErrFileReplaced = errors.New("log file replaced")

// Watcher follows one file and calls onLine for every completed line.
type Watcher struct {
	path      string
	onLine    func(string)
	interval  time.Duration
	fromStart bool
	notify    bool
	logger    *logging.ColoredLogger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithPollInterval sets the idle poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithFromStart makes the watcher emit the existing contents first.
func WithFromStart() Option {
	return func(w *Watcher) { w.fromStart = true }
}

// WithNotify enables fsnotify wake-ups in addition to polling.
func WithNotify(enabled bool) Option {
	return func(w *Watcher) { w.notify = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *logging.ColoredLogger) Option {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher creates a watcher for path. onLine receives lines without the
// trailing newline, in file order, exactly once each.
func NewWatcher(path string, onLine func(string), opts ...Option) *Watcher {
	w := &Watcher{
		path:     path,
		onLine:   onLine,
		interval: DefaultPollInterval,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the followed file.
func (w *Watcher) Path() string { return w.path }

// Run follows the file until ctx is cancelled, which returns nil. Deletion,
// replacement and read failures end the run with an error.
func (w *Watcher) Run(ctx context.Context) error {
	f, err := os.Open(w.path)
	if err != nil {
		return cerrors.NewIOError("open", w.path, err)
	}
	defer f.Close()

	opened, err := f.Stat()
	if err != nil {
		return cerrors.NewIOError("stat", w.path, err)
	}

	var offset int64
	if !w.fromStart {
		if offset, err = f.Seek(0, io.SeekEnd); err != nil {
			return cerrors.NewIOError("seek", w.path, err)
		}
	}

	wake, stop := w.wakeups()
	defer stop()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	reader := bufio.NewReader(f)
	var partial strings.Builder

	w.logger.ComponentDebug(logging.ComponentTail, "Watching log file",
		zap.String("path", w.path), zap.Int64("offset", offset))

	for {
		chunk, err := reader.ReadString('\n')
		offset += int64(len(chunk))
		partial.WriteString(chunk)

		if err == nil {
			line := strings.TrimRight(partial.String(), "\r\n")
			partial.Reset()
			w.onLine(line)
			continue
		}
		if !errors.Is(err, io.EOF) {
			return cerrors.NewIOError("read", w.path, err)
		}

		// No complete line yet. Check the file is still ours before waiting.
		current, err := os.Stat(w.path)
		if err != nil {
			return cerrors.NewIOError("stat", w.path, err)
		}
		if !os.SameFile(opened, current) {
			return cerrors.NewIOError("stat", w.path, ErrFileReplaced)
		}
		if current.Size() < offset {
			w.logger.ComponentInfo(logging.ComponentTail, "Log file truncated, rewinding",
				zap.String("path", w.path))
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return cerrors.NewIOError("seek", w.path, err)
			}
			reader.Reset(f)
			partial.Reset()
			offset = 0
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-wake:
		}
	}
}

// wakeups returns a channel that fires on fsnotify activity for the file.
// When notify is off or the watch cannot be set up the channel never fires.
func (w *Watcher) wakeups() (<-chan struct{}, func()) {
	if !w.notify {
		return nil, func() {}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.ComponentDebug(logging.ComponentTail, "fsnotify unavailable, polling only", zap.Error(err))
		return nil, func() {}
	}
	if err := fsw.Add(w.path); err != nil {
		fsw.Close()
		w.logger.ComponentDebug(logging.ComponentTail, "fsnotify watch failed, polling only",
			zap.String("path", w.path), zap.Error(err))
		return nil, func() {}
	}

	wake := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return wake, func() {
		close(done)
		fsw.Close()
	}
}
