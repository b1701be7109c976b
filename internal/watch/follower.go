// Package watch follows a file that another process is writing and emits
// its content each time writes settle.
package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/outcomed/internal/logging"
)

var (
	// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
	ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

	// ErrStopped is returned by Start once the follower has stopped or
	// already started.
	ErrStopped = errors.New("follower already started or stopped")
)

const (
	// DefaultDebounce is how long writes must pause before a snapshot is taken.
	DefaultDebounce = 250 * time.Millisecond

	// DefaultMaxBytes bounds how much of the file tail is read.
	DefaultMaxBytes = 8 << 20
)

// Snapshot is the content of the followed file at one point in time.
type Snapshot struct {
	Path    string
	Content []byte

	// Size is the file size. It exceeds len(Content) when Truncated.
	Size      int64
	Truncated bool
}

// Option configures a Follower.
type Option func(*Follower)

// WithDebounce sets the quiet period before a snapshot is taken.
func WithDebounce(d time.Duration) Option {
	return func(f *Follower) {
		if d > 0 {
			f.debounce = d
		}
	}
}

// WithMaxBytes limits snapshots to the last n bytes of the file.
func WithMaxBytes(n int64) Option {
	return func(f *Follower) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(l *logging.Logger) Option {
	return func(f *Follower) {
		if l != nil {
			f.logger = l
		}
	}
}

// Follower watches one file. The parent directory is watched so the file
// may be created, replaced or truncated after Start.
type Follower struct {
	path     string
	debounce time.Duration
	maxBytes int64
	logger   *logging.Logger

	watcher *fsnotify.Watcher
	updates chan Snapshot
	stop    chan struct{}
	last    []byte

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewFollower creates a follower for path. The file need not exist yet.
func NewFollower(path string, opts ...Option) (*Follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	f := &Follower{
		path:     abs,
		debounce: DefaultDebounce,
		maxBytes: DefaultMaxBytes,
		logger:   logging.NewNop(),
		watcher:  watcher,
		updates:  make(chan Snapshot, 1),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Start begins watching. If the file already has content, a first snapshot
// is emitted without waiting for a write. A follower starts at most once,
// and a failed Start stops it.
func (f *Follower) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started || f.stopped {
		return ErrStopped
	}
	if err := f.watcher.Add(filepath.Dir(f.path)); err != nil {
		f.stopped = true
		close(f.stop)
		f.release()
		return fmt.Errorf("watching %s: %w", filepath.Dir(f.path), err)
	}
	f.started = true
	go f.run(ctx)
	return nil
}

// Updates delivers snapshots. It is closed when the follower stops.
func (f *Follower) Updates() <-chan Snapshot {
	return f.updates
}

// Stop stops watching and releases the watcher, whether or not Start was
// called. It is safe to call more than once.
func (f *Follower) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	f.stopped = true
	close(f.stop)
	if !f.started {
		f.release()
	}
}

// release closes the watcher and the updates channel. The run loop does
// this itself once started.
func (f *Follower) release() {
	_ = f.watcher.Close()
	close(f.updates)
}

func (f *Follower) run(ctx context.Context) {
	defer f.release()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-f.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				timer.Reset(f.debounce)
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn(ctx, "file watcher error", zap.String("path", f.path), zap.Error(err))
		case <-timer.C:
			snap, err := f.read()
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					f.logger.Warn(ctx, "reading followed file", zap.String("path", f.path), zap.Error(err))
				}
				continue
			}
			if len(snap.Content) == 0 || bytes.Equal(snap.Content, f.last) {
				continue
			}
			f.last = snap.Content
			select {
			case f.updates <- snap:
			case <-f.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// read returns the file content, keeping only the last maxBytes.
func (f *Follower) read() (Snapshot, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return Snapshot{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Path: f.path, Size: info.Size()}
	if info.Size() > f.maxBytes {
		if _, err := file.Seek(info.Size()-f.maxBytes, io.SeekStart); err != nil {
			return Snapshot{}, err
		}
		snap.Truncated = true
	}
	snap.Content, err = io.ReadAll(io.LimitReader(file, f.maxBytes))
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
