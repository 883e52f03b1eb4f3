package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Batch is one debounced group of changed paths.
type Batch struct {
	Paths []string
}

// EventSource yields debounced change batches. Next blocks until a batch is
// ready or ctx is done.
type EventSource interface {
	Next(ctx context.Context) (Batch, error)
}

// Source is an fsnotify-backed EventSource for a single directory. Batches
// that arrive while nobody is waiting are merged, so a slow consumer sees one
// batch covering everything since its last call.
type Source struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	ready   chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSource starts watching dir (non-recursively).
func NewSource(dir string, debounce time.Duration, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	s := &Source{
		watcher: w,
		logger:  logger,
		pending: make(map[string]struct{}),
		ready:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.debouncer = NewDebouncer(debounce, s.publish)

	go s.pump()

	return s, nil
}

func (s *Source) pump() {
	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if isRelevant(event) {
				s.debouncer.Trigger(event.Name)
			}

		case watchErr, ok := <-s.watcher.Errors:
			if !ok {
				return
			}

			s.logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func (s *Source) publish(paths []string) {
	s.mu.Lock()
	for _, p := range paths {
		s.pending[p] = struct{}{}
	}
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Next blocks until a non-empty batch is available or ctx is done.
func (s *Source) Next(ctx context.Context) (Batch, error) {
	for {
		select {
		case <-ctx.Done():
			return Batch{}, ctx.Err()
		case <-s.done:
			return Batch{}, fmt.Errorf("source closed")
		case <-s.ready:
		}

		if paths := s.drain(); len(paths) > 0 {
			return Batch{Paths: paths}, nil
		}
	}
}

// drain takes the pending paths, sorted. A ready token left behind by a
// publish that an earlier drain already covered yields nothing.
func (s *Source) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.pending))
	for p := range s.pending {
		paths = append(paths, p)
	}

	s.pending = make(map[string]struct{})

	sort.Strings(paths)

	return paths
}

// Close stops watching.
func (s *Source) Close() error {
	var err error

	s.once.Do(func() {
		close(s.done)
		s.debouncer.Stop()
		err = s.watcher.Close()
	})

	return err
}

// isRelevant filters out events that cannot change a render.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	// Chmod covers attribute changes, including mtime bumps from touch.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) &&
		!event.Has(fsnotify.Chmod) {
		return false
	}

	name := filepath.Base(event.Name)

	// Ignore editor temporary files.
	if strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") ||
		strings.HasPrefix(name, "#") || strings.HasPrefix(name, ".#") {
		return false
	}

	return true
}
