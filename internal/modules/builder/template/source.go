package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmhernandez2525/learning-hall/internal/domain/builder"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

const reloadDebounce = 100 * time.Millisecond

// Source serves the current heuristics table. With a file path it can be reloaded in place.
type Source struct {
	path    string
	log     *logger.Logger
	current atomic.Pointer[Heuristics]
}

// NewSource loads path, or the embedded defaults when path is empty.
func NewSource(path string, baseLog *logger.Logger) (*Source, error) {
	s := &Source{path: path, log: baseLog.With("component", "HeuristicsSource")}
	if path == "" {
		h := DefaultHeuristics()
		s.current.Store(&h)
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) Current() Heuristics { return *s.current.Load() }

func (s *Source) Build(modules []builder.Module) Structure {
	return BuildWith(s.Current(), modules)
}

// Reload re-reads the file. On error the previous table stays active.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read heuristics file: %w", err)
	}
	h, err := LoadHeuristics(raw)
	if err != nil {
		return err
	}
	s.current.Store(&h)
	return nil
}

// Watch reloads the file whenever it is written or recreated, until ctx is done.
// It is a no-op for the embedded table.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// editors replace files by rename, so watch the directory
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := s.Reload(); err != nil {
					s.log.Warn("Heuristics reload failed, keeping previous table", "path", s.path, "error", err)
					return
				}
				s.log.Info("Heuristics reloaded", "path", s.path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("Heuristics watcher error", "error", err)
		}
	}
}
