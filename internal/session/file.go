package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileStore persists the token to a single file so the session survives
// process restarts. An fsnotify watcher on the containing directory turns
// writes and removals performed by other processes into Subscribe callbacks,
// the same way another browser tab logging out invalidates this one.
type FileStore struct {
	path   string
	mem    *MemoryStore
	logger *zap.Logger

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewFileStore loads any previously persisted token from path and starts
// watching for external changes. A watcher setup failure is not fatal: the
// store still works, it just cannot observe other processes.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore{
		path:   path,
		mem:    NewMemoryStore(),
		logger: logger,
		done:   make(chan struct{}),
	}

	if token, ok := s.read(); ok {
		_ = s.mem.SetToken(token)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("token file watcher unavailable", zap.Error(err))
		return s, nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("create token dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		logger.Warn("watching token dir failed", zap.Error(err))
		return s, nil
	}
	s.watcher = watcher

	s.wg.Add(1)
	go s.watch()
	return s, nil
}

func (s *FileStore) Token() (string, bool) {
	return s.mem.Token()
}

func (s *FileStore) SetToken(token string) error {
	s.mem.set(token, true)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Warn("persisting token failed", zap.Error(err))
		return fmt.Errorf("persist token: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		s.logger.Warn("persisting token failed", zap.Error(err))
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mem.set("", false)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("removing persisted token failed", zap.Error(err))
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (s *FileStore) Subscribe(fn func(token string, ok bool)) func() {
	return s.mem.Subscribe(fn)
}

// Close stops the watcher goroutine. The store remains usable in memory.
// Close is safe to call more than once.
func (s *FileStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}

func (s *FileStore) watch() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			// mem.set deduplicates, so our own writes echoing back
			// through the watcher do not re-notify.
			if token, present := s.read(); present {
				s.mem.set(token, true)
			} else {
				s.mem.set("", false)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("token file watcher error", zap.Error(err))
		}
	}
}

func (s *FileStore) read() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("reading persisted token failed", zap.Error(err))
		}
		return "", false
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}
	return token, true
}
