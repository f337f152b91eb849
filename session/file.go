package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
)

// FileStore is a durable Store writing each session as one JSON document
// under a directory. Checkpoints replace the whole file atomically
// (write-to-temp then rename), so a crash mid-write leaves the previous
// checkpoint intact. It shares InMemoryStore's locking discipline: writes
// to one session are guarded by the per-key mutex handed out by Lock.
type FileStore struct {
	dir string

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Get implements Store. Unknown ids yield a fresh empty state, matching the
// in-memory behavior.
func (s *FileStore) Get(sessionID string) (*core.State, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if errors.Is(err, fs.ErrNotExist) {
		return core.NewState(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}
	var st core.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &st, nil
}

// Put implements Store with an atomic whole-file replace.
func (s *FileStore) Put(sessionID string, st *core.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}

	path := s.path(sessionID)
	tmp, err := os.CreateTemp(s.dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("checkpoint session %s: %w", sessionID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint session %s: %w", sessionID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint session %s: %w", sessionID, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint session %s: %w", sessionID, err)
	}
	return nil
}

// Lock implements Store via lazily created per-key mutexes. The mutex
// serializes turns within this process; the store does not arbitrate
// between processes sharing a directory.
func (s *FileStore) Lock(sessionID string) func() {
	s.lockMu.Lock()
	m, ok := s.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sessionID] = m
	}
	s.lockMu.Unlock()

	m.Lock()
	return m.Unlock
}

// path maps a session id onto a file name, escaping separators so ids
// cannot traverse outside the directory.
func (s *FileStore) path(sessionID string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(sessionID)
	return filepath.Join(s.dir, name+".json")
}
