package collections

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// Snapshot is the persisted set of registered collections at one version.
type Snapshot struct {
	Version     int64
	Collections []domain.Collection
}

// Store persists registered collections with optimistic versioning.
//
// Insert must fail with domain.ErrVersionConflict when the stored version
// differs from expectedVersion, and with domain.ErrDuplicateCollection when
// the key is already present. On success it returns the new version.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Insert(ctx context.Context, c domain.Collection, expectedVersion int64) (int64, error)
	Close() error
}

// fileDocument is the on-disk layout of a FileStore: collection display
// name to record, the same document older launchpad versions wrote.
type fileDocument map[string]domain.Collection

// FileStore keeps collections in a single JSON document that is rewritten
// whole through a temp file and rename. The store only ever grows, so the
// number of entries is its version.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first insert.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Version: int64(len(doc))}
	for _, c := range doc {
		snap.Collections = append(snap.Collections, c)
	}
	return snap, nil
}

func (s *FileStore) Insert(ctx context.Context, c domain.Collection, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return 0, err
	}
	if have := int64(len(doc)); have != expectedVersion {
		return 0, fmt.Errorf("%w: have %d, expected %d", domain.ErrVersionConflict, have, expectedVersion)
	}
	for _, existing := range doc {
		if existing.Key() == c.Key() {
			return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateCollection, c.Name)
		}
	}

	doc[c.Name] = c
	if err := s.write(doc); err != nil {
		return 0, err
	}
	return int64(len(doc)), nil
}

func (s *FileStore) Close() error { return nil }

// read loads the document. Records may omit their name; the key is the name.
// Any top-level value that is not a record object fails the whole read so
// that a foreign document is never overwritten.
func (s *FileStore) read() (fileDocument, error) {
	doc := make(fileDocument)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read collection store: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return doc, fmt.Errorf("parse collection store %s: %w", s.path, err)
	}
	for name, value := range raw {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return doc, fmt.Errorf("parse collection store %s: entry %q is not a collection record", s.path, name)
		}
		var c domain.Collection
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return doc, fmt.Errorf("parse collection store %s: entry %q: %w", s.path, name, err)
		}
		if c.Name == "" {
			c.Name = name
		}
		doc[name] = c
	}
	return doc, nil
}

func (s *FileStore) write(doc fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".collections-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace collection store: %w", err)
	}
	return nil
}

// MemoryStore is a Store without persistence.
type MemoryStore struct {
	mu      sync.Mutex
	version int64
	items   map[string]domain.Collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]domain.Collection)}
}

func (s *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Version: s.version}
	for _, c := range s.items {
		snap.Collections = append(snap.Collections, c)
	}
	return snap, nil
}

func (s *MemoryStore) Insert(ctx context.Context, c domain.Collection, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != expectedVersion {
		return 0, fmt.Errorf("%w: have %d, expected %d", domain.ErrVersionConflict, s.version, expectedVersion)
	}
	if _, ok := s.items[c.Key()]; ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateCollection, c.Name)
	}
	s.items[c.Key()] = c
	s.version++
	return s.version, nil
}

func (s *MemoryStore) Close() error { return nil }
