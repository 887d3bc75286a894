package manifest

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process. Used for non-incremental builds and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]Entry{}}
}

func (s *MemoryStore) Load(ctx context.Context) (map[string]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, entries ...Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		s.entries[entry.Source] = entry
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sources ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, source := range sources {
		delete(s.entries, source)
	}
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = map[string]Entry{}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
