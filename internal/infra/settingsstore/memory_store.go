package settingsstore

import (
	"context"
	"strings"
	"sync"

	"github.com/yanqian/web-summarizer/internal/domain/settings"
)

// MemoryStore keeps the host preference in process memory for tests/dev.
type MemoryStore struct {
	mu   sync.RWMutex
	host string
}

// NewMemoryStore constructs a store seeded with host, which may be empty.
func NewMemoryStore(host string) *MemoryStore {
	return &MemoryStore{host: strings.TrimSpace(host)}
}

// Host implements settings.Store.
func (s *MemoryStore) Host(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host, nil
}

// SetHost implements settings.Store. An empty host clears the preference.
func (s *MemoryStore) SetHost(_ context.Context, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.host = strings.TrimSpace(host)
	return nil
}

var _ settings.Store = (*MemoryStore)(nil)
