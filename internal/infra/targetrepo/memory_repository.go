package targetrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yanqian/web-summarizer/internal/domain/target"
	"github.com/yanqian/web-summarizer/pkg/util"
)

// MemoryRepository keeps registered documents in process memory. The first registered target
// becomes active unless a later registration asks to be.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	activeID int64

	records map[int64]target.Target
	byURL   map[string]int64
}

// NewMemoryRepository constructs an empty registry.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		records: make(map[int64]target.Target),
		byURL:   make(map[string]int64),
	}
}

// Register implements target.Repository. Registering the same document URL again updates its
// agent URL and keeps the id.
func (r *MemoryRepository) Register(_ context.Context, req target.RegisterRequest) (target.Target, error) {
	url := strings.TrimSpace(req.URL)
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.byURL[url]
	if !exists {
		id = r.nextID
		r.nextID++
		r.byURL[url] = id
		r.records[id] = target.Target{ID: id, URL: url, RegisteredAt: util.NowUTC()}
	}
	rec := r.records[id]
	rec.AgentURL = strings.TrimSpace(req.AgentURL)
	r.records[id] = rec

	if req.Active || r.activeID == 0 {
		r.activeID = id
	}
	return r.view(id), nil
}

// Get implements target.Repository.
func (r *MemoryRepository) Get(_ context.Context, id int64) (target.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.records[id]; !ok {
		return target.Target{}, target.ErrNotFound
	}
	return r.view(id), nil
}

// Active implements target.Repository.
func (r *MemoryRepository) Active(_ context.Context) (target.Target, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeID == 0 {
		return target.Target{}, false, nil
	}
	return r.view(r.activeID), true, nil
}

// Activate implements target.Repository.
func (r *MemoryRepository) Activate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return target.ErrNotFound
	}
	r.activeID = id
	return nil
}

// List implements target.Repository, ordered by id.
func (r *MemoryRepository) List(_ context.Context) ([]target.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]target.Target, 0, len(r.records))
	for id := range r.records {
		out = append(out, r.view(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// view must be called with the lock held.
func (r *MemoryRepository) view(id int64) target.Target {
	rec := r.records[id]
	rec.Active = id == r.activeID
	return rec
}

var _ target.Repository = (*MemoryRepository)(nil)
