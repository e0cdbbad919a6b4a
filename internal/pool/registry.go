package pool

import (
	"log/slog"
	"sync"
	"time"
)

// Registry is the scheduler's map from endpoint-grouping key to its Pool,
// standing in for the original's get_deletion_manager /
// get_transfer_manager lookups.
type Registry struct {
	mu    sync.Mutex
	pools map[string]*Pool
}

func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*Pool)}
}

// GetOrCreate returns the existing pool for key, or creates one with
// maxConcurrent slots and the given collector scan period. Per spec.md
// §4.5 edge case (a), if a pool for key already exists its concurrency (and
// collector period) is NOT re-tuned; that only happens via Recycle followed
// by re-creation.
func (r *Registry) GetOrCreate(key string, maxConcurrent int, collectPeriod time.Duration, processResult ProcessResult, logger *slog.Logger) *Pool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.pools[key]; ok {
		return existing
	}
	p := New(key, maxConcurrent, collectPeriod, processResult, logger)
	r.pools[key] = p
	return p
}

// Recycle drops every pool reporting ready-for-recycle, implementing
// spec.md §4.5 step 7.
func (r *Registry) Recycle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.pools {
		if p.Recyclable() {
			p.Close()
			delete(r.pools, key)
		}
	}
}

// CloseAll force-closes every pool, used by the shutdown drain when the
// stop was SIGTERM-triggered.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pools {
		p.Close()
	}
}

// AllRecyclable reports whether every registered pool is ready-for-recycle,
// used by the final shutdown drain loop.
func (r *Registry) AllRecyclable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pools {
		if !p.Recyclable() {
			return false
		}
	}
	return true
}

// Len reports the number of registered pools.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}
