// Package memregistry keeps uploaded files in memory, keyed by paper ID,
// for the lifetime of the server process.
package memregistry

import (
	"sync"

	"github.com/csg33k/paperdesk/internal/domain"
)

// Registry is the owner side of ports.FileRegistry.
type Registry struct {
	mu    sync.RWMutex
	blobs map[int64]domain.Blob
}

func New() *Registry {
	return &Registry{blobs: make(map[int64]domain.Blob)}
}

// Put stores or replaces the file held for paperID.
func (r *Registry) Put(paperID int64, b domain.Blob) {
	r.mu.Lock()
	r.blobs[paperID] = b
	r.mu.Unlock()
}

func (r *Registry) Delete(paperID int64) {
	r.mu.Lock()
	delete(r.blobs, paperID)
	r.mu.Unlock()
}

func (r *Registry) Lookup(paperID int64) (domain.Blob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[paperID]
	return b, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}
