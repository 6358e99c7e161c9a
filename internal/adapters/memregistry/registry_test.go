package memregistry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csg33k/paperdesk/internal/adapters/memregistry"
	"github.com/csg33k/paperdesk/internal/domain"
	"github.com/csg33k/paperdesk/internal/ports"
)

var _ ports.FileRegistry = (*memregistry.Registry)(nil)

func TestPutLookupDelete(t *testing.T) {
	r := memregistry.New()
	_, ok := r.Lookup(1)
	assert.False(t, ok)

	r.Put(1, domain.Blob{Name: "a.pdf"})
	r.Put(1, domain.Blob{Name: "b.pdf"})
	b, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "b.pdf", b.Name, "re-selection replaces the entry")
	assert.Equal(t, 1, r.Len())

	r.Delete(1)
	_, ok = r.Lookup(1)
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	r := memregistry.New()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			r.Put(id, domain.Blob{Name: "x"})
		}(i)
		go func(id int64) {
			defer wg.Done()
			r.Lookup(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, r.Len())
}
