// Package blobref hands out short-lived URLs for files held in memory.
//
// Every rendered download link owns at most one reference. Issuing a new
// reference for the same owner revokes the old one, Release revokes it
// outright, and references not re-issued within the TTL expire.
package blobref

import (
	"context"
	"mime"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/csg33k/paperdesk/internal/domain"
	"github.com/csg33k/paperdesk/internal/metrics"
)

const (
	DefaultTTL = 30 * time.Minute
	// MinSweepInterval is the shortest interval Run will tick at.
	MinSweepInterval = time.Second
	// PathPrefix is where Store.ServeHTTP is mounted.
	PathPrefix = "/refs/"
)

type entry struct {
	owner   string
	name    string
	blob    domain.Blob
	expires time.Time
}

// Store implements ports.DownloadRefs.
type Store struct {
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Manager

	mu      sync.Mutex
	byToken map[string]*entry
	byOwner map[string]string
}

type Option func(*Store)

func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Store) { s.metrics = m }
}

func New(opts ...Option) *Store {
	s := &Store{
		ttl:     DefaultTTL,
		now:     time.Now,
		byToken: make(map[string]*entry),
		byOwner: make(map[string]string),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Issue registers blob under a new token and returns its URL. Any reference
// previously held by owner is revoked.
func (s *Store) Issue(owner string, blob domain.Blob, name string) string {
	token := uuid.NewString()

	s.mu.Lock()
	replaced := s.revokeLocked(owner)
	s.byToken[token] = &entry{
		owner:   owner,
		name:    name,
		blob:    blob,
		expires: s.now().Add(s.ttl),
	}
	s.byOwner[owner] = token
	live := len(s.byToken)
	s.mu.Unlock()

	if replaced {
		s.metrics.RefRevoked("replaced", live)
	}
	s.metrics.RefIssued(live)
	return PathPrefix + token
}

// Release revokes the reference held by owner, if any.
func (s *Store) Release(owner string) {
	s.mu.Lock()
	released := s.revokeLocked(owner)
	live := len(s.byToken)
	s.mu.Unlock()

	if released {
		s.metrics.RefRevoked("released", live)
	}
}

func (s *Store) revokeLocked(owner string) bool {
	token, ok := s.byOwner[owner]
	if !ok {
		return false
	}
	delete(s.byOwner, owner)
	delete(s.byToken, token)
	return true
}

// Resolve returns the blob and suggested file name for a live token.
func (s *Store) Resolve(token string) (domain.Blob, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byToken[token]
	if !ok || !s.now().Before(e.expires) {
		return domain.Blob{}, "", false
	}
	return e.blob, e.name, true
}

// Live reports how many references are currently registered.
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byToken)
}

// Sweep drops expired references and returns how many it removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	var n int
	for token, e := range s.byToken {
		if now.Before(e.expires) {
			continue
		}
		delete(s.byToken, token)
		if s.byOwner[e.owner] == token {
			delete(s.byOwner, e.owner)
		}
		n++
	}
	live := len(s.byToken)
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.metrics.RefRevoked("expired", live)
	}
	return n
}

// Run sweeps expired references every interval until ctx is done. Intervals
// below MinSweepInterval are raised to it.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval < MinSweepInterval {
		interval = MinSweepInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// ServeHTTP serves GET {PathPrefix}{token} as an attachment.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	blob, name, ok := s.Resolve(token)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ct := blob.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", Attachment(name))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(blob.Data)
	s.metrics.Download()
}

// Attachment formats a Content-Disposition value for name, quoting or
// RFC 2231 encoding it as needed.
func Attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
