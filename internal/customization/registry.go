package customization

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/etailor/internal/apperrors"
)

type entry struct {
	mu      sync.Mutex
	owner   uuid.UUID
	session *Session
	touched time.Time
}

// MaxSessionsPerOwner bounds the open sessions of one user. Opening another
// evicts that user's least recently used session.
const MaxSessionsPerOwner = 5

// Registry keeps the open wizard sessions of every signed-in user. Calls on
// one session are serialised; different sessions proceed in parallel.
type Registry struct {
	catalog Catalog
	now     func() time.Time

	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

// NewRegistry creates an empty registry whose sessions quote against catalog.
func NewRegistry(catalog Catalog) *Registry {
	return &Registry{
		catalog: catalog,
		now:     time.Now,
		entries: make(map[uuid.UUID]*entry),
	}
}

// Open starts a new session for owner and returns its id.
func (r *Registry) Open(owner uuid.UUID) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		count  int
		oldest uuid.UUID
		at     time.Time
	)
	for eid, e := range r.entries {
		if e.owner != owner {
			continue
		}
		count++
		if oldest == uuid.Nil || e.touched.Before(at) {
			oldest, at = eid, e.touched
		}
	}
	if count >= MaxSessionsPerOwner {
		delete(r.entries, oldest)
	}

	r.entries[id] = &entry{owner: owner, session: NewSession(r.catalog), touched: r.now()}
	return id
}

// With runs fn with exclusive access to the session.
func (r *Registry) With(id, owner uuid.UUID, fn func(*Session) error) error {
	e, err := r.lookup(id, owner)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Close discards the session.
func (r *Registry) Close(id, owner uuid.UUID) error {
	if _, err := r.lookup(id, owner); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if e.touched.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps abandoned sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				log.Printf("[Customization] expired %d abandoned sessions", n)
			}
		}
	}
}

func (r *Registry) lookup(id, owner uuid.UUID) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("customization %s: %w", id, apperrors.ErrNotFound)
	}
	if e.owner != owner {
		return nil, fmt.Errorf("customization %s: %w", id, apperrors.ErrForbidden)
	}
	e.touched = r.now()
	return e, nil
}
