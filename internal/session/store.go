package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned by Store.Get when the handle is unknown or its
// slot has expired.
var ErrNoSession = errors.New("session: no session for handle")

// Store keeps one Principal per handle. Implementations must make Delete
// idempotent: deleting an unknown handle is not an error.
type Store interface {
	Set(ctx context.Context, handle string, p Principal, ttl time.Duration) error
	Get(ctx context.Context, handle string) (Principal, error)
	Delete(ctx context.Context, handle string) error
}

type memoryEntry struct {
	principal Principal
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Expired entries are invisible to Get
// immediately and are removed by a background sweeper; call Close to stop it.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore starts a MemoryStore whose sweeper runs every interval.
func NewMemoryStore(interval time.Duration) *MemoryStore {
	return newMemoryStore(interval, time.Now)
}

func newMemoryStore(interval time.Duration, now func() time.Time) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.sweep(interval)
	return s
}

func (s *MemoryStore) Set(_ context.Context, handle string, p Principal, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[handle] = memoryEntry{principal: p, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, handle string) (Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[handle]
	if !ok || !s.now().Before(e.expiresAt) {
		return Anonymous(), ErrNoSession
	}
	return e.principal, nil
}

func (s *MemoryStore) Delete(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, handle)
	return nil
}

// Len reports how many entries, expired or not, are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweeper and waits for it to exit. Safe to call twice.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *MemoryStore) sweep(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for h, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, h)
		}
	}
}
