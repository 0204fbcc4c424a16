// Package session holds ephemeral per-session state, keyed by session ID.
// It is deliberately decoupled from the durable memory store: sessions are a
// cache with a TTL and no persistence contract, and losing one only loses
// in-flight workflow context.
package session

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/musehq/muse-go-sdk/core"
)

// Config configures the session store.
type Config struct {
	// MaxSessions caps how many sessions are kept before eviction.
	// Default: 1024.
	MaxSessions int64

	// TTL expires idle sessions. Zero means no expiry.
	TTL time.Duration
}

// Store is an in-process session cache backed by ristretto.
type Store struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewStore creates a session store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1024
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxSessions * 10,
		MaxCost:     cfg.MaxSessions,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("session: create cache: %w", err)
	}
	return &Store{cache: cache, ttl: cfg.TTL}, nil
}

// Put stores or refreshes a session, stamping LastActive.
// ristretto applies writes asynchronously; Put waits for the write so a
// session is visible to Get as soon as Put returns.
func (s *Store) Put(state *core.SessionState) {
	state.LastActive = time.Now()
	if s.ttl > 0 {
		s.cache.SetWithTTL(state.ID, state, 1, s.ttl)
	} else {
		s.cache.Set(state.ID, state, 1)
	}
	s.cache.Wait()
}

// Get returns the session for an ID, if present and not expired.
func (s *Store) Get(id string) (*core.SessionState, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	state, ok := v.(*core.SessionState)
	return state, ok
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.cache.Del(id)
}

// Close releases the cache.
func (s *Store) Close() {
	s.cache.Close()
}
