// Package session keeps per-browser widget state in an in-memory TTL cache.
package session

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store implements ports.SessionStore on top of go-cache. Entries expire
// after ttl without access; every Get slides the expiry forward.
type Store[T any] struct {
	c *cache.Cache
}

// Config configures a Store.
type Config struct {
	// TTL is the idle lifetime of a session.
	TTL time.Duration
	// CleanupInterval is how often expired entries are purged. Defaults to TTL/2.
	CleanupInterval time.Duration
	Logger          *slog.Logger
}

// NewStore creates an empty store.
func NewStore[T any](cfg Config) *Store[T] {
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = cfg.TTL / 2
	}

	c := cache.New(cfg.TTL, cleanup)
	if cfg.Logger != nil {
		logger := cfg.Logger.With(slog.String("component", "session.Store"))
		c.OnEvicted(func(id string, _ any) {
			logger.Debug("session expired", slog.String("widget_session", id))
		})
	}

	return &Store[T]{c: c}
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an identifier minted by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the value for id and refreshes its expiry.
func (s *Store[T]) Get(id string) (T, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		var zero T
		return zero, false
	}

	val, ok := v.(T)
	if !ok {
		var zero T
		return zero, false
	}

	// Replace fails if the entry expired in between, which is fine.
	_ = s.c.Replace(id, val, cache.DefaultExpiration)
	return val, true
}

// GetOrCreate returns the value for id, storing create() first if absent.
// When two callers race, both receive the value that won the insert.
func (s *Store[T]) GetOrCreate(id string, create func() T) T {
	if v, ok := s.Get(id); ok {
		return v
	}

	v := create()
	if err := s.c.Add(id, v, cache.DefaultExpiration); err != nil {
		if existing, ok := s.Get(id); ok {
			return existing
		}
		s.c.Set(id, v, cache.DefaultExpiration)
	}
	return v
}

// Delete removes id.
func (s *Store[T]) Delete(id string) {
	s.c.Delete(id)
}

// Len reports the number of stored sessions, including expired ones not yet purged.
func (s *Store[T]) Len() int {
	return s.c.ItemCount()
}
