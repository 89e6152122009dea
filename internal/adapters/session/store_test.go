package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-oasis/internal/ports"
)

var _ ports.SessionStore[int] = (*Store[int])(nil)

type widgetStub struct{ id int }

func TestStore_GetOrCreate(t *testing.T) {
	s := NewStore[*widgetStub](Config{TTL: time.Minute})

	first := s.GetOrCreate("abc", func() *widgetStub { return &widgetStub{id: 1} })
	second := s.GetOrCreate("abc", func() *widgetStub { return &widgetStub{id: 2} })

	assert.Same(t, first, second)
	assert.Equal(t, 1, s.Len())

	got, ok := s.Get("abc")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestStore_GetOrCreate_Concurrent(t *testing.T) {
	s := NewStore[*widgetStub](Config{TTL: time.Minute})

	var created atomic.Int32
	results := make([]*widgetStub, 50)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.GetOrCreate("shared", func() *widgetStub {
				return &widgetStub{id: int(created.Add(1))}
			})
		}()
	}
	wg.Wait()

	winner, ok := s.Get("shared")
	require.True(t, ok)
	for _, r := range results {
		assert.Same(t, winner, r)
	}
}

func TestStore_Expiry(t *testing.T) {
	s := NewStore[string](Config{TTL: 50 * time.Millisecond, CleanupInterval: 10 * time.Millisecond})
	s.GetOrCreate("gone", func() string { return "v" })

	assert.Eventually(t, func() bool {
		_, ok := s.Get("gone")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore[string](Config{TTL: time.Minute})
	s.GetOrCreate("id", func() string { return "v" })

	s.Delete("id")
	s.Delete("missing")

	_, ok := s.Get("id")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.True(t, ValidID(id))
	assert.NotEqual(t, id, NewID())
	assert.False(t, ValidID("not-a-session"))
	assert.False(t, ValidID(""))
}
