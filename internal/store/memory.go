package store

import (
	"sync"

	"github.com/i474232898/city-weather/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory holder of the visible
// QueryState. Every Begin bumps a generation counter; Commit only applies a
// state for the latest generation.
type MemoryStore struct {
	mu sync.RWMutex

	state weather.QueryState
	gen   uint64

	// subscribers hold at most one pending state each.
	subs   map[int]chan weather.QueryState
	nextID int
}

// NewMemoryStore creates a MemoryStore in the Idle state.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: weather.Idle(),
		subs:  make(map[int]chan weather.QueryState),
	}
}

// Current returns the visible state.
func (s *MemoryStore) Current() weather.QueryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Generation returns the generation of the latest Begin.
func (s *MemoryStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Begin replaces the visible state and starts a new generation.
func (s *MemoryStore) Begin(state weather.QueryState) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = state
	s.publish()
	return s.gen
}

// Commit replaces the visible state if gen is still the latest generation.
func (s *MemoryStore) Commit(gen uint64, state weather.QueryState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.state = state
	s.publish()
	return true
}

// Subscribe returns a channel that receives the current state immediately and
// then each change. Call the returned func to unsubscribe.
func (s *MemoryStore) Subscribe() (<-chan weather.QueryState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan weather.QueryState, 1)
	ch <- s.state
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// publish must be called with mu held. A pending undelivered state is
// replaced by the newer one.
func (s *MemoryStore) publish() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}
