package session

import "sync"

// MemoryStore keeps the token in process memory only. It backs the other
// store implementations and is the store of choice in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	token  string
	ok     bool
	subs   map[int]func(token string, ok bool)
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[int]func(string, bool))}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.ok
}

func (s *MemoryStore) SetToken(token string) error {
	s.set(token, true)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.set("", false)
	return nil
}

func (s *MemoryStore) Subscribe(fn func(token string, ok bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// set updates the value and notifies subscribers when it actually changed.
// Callbacks run outside the lock so a subscriber may call back into the store.
func (s *MemoryStore) set(token string, ok bool) {
	s.mu.Lock()
	if s.token == token && s.ok == ok {
		s.mu.Unlock()
		return
	}
	s.token = token
	s.ok = ok
	subs := make([]func(string, bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(token, ok)
	}
}
