package cart

import "sync"

// Store keeps one cart per session token. Carts live in memory only and
// disappear with the process or on logout.
type Store struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// ForSession returns the session's cart, creating an empty one on first use.
func (s *Store) ForSession(sessionID string) *Cart {
	s.mu.RLock()
	c, ok := s.carts[sessionID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionID]; ok {
		return c
	}
	c = New()
	s.carts[sessionID] = c
	return c
}

// Delete drops a session's cart, for example on logout or session expiry.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}
