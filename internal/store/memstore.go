package store

import (
	"sort"
	"sync"

	"paper-soccer/internal/match"
)

// MemoryStore keeps live matches by id. Matches are not persisted.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*match.Manager
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: map[string]*match.Manager{},
	}
}

func (s *MemoryStore) GetMatch(id string) (*match.Manager, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	return m, ok
}

func (s *MemoryStore) SaveMatch(m *match.Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID()] = m
}

func (s *MemoryStore) DeleteMatch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, id)
}

// ListMatches returns every match, oldest first.
func (s *MemoryStore) ListMatches() []*match.Manager {
	s.mu.RLock()
	out := make([]*match.Manager, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}
