package history

import (
	"sort"
	"sync"
)

// MemoryStore keeps settlements in a map. Its contents are lost on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	rounds map[uint64]*Settlement
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rounds: make(map[uint64]*Settlement)}
}

func (m *MemoryStore) Put(s *Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[s.Round] = s.Copy()
	return nil
}

func (m *MemoryStore) Get(round uint64) (*Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.rounds[round]
	if !ok {
		return nil, nil
	}
	return s.Copy(), nil
}

func (m *MemoryStore) List(from uint64, limit int) ([]*Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rounds := make([]uint64, 0, len(m.rounds))
	for r := range m.rounds {
		if r >= from {
			rounds = append(rounds, r)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i] < rounds[j] })
	if limit > 0 && len(rounds) > limit {
		rounds = rounds[:limit]
	}
	out := make([]*Settlement, len(rounds))
	for i, r := range rounds {
		out[i] = m.rounds[r].Copy()
	}
	return out, nil
}

func (m *MemoryStore) Last() (*Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *Settlement
	for r, s := range m.rounds {
		if last == nil || r > last.Round {
			last = s
		}
	}
	if last == nil {
		return nil, nil
	}
	return last.Copy(), nil
}

func (m *MemoryStore) Close() error { return nil }
