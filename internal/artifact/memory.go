package artifact

import (
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and single-run sessions
// that do not retain artifacts on disk.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

func key(day, slot string, kind Kind) string {
	return day + "/" + slot + "/" + string(kind)
}

func (s *MemoryStore) Get(day, slot string, kind Kind) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.m[key(day, slot, kind)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (s *MemoryStore) Put(day, slot string, kind Kind, payload []byte) error {
	b := make([]byte, len(payload))
	copy(b, payload)
	s.mu.Lock()
	s.m[key(day, slot, kind)] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Exists(day, slot string, kind Kind) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[key(day, slot, kind)]
	return ok, nil
}

func (s *MemoryStore) Delete(day, slot string, kind Kind) error {
	s.mu.Lock()
	delete(s.m, key(day, slot, kind))
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteDay(day string, kinds []Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.m {
		if !strings.HasPrefix(k, day+"/") {
			continue
		}
		for _, kind := range kinds {
			if strings.HasSuffix(k, "/"+string(kind)) {
				delete(s.m, k)
				break
			}
		}
	}
	return nil
}

func (s *MemoryStore) ListDays(kind Kind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	for k := range s.m {
		if !strings.HasSuffix(k, "/"+string(kind)) {
			continue
		}
		day, _, ok := strings.Cut(k, "/")
		if ok {
			seen[day] = true
		}
	}
	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Strings(days)
	return days, nil
}

func (s *MemoryStore) Close() error { return nil }
