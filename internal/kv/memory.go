package kv

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for tests and single-node setups.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]string
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  make(map[string]string),
		expires: make(map[string]time.Time),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the time source. Test hook.
func (s *MemoryStore) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)

	value := int64(0)
	if raw, ok := s.values[key]; ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, err
		}
		value = parsed
	} else if ttl > 0 {
		s.expires[key] = s.now().Add(ttl)
	}
	value++
	s.values[key] = strconv.FormatInt(value, 10)
	return value, nil
}

func (s *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.IncrWithTTL(ctx, key, 0)
}

func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)

	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value
	if ttl > 0 {
		s.expires[key] = s.now().Add(ttl)
	}
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)
	return s.values[key], nil
}

func (s *MemoryStore) evict(key string) {
	if deadline, ok := s.expires[key]; ok && !s.now().Before(deadline) {
		delete(s.values, key)
		delete(s.expires, key)
	}
}

var _ Store = (*MemoryStore)(nil)
