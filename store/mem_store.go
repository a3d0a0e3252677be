package store

import "sync"

// thread safe in-memory document store, used by tests and the demo node
type memStore struct {
	docs sync.Map
}

func NewMemory() Store {
	return &memStore{}
}

func (s *memStore) Get(key string) ([]byte, bool, error) {
	value, ok := s.docs.Load(key)
	if !ok {
		return nil, false, nil
	}
	return value.([]byte), true, nil
}

func (s *memStore) Put(key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	s.docs.Store(key, cp)
	return nil
}

func (s *memStore) Close() error {
	return nil
}
