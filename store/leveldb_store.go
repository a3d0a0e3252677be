package store

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

const readCacheSize = 32

// thread safe leveldb document store
type leveldbStore struct {
	db    *leveldb.DB
	cache *lru.Cache
	log   log15.Logger
}

func NewLevelDB(path string) (Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "open leveldb %s: %v", path, err)
	}
	cache, err := lru.New(readCacheSize)
	if err != nil {
		return nil, err
	}
	return &leveldbStore{
		db:    db,
		cache: cache,
		log:   log15.New("module", "store/leveldb"),
	}, nil
}

func (s *leveldbStore) Get(key string) ([]byte, bool, error) {
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]byte), true, nil
	}
	value, err := s.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		s.log.Error("get failed", "key", key, "err", err)
		return nil, false, errors.Wrapf(ErrUnavailable, "get %q: %v", key, err)
	}
	s.cache.Add(key, value)
	return value, true, nil
}

func (s *leveldbStore) Put(key string, value []byte) error {
	if err := s.db.Put([]byte(key), value, nil); err != nil {
		s.log.Error("put failed", "key", key, "err", err)
		return errors.Wrapf(ErrUnavailable, "put %q: %v", key, err)
	}
	s.cache.Add(key, value)
	return nil
}

func (s *leveldbStore) Close() error {
	return s.db.Close()
}
