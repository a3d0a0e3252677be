package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Document keys. Each key holds one JSON document; together they are the
// whole persisted state of the bank core.
const (
	KeyUsers        = "users"
	KeyCurrentUser  = "currentUser"
	KeyTransactions = "transactions"
	KeyBlockchain   = "blockchain"
	KeyCryptoPrices = "cryptoPrices"
)

// ErrUnavailable is the cause of every storage I/O failure surfaced by a
// Store. Callers abort their critical section without applying in-memory
// mutations when they see it.
var ErrUnavailable = errors.New("storage unavailable")

// Store is a keyed document store. Get reports found=false for a missing
// key; an unreadable backend is an error, never an empty result.
type Store interface {
	Get(key string) (value []byte, found bool, err error)
	Put(key string, value []byte) error
	Close() error
}

// LoadJSON decodes the document at key into v. A blob that exists but does
// not decode is rejected as an error rather than treated as absent, so a
// corrupt document can never silently reset state.
func LoadJSON(s Store, key string, v interface{}) (bool, error) {
	data, found, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "malformed document %q", key)
	}
	return true, nil
}

func SaveJSON(s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode document %q", key)
	}
	return s.Put(key, data)
}
