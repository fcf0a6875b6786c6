package platform

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// BadgerStorage is a durable Storage over a badger key-value store. Consent
// decisions written here survive host restarts, the way browser localStorage
// keeps them across page loads.
type BadgerStorage struct {
	db *badger.DB
}

// OpenBadgerStorage creates or opens the store at the given path.
func OpenBadgerStorage(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable BadgerDB's default logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStorage{db: db}, nil
}

func (s *BadgerStorage) Get(key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", tracking.ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *BadgerStorage) Set(key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// Close closes the underlying store.
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

var _ tracking.Storage = (*BadgerStorage)(nil)
