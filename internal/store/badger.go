package store

import (
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore implements the backend contract over a Badger database. Unlike
// DiskStore it does not rewrite the key space per operation; conflict checks
// and mutations run inside a single Badger transaction instead.
type BadgerStore struct {
	db    *badger.DB
	dir   string
	codec Codec
}

var _ Backend = (*BadgerStore)(nil)

func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, &IOError{Op: "open", Path: dir, Err: err}
	}
	return &BadgerStore{
		db:    db,
		dir:   dir,
		codec: JSON,
	}, nil
}

func (s *BadgerStore) Create(key string, value Value, txnID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == nil {
			existing, err := s.decodeItem(item)
			if err != nil {
				return err
			}
			slog.Info("Key conflict in create operation",
				"txn_id", txnID,
				"key", key,
				"old_value", existing,
				"new_value", value)
			return &KeyConflictError{Key: key, Existing: existing, Attempted: value}
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return s.setValue(txn, key, value)
	})
	return s.wrap(err)
}

func (s *BadgerStore) Replace(key string, value Value, txnID string) (Value, bool, error) {
	var prev Value
	var replaced bool
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		switch {
		case err == nil:
			if prev, err = s.decodeItem(item); err != nil {
				return err
			}
			replaced = true
		case errors.Is(err, badger.ErrKeyNotFound):
			slog.Info("Replace operation on key that did not exist",
				"txn_id", txnID,
				"key", key,
				"value", value)
		default:
			return err
		}
		return s.setValue(txn, key, value)
	})
	if err != nil {
		return Value{}, false, s.wrap(err)
	}
	return prev, replaced, nil
}

func (s *BadgerStore) Delete(key string, txnID string) (Value, error) {
	var deleted Value
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &KeyNotFoundError{Key: key}
		}
		if err != nil {
			return err
		}
		if deleted, err = s.decodeItem(item); err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return Value{}, s.wrap(err)
	}
	return deleted, nil
}

func (s *BadgerStore) Get(key string, txnID string) (Value, error) {
	var value Value
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &KeyNotFoundError{Key: key}
		}
		if err != nil {
			return err
		}
		value, err = s.decodeItem(item)
		return err
	})
	if err != nil {
		return Value{}, s.wrap(err)
	}
	return value, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) setValue(txn *badger.Txn, key string, value Value) error {
	data, err := s.codec.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func (s *BadgerStore) decodeItem(item *badger.Item) (Value, error) {
	data, err := item.ValueCopy(nil)
	if err != nil {
		return Value{}, err
	}
	var v Value
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return Value{}, &CorruptionError{Path: s.dir, Err: err}
	}
	return v, nil
}

// wrap classifies engine errors as storage I/O failures while passing the
// contract's typed errors through untouched.
func (s *BadgerStore) wrap(err error) error {
	if err == nil ||
		errors.Is(err, ErrKeyConflict) ||
		errors.Is(err, ErrKeyNotFound) ||
		errors.Is(err, ErrCorrupted) {
		return err
	}
	return &IOError{Op: "access", Path: s.dir, Err: err}
}
