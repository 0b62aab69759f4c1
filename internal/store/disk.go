package store

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DiskStore persists the whole key space to a single file. Every operation
// reads the full file, decodes it, applies the mutation in memory and writes
// the full snapshot back, all under one mutex. Cost is O(store size) per
// operation; this is a demonstration backend, not a storage engine.
//
// The mutex only serializes operations within one process. A second process
// (or a second DiskStore) on the same file is not protected against; that is
// a documented limitation.
type DiskStore struct {
	mu    sync.Mutex
	path  string
	codec Codec

	// commit swaps the temp file into place. Tests override it to fail
	// between the temp write and the rename.
	commit func(tmp, path string) error
}

var _ Backend = (*DiskStore)(nil)

// NewDiskStore opens a store backed by the file at path, creating it with an
// empty snapshot if it does not exist. An existing file is reused as-is.
func NewDiskStore(path string, codec Codec) (*DiskStore, error) {
	if codec == nil {
		codec = JSON
	}
	s := &DiskStore{
		path:   path,
		codec:  codec,
		commit: os.Rename,
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &IOError{Op: "stat", Path: path, Err: err}
		}
		if err := s.flush(make(map[string]Value)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *DiskStore) Create(key string, value Value, txnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	if existing, ok := snap[key]; ok {
		slog.Info("Key conflict in create operation",
			"txn_id", txnID,
			"key", key,
			"old_value", existing,
			"new_value", value)
		return &KeyConflictError{Key: key, Existing: existing, Attempted: value}
	}
	snap[key] = value
	return s.flush(snap)
}

func (s *DiskStore) Replace(key string, value Value, txnID string) (Value, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return Value{}, false, err
	}
	prev, ok := snap[key]
	if !ok {
		slog.Info("Replace operation on key that did not exist",
			"txn_id", txnID,
			"key", key,
			"value", value)
	}
	snap[key] = value
	if err := s.flush(snap); err != nil {
		return Value{}, false, err
	}
	return prev, ok, nil
}

func (s *DiskStore) Delete(key string, txnID string) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return Value{}, err
	}
	v, ok := snap[key]
	if !ok {
		return Value{}, &KeyNotFoundError{Key: key}
	}
	delete(snap, key)
	if err := s.flush(snap); err != nil {
		return Value{}, err
	}
	return v, nil
}

func (s *DiskStore) Get(key string, txnID string) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return Value{}, err
	}
	v, ok := snap[key]
	if !ok {
		return Value{}, &KeyNotFoundError{Key: key}
	}
	return v, nil
}

func (s *DiskStore) Close() error { return nil }

// load reads and decodes the full snapshot. A file that exists but cannot be
// decoded is corruption, not an empty store; starting empty here would lose
// data on the next flush.
func (s *DiskStore) load() (map[string]Value, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}
	snap := make(map[string]Value)
	if err := s.codec.Unmarshal(data, &snap); err != nil {
		return nil, &CorruptionError{Path: s.path, Err: err}
	}
	return snap, nil
}

// flush encodes the snapshot to a temp file in the same directory and renames
// it over the store file, so a crash mid-write leaves either the old or the
// new snapshot, never a torn one.
func (s *DiskStore) flush(snap map[string]Value) error {
	data, err := s.codec.Marshal(snap)
	if err != nil {
		return &IOError{Op: "encode", Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &IOError{Op: "create temp for", Path: s.path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &IOError{Op: "write", Path: tmp.Name(), Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &IOError{Op: "sync", Path: tmp.Name(), Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: tmp.Name(), Err: err}
	}
	if err := s.commit(tmp.Name(), s.path); err != nil {
		return &IOError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}
