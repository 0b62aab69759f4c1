package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is. The typed errors below carry
// the structured detail and unwrap to these.
var (
	ErrKeyConflict = errors.New("key already exists")
	ErrKeyNotFound = errors.New("key not found")
	ErrCorrupted   = errors.New("store file corrupted")
	ErrIO          = errors.New("storage i/o failure")

	// ErrValueType is returned when a value is not one of the supported
	// scalar types (string, number, boolean, null).
	ErrValueType = errors.New("value must be a string, number, boolean or null")
)

// KeyConflictError is returned by Create when the key is already present.
type KeyConflictError struct {
	Key       string
	Existing  Value
	Attempted Value
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("key %q already exists with value %s", e.Key, e.Existing)
}

func (e *KeyConflictError) Unwrap() error { return ErrKeyConflict }

// KeyNotFoundError is returned by Get and Delete when the key is absent.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found", e.Key)
}

func (e *KeyNotFoundError) Unwrap() error { return ErrKeyNotFound }

// CorruptionError means the backing store could not be decoded. The operation
// is aborted without writing anything back.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("failed to decode store file %s: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() []error { return []error{ErrCorrupted, e.Err} }

// IOError means an open/read/write/rename on the backing store failed for
// environmental reasons.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s store file %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }
