package store

import (
	"fmt"

	"github.com/stackpad/kvstore/internal/config"
)

// Backend type names recognized by the storage config.
const (
	TypeInMemory  = "in_memory"
	TypeLocalDisk = "local_disk"
	TypeBadger    = "badger"
)

// New constructs a Backend based on storage configuration.
func New(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case TypeInMemory:
		return NewMemoryStore(), nil
	case TypeLocalDisk:
		codec, err := CodecFor(cfg.Format)
		if err != nil {
			return nil, err
		}
		return NewDiskStore(cfg.Path, codec)
	case TypeBadger:
		return NewBadgerStore(cfg.Badger.Directory)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
