package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/stackpad/kvstore/internal/store"
)

// kv-reader inspects a store offline: either a local_disk snapshot file or a
// badger directory. Useful for debugging what a server instance persisted.
func main() {
	var (
		path      = flag.String("path", "", "Path to a local_disk store file")
		format    = flag.String("format", "json", "Store file encoding (json or gob)")
		badgerDir = flag.String("badger", "", "Path to a badger directory")
		key       = flag.String("key", "", "Print only this key")
	)
	flag.Parse()

	switch {
	case *path != "" && *badgerDir != "":
		log.Fatal("use either -path or -badger, not both")
	case *path != "":
		if err := readSnapshot(*path, *format, *key); err != nil {
			log.Fatal(err)
		}
	case *badgerDir != "":
		if err := readBadger(*badgerDir, *key); err != nil {
			log.Fatal(err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func readSnapshot(path, format, key string) error {
	codec, err := store.CodecFor(format)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	snap := make(map[string]store.Value)
	if err := codec.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if key != "" {
		v, ok := snap[key]
		if !ok {
			return fmt.Errorf("key %q not found", key)
		}
		printEntry(key, v)
		return nil
	}

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("Found %d keys in %s:\n", len(keys), path)
	for _, k := range keys {
		printEntry(k, snap[k])
	}
	return nil
}

func readBadger(dir, key string) error {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	opts.ReadOnly = true

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open badger db: %w", err)
	}
	defer db.Close()

	return db.View(func(txn *badger.Txn) error {
		if key != "" {
			item, err := txn.Get([]byte(key))
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			return printBadgerItem(item)
		}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		n := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if err := printBadgerItem(it.Item()); err != nil {
				return err
			}
			n++
		}
		fmt.Printf("%d keys total\n", n)
		return nil
	})
}

func printBadgerItem(item *badger.Item) error {
	data, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	var v store.Value
	if err := store.JSON.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode value for %q: %w", item.Key(), err)
	}
	printEntry(string(item.Key()), v)
	return nil
}

func printEntry(key string, v store.Value) {
	fmt.Printf("%s = %s (%s)\n", key, v, v.Kind())
}
