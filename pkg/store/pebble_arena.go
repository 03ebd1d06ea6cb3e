package store

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleArena backs the Arena contract with a pebble database. Pebble keeps
// keys in sorted order natively and its WAL gives the same
// durable-before-return guarantee as the log arena when writes use Sync.
type PebbleArena struct {
	db *pebble.DB
}

// OpenPebbleArena opens (or creates) a pebble database under dir.
func OpenPebbleArena(dir string) (*PebbleArena, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble arena: %w", err)
	}
	return &PebbleArena{db: db}, nil
}

// Put stores key/value, synced to the WAL before returning.
func (a *PebbleArena) Put(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("store: empty key")
	}
	return a.db.Set(key, value, pebble.Sync)
}

// Get returns the value for key.
func (a *PebbleArena) Get(key []byte) ([]byte, error) {
	data, closer, err := a.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Delete removes key, reporting ErrKeyNotFound for absent keys so both
// backends behave alike.
func (a *PebbleArena) Delete(key []byte) error {
	if _, err := a.Get(key); err != nil {
		return err
	}
	return a.db.Delete(key, pebble.Sync)
}

// Scan visits every entry with the given key prefix in ascending key order.
func (a *PebbleArena) Scan(prefix []byte, fn func(key, value []byte) error) error {
	opts := &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	}
	iter, err := a.db.NewIter(opts)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Len counts live keys with a full iteration; the store is small by design.
func (a *PebbleArena) Len() int {
	n := 0
	_ = a.Scan(nil, func(_, _ []byte) error {
		n++
		return nil
	})
	return n
}

// Sync flushes the WAL.
func (a *PebbleArena) Sync() error {
	return a.db.Flush()
}

// Close shuts the database down.
func (a *PebbleArena) Close() error {
	return a.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil when no such bound exists.
func prefixUpperBound(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	upper := append([]byte(nil), prefix...)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}
