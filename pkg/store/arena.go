// Package store provides the durable key-addressed persistence layer. An
// Arena is a flat ordered byte-key/byte-value map whose writes are synced to
// disk before returning; Partition carves an arena into per-entity key
// spaces that cannot collide. Two arena backends exist: the append-only log
// arena (default) and a pebble-backed one.
package store

import "errors"

var (
	// ErrKeyNotFound is returned when a key has no live value.
	ErrKeyNotFound = errors.New("store: key not found")

	// ErrCorruption is returned when on-disk data fails its integrity
	// check. It is an internal failure, never user input.
	ErrCorruption = errors.New("store: data corruption detected")

	// ErrClosed is returned by operations on a closed arena.
	ErrClosed = errors.New("store: arena is closed")
)

// Arena is the page-store abstraction every partition sits on. Keys are
// ordered bytewise; Scan visits entries in key order. Every successful Put
// and Delete is durable before it returns.
type Arena interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Scan(prefix []byte, fn func(key, value []byte) error) error
	Len() int
	Sync() error
	Close() error
}
