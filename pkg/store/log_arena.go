package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cvault/cvault/pkg/bptree"
)

const logFileName = "arena.log"

// indexEntry locates a live value inside the log file.
type indexEntry struct {
	offset int64
	size   uint32
}

// LogArena is an append-only log with an in-memory ordered index, rebuilt on
// open. Every Put and Delete appends a CRC-framed record and fsyncs before
// returning, so a committed write survives an immediate process kill. A
// corrupted tail (torn final write) is truncated during recovery.
type LogArena struct {
	mu      sync.Mutex
	path    string
	appendF *os.File
	readF   *os.File
	index   *bptree.BPlusTree[indexEntry]
	offset  int64
	closed  bool
}

// RecoveryStats reports what opening the arena found on disk.
type RecoveryStats struct {
	FramesRead    int64
	BytesTruncated int64
}

// OpenLogArena opens (or creates) the arena under dir, replaying the log to
// rebuild the index and truncating any corrupt tail.
func OpenLogArena(dir string) (*LogArena, *RecoveryStats, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create arena dir: %w", err)
	}
	path := filepath.Join(dir, logFileName)

	a := &LogArena{
		path:  path,
		index: bptree.New[indexEntry](bptree.DefaultOrder),
	}
	stats, err := a.recover()
	if err != nil {
		return nil, nil, err
	}

	appendF, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open arena log: %w", err)
	}
	readF, err := os.Open(path)
	if err != nil {
		appendF.Close()
		return nil, nil, fmt.Errorf("open arena log for reads: %w", err)
	}
	a.appendF = appendF
	a.readF = readF
	return a, stats, nil
}

// recover replays the log, populating the index and chopping off a corrupt
// tail so the next append lands on a clean boundary.
func (a *LogArena) recover() (*RecoveryStats, error) {
	stats := &RecoveryStats{}

	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read arena log: %w", err)
	}

	var off int64
	for int(off) < len(data) {
		f, n, err := decodeFrame(data[off:])
		if err != nil {
			// Torn or garbage tail: keep everything before it.
			stats.BytesTruncated = int64(len(data)) - off
			if err := os.Truncate(a.path, off); err != nil {
				return nil, fmt.Errorf("truncate corrupt tail: %w", err)
			}
			break
		}
		if f.tombstone() {
			a.index.Delete(string(f.key))
		} else {
			a.index.Insert(string(f.key), indexEntry{offset: off, size: uint32(n)})
		}
		off += int64(n)
		stats.FramesRead++
	}
	a.offset = off
	return stats, nil
}

// Put appends a frame for key/value and fsyncs it before updating the index.
func (a *LogArena) Put(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("store: empty key")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	return a.appendLocked(key, value)
}

func (a *LogArena) appendLocked(key, value []byte) error {
	buf := encodeFrame(key, value)
	if _, err := a.appendF.Write(buf); err != nil {
		return fmt.Errorf("append frame: %w", err)
	}
	if err := a.appendF.Sync(); err != nil {
		return fmt.Errorf("sync arena log: %w", err)
	}
	if len(value) == 0 {
		a.index.Delete(string(key))
	} else {
		a.index.Insert(string(key), indexEntry{offset: a.offset, size: uint32(len(buf))})
	}
	a.offset += int64(len(buf))
	return nil
}

// Get returns the live value for key.
func (a *LogArena) Get(key []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}
	entry, ok := a.index.Search(string(key))
	if !ok {
		return nil, ErrKeyNotFound
	}
	return a.readEntryLocked(entry)
}

func (a *LogArena) readEntryLocked(entry indexEntry) ([]byte, error) {
	buf := make([]byte, entry.size)
	if _, err := a.readF.ReadAt(buf, entry.offset); err != nil {
		return nil, fmt.Errorf("read frame at %d: %w", entry.offset, err)
	}
	f, _, err := decodeFrame(buf)
	if err != nil {
		return nil, err
	}
	return f.value, nil
}

// Delete appends a tombstone for key. Deleting an absent key reports
// ErrKeyNotFound without touching the log.
func (a *LogArena) Delete(key []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if _, ok := a.index.Search(string(key)); !ok {
		return ErrKeyNotFound
	}
	return a.appendLocked(key, nil)
}

// Scan visits every live entry whose key starts with prefix, in ascending
// key order.
func (a *LogArena) Scan(prefix []byte, fn func(key, value []byte) error) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	// Snapshot matching index entries so fn may call back into the arena.
	type hit struct {
		key   string
		entry indexEntry
	}
	var hits []hit
	a.index.AscendPrefix(string(prefix), func(k string, e indexEntry) bool {
		hits = append(hits, hit{key: k, entry: e})
		return true
	})
	a.mu.Unlock()

	for _, h := range hits {
		a.mu.Lock()
		value, err := a.readEntryLocked(h.entry)
		a.mu.Unlock()
		if err != nil {
			return err
		}
		if err := fn([]byte(h.key), value); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of live keys.
func (a *LogArena) Len() int {
	return a.index.Len()
}

// Sync forces an fsync. Puts already sync individually; this exists for the
// Arena contract.
func (a *LogArena) Sync() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.appendF.Sync()
}

// Close syncs and releases the file handles.
func (a *LogArena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if err := a.appendF.Sync(); err != nil {
		a.readF.Close()
		a.appendF.Close()
		return err
	}
	if err := a.appendF.Close(); err != nil {
		a.readF.Close()
		return err
	}
	return a.readF.Close()
}
