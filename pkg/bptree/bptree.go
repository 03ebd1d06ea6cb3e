// Package bptree implements an in-memory B+tree keyed by byte strings. The
// record store uses it as the per-arena index so that partition scans come
// back in key order. Values live only in leaves; leaves are linked for
// ordered range walks.
package bptree

import (
	"sort"
	"strings"
	"sync"
)

// DefaultOrder is the branching factor used when the caller supplies one
// that is too small to form a valid tree.
const DefaultOrder = 32

// BPlusTree is an ordered map from string keys to values of type V.
// All operations are safe for concurrent use.
type BPlusTree[V any] struct {
	mu    sync.RWMutex
	root  *node[V]
	order int
	size  int
}

type node[V any] struct {
	isLeaf   bool
	keys     []string
	children []*node[V] // internal nodes only
	values   []V        // leaves only
	next     *node[V]   // leaf link for ordered scans
}

// New creates a B+tree with the given order (max children per internal
// node). Orders below 3 fall back to DefaultOrder.
func New[V any](order int) *BPlusTree[V] {
	if order < 3 {
		order = DefaultOrder
	}
	return &BPlusTree[V]{
		root:  &node[V]{isLeaf: true},
		order: order,
	}
}

// Len returns the number of keys currently stored.
func (t *BPlusTree[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Search returns the value stored under key, if any.
func (t *BPlusTree[V]) Search(key string) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	leaf := t.leafFor(key)
	i := sort.SearchStrings(leaf.keys, key)
	if i < len(leaf.keys) && leaf.keys[i] == key {
		return leaf.values[i], true
	}
	var zero V
	return zero, false
}

// Insert stores value under key, replacing any previous value.
func (t *BPlusTree[V]) Insert(key string, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sep, right := t.insert(t.root, key, value)
	if right != nil {
		// Root split: grow the tree by one level.
		t.root = &node[V]{
			keys:     []string{sep},
			children: []*node[V]{t.root, right},
		}
	}
}

// Delete removes key from the tree. Leaves are not rebalanced on delete;
// the tree only compacts through fresh inserts. Returns whether the key was
// present.
func (t *BPlusTree[V]) Delete(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaf := t.leafFor(key)
	i := sort.SearchStrings(leaf.keys, key)
	if i >= len(leaf.keys) || leaf.keys[i] != key {
		return false
	}
	leaf.keys = append(leaf.keys[:i], leaf.keys[i+1:]...)
	leaf.values = append(leaf.values[:i], leaf.values[i+1:]...)
	t.size--
	return true
}

// AscendPrefix walks all entries whose key starts with prefix, in ascending
// key order, until fn returns false.
func (t *BPlusTree[V]) AscendPrefix(prefix string, fn func(key string, value V) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	leaf := t.leafFor(prefix)
	for leaf != nil {
		start := sort.SearchStrings(leaf.keys, prefix)
		for i := start; i < len(leaf.keys); i++ {
			if !strings.HasPrefix(leaf.keys[i], prefix) {
				return
			}
			if !fn(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
		leaf = leaf.next
	}
}

// Keys returns every key in ascending order. Intended for tests and
// diagnostics.
func (t *BPlusTree[V]) Keys() []string {
	keys := make([]string, 0, t.Len())
	t.AscendPrefix("", func(k string, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// leafFor descends to the leaf that does (or would) hold key. Caller must
// hold at least a read lock.
func (t *BPlusTree[V]) leafFor(key string) *node[V] {
	n := t.root
	for !n.isLeaf {
		n = n.children[childIndex(n.keys, key)]
	}
	return n
}

// childIndex picks the child pointer to follow inside an internal node.
func childIndex(keys []string, key string) int {
	i := sort.SearchStrings(keys, key)
	if i < len(keys) && keys[i] == key {
		return i + 1
	}
	return i
}

// insert descends recursively; on the way back up it reports a split as a
// (separator, new right sibling) pair, or ("", nil) when no split happened.
func (t *BPlusTree[V]) insert(n *node[V], key string, value V) (string, *node[V]) {
	if n.isLeaf {
		i := sort.SearchStrings(n.keys, key)
		if i < len(n.keys) && n.keys[i] == key {
			n.values[i] = value
			return "", nil
		}
		n.keys = append(n.keys, "")
		copy(n.keys[i+1:], n.keys[i:])
		n.keys[i] = key
		var zero V
		n.values = append(n.values, zero)
		copy(n.values[i+1:], n.values[i:])
		n.values[i] = value
		t.size++

		if len(n.keys) < t.order {
			return "", nil
		}
		return t.splitLeaf(n)
	}

	idx := childIndex(n.keys, key)
	sep, right := t.insert(n.children[idx], key, value)
	if right == nil {
		return "", nil
	}

	n.keys = append(n.keys, "")
	copy(n.keys[idx+1:], n.keys[idx:])
	n.keys[idx] = sep
	n.children = append(n.children, nil)
	copy(n.children[idx+2:], n.children[idx+1:])
	n.children[idx+1] = right

	if len(n.children) <= t.order {
		return "", nil
	}
	return t.splitInternal(n)
}

func (t *BPlusTree[V]) splitLeaf(n *node[V]) (string, *node[V]) {
	mid := len(n.keys) / 2
	right := &node[V]{
		isLeaf: true,
		keys:   append([]string(nil), n.keys[mid:]...),
		values: append([]V(nil), n.values[mid:]...),
		next:   n.next,
	}
	n.keys = n.keys[:mid:mid]
	n.values = n.values[:mid:mid]
	n.next = right
	return right.keys[0], right
}

func (t *BPlusTree[V]) splitInternal(n *node[V]) (string, *node[V]) {
	mid := len(n.keys) / 2
	sep := n.keys[mid]
	right := &node[V]{
		keys:     append([]string(nil), n.keys[mid+1:]...),
		children: append([]*node[V](nil), n.children[mid+1:]...),
	}
	n.keys = n.keys[:mid:mid]
	n.children = n.children[: mid+1 : mid+1]
	return sep, right
}
