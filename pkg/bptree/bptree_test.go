package bptree

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndSearch(t *testing.T) {
	tree := New[int](4)

	for i := 0; i < 200; i++ {
		tree.Insert(fmt.Sprintf("key-%03d", i), i)
	}
	require.Equal(t, 200, tree.Len())

	for i := 0; i < 200; i++ {
		v, ok := tree.Search(fmt.Sprintf("key-%03d", i))
		require.True(t, ok, "key-%03d missing", i)
		assert.Equal(t, i, v)
	}

	_, ok := tree.Search("missing")
	assert.False(t, ok)
}

func TestInsertOverwrites(t *testing.T) {
	tree := New[string](4)
	tree.Insert("k", "first")
	tree.Insert("k", "second")

	v, ok := tree.Search("k")
	require.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, 1, tree.Len())
}

func TestDelete(t *testing.T) {
	tree := New[int](4)
	for i := 0; i < 50; i++ {
		tree.Insert(fmt.Sprintf("key-%02d", i), i)
	}

	assert.True(t, tree.Delete("key-25"))
	assert.False(t, tree.Delete("key-25"))
	assert.Equal(t, 49, tree.Len())

	_, ok := tree.Search("key-25")
	assert.False(t, ok)
}

func TestKeysAreOrdered(t *testing.T) {
	tree := New[int](4)

	perm := rand.New(rand.NewSource(1)).Perm(500)
	for _, i := range perm {
		tree.Insert(fmt.Sprintf("key-%04d", i), i)
	}

	keys := tree.Keys()
	require.Len(t, keys, 500)
	assert.True(t, sort.StringsAreSorted(keys))
}

func TestAscendPrefix(t *testing.T) {
	tree := New[int](4)
	tree.Insert("a:1", 1)
	tree.Insert("a:2", 2)
	tree.Insert("b:1", 3)
	tree.Insert("b:2", 4)
	tree.Insert("c:1", 5)

	var got []string
	tree.AscendPrefix("b:", func(k string, _ int) bool {
		got = append(got, k)
		return true
	})
	assert.Equal(t, []string{"b:1", "b:2"}, got)

	// Early stop.
	var first []string
	tree.AscendPrefix("", func(k string, _ int) bool {
		first = append(first, k)
		return len(first) < 2
	})
	assert.Equal(t, []string{"a:1", "a:2"}, first)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	tree := New[int](8)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tree.Insert(fmt.Sprintf("w%d-%03d", w, i), i)
				tree.Search(fmt.Sprintf("w%d-%03d", w, i/2))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 400, tree.Len())
	assert.True(t, sort.StringsAreSorted(tree.Keys()))
}
