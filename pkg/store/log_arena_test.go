package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestArena(t *testing.T) *LogArena {
	t.Helper()
	a, _, err := OpenLogArena(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestLogArenaPutGet(t *testing.T) {
	a := openTestArena(t)

	require.NoError(t, a.Put([]byte("alpha"), []byte("one")))
	require.NoError(t, a.Put([]byte("beta"), []byte("two")))

	v, err := a.Get([]byte("alpha"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), v)

	_, err = a.Get([]byte("missing"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, 2, a.Len())
}

func TestLogArenaOverwrite(t *testing.T) {
	a := openTestArena(t)

	require.NoError(t, a.Put([]byte("k"), []byte("v1")))
	require.NoError(t, a.Put([]byte("k"), []byte("v2")))

	v, err := a.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)
	assert.Equal(t, 1, a.Len())
}

func TestLogArenaDelete(t *testing.T) {
	a := openTestArena(t)

	require.NoError(t, a.Put([]byte("k"), []byte("v")))
	require.NoError(t, a.Delete([]byte("k")))

	_, err := a.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, a.Delete([]byte("k")), ErrKeyNotFound)
	assert.Equal(t, 0, a.Len())
}

func TestLogArenaRestartRecovers(t *testing.T) {
	dir := t.TempDir()

	a, _, err := OpenLogArena(dir)
	require.NoError(t, err)
	require.NoError(t, a.Put([]byte("keep"), []byte("value")))
	require.NoError(t, a.Put([]byte("drop"), []byte("value")))
	require.NoError(t, a.Delete([]byte("drop")))
	require.NoError(t, a.Put([]byte("keep"), []byte("updated")))
	require.NoError(t, a.Close())

	b, stats, err := OpenLogArena(dir)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, int64(4), stats.FramesRead)
	assert.Zero(t, stats.BytesTruncated)

	v, err := b.Get([]byte("keep"))
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), v)

	_, err = b.Get([]byte("drop"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLogArenaTruncatesCorruptTail(t *testing.T) {
	dir := t.TempDir()

	a, _, err := OpenLogArena(dir)
	require.NoError(t, err)
	require.NoError(t, a.Put([]byte("good"), []byte("frame")))
	require.NoError(t, a.Close())

	// Simulate a torn final write.
	path := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
	require.NoError(t, err)
	_, err = f.Write([]byte{0xde, 0xad, 0xbe, 0xef, 0x00})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	b, stats, err := OpenLogArena(dir)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, int64(1), stats.FramesRead)
	assert.Equal(t, int64(5), stats.BytesTruncated)

	v, err := b.Get([]byte("good"))
	require.NoError(t, err)
	assert.Equal(t, []byte("frame"), v)

	// The arena keeps working after truncation.
	require.NoError(t, b.Put([]byte("after"), []byte("truncate")))
	require.NoError(t, b.Close())

	c, stats, err := OpenLogArena(dir)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, int64(2), stats.FramesRead)
	assert.Zero(t, stats.BytesTruncated)
}

func TestLogArenaScanOrdered(t *testing.T) {
	a := openTestArena(t)

	for _, k := range []string{"p_c", "p_a", "q_x", "p_b"} {
		require.NoError(t, a.Put([]byte(k), []byte(k)))
	}

	var got []string
	err := a.Scan([]byte("p_"), func(key, value []byte) error {
		assert.Equal(t, key, value)
		got = append(got, string(key))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p_a", "p_b", "p_c"}, got)
}

func TestLogArenaScanCallbackMayReadBack(t *testing.T) {
	a := openTestArena(t)
	require.NoError(t, a.Put([]byte("x1"), []byte("one")))
	require.NoError(t, a.Put([]byte("x2"), []byte("two")))

	err := a.Scan([]byte("x"), func(key, _ []byte) error {
		_, err := a.Get(key)
		return err
	})
	assert.NoError(t, err)
}

func TestLogArenaClosed(t *testing.T) {
	a, _, err := OpenLogArena(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, a.Close())

	assert.ErrorIs(t, a.Put([]byte("k"), []byte("v")), ErrClosed)
	_, err = a.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, a.Close())
}

func TestLogArenaManyEntries(t *testing.T) {
	dir := t.TempDir()
	a, _, err := OpenLogArena(dir)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		key := []byte(fmt.Sprintf("key_%04d", i))
		require.NoError(t, a.Put(key, []byte(fmt.Sprintf("value_%d", i))))
	}
	require.NoError(t, a.Close())

	b, _, err := OpenLogArena(dir)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 500, b.Len())
	v, err := b.Get([]byte("key_0250"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value_250"), v)
}
