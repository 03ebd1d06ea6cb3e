package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	key := []byte("user_1")
	value := []byte("payload bytes")

	buf := encodeFrame(key, value)
	f, n, err := decodeFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, key, f.key)
	assert.Equal(t, value, f.value)
	assert.False(t, f.tombstone())
}

func TestFrameTombstone(t *testing.T) {
	buf := encodeFrame([]byte("gone"), nil)
	f, _, err := decodeFrame(buf)
	require.NoError(t, err)
	assert.True(t, f.tombstone())
}

func TestDecodeFrameCorruption(t *testing.T) {
	buf := encodeFrame([]byte("key"), []byte("value"))

	t.Run("flipped byte", func(t *testing.T) {
		bad := append([]byte(nil), buf...)
		bad[len(bad)-1] ^= 0xff
		_, _, err := decodeFrame(bad)
		assert.ErrorIs(t, err, ErrCorruption)
	})

	t.Run("truncated payload", func(t *testing.T) {
		_, _, err := decodeFrame(buf[:len(buf)-2])
		assert.ErrorIs(t, err, ErrCorruption)
	})

	t.Run("short header", func(t *testing.T) {
		_, _, err := decodeFrame(buf[:5])
		assert.ErrorIs(t, err, ErrCorruption)
	})

	t.Run("absurd sizes", func(t *testing.T) {
		bad := append([]byte(nil), buf...)
		bad[8] = 0xff
		_, _, err := decodeFrame(bad)
		assert.ErrorIs(t, err, ErrCorruption)
	})
}

func TestDecodeFrameConsumesOne(t *testing.T) {
	first := encodeFrame([]byte("a"), []byte("1"))
	second := encodeFrame([]byte("b"), []byte("2"))
	stream := append(append([]byte(nil), first...), second...)

	f, n, err := decodeFrame(stream)
	require.NoError(t, err)
	assert.Equal(t, len(first), n)
	assert.Equal(t, []byte("a"), f.key)

	f, _, err = decodeFrame(stream[n:])
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), f.key)
}
