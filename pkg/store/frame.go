package store

import (
	"encoding/binary"
	"hash/crc32"
)

// Log frame layout: [CRC32(4)][KeySize(4)][ValueSize(4)][Key][Value], all
// integers big-endian. The CRC covers everything after itself. A frame with
// ValueSize zero is a tombstone.
const frameHeaderSize = 12

type frame struct {
	key   []byte
	value []byte
}

func (f frame) size() int {
	return frameHeaderSize + len(f.key) + len(f.value)
}

func (f frame) tombstone() bool {
	return len(f.value) == 0
}

// encodeFrame serializes a key/value pair into its on-disk frame.
func encodeFrame(key, value []byte) []byte {
	buf := make([]byte, frameHeaderSize+len(key)+len(value))
	binary.BigEndian.PutUint32(buf[4:], uint32(len(key)))
	binary.BigEndian.PutUint32(buf[8:], uint32(len(value)))
	copy(buf[frameHeaderSize:], key)
	copy(buf[frameHeaderSize+len(key):], value)
	binary.BigEndian.PutUint32(buf[0:], crc32.ChecksumIEEE(buf[4:]))
	return buf
}

// decodeFrame parses and verifies one frame from the front of data. It
// returns the frame and the number of bytes consumed, or ErrCorruption when
// the buffer is truncated or fails its checksum.
func decodeFrame(data []byte) (frame, int, error) {
	if len(data) < frameHeaderSize {
		return frame{}, 0, ErrCorruption
	}
	keySize := int(binary.BigEndian.Uint32(data[4:8]))
	valueSize := int(binary.BigEndian.Uint32(data[8:12]))
	total := frameHeaderSize + keySize + valueSize
	if keySize > maxFrameKeySize || valueSize > maxFrameValueSize || len(data) < total {
		return frame{}, 0, ErrCorruption
	}
	if binary.BigEndian.Uint32(data[0:4]) != crc32.ChecksumIEEE(data[4:total]) {
		return frame{}, 0, ErrCorruption
	}
	return frame{
		key:   data[frameHeaderSize : frameHeaderSize+keySize],
		value: data[frameHeaderSize+keySize : total],
	}, total, nil
}

// Sanity bounds during recovery: no entity record comes anywhere near these,
// so larger sizes in a header mean the log tail is garbage.
const (
	maxFrameKeySize   = 256
	maxFrameValueSize = 1 << 20
)
