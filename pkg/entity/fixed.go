// Package entity defines the persisted domain records and their fixed-width
// binary codecs. Every entity encodes to a buffer of constant length so the
// underlying page-oriented store can allocate records without a length
// prefix. Strings are truncated to a per-field byte budget and zero padded;
// decoding reads up to the first zero byte, so embedded NUL bytes in user
// text are not representable.
package entity

import (
	"fmt"
	"unicode/utf8"
)

// Field byte budgets shared across entities.
const (
	FixedStringSize  = 32   // identifiers, names, short text fields
	ChatIDSize       = 128  // chat session and message identifiers
	ContentSize      = 1024 // CV content and analysis feedback
	MessageSize      = 512  // chat message content
	TitleSize        = 64   // CV titles; validation enforces the same cap
	timestampSize    = 8
	yearSize         = 4
	presenceByteSize = 1
)

// ErrBadRecord is returned when a buffer is too short (or the wrong length)
// for the record type being decoded. It indicates corrupted storage, not bad
// user input.
var ErrBadRecord = fmt.Errorf("entity: malformed record buffer")

// TruncateString returns s cut down to at most limit bytes without splitting
// a multi-byte code point. The raw byte length of the result is <= limit.
func TruncateString(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Back off to the nearest rune boundary at or before the limit.
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// putFixed writes s into dst truncated to len(dst) bytes on a code-point
// boundary, zero padding the remainder. dst must be pre-zeroed (callers
// encode into fresh buffers).
func putFixed(dst []byte, s string) {
	copy(dst, TruncateString(s, len(dst)))
}

// fixedToString reads a zero-padded fixed-width field back into a string,
// stopping at the first zero byte.
func fixedToString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// recordBuf is a cursor over a fixed-size encode/decode buffer. All writes
// and reads advance pos; the caller is responsible for checking the total
// buffer length up front, after which individual accesses cannot go out of
// range for a well-formed layout.
type recordBuf struct {
	data []byte
	pos  int
}

func newRecordBuf(size int) *recordBuf {
	return &recordBuf{data: make([]byte, size)}
}

func wrapRecordBuf(data []byte) *recordBuf {
	return &recordBuf{data: data}
}

func (b *recordBuf) putString(s string, width int) {
	putFixed(b.data[b.pos:b.pos+width], s)
	b.pos += width
}

func (b *recordBuf) getString(width int) string {
	s := fixedToString(b.data[b.pos : b.pos+width])
	b.pos += width
	return s
}

func (b *recordBuf) putByte(v byte) {
	b.data[b.pos] = v
	b.pos++
}

func (b *recordBuf) getByte() byte {
	v := b.data[b.pos]
	b.pos++
	return v
}

func (b *recordBuf) putBool(v bool) {
	if v {
		b.putByte(1)
	} else {
		b.putByte(0)
	}
}

func (b *recordBuf) getBool() bool {
	return b.getByte() == 1
}

func (b *recordBuf) putUint32(v uint32) {
	b.data[b.pos] = byte(v >> 24)
	b.data[b.pos+1] = byte(v >> 16)
	b.data[b.pos+2] = byte(v >> 8)
	b.data[b.pos+3] = byte(v)
	b.pos += 4
}

func (b *recordBuf) getUint32() uint32 {
	v := uint32(b.data[b.pos])<<24 |
		uint32(b.data[b.pos+1])<<16 |
		uint32(b.data[b.pos+2])<<8 |
		uint32(b.data[b.pos+3])
	b.pos += 4
	return v
}

func (b *recordBuf) putUint64(v uint64) {
	for i := 0; i < 8; i++ {
		b.data[b.pos+i] = byte(v >> (56 - 8*i))
	}
	b.pos += 8
}

func (b *recordBuf) getUint64() uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b.data[b.pos+i])
	}
	b.pos += 8
	return v
}

// putOptionalString writes a presence byte followed by a full fixed-width
// payload. Absent values still consume width bytes of zeros so the record
// length stays constant.
func (b *recordBuf) putOptionalString(s *string, width int) {
	if s == nil {
		b.putByte(0)
		b.pos += width
		return
	}
	b.putByte(1)
	b.putString(*s, width)
}

func (b *recordBuf) getOptionalString(width int) *string {
	present := b.getBool()
	s := b.getString(width)
	if !present {
		return nil
	}
	return &s
}

func (b *recordBuf) putOptionalUint32(v *uint32) {
	if v == nil {
		b.putByte(0)
		b.pos += 4
		return
	}
	b.putByte(1)
	b.putUint32(*v)
}

func (b *recordBuf) getOptionalUint32() *uint32 {
	present := b.getBool()
	v := b.getUint32()
	if !present {
		return nil
	}
	return &v
}
