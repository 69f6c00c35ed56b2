// Package wire frames values kept by the in-process providers.
// Redis stores types and expiries itself; a plain byte map does not, so each
// entry carries its kind and absolute deadline in a small header.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1

	KindString byte = 1
	KindList   byte = 2
)

var (
	ErrCorrupt = errors.New("redisbasic: corrupt entry")
	magic4     = [...]byte{'R', 'B', 'K', 'V'}
)

const hdr = 4 + 1 + 1 + 8 // magic | ver | kind | deadline

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

func header(buf *bytes.Buffer, kind byte, deadline int64) {
	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], uint64(deadline))
	buf.Write(u8[:])
}

// String: magic(4) | ver(1) | kind(1=string) | deadline(i64 be, unix nanos, 0=none) | vlen(u32 be) | payload(vlen)
func EncodeString(deadline int64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdr + 4 + len(payload))
	header(&buf, KindString, deadline)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)
	return buf.Bytes()
}

// List: magic(4) | ver(1) | kind(2=list) | deadline(i64 be) | n(u32 be) | [vlen(u32 be) | item(vlen)] * n
func EncodeList(deadline int64, items [][]byte) []byte {
	total := hdr + 4
	for _, it := range items {
		total += 4 + len(it)
	}

	var buf bytes.Buffer
	buf.Grow(total)
	header(&buf, KindList, deadline)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(items)))
	buf.Write(u4[:])
	for _, it := range items {
		binary.BigEndian.PutUint32(u4[:], uint32(len(it)))
		buf.Write(u4[:])
		buf.Write(it)
	}
	return buf.Bytes()
}

// Peek returns the kind and deadline without decoding the body.
func Peek(b []byte) (kind byte, deadline int64, err error) {
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return 0, 0, ErrCorrupt
	}
	kind = b[5]
	if kind != KindString && kind != KindList {
		return 0, 0, ErrCorrupt
	}
	return kind, int64(binary.BigEndian.Uint64(b[6:hdr])), nil
}

func DecodeString(b []byte) (deadline int64, payload []byte, err error) {
	kind, deadline, err := Peek(b)
	if err != nil || kind != KindString {
		return 0, nil, ErrCorrupt
	}
	off := hdr
	if off+4 > len(b) {
		return 0, nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off { // exact framing, no trailing bytes
		return 0, nil, ErrCorrupt
	}
	return deadline, b[off:], nil
}

func DecodeList(b []byte) (deadline int64, items [][]byte, err error) {
	kind, deadline, err := Peek(b)
	if err != nil || kind != KindList {
		return 0, nil, ErrCorrupt
	}
	off := hdr
	if off+4 > len(b) {
		return 0, nil, ErrCorrupt
	}
	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// every item needs at least its 4-byte length
	if n < 0 || n > (len(b)-off)/4 {
		return 0, nil, ErrCorrupt
	}

	items = make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if off+4 > len(b) {
			return 0, nil, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off {
			return 0, nil, ErrCorrupt
		}
		items = append(items, b[off:off+vlen])
		off += vlen
	}
	if off != len(b) {
		return 0, nil, ErrCorrupt
	}
	return deadline, items, nil
}
