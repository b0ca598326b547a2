package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version   byte = 1
	kindEntry byte = 1

	hdrLen = 4 + 1 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("cacheaside: corrupt entry")
	magic4     = [...]byte{'C', 'A', 'S', 'E'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | kind(1=entry) | createdAt(i64 be, unix nanos) | vlen(u32 be) | payload(vlen)
func EncodeEntry(createdAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(createdAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEntry rejects short frames, foreign magic/version/kind and trailing bytes.
// The returned payload aliases b.
func DecodeEntry(b []byte) (createdAt time.Time, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return time.Time{}, nil, ErrCorrupt
	}

	off := 6

	nanos := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return time.Time{}, nil, ErrCorrupt
	}

	return time.Unix(0, nanos), b[off : off+vlen], nil
}
