package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func TestEntryRoundTripKeepsTimestampAndPayload(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)
	b := EncodeEntry(at, []byte("hello"))

	got, payload, err := DecodeEntry(b)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if !got.Equal(at) {
		t.Fatalf("createdAt: got %v want %v", got, at)
	}
	if string(payload) != "hello" {
		t.Fatalf("payload: got %q", payload)
	}
}

func TestEntryEmptyPayload(t *testing.T) {
	at := time.Unix(1700000000, 0)
	got, payload, err := DecodeEntry(EncodeEntry(at, nil))
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if len(payload) != 0 || !got.Equal(at) {
		t.Fatalf("got at=%v payload=%q", got, payload)
	}
}

func TestDecodeEntryRejects(t *testing.T) {
	valid := EncodeEntry(time.Unix(1, 0), []byte("xyz"))

	wrongKind := append([]byte(nil), valid...)
	wrongKind[5] = 9

	wrongVersion := append([]byte(nil), valid...)
	wrongVersion[4] = 0

	var longLen bytes.Buffer
	longLen.Write(valid[:14])
	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], ^uint32(0))
	longLen.Write(u4[:])

	cases := map[string][]byte{
		"empty":         nil,
		"short_header":  valid[:10],
		"foreign_bytes": []byte("not-a-frame-at-all-really"),
		"wrong_kind":    wrongKind,
		"wrong_version": wrongVersion,
		"truncated":     valid[:len(valid)-1],
		"trailing":      append(append([]byte(nil), valid...), 0xDE, 0xAD),
		"vlen_overflow": longLen.Bytes(),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := DecodeEntry(b); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestEncodeEntryPreEpoch(t *testing.T) {
	at := time.Unix(-86400, 5)
	got, _, err := DecodeEntry(EncodeEntry(at, []byte("v")))
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if !got.Equal(at) {
		t.Fatalf("got %v want %v", got, at)
	}
}
