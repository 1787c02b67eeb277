// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ohchase/blizztools/lib/hashid"
)

// Reader is a forward-only cursor over an in-memory buffer. Slices
// returned by [Reader.Bytes] alias the underlying buffer.
type Reader struct {
	data   []byte
	offset int

	// base is added to reported offsets, so a Reader over a page can
	// report positions relative to the whole input.
	base int64
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt is like NewReader but reports offsets relative to base.
func NewReaderAt(data []byte, base int64) *Reader {
	return &Reader{data: data, base: base}
}

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int {
	return r.offset
}

// Position returns the absolute offset of the cursor (base + consumed).
func (r *Reader) Position() int64 {
	return r.base + int64(r.offset)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// Rest returns the unread bytes without consuming them.
func (r *Reader) Rest() []byte {
	return r.data[r.offset:]
}

// Magic consumes len(expected) bytes and fails with KindBadMagic if
// they differ from expected.
func (r *Reader) Magic(expected string, what string) error {
	start := r.Position()
	got, err := r.Bytes(len(expected), what)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, []byte(expected)) {
		return &FormatError{
			Kind:   KindBadMagic,
			Offset: start,
			What:   what,
			Detail: fmt.Sprintf("got %q, want %q", got, expected),
		}
	}
	return nil
}

// Bytes consumes n bytes and returns them without copying.
func (r *Reader) Bytes(n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, Malformed(r.Position(), what, "negative length %d", n)
	}
	if r.Remaining() < n {
		return nil, Truncated(r.Position(), what, n, r.Remaining())
	}
	out := r.data[r.offset : r.offset+n]
	r.offset += n
	return out, nil
}

// Skip consumes n bytes.
func (r *Reader) Skip(n int, what string) error {
	_, err := r.Bytes(n, what)
	return err
}

// Uint8 consumes one byte.
func (r *Reader) Uint8(what string) (uint8, error) {
	b, err := r.Bytes(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 consumes a big-endian uint16.
func (r *Reader) Uint16(what string) (uint16, error) {
	b, err := r.Bytes(2, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Uint32 consumes a big-endian uint32.
func (r *Reader) Uint32(what string) (uint32, error) {
	b, err := r.Bytes(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Uint40 consumes a 5-byte big-endian field, returned raw.
func (r *Reader) Uint40(what string) ([5]byte, error) {
	var out [5]byte
	b, err := r.Bytes(5, what)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// ID consumes a 16-byte hash identifier.
func (r *Reader) ID(what string) (hashid.ID, error) {
	var id hashid.ID
	b, err := r.Bytes(hashid.Size, what)
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

// CString consumes a NUL-terminated string. The terminator is
// consumed but not returned.
func (r *Reader) CString(what string) (string, error) {
	rest := r.Rest()
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", &FormatError{
			Kind:   KindTruncated,
			Offset: r.Position(),
			What:   what,
			Detail: "missing NUL terminator",
		}
	}
	r.offset += end + 1
	return string(rest[:end]), nil
}

// Uint40Value decodes a 5-byte big-endian field.
func Uint40Value(field [5]byte) uint64 {
	var value uint64
	for _, b := range field {
		value = value<<8 | uint64(b)
	}
	return value
}

// PutUint40 encodes value into a 5-byte big-endian field. Bits above
// 40 are discarded.
func PutUint40(value uint64) [5]byte {
	var out [5]byte
	for i := 4; i >= 0; i-- {
		out[i] = byte(value)
		value >>= 8
	}
	return out
}
