// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package hashid

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Size is the byte length of an ID.
const Size = 16

// HexSize is the length of the canonical hex form.
const HexSize = Size * 2

// ID is a 128-bit content or encoding key.
type ID [Size]byte

// Null is the all-zero ID.
var Null ID

// Parse decodes exactly 32 hex characters into an ID. Upper and
// lower case digits are both accepted.
func Parse(hexString string) (ID, error) {
	var id ID
	if len(hexString) != HexSize {
		return id, fmt.Errorf("hash id %q is %d characters, want %d", hexString, len(hexString), HexSize)
	}
	if _, err := hex.Decode(id[:], []byte(hexString)); err != nil {
		return ID{}, fmt.Errorf("parsing hash id %q: %w", hexString, err)
	}
	return id, nil
}

// MustParse is like [Parse] but panics on error. Intended for
// constants and tests.
func MustParse(hexString string) ID {
	id, err := Parse(hexString)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes copies a 16-byte slice into an ID.
func FromBytes(data []byte) (ID, error) {
	var id ID
	if len(data) != Size {
		return id, fmt.Errorf("hash id is %d bytes, want %d", len(data), Size)
	}
	copy(id[:], data)
	return id, nil
}

// String returns the 32-character lowercase hex form.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsNull reports whether every byte of the ID is zero.
func (id ID) IsNull() bool {
	return id == Null
}

// Shard returns the two-level directory prefix used by CDN and local
// mirror paths: the first two and next two hex characters, joined by
// a slash ("ab/cd").
func (id ID) Shard() string {
	s := id.String()
	return s[0:2] + "/" + s[2:4]
}

// Compare orders IDs by their byte sequence. It returns -1, 0 or +1.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	buffer := make([]byte, HexSize)
	hex.Encode(buffer, id[:])
	return buffer, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
