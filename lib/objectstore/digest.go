// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package objectstore

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte keyed BLAKE3 hash of an object's stored bytes.
type Digest [32]byte

// digestKey separates object digests from any other BLAKE3 use. The
// bytes are the ASCII domain name, zero-padded to 32.
var digestKey = [32]byte{
	'b', 'l', 'i', 'z', 'z', 't', 'o', 'o', 'l', 's', '.', 'o', 'b', 'j', 'e', 'c',
	't', 's', 't', 'o', 'r', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// DigestOf hashes stored object bytes.
func DigestOf(stored []byte) Digest {
	// NewKeyed only fails for keys that are not 32 bytes.
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("objectstore: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(stored)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText encodes the digest as hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a hex digest.
func (d *Digest) UnmarshalText(text []byte) error {
	if len(text) != 2*len(d) {
		return fmt.Errorf("digest must be %d hex characters, got %d", 2*len(d), len(text))
	}
	_, err := hex.Decode(d[:], text)
	return err
}
