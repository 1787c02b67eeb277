// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import "fmt"

// EncodingMode is the per-chunk encoding, stored as the first byte of
// each chunk. The values are the on-wire ASCII tags.
type EncodingMode byte

const (
	// ModePlain chunks carry their payload verbatim.
	ModePlain EncodingMode = 'N'

	// ModeZlib chunks carry a zlib stream.
	ModeZlib EncodingMode = 'Z'

	// ModeRecursive chunks carry a nested BLTE container.
	ModeRecursive EncodingMode = 'F'

	// ModeEncrypted chunks carry an encrypted payload that requires a
	// named key.
	ModeEncrypted EncodingMode = 'E'
)

// ParseMode maps a wire tag to an EncodingMode.
func ParseMode(tag byte) (EncodingMode, error) {
	mode := EncodingMode(tag)
	switch mode {
	case ModePlain, ModeZlib, ModeRecursive, ModeEncrypted:
		return mode, nil
	}
	return 0, fmt.Errorf("unknown chunk encoding mode 0x%02x", tag)
}

// Supported reports whether [Decompress] can decode chunks in this
// mode.
func (mode EncodingMode) Supported() bool {
	return mode == ModePlain || mode == ModeZlib
}

// String returns the human-readable name of the mode.
func (mode EncodingMode) String() string {
	switch mode {
	case ModePlain:
		return "plain"
	case ModeZlib:
		return "zlib"
	case ModeRecursive:
		return "recursive"
	case ModeEncrypted:
		return "encrypted"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(mode))
	}
}
