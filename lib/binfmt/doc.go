// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package binfmt provides the bounds-checked big-endian cursor shared
// by every binary codec in this module, and the [FormatError] type
// that reports structural parse failures.
//
// All multi-byte integers in the network's binary formats are
// big-endian. The cursor never panics on short input: every read
// checks the remaining length and returns a FormatError of kind
// [KindTruncated] carrying the offset and the name of the field that
// could not be read.
//
// Callers classify failures with errors.Is against [ErrBadMagic],
// [ErrTruncated] and [ErrMalformed].
package binfmt
