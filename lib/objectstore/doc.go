// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package objectstore keeps resolved files on local disk, keyed by
// content key.
//
// Each object is stored compressed (LZ4 or zstd, chosen per object by
// a compression probe, or none) next to a CBOR metadata record:
//
//	<root>/objects/ab/cd/<hex>       stored bytes
//	<root>/meta/ab/cd/<hex>.cbor     Record
//	<root>/tmp/                      in-flight writes
//
// Both files are written to tmp/ and renamed into place, object first,
// so a metadata record only exists for a complete object. The record
// carries a keyed BLAKE3 digest of the stored bytes, checked on every
// read.
//
// The store is a caller-side convenience. Resolution never consults
// it.
package objectstore
