// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package blte decodes the chunked container ("block table") that
// wraps every object the CDN serves under a data key.
//
// Layout (all integers big-endian):
//
//	"BLTE"            4-byte magic
//	header size       u32
//	flags             u8
//	flag ext          u8
//	chunk count       u16
//	chunk info        chunk count × 24 bytes:
//	                    compressed size   u32
//	                    decompressed size u32
//	                    checksum          16 bytes (MD5 of the encoded chunk)
//	chunk data        chunk count × (compressed size) bytes:
//	                    mode tag          1 byte
//	                    payload           compressed size − 1 bytes
//
// The chunk info table is a feed-forward length table: chunk i's data
// occupies exactly Entries[i].CompressedSize bytes, one of which is
// the mode tag. [Parse] enforces this and never pads or truncates.
//
// Each chunk carries its own [EncodingMode]. Plain and zlib chunks are
// decoded by [Decompress]; recursive and encrypted chunks are reported
// as a [DecodeError] of kind [DecodeUnsupported] so batch callers can
// skip the object and carry on.
//
// [Builder] produces containers in the same format. It exists for
// fixtures and for the pack command; the network never requires us to
// upload anything.
package blte
