// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package hashid implements the 128-bit identifier used for every key
// in the distribution network: content keys (MD5 of the decoded
// content), encoding keys (MD5 of the encoded container), and the
// configuration keys published in version tables.
//
// An [ID] is a plain [16]byte value. Equality is byte equality, so IDs
// work directly as map keys and with ==. The canonical text form is 32
// lowercase hex characters; [Parse] accepts either case but nothing
// else. ID implements encoding.TextMarshaler, so it serializes as its
// hex form in JSON, CBOR (via lib/codec) and YAML.
//
// The all-zero ID is the null key. Paginated tables use it as the
// end-of-table sentinel; see [ID.IsNull].
package hashid
