// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration for
// blizztools.
//
// Two serialization formats are in use:
//
//   - JSON for human-facing output: the CLI's --format json and
//     inspect summaries.
//   - CBOR for machine-facing output: object store metadata records
//     and "inspect --format cbor".
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// The same manifest summary always produces identical bytes, so
// inspect output can be diffed and hashed.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tags
//
// Types carry only `json` tags; fxamacker/cbor falls back to them
// when `cbor` tags are absent, so manifest summaries and store
// metadata records use the same field names in both formats. Never
// put both on one field.
//
// Hash identifiers implement encoding.TextMarshaler and encode as
// 32-character hex text strings in both formats.
package codec
