// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest decodes the three binary manifests referenced by a
// build configuration:
//
//   - Encoding ("EN"): maps content keys to the encoding keys under
//     which the encoded objects are published. Its content-key table
//     is paginated and scanned with lib/pagetable in exact-page-count
//     mode: the header's page count is authoritative, so a short page
//     is a truncation error.
//   - Install ("IN"): the files a client installs, by name and content
//     key, with tag bitmasks for platform and locale selection.
//   - Download ("DL"): encoding keys in download-priority order, with
//     the same tag bitmasks.
//
// All three are parsed from fully decompressed bytes (the output of
// lib/blte). Integers are big-endian. Parsing is pure and safe for
// concurrent use; results are not modified after construction.
package manifest
