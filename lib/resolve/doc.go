// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve turns keys into file bytes.
//
// A content key names a file by the MD5 of its decoded bytes. The
// encoding manifest maps it to one or more encoding keys, each naming a
// stored, BLTE-encoded form of the file. Resolution takes the first
// encoding key, fetches the stored object from the data directory,
// parses the container and decompresses it.
//
// The resolver keeps no state between calls: every resolution fetches
// and parses afresh. Callers that want persistence write results to an
// object store themselves.
package resolve
