// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package cdn fetches raw objects from a content distribution network
// by key.
//
// Objects live under a kind directory and are sharded by the first two
// bytes of their key:
//
//	config/ab/cd/abcd0123...
//	data/ab/cd/abcd0123...
//
// [HTTPFetcher] reads them from a CDN host, [DirFetcher] from a local
// mirror laid out the same way, and [Chain] tries several fetchers in
// order. All fetchers return the stored bytes unmodified: no
// decompression, no verification, no caching.
package cdn
