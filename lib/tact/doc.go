// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package tact parses the text documents that bootstrap a download:
// the patch service's version and CDN tables, and the key/value build
// and CDN configurations fetched from a CDN's config directory.
//
// Tables are pipe-delimited with a header line naming each column
// ("Region!STRING:0|BuildConfig!HEX:16|..."). Columns are located by
// name, so column order and extra columns do not matter. Lines
// starting with '#' (including "## seqn = N") and blank lines are
// skipped.
//
// Configurations are "key = value" lines in any order.
package tact
