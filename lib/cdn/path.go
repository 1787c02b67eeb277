// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package cdn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ohchase/blizztools/lib/hashid"
)

// Kind selects the object directory on the CDN.
type Kind string

const (
	// KindConfig holds text configuration objects (build and CDN
	// configs).
	KindConfig Kind = "config"

	// KindData holds binary objects (manifests and file containers).
	KindData Kind = "data"
)

// ParseKind validates a kind name.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindConfig, KindData:
		return Kind(name), nil
	default:
		return "", fmt.Errorf("unknown object kind %q (want %q or %q)", name, KindConfig, KindData)
	}
}

// Path returns the object's path relative to a CDN base:
// "<kind>/ab/cd/<hex>".
func Path(kind Kind, key hashid.ID) string {
	return string(kind) + "/" + key.Shard() + "/" + key.String()
}

// ErrNotFound is matched by errors.Is for objects a fetcher does not
// have: missing mirror files and HTTP 404 responses.
var ErrNotFound = errors.New("object not found")

// Fetcher returns the raw bytes of an object.
type Fetcher interface {
	Fetch(ctx context.Context, kind Kind, key hashid.ID) ([]byte, error)
}

// PatchBase returns the root URL of a patch service host. The patch
// service speaks plain HTTP unless host names a scheme.
func PatchBase(host string) string {
	host = strings.TrimSuffix(host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

// PatchURL returns the patch service URL of a product table, for
// example "http://us.patch.battle.net:1119/wow/versions".
func PatchURL(host, product, table string) string {
	return PatchBase(host) + "/" + product + "/" + table
}

// BaseURL joins a CDN host and the product path from the CDN table,
// for example "https://level3.blizzard.com/tpr/wow".
func BaseURL(host, path string) string {
	host = strings.TrimSuffix(host, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return host
	}
	return host + "/" + path
}
