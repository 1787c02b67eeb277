// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package cdn

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ohchase/blizztools/lib/hashid"
)

// DirFetcher reads objects from a local mirror directory with the CDN
// layout.
type DirFetcher struct {
	root string
}

// NewDirFetcher returns a fetcher rooted at root. The directory must
// exist.
func NewDirFetcher(root string) (*DirFetcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cdn mirror: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cdn mirror: %s is not a directory", root)
	}
	return &DirFetcher{root: root}, nil
}

// Root returns the mirror directory.
func (f *DirFetcher) Root() string {
	return f.root
}

// Fetch reads one object from the mirror.
func (f *DirFetcher) Fetch(ctx context.Context, kind Kind, key hashid.ID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(f.root, filepath.FromSlash(Path(kind, key)))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w: %w", path, ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Chain tries each fetcher in order and returns the first success.
// A fetcher reporting ErrNotFound passes the request on; any other
// error ends the attempt.
type Chain []Fetcher

// Fetch implements Fetcher.
func (c Chain) Fetch(ctx context.Context, kind Kind, key hashid.ID) ([]byte, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("fetching %s %s: no fetchers configured", kind, key)
	}
	var lastErr error
	for _, fetcher := range c {
		data, err := fetcher.Fetch(ctx, kind, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
