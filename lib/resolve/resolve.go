// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ohchase/blizztools/lib/blte"
	"github.com/ohchase/blizztools/lib/cdn"
	"github.com/ohchase/blizztools/lib/hashid"
	"github.com/ohchase/blizztools/lib/manifest"
	"github.com/ohchase/blizztools/lib/tact"
)

// Fetcher returns the raw stored bytes of an object. cdn.HTTPFetcher,
// cdn.DirFetcher and cdn.Chain implement it.
type Fetcher interface {
	Fetch(ctx context.Context, kind cdn.Kind, key hashid.ID) ([]byte, error)
}

// Resolver fetches and decodes objects.
type Resolver struct {
	Fetcher Fetcher

	// Logger receives progress and skip reports. Nil means slog.Default().
	Logger *slog.Logger

	// VerifyChunks checks each container chunk against its declared
	// checksum before decompressing.
	VerifyChunks bool

	// VerifyContent checks that content-key resolutions decode to
	// bytes whose MD5 equals the content key.
	VerifyContent bool
}

// New returns a resolver. A nil logger uses slog.Default().
func New(fetcher Fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Fetcher: fetcher, Logger: logger}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// FetchConfig fetches a text object from the config directory.
func (r *Resolver) FetchConfig(ctx context.Context, key hashid.ID) (string, error) {
	data, err := r.Fetcher.Fetch(ctx, cdn.KindConfig, key)
	if err != nil {
		return "", &Error{Kind: KindFetch, EncodingKey: key, Err: err}
	}
	return string(data), nil
}

// FetchBuildConfig fetches and parses a build configuration.
func (r *Resolver) FetchBuildConfig(ctx context.Context, key hashid.ID) (*tact.BuildConfig, error) {
	text, err := r.FetchConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	build, err := tact.ParseBuildConfig(text)
	if err != nil {
		return nil, fmt.Errorf("build config %s: %w", key, err)
	}
	return build, nil
}

// FetchCDNConfig fetches and parses a CDN configuration.
func (r *Resolver) FetchCDNConfig(ctx context.Context, key hashid.ID) (*tact.CDNConfig, error) {
	text, err := r.FetchConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	config, err := tact.ParseCDNConfig(text)
	if err != nil {
		return nil, fmt.Errorf("cdn config %s: %w", key, err)
	}
	return config, nil
}

// FetchByEncodingKey fetches the stored object named by key from the
// data directory and returns its decompressed bytes.
func (r *Resolver) FetchByEncodingKey(ctx context.Context, key hashid.ID) ([]byte, error) {
	stored, err := r.Fetcher.Fetch(ctx, cdn.KindData, key)
	if err != nil {
		return nil, &Error{Kind: KindFetch, EncodingKey: key, Err: err}
	}

	table, err := blte.Parse(stored)
	if err != nil {
		return nil, &Error{Kind: KindContainer, EncodingKey: key, Err: err}
	}
	if r.VerifyChunks {
		if err := table.Verify(); err != nil {
			return nil, &Error{Kind: KindDecode, EncodingKey: key, Err: err}
		}
	}

	decoded, err := blte.Decompress(table)
	if err != nil {
		return nil, &Error{Kind: KindDecode, EncodingKey: key, Err: err}
	}

	r.logger().Debug("decoded object",
		"encoding_key", key,
		"stored_bytes", len(stored),
		"chunks", len(table.Chunks),
		"bytes", len(decoded),
	)
	return decoded, nil
}

// ResolveContentKey looks key up in the encoding manifest and returns
// the decoded file. When the entry lists several encoding keys the
// first is used.
func (r *Resolver) ResolveContentKey(ctx context.Context, encoding *manifest.Encoding, key hashid.ID) ([]byte, error) {
	entry, ok := encoding.FindByContentKey(key)
	if !ok {
		return nil, &Error{Kind: KindContentKeyNotFound, ContentKey: key}
	}
	if len(entry.EncodingKeys) == 0 {
		return nil, &Error{Kind: KindNoEncodingKey, ContentKey: key}
	}
	encodingKey := entry.EncodingKeys[0]

	decoded, err := r.FetchByEncodingKey(ctx, encodingKey)
	if err != nil {
		var resolveError *Error
		if errors.As(err, &resolveError) {
			resolveError.ContentKey = key
		}
		return nil, err
	}

	if r.VerifyContent {
		if digest := hashid.ID(md5.Sum(decoded)); digest != key {
			return nil, &Error{
				Kind:        KindContentMismatch,
				ContentKey:  key,
				EncodingKey: encodingKey,
				Err:         fmt.Errorf("decoded bytes hash to %s", digest),
			}
		}
	}
	return decoded, nil
}

// FetchEncoding fetches and parses an encoding manifest by its
// encoding key (the second key of the build config's encoding pair).
func (r *Resolver) FetchEncoding(ctx context.Context, key hashid.ID) (*manifest.Encoding, error) {
	return fetchManifest(ctx, r, key, "encoding", manifest.ParseEncoding)
}

// FetchInstall fetches and parses an install manifest by encoding key.
func (r *Resolver) FetchInstall(ctx context.Context, key hashid.ID) (*manifest.Install, error) {
	return fetchManifest(ctx, r, key, "install", manifest.ParseInstall)
}

// FetchDownload fetches and parses a download manifest by encoding
// key.
func (r *Resolver) FetchDownload(ctx context.Context, key hashid.ID) (*manifest.Download, error) {
	return fetchManifest(ctx, r, key, "download", manifest.ParseDownload)
}

func fetchManifest[T any](ctx context.Context, r *Resolver, key hashid.ID, name string, parse func([]byte) (*T, error)) (*T, error) {
	decoded, err := r.FetchByEncodingKey(ctx, key)
	if err != nil {
		return nil, err
	}
	parsed, err := parse(decoded)
	if err != nil {
		return nil, &Error{Kind: KindManifest, EncodingKey: key, Err: fmt.Errorf("%s manifest: %w", name, err)}
	}
	r.logger().Info("loaded manifest", "manifest", name, "encoding_key", key, "bytes", len(decoded))
	return parsed, nil
}
