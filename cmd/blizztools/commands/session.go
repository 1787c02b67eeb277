// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ohchase/blizztools/cmd/blizztools/cli"
	"github.com/ohchase/blizztools/lib/cdn"
	"github.com/ohchase/blizztools/lib/config"
	"github.com/ohchase/blizztools/lib/objectstore"
	"github.com/ohchase/blizztools/lib/resolve"
	"github.com/ohchase/blizztools/lib/tact"
)

// session is the loaded configuration and the clients built from it,
// shared by the commands that touch the network or the store.
type session struct {
	config     *config.Config
	logger     *slog.Logger
	stdout     io.Writer
	httpClient *http.Client
}

// open loads configuration and builds the logger. A missing --config
// and $BLIZZTOOLS_CONFIG means built-in defaults.
func (g *globals) open() (*session, error) {
	var cfg *config.Config
	var err error
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, _ := cfg.LogLevel()
	httpClient := g.httpClient
	if httpClient == nil {
		timeout, _ := cfg.Timeout()
		httpClient = &http.Client{Timeout: timeout}
	}

	return &session{
		config:     cfg,
		logger:     cli.NewCommandLogger(g.stderr, level),
		stdout:     g.stdout,
		httpClient: httpClient,
	}, nil
}

// patchFetcher returns a fetcher for patch service tables.
func (s *session) patchFetcher() (*cdn.HTTPFetcher, error) {
	return cdn.NewHTTPFetcher(cdn.HTTPConfig{
		BaseURL:       cdn.PatchBase(s.config.Patch.Host),
		HTTPClient:    s.httpClient,
		MaxObjectSize: s.config.HTTP.MaxObjectSize,
		Logger:        s.logger,
	})
}

// fetchTable downloads one patch service table for product.
func (s *session) fetchTable(ctx context.Context, product tact.Product, table string) (string, error) {
	fetcher, err := s.patchFetcher()
	if err != nil {
		return "", err
	}
	url := cdn.PatchURL(s.config.Patch.Host, string(product), table)
	text, err := fetcher.FetchText(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetching %s table for %s: %w", table, product, err)
	}
	return text, nil
}

func (s *session) versions(ctx context.Context, product tact.Product) (*tact.VersionTable, error) {
	text, err := s.fetchTable(ctx, product, "versions")
	if err != nil {
		return nil, err
	}
	return tact.ParseVersionTable(text)
}

func (s *session) cdns(ctx context.Context, product tact.Product) (*tact.CDNTable, error) {
	text, err := s.fetchTable(ctx, product, "cdns")
	if err != nil {
		return nil, err
	}
	return tact.ParseCDNTable(text)
}

// selectVersion returns the row for the configured region, or the
// first row when the table has no such region.
func (s *session) selectVersion(table *tact.VersionTable) (*tact.Version, error) {
	if version, ok := table.Region(s.config.Patch.Region); ok {
		return version, nil
	}
	if len(table.Versions) == 0 {
		return nil, fmt.Errorf("version table has no rows")
	}
	s.logger.Warn("region not in version table, using first row",
		"region", s.config.Patch.Region,
		"using", table.Versions[0].Region,
	)
	return &table.Versions[0], nil
}

// selectCDN is selectVersion for the CDN table.
func (s *session) selectCDN(table *tact.CDNTable) (*tact.CDN, error) {
	if row, ok := table.Region(s.config.Patch.Region); ok {
		return row, nil
	}
	if len(table.CDNs) == 0 {
		return nil, fmt.Errorf("cdn table has no rows")
	}
	s.logger.Warn("region not in cdn table, using first row",
		"region", s.config.Patch.Region,
		"using", table.CDNs[0].Name,
	)
	return &table.CDNs[0], nil
}

// objectFetcher builds the fetcher for a CDN row: the first host (or
// cdn.host_override) joined with the row's path, behind the mirror
// directory when one is configured.
func (s *session) objectFetcher(row *tact.CDN) (resolve.Fetcher, error) {
	host := s.config.CDN.HostOverride
	if host == "" {
		if len(row.Hosts) == 0 {
			return nil, fmt.Errorf("cdn row %q lists no hosts", row.Name)
		}
		host = row.Hosts[0]
	}

	httpFetcher, err := cdn.NewHTTPFetcher(cdn.HTTPConfig{
		BaseURL:       cdn.BaseURL(host, row.Path),
		HTTPClient:    s.httpClient,
		MaxObjectSize: s.config.HTTP.MaxObjectSize,
		Logger:        s.logger,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("using cdn", "base_url", httpFetcher.BaseURL())

	if s.config.CDN.MirrorDir == "" {
		return httpFetcher, nil
	}
	mirror, err := cdn.NewDirFetcher(s.config.CDN.MirrorDir)
	if err != nil {
		return nil, fmt.Errorf("cdn.mirror_dir: %w", err)
	}
	return cdn.Chain{mirror, httpFetcher}, nil
}

// resolver fetches the CDN table for product and returns a resolver
// reading from the selected row.
func (s *session) resolver(ctx context.Context, product tact.Product) (*resolve.Resolver, error) {
	table, err := s.cdns(ctx, product)
	if err != nil {
		return nil, err
	}
	row, err := s.selectCDN(table)
	if err != nil {
		return nil, err
	}
	fetcher, err := s.objectFetcher(row)
	if err != nil {
		return nil, err
	}
	return resolve.New(fetcher, s.logger), nil
}

// openStore opens the object store at store.dir, or at dir when set.
func (s *session) openStore(dir string) (*objectstore.Store, objectstore.CompressionTag, error) {
	if dir == "" {
		dir = s.config.Store.Dir
	}
	compression, err := objectstore.ParseCompression(s.config.Store.Compression)
	if err != nil {
		return nil, 0, err
	}
	store, err := objectstore.Open(dir, s.logger)
	if err != nil {
		return nil, 0, err
	}
	return store, compression, nil
}
