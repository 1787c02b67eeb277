// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package tact

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ohchase/blizztools/lib/hashid"
)

// ErrMissingKey is wrapped by errors for required configuration keys
// that are absent.
var ErrMissingKey = errors.New("missing key")

// Config is a parsed "key = value" configuration document. Keys keep
// their first occurrence.
type Config struct {
	document string
	values   map[string]string
	lines    map[string]int
	order    []string
}

// ParseConfig parses a key/value configuration. Blank lines and lines
// starting with '#' are skipped; any other line without " = " is an
// error.
func ParseConfig(document, text string) (*Config, error) {
	config := &Config{
		document: document,
		values:   make(map[string]string),
		lines:    make(map[string]int),
	}
	for number, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ParseError{Document: document, Line: number + 1, Text: line, Err: errors.New("expected key = value")}
		}
		key = strings.TrimSpace(key)
		if _, seen := config.values[key]; seen {
			continue
		}
		config.values[key] = strings.TrimSpace(value)
		config.lines[key] = number + 1
		config.order = append(config.order, key)
	}
	return config, nil
}

// Keys returns the keys in document order.
func (c *Config) Keys() []string {
	return c.order
}

// Value returns the raw value of key.
func (c *Config) Value(key string) (string, bool) {
	value, ok := c.values[key]
	return value, ok
}

// Fields returns the whitespace-separated values of key.
func (c *Config) Fields(key string) []string {
	return strings.Fields(c.values[key])
}

func (c *Config) errorAt(key string, err error) error {
	line, ok := c.lines[key]
	if !ok {
		return &ParseError{Document: c.document, Err: fmt.Errorf("%s: %w", key, err)}
	}
	return &ParseError{Document: c.document, Line: line, Text: key + " = " + c.values[key], Err: err}
}

// IDs parses every value of key as a hash identifier.
func (c *Config) IDs(key string) ([]hashid.ID, error) {
	fields := c.Fields(key)
	if len(fields) == 0 {
		return nil, c.errorAt(key, ErrMissingKey)
	}
	ids := make([]hashid.ID, len(fields))
	for i, field := range fields {
		id, err := hashid.Parse(field)
		if err != nil {
			return nil, c.errorAt(key, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// Sizes parses every value of key as a decimal size.
func (c *Config) Sizes(key string) ([]uint64, error) {
	fields := c.Fields(key)
	if len(fields) == 0 {
		return nil, c.errorAt(key, ErrMissingKey)
	}
	sizes := make([]uint64, len(fields))
	for i, field := range fields {
		size, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, c.errorAt(key, err)
		}
		sizes[i] = size
	}
	return sizes, nil
}

// Pair is a content key and the encoding key of its stored form.
type Pair [2]hashid.ID

// Content returns the content key.
func (p Pair) Content() hashid.ID { return p[0] }

// Encoded returns the encoding key, the one to fetch from the CDN.
func (p Pair) Encoded() hashid.ID { return p[1] }

// SizePair holds the content and encoded sizes of a Pair.
type SizePair [2]uint64

// BuildConfig is a parsed build configuration.
type BuildConfig struct {
	Root     hashid.ID `json:"root"`
	Install  Pair      `json:"install"`
	Download Pair      `json:"download"`
	Encoding Pair      `json:"encoding"`

	InstallSize  SizePair `json:"install_size,omitzero"`
	DownloadSize SizePair `json:"download_size,omitzero"`
	EncodingSize SizePair `json:"encoding_size,omitzero"`

	// Size is the size manifest pair, absent from older builds.
	Size     Pair     `json:"size,omitzero"`
	SizeSize SizePair `json:"size_size,omitzero"`

	// BuildName is the human-readable build name, if present.
	BuildName string `json:"build_name,omitempty"`

	// Raw holds every key of the document.
	Raw *Config `json:"-"`
}

// ParseBuildConfig parses a build configuration. Keys may appear in
// any order. root, install, download and encoding are required; the
// size keys are optional.
func ParseBuildConfig(text string) (*BuildConfig, error) {
	config, err := ParseConfig("build config", text)
	if err != nil {
		return nil, err
	}

	build := &BuildConfig{Raw: config}
	build.BuildName, _ = config.Value("build-name")

	roots, err := config.IDs("root")
	if err != nil {
		return nil, err
	}
	build.Root = roots[0]

	for _, required := range []struct {
		key    string
		target *Pair
	}{
		{"install", &build.Install},
		{"download", &build.Download},
		{"encoding", &build.Encoding},
	} {
		if *required.target, err = config.pair(required.key); err != nil {
			return nil, err
		}
	}

	if _, ok := config.Value("size"); ok {
		if build.Size, err = config.pair("size"); err != nil {
			return nil, err
		}
	}

	for _, optional := range []struct {
		key    string
		target *SizePair
	}{
		{"install-size", &build.InstallSize},
		{"download-size", &build.DownloadSize},
		{"encoding-size", &build.EncodingSize},
		{"size-size", &build.SizeSize},
	} {
		if _, ok := config.Value(optional.key); !ok {
			continue
		}
		sizes, err := config.Sizes(optional.key)
		if err != nil {
			return nil, err
		}
		if len(sizes) < 2 {
			return nil, config.errorAt(optional.key, fmt.Errorf("%d sizes, want 2", len(sizes)))
		}
		*optional.target = SizePair{sizes[0], sizes[1]}
	}
	return build, nil
}

// pair parses a two-key value. Some builds list a content key alone
// for install; that form is an error since nothing can be fetched.
func (c *Config) pair(key string) (Pair, error) {
	ids, err := c.IDs(key)
	if err != nil {
		return Pair{}, err
	}
	if len(ids) < 2 {
		return Pair{}, c.errorAt(key, fmt.Errorf("%d keys, want content and encoding keys", len(ids)))
	}
	return Pair{ids[0], ids[1]}, nil
}

// CDNConfig is a parsed CDN configuration: the archives a build's data
// objects may be packed into.
type CDNConfig struct {
	Archives     []hashid.ID `json:"archives"`
	ArchiveGroup hashid.ID   `json:"archive_group,omitzero"`
	FileIndex    hashid.ID   `json:"file_index,omitzero"`
	Raw          *Config     `json:"-"`
}

// ParseCDNConfig parses a CDN configuration. Every key is optional.
func ParseCDNConfig(text string) (*CDNConfig, error) {
	config, err := ParseConfig("cdn config", text)
	if err != nil {
		return nil, err
	}
	cdn := &CDNConfig{Raw: config}
	if _, ok := config.Value("archives"); ok {
		if cdn.Archives, err = config.IDs("archives"); err != nil {
			return nil, err
		}
	}
	for _, single := range []struct {
		key    string
		target *hashid.ID
	}{
		{"archive-group", &cdn.ArchiveGroup},
		{"file-index", &cdn.FileIndex},
	} {
		if _, ok := config.Value(single.key); !ok {
			continue
		}
		ids, err := config.IDs(single.key)
		if err != nil {
			return nil, err
		}
		*single.target = ids[0]
	}
	return cdn, nil
}
