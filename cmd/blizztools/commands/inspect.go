// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ohchase/blizztools/cmd/blizztools/cli"
	"github.com/ohchase/blizztools/lib/blte"
	"github.com/ohchase/blizztools/lib/hashid"
	"github.com/ohchase/blizztools/lib/indexfile"
	"github.com/ohchase/blizztools/lib/manifest"
)

// inspectOptions are the flags shared by every inspect kind.
type inspectOptions struct {
	entries bool
	find    string
	verify  bool
}

// inspectors maps each inspect kind to its summarizer. Summarizers
// receive the file contents with any BLTE wrapping already removed,
// except for the "blte" kind itself.
var inspectors = map[string]func(data []byte, options inspectOptions) (any, error){
	"blte":     inspectBLTE,
	"encoding": inspectEncoding,
	"install":  inspectInstall,
	"download": inspectDownload,
	"index":    inspectIndex,
}

var inspectKinds = []string{"blte", "encoding", "install", "download", "index"}

func inspectCommand(g *globals) *cli.Command {
	var (
		options inspectOptions
		format  string
	)

	return &cli.Command{
		Name:    "inspect",
		Summary: "Summarize a local container, manifest or index file",
		Description: `Decode a local file and print a summary of its structure.

Kinds:
  blte       chunk table of a BLTE container
  encoding   encoding manifest: header, encoding specs, page and entry counts
  install    install manifest: tags and entries
  download   download manifest: header fields, tags and entries
  index      archive index: entries and the page scan's stop reason

Manifests stored on the CDN are BLTE containers; they are decoded
before parsing. The summary is JSON by default; --format cbor writes
deterministic CBOR and is refused when stdout is a terminal, and
--format diag prints the same CBOR in diagnostic notation.

With --verify, blte decodes every chunk it can and reports each
failing chunk, such as an encrypted one, in place.`,
		Usage: "blizztools inspect <kind> <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&options.entries, "entries", false, "include every entry in the summary")
			flagSet.StringVar(&options.find, "find", "", "look up one key (install: one name)")
			flagSet.BoolVar(&options.verify, "verify", false, "check chunk checksums or page checksums")
			formatFlag(flagSet, &format, cli.FormatJSON)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Look up a content key in an encoding manifest",
				Command:     "blizztools inspect encoding encoding.blte --find 0123456789abcdef0123456789abcdef",
			},
			{
				Description: "Dump an index file as CBOR",
				Command:     "blizztools inspect index 0a1b2c.index --entries --format cbor > index.cbor",
			},
		},
		Run: func(_ context.Context, args []string) error {
			if err := cli.ExactArgs(args, 2, "<kind> <file>"); err != nil {
				return err
			}
			inspect, ok := inspectors[args[0]]
			if !ok {
				return fmt.Errorf("unknown kind %q (want one of %v)", args[0], inspectKinds)
			}
			outputFormat, err := cli.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			if outputFormat == cli.FormatText {
				outputFormat = cli.FormatJSON
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if args[0] != "blte" && bytes.HasPrefix(data, []byte(blte.Magic)) {
				if data, err = unwrapBLTE(data, options.verify); err != nil {
					return fmt.Errorf("%s: %w", args[1], err)
				}
			}

			summary, err := inspect(data, options)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			_, err = cli.Write(g.stdout, outputFormat, summary)
			return err
		},
	}
}

func unwrapBLTE(data []byte, verify bool) ([]byte, error) {
	table, err := blte.Parse(data)
	if err != nil {
		return nil, err
	}
	if verify {
		if err := table.Verify(); err != nil {
			return nil, err
		}
	}
	return blte.Decompress(table)
}

type blteChunk struct {
	Mode             string    `json:"mode"`
	CompressedSize   uint32    `json:"compressed_size"`
	DecompressedSize uint32    `json:"decompressed_size"`
	Checksum         hashid.ID `json:"checksum,omitzero"`

	// Error is the chunk's decode failure, set by --verify.
	Error string `json:"error,omitempty"`
}

type blteSummary struct {
	HeaderSize       uint32         `json:"header_size"`
	Chunks           []blteChunk    `json:"chunks"`
	Modes            map[string]int `json:"modes"`
	StoredSize       int            `json:"stored_size"`
	DecompressedSize uint64         `json:"decompressed_size"`

	// Decodable is false when any chunk uses an unsupported mode.
	Decodable bool `json:"decodable"`

	// Verified is set by --verify.
	Verified bool `json:"verified,omitempty"`

	// ContentKey is the MD5 of the decoded bytes, set by --verify
	// for decodable containers.
	ContentKey hashid.ID `json:"content_key,omitzero"`
}

func inspectBLTE(data []byte, options inspectOptions) (any, error) {
	table, err := blte.Parse(data)
	if err != nil {
		return nil, err
	}
	summary := blteSummary{
		HeaderSize:       table.HeaderSize,
		Modes:            make(map[string]int),
		StoredSize:       len(data),
		DecompressedSize: table.DecompressedSize(),
		Decodable:        true,
	}
	for i, chunk := range table.Chunks {
		entry := table.Entries[i]
		summary.Chunks = append(summary.Chunks, blteChunk{
			Mode:             chunk.Mode.String(),
			CompressedSize:   entry.CompressedSize,
			DecompressedSize: entry.DecompressedSize,
			Checksum:         entry.Checksum,
		})
		summary.Modes[chunk.Mode.String()]++
		if !chunk.Mode.Supported() {
			summary.Decodable = false
		}
	}

	if options.verify {
		if err := table.Verify(); err != nil {
			return nil, err
		}
		summary.Verified = true

		decoded := make([]byte, 0, summary.DecompressedSize)
		complete := true
		blte.DecompressEach(table, func(index int, chunk []byte, err error) bool {
			if err != nil {
				summary.Chunks[index].Error = err.Error()
				complete = false
				return true
			}
			decoded = append(decoded, chunk...)
			return true
		})
		if complete {
			summary.ContentKey = contentKey(decoded)
		}
	}
	return summary, nil
}

type encodingSummary struct {
	Header          manifest.EncodingHeader `json:"header"`
	ESpecs          []string                `json:"especs"`
	Pages           int                     `json:"pages"`
	EntryCount      int                     `json:"entry_count"`
	EKeySpecEntries int                     `json:"ekey_spec_entry_count"`
	PagesVerified   bool                    `json:"pages_verified,omitempty"`

	Entries []manifest.CEKeyEntry `json:"entries,omitempty"`
	Found   *foundCEKey           `json:"found,omitempty"`
}

type foundCEKey struct {
	manifest.CEKeyEntry
	FileSize uint64 `json:"file_size"`
	ESpec    string `json:"espec,omitempty"`
}

func inspectEncoding(data []byte, options inspectOptions) (any, error) {
	encoding, err := manifest.ParseEncoding(data)
	if err != nil {
		return nil, err
	}
	summary := encodingSummary{
		Header:          encoding.Header,
		ESpecs:          encoding.ESpecs(),
		Pages:           len(encoding.CEKeyIndex),
		EntryCount:      len(encoding.CEKeyEntries),
		EKeySpecEntries: len(encoding.EKeySpecEntries),
	}
	if options.verify {
		if err := encoding.VerifyPages(); err != nil {
			return nil, err
		}
		summary.PagesVerified = true
	}
	if options.entries {
		summary.Entries = encoding.CEKeyEntries
	}
	if options.find != "" {
		key, err := hashid.Parse(options.find)
		if err != nil {
			return nil, fmt.Errorf("--find: %w", err)
		}
		entry, ok := encoding.FindByContentKey(key)
		if !ok {
			return nil, fmt.Errorf("content key %s not in encoding manifest", key)
		}
		found := &foundCEKey{CEKeyEntry: *entry, FileSize: entry.Size()}
		if len(entry.EncodingKeys) > 0 {
			found.ESpec, _ = encoding.FindSpec(entry.EncodingKeys[0])
		}
		summary.Found = found
	}
	return summary, nil
}

type tagSummary struct {
	Name    string `json:"name"`
	Type    uint16 `json:"type"`
	Entries int    `json:"entries"`
}

func summarizeTags(tags []manifest.Tag, entryCount int) []tagSummary {
	summaries := make([]tagSummary, len(tags))
	for i, tag := range tags {
		summaries[i] = tagSummary{Name: tag.Name, Type: tag.Type}
		for index := 0; index < entryCount; index++ {
			if tag.Contains(index) {
				summaries[i].Entries++
			}
		}
	}
	return summaries
}

type installSummary struct {
	Version    uint8        `json:"version"`
	HashSize   uint8        `json:"hash_size"`
	Tags       []tagSummary `json:"tags"`
	EntryCount int          `json:"entry_count"`

	Entries []manifest.InstallEntry `json:"entries,omitempty"`
	Found   *foundInstallEntry      `json:"found,omitempty"`
}

type foundInstallEntry struct {
	manifest.InstallEntry
	Tags []string `json:"tags"`
}

func inspectInstall(data []byte, options inspectOptions) (any, error) {
	install, err := manifest.ParseInstall(data)
	if err != nil {
		return nil, err
	}
	summary := installSummary{
		Version:    install.Version,
		HashSize:   install.HashSize,
		Tags:       summarizeTags(install.Tags, len(install.Entries)),
		EntryCount: len(install.Entries),
	}
	if options.entries {
		summary.Entries = install.Entries
	}
	if options.find != "" {
		entry, ok := install.FindByName(options.find)
		if !ok {
			return nil, fmt.Errorf("%q not in install manifest", options.find)
		}
		found := &foundInstallEntry{InstallEntry: *entry}
		for i := range install.Entries {
			if &install.Entries[i] == entry {
				found.Tags = install.EntryTags(i)
				break
			}
		}
		summary.Found = found
	}
	return summary, nil
}

type downloadSummary struct {
	Version      uint8        `json:"version"`
	HasChecksum  bool         `json:"include_checksum"`
	FlagSize     uint8        `json:"flag_size,omitempty"`
	BasePriority int8         `json:"base_priority,omitempty"`
	Tags         []tagSummary `json:"tags"`
	EntryCount   int          `json:"entry_count"`
	TotalSize    uint64       `json:"total_size"`

	Entries []manifest.DownloadEntry `json:"entries,omitempty"`
	Found   *foundDownloadEntry      `json:"found,omitempty"`
}

type foundDownloadEntry struct {
	manifest.DownloadEntry
	FileSize uint64 `json:"file_size"`
}

func inspectDownload(data []byte, options inspectOptions) (any, error) {
	download, err := manifest.ParseDownload(data)
	if err != nil {
		return nil, err
	}
	summary := downloadSummary{
		Version:      download.Version,
		HasChecksum:  download.HasChecksum,
		FlagSize:     download.FlagSize,
		BasePriority: download.BasePriority,
		Tags:         summarizeTags(download.Tags, len(download.Entries)),
		EntryCount:   len(download.Entries),
	}
	for i := range download.Entries {
		summary.TotalSize += download.Entries[i].Size()
	}
	if options.entries {
		summary.Entries = download.Entries
	}
	if options.find != "" {
		key, err := hashid.Parse(options.find)
		if err != nil {
			return nil, fmt.Errorf("--find: %w", err)
		}
		entry, ok := download.FindByEncodingKey(key)
		if !ok {
			return nil, fmt.Errorf("encoding key %s not in download manifest", key)
		}
		summary.Found = &foundDownloadEntry{DownloadEntry: *entry, FileSize: entry.Size()}
	}
	return summary, nil
}

type indexSummary struct {
	Pages      int    `json:"pages"`
	Stop       string `json:"stop"`
	EntryCount int    `json:"entry_count"`

	Entries []indexfile.Entry `json:"entries,omitempty"`
	Found   *indexfile.Entry  `json:"found,omitempty"`
}

func inspectIndex(data []byte, options inspectOptions) (any, error) {
	index, err := indexfile.Parse(data)
	if err != nil {
		return nil, err
	}
	summary := indexSummary{
		Pages:      index.Pages,
		Stop:       index.Stop.String(),
		EntryCount: len(index.Entries),
	}
	if options.entries {
		summary.Entries = index.Entries
	}
	if options.find != "" {
		key, err := hashid.Parse(options.find)
		if err != nil {
			return nil, fmt.Errorf("--find: %w", err)
		}
		entry, ok := index.Find(key)
		if !ok {
			return nil, fmt.Errorf("encoding key %s not in index", key)
		}
		summary.Found = entry
	}
	return summary, nil
}
