// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package indexfile decodes CDN archive index files: a headerless
// sequence of 4096-byte pages of fixed-size entries, each locating an
// encoded object inside an archive by encoding key.
//
// The file declares no length. Parsing stops at the first short page
// or the first entry with a null key; both are normal ends and
// [File.Stop] records which one was hit.
package indexfile

import (
	"fmt"

	"github.com/ohchase/blizztools/lib/binfmt"
	"github.com/ohchase/blizztools/lib/hashid"
	"github.com/ohchase/blizztools/lib/pagetable"
)

// PageSize is the index file page length in bytes.
const PageSize = 4096

// EntrySize is the wire size of an [Entry].
const EntrySize = hashid.Size + 4 + 4

// Entry locates one encoded object inside an archive.
type Entry struct {
	EncodingKey hashid.ID `json:"encoding_key"`
	Size        uint32    `json:"size"`
	Offset      uint32    `json:"offset"`
}

// File is a parsed index file.
type File struct {
	Entries []Entry `json:"entries"`

	// Pages is the number of full pages read.
	Pages int `json:"pages"`

	// Stop records how parsing ended.
	Stop pagetable.StopReason `json:"stop"`
}

// Parse decodes an index file.
func Parse(data []byte) (*File, error) {
	result, _, err := pagetable.Bytes(data, pagetable.Options[Entry]{
		PageSize: PageSize,
		Decode:   decodeEntry,
		Policy:   pagetable.UntilSentinel(func(entry Entry) bool { return entry.EncodingKey.IsNull() }),
	})
	if err != nil {
		return nil, fmt.Errorf("index file: %w", err)
	}
	return &File{Entries: result.Records, Pages: result.Pages, Stop: result.Stop}, nil
}

func decodeEntry(buffer []byte) (Entry, int, error) {
	r := binfmt.NewReader(buffer)
	var entry Entry
	var err error
	if entry.EncodingKey, err = r.ID("index key"); err != nil {
		return entry, 0, err
	}
	if entry.Size, err = r.Uint32("index size"); err != nil {
		return entry, 0, err
	}
	if entry.Offset, err = r.Uint32("index offset"); err != nil {
		return entry, 0, err
	}
	return entry, r.Offset(), nil
}

// Find returns the first entry for key.
func (f *File) Find(key hashid.ID) (*Entry, bool) {
	for i := range f.Entries {
		if f.Entries[i].EncodingKey == key {
			return &f.Entries[i], true
		}
	}
	return nil, false
}
