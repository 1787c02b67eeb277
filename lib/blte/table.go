// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"fmt"

	"github.com/ohchase/blizztools/lib/binfmt"
	"github.com/ohchase/blizztools/lib/hashid"
)

// Magic is the container signature.
const Magic = "BLTE"

// chunkInfoEntrySize is the wire size of a ChunkInfoEntry: two u32
// sizes and a 16-byte checksum.
const chunkInfoEntrySize = 24

// fixedHeaderSize covers the magic, the header size field and the
// chunk info word.
const fixedHeaderSize = 12

// ChunkInfo is the word preceding the chunk info table.
type ChunkInfo struct {
	Flags      uint8  `json:"flags"`
	FlagExt    uint8  `json:"flag_ext"`
	ChunkCount uint16 `json:"chunk_count"`
}

// ChunkInfoEntry describes one chunk.
type ChunkInfoEntry struct {
	// CompressedSize is the number of bytes the chunk occupies in
	// the container, mode tag included.
	CompressedSize uint32 `json:"compressed_size"`

	// DecompressedSize is the declared length of the decoded chunk.
	// Decompress checks the actual output against it.
	DecompressedSize uint32 `json:"decompressed_size"`

	// Checksum is the MD5 of the encoded chunk (mode tag followed by
	// payload). A null checksum is not verified.
	Checksum hashid.ID `json:"checksum"`
}

// DataChunk is one encoded chunk.
type DataChunk struct {
	Mode EncodingMode `json:"mode"`

	// Payload is the chunk body after the mode tag. It aliases the
	// buffer passed to Parse.
	Payload []byte `json:"-"`
}

// Table is a parsed container. Chunks[i] is described by Entries[i].
type Table struct {
	HeaderSize uint32           `json:"header_size"`
	ChunkInfo  ChunkInfo        `json:"chunk_info"`
	Entries    []ChunkInfoEntry `json:"entries"`
	Chunks     []DataChunk      `json:"chunks"`
}

// DecompressedSize returns the sum of the declared decompressed sizes.
func (t *Table) DecompressedSize() uint64 {
	var total uint64
	for _, entry := range t.Entries {
		total += uint64(entry.DecompressedSize)
	}
	return total
}

// Parse decodes a container. The returned Table's payloads alias
// data, so the caller must not modify data while the Table is in use.
// Trailing bytes after the last chunk are ignored.
func Parse(data []byte) (*Table, error) {
	r := binfmt.NewReader(data)

	if err := r.Magic(Magic, "BLTE magic"); err != nil {
		return nil, err
	}

	headerSize, err := r.Uint32("BLTE header size")
	if err != nil {
		return nil, err
	}

	var info ChunkInfo
	if info.Flags, err = r.Uint8("BLTE flags"); err != nil {
		return nil, err
	}
	if info.FlagExt, err = r.Uint8("BLTE flag ext"); err != nil {
		return nil, err
	}
	if info.ChunkCount, err = r.Uint16("BLTE chunk count"); err != nil {
		return nil, err
	}

	count := int(info.ChunkCount)

	// Check the whole table up front so a huge declared count on a
	// short buffer fails before allocating.
	if need := count * chunkInfoEntrySize; r.Remaining() < need {
		return nil, binfmt.Truncated(r.Position(), "BLTE chunk info table", need, r.Remaining())
	}

	entries := make([]ChunkInfoEntry, count)
	for i := range entries {
		what := fmt.Sprintf("chunk %d info", i)
		if entries[i].CompressedSize, err = r.Uint32(what); err != nil {
			return nil, err
		}
		if entries[i].DecompressedSize, err = r.Uint32(what); err != nil {
			return nil, err
		}
		if entries[i].Checksum, err = r.ID(what); err != nil {
			return nil, err
		}
	}

	chunks := make([]DataChunk, count)
	for i, entry := range entries {
		start := r.Position()
		if entry.CompressedSize == 0 {
			return nil, binfmt.Malformed(start, fmt.Sprintf("chunk %d", i),
				"compressed size 0 leaves no room for the mode tag")
		}

		tag, err := r.Uint8(fmt.Sprintf("chunk %d mode", i))
		if err != nil {
			return nil, err
		}
		mode, err := ParseMode(tag)
		if err != nil {
			return nil, &binfmt.FormatError{
				Kind:   binfmt.KindMalformed,
				Offset: start,
				What:   fmt.Sprintf("chunk %d mode", i),
				Err:    err,
			}
		}

		payload, err := r.Bytes(int(entry.CompressedSize-1), fmt.Sprintf("chunk %d payload", i))
		if err != nil {
			return nil, err
		}
		chunks[i] = DataChunk{Mode: mode, Payload: payload}
	}

	return &Table{
		HeaderSize: headerSize,
		ChunkInfo:  info,
		Entries:    entries,
		Chunks:     chunks,
	}, nil
}
