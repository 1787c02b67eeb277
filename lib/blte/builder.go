// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// defaultFlags is the flags byte written by Builder, matching
// containers published with a chunk info table.
const defaultFlags = 0x0f

// Builder accumulates chunks and serializes them as a container.
//
// Typical usage:
//
//	builder := blte.NewBuilder()
//	builder.AddChunk(blte.ModeZlib, data)
//	container := builder.Bytes()
type Builder struct {
	entries []ChunkInfoEntry
	encoded [][]byte
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddChunk encodes data in the given mode and appends it. Only
// [ModePlain] and [ModeZlib] can be encoded.
func (b *Builder) AddChunk(mode EncodingMode, data []byte) error {
	var payload []byte
	switch mode {
	case ModePlain:
		payload = data
	case ModeZlib:
		var buffer bytes.Buffer
		writer := zlib.NewWriter(&buffer)
		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("zlib compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("zlib compress: %w", err)
		}
		payload = buffer.Bytes()
	default:
		return fmt.Errorf("cannot encode chunk in mode %s", mode)
	}
	return b.AddRawChunk(mode, payload, uint32(len(data)))
}

// AddRawChunk appends an already-encoded payload with an explicit
// declared decompressed size. It is the only way to produce chunks in
// modes Builder cannot encode itself.
func (b *Builder) AddRawChunk(mode EncodingMode, payload []byte, decompressedSize uint32) error {
	if len(b.entries) == math.MaxUint16 {
		return fmt.Errorf("container already holds %d chunks", math.MaxUint16)
	}
	if uint64(len(payload))+1 > math.MaxUint32 {
		return fmt.Errorf("chunk payload of %d bytes exceeds the u32 size field", len(payload))
	}

	encoded := make([]byte, 0, len(payload)+1)
	encoded = append(encoded, byte(mode))
	encoded = append(encoded, payload...)

	b.entries = append(b.entries, ChunkInfoEntry{
		CompressedSize:   uint32(len(encoded)),
		DecompressedSize: decompressedSize,
		Checksum:         ChunkChecksum(mode, payload),
	})
	b.encoded = append(b.encoded, encoded)
	return nil
}

// ChunkCount returns the number of chunks added so far.
func (b *Builder) ChunkCount() int {
	return len(b.entries)
}

// WriteTo writes the container to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	var header bytes.Buffer
	header.WriteString(Magic)
	binary.Write(&header, binary.BigEndian, uint32(fixedHeaderSize+len(b.entries)*chunkInfoEntrySize))
	header.WriteByte(defaultFlags)
	header.WriteByte(0)
	binary.Write(&header, binary.BigEndian, uint16(len(b.entries)))
	for _, entry := range b.entries {
		binary.Write(&header, binary.BigEndian, entry.CompressedSize)
		binary.Write(&header, binary.BigEndian, entry.DecompressedSize)
		header.Write(entry.Checksum[:])
	}

	written, err := w.Write(header.Bytes())
	total := int64(written)
	if err != nil {
		return total, fmt.Errorf("writing BLTE header: %w", err)
	}
	for i, encoded := range b.encoded {
		written, err := w.Write(encoded)
		total += int64(written)
		if err != nil {
			return total, fmt.Errorf("writing chunk %d: %w", i, err)
		}
	}
	return total, nil
}

// Bytes returns the serialized container.
func (b *Builder) Bytes() []byte {
	var buffer bytes.Buffer
	b.WriteTo(&buffer)
	return buffer.Bytes()
}

// Encode splits data into chunks of at most chunkSize bytes, encodes
// each in mode, and returns the container. A chunkSize of zero or less
// produces a single chunk. Empty data produces one empty chunk.
func Encode(data []byte, mode EncodingMode, chunkSize int) ([]byte, error) {
	builder := NewBuilder()
	if chunkSize <= 0 || chunkSize >= len(data) {
		if err := builder.AddChunk(mode, data); err != nil {
			return nil, err
		}
		return builder.Bytes(), nil
	}
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		if err := builder.AddChunk(mode, data[start:end]); err != nil {
			return nil, fmt.Errorf("chunk at offset %d: %w", start, err)
		}
	}
	return builder.Bytes(), nil
}
