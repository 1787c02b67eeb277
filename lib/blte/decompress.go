// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package blte

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/ohchase/blizztools/lib/hashid"
)

// DecodeKind classifies a decompression failure.
type DecodeKind uint8

const (
	// DecodeInflate means a zlib stream was malformed.
	DecodeInflate DecodeKind = iota + 1

	// DecodeUnsupported means the chunk uses a mode this package does
	// not decode (recursive, encrypted).
	DecodeUnsupported

	// DecodeSizeMismatch means the decoded length differs from the
	// chunk's declared decompressed size.
	DecodeSizeMismatch

	// DecodeChecksumMismatch means the encoded chunk does not hash to
	// its declared checksum.
	DecodeChecksumMismatch
)

// Sentinels for errors.Is. A *DecodeError matches the sentinel for
// its Kind.
var (
	ErrInflate          = errors.New("inflate failed")
	ErrUnsupported      = errors.New("unsupported encoding mode")
	ErrSizeMismatch     = errors.New("decompressed size mismatch")
	ErrChecksumMismatch = errors.New("chunk checksum mismatch")
)

func (k DecodeKind) sentinel() error {
	switch k {
	case DecodeInflate:
		return ErrInflate
	case DecodeUnsupported:
		return ErrUnsupported
	case DecodeSizeMismatch:
		return ErrSizeMismatch
	case DecodeChecksumMismatch:
		return ErrChecksumMismatch
	}
	return nil
}

// DecodeError reports a failure decoding one chunk.
type DecodeError struct {
	Kind  DecodeKind
	Chunk int
	Mode  EncodingMode

	// Expected and Actual are set for size mismatches. Actual is a
	// lower bound when output exceeded Expected.
	Expected int64
	Actual   int64

	Err error
}

func (e *DecodeError) Error() string {
	prefix := fmt.Sprintf("chunk %d (%s)", e.Chunk, e.Mode)
	switch e.Kind {
	case DecodeUnsupported:
		return fmt.Sprintf("%s: %s %q", prefix, ErrUnsupported, e.Mode)
	case DecodeSizeMismatch:
		if e.Actual > e.Expected {
			return fmt.Sprintf("%s: decoded more than the declared %d bytes", prefix, e.Expected)
		}
		return fmt.Sprintf("%s: decoded %d bytes, declared %d", prefix, e.Actual, e.Expected)
	case DecodeChecksumMismatch:
		return fmt.Sprintf("%s: %s: %v", prefix, ErrChecksumMismatch, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Kind.sentinel(), e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Kind.sentinel())
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	var errs []error
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// maxPreallocate bounds the output buffer reserved from declared sizes.
// Declared sizes come from untrusted input; beyond this the buffer
// grows as chunks are actually decoded.
const maxPreallocate = 256 << 20

// Decompress decodes every chunk in order and returns the
// concatenated output. The first failing chunk aborts the call.
func Decompress(t *Table) ([]byte, error) {
	capacity := t.DecompressedSize()
	if capacity > maxPreallocate {
		capacity = maxPreallocate
	}
	output := make([]byte, 0, capacity)

	for i := range t.Chunks {
		decoded, err := t.DecompressChunk(i)
		if err != nil {
			return nil, err
		}
		output = append(output, decoded...)
	}
	return output, nil
}

// DecompressEach decodes chunks in order and calls visit with each
// chunk's output or error. Iteration stops when visit returns false.
// Unlike [Decompress], a failing chunk does not stop iteration on its
// own, so callers can skip unsupported chunks.
func DecompressEach(t *Table, visit func(index int, decoded []byte, err error) bool) {
	for i := range t.Chunks {
		decoded, err := t.DecompressChunk(i)
		if !visit(i, decoded, err) {
			return
		}
	}
}

// DecompressChunk decodes a single chunk and checks its length against
// the declared decompressed size. For plain chunks the returned slice
// aliases the payload.
func (t *Table) DecompressChunk(index int) ([]byte, error) {
	if index < 0 || index >= len(t.Chunks) {
		return nil, fmt.Errorf("chunk index %d out of range [0, %d)", index, len(t.Chunks))
	}
	chunk := t.Chunks[index]
	declared := int64(t.Entries[index].DecompressedSize)

	var decoded []byte
	switch chunk.Mode {
	case ModePlain:
		decoded = chunk.Payload

	case ModeZlib:
		var err error
		decoded, err = inflate(chunk.Payload, declared)
		if err != nil {
			return nil, &DecodeError{Kind: DecodeInflate, Chunk: index, Mode: chunk.Mode, Err: err}
		}

	default:
		return nil, &DecodeError{Kind: DecodeUnsupported, Chunk: index, Mode: chunk.Mode}
	}

	if int64(len(decoded)) != declared {
		return nil, &DecodeError{
			Kind:     DecodeSizeMismatch,
			Chunk:    index,
			Mode:     chunk.Mode,
			Expected: declared,
			Actual:   int64(len(decoded)),
		}
	}
	return decoded, nil
}

// inflate decodes a zlib stream, reading at most one byte past the
// declared size so an oversized stream is detected without decoding
// all of it.
func inflate(payload []byte, declared int64) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var buffer bytes.Buffer
	if declared < maxPreallocate {
		buffer.Grow(int(declared))
	}
	if _, err := io.Copy(&buffer, io.LimitReader(reader, declared+1)); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Verify checks every chunk against its declared checksum, the MD5 of
// the mode tag followed by the payload. Entries with a null checksum
// are skipped.
func (t *Table) Verify() error {
	for i, entry := range t.Entries {
		if entry.Checksum.IsNull() {
			continue
		}
		actual := ChunkChecksum(t.Chunks[i].Mode, t.Chunks[i].Payload)
		if actual != entry.Checksum {
			return &DecodeError{
				Kind:  DecodeChecksumMismatch,
				Chunk: i,
				Mode:  t.Chunks[i].Mode,
				Err:   fmt.Errorf("declared %s, computed %s", entry.Checksum, actual),
			}
		}
	}
	return nil
}

// ChunkChecksum computes the checksum of an encoded chunk.
func ChunkChecksum(mode EncodingMode, payload []byte) hashid.ID {
	hasher := md5.New()
	hasher.Write([]byte{byte(mode)})
	hasher.Write(payload)
	var id hashid.ID
	copy(id[:], hasher.Sum(nil))
	return id
}
