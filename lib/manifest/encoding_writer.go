// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ohchase/blizztools/lib/hashid"
)

// EncodeEncoding serializes entries as an encoding manifest with a
// content-key table of pageSizeKB KiB pages. Entries are packed into
// pages greedily in the order given; each entry's KeyCount is taken
// from len(EncodingKeys). No encoding-key spec table is written.
func EncodeEncoding(pageSizeKB uint16, especs []string, entries []CEKeyEntry) ([]byte, error) {
	pageSize := int(pageSizeKB) * 1024
	if pageSize == 0 {
		return nil, fmt.Errorf("page size must be positive")
	}

	var pages [][]byte
	var firstKeys []hashid.ID
	var current []byte
	for i, entry := range entries {
		if len(entry.EncodingKeys) > math.MaxUint8 {
			return nil, fmt.Errorf("entry %d has %d encoding keys, at most %d fit", i, len(entry.EncodingKeys), math.MaxUint8)
		}
		encoded := encodeCEKeyEntry(entry)
		if len(encoded) > pageSize {
			return nil, fmt.Errorf("entry %d is %d bytes, larger than a %d byte page", i, len(encoded), pageSize)
		}
		if current != nil && len(current)+len(encoded) > pageSize {
			pages = append(pages, padPage(current, pageSize))
			current = nil
		}
		if current == nil {
			firstKeys = append(firstKeys, entry.ContentKey)
			current = make([]byte, 0, pageSize)
		}
		current = append(current, encoded...)
	}
	if current != nil {
		pages = append(pages, padPage(current, pageSize))
	}

	var espec bytes.Buffer
	for _, spec := range especs {
		espec.WriteString(spec)
		espec.WriteByte(0)
	}

	var out bytes.Buffer
	out.WriteString(EncodingMagic)
	out.WriteByte(1)
	out.WriteByte(hashid.Size)
	out.WriteByte(hashid.Size)
	binary.Write(&out, binary.BigEndian, pageSizeKB)
	binary.Write(&out, binary.BigEndian, pageSizeKB)
	binary.Write(&out, binary.BigEndian, uint32(len(pages)))
	binary.Write(&out, binary.BigEndian, uint32(0))
	out.WriteByte(0)
	binary.Write(&out, binary.BigEndian, uint32(espec.Len()))
	out.Write(espec.Bytes())
	for i, page := range pages {
		checksum := md5.Sum(page)
		out.Write(firstKeys[i][:])
		out.Write(checksum[:])
	}
	for _, page := range pages {
		out.Write(page)
	}
	return out.Bytes(), nil
}

func encodeCEKeyEntry(entry CEKeyEntry) []byte {
	out := make([]byte, 0, 1+5+hashid.Size*(1+len(entry.EncodingKeys)))
	out = append(out, byte(len(entry.EncodingKeys)))
	out = append(out, entry.FileSize[:]...)
	out = append(out, entry.ContentKey[:]...)
	for _, key := range entry.EncodingKeys {
		out = append(out, key[:]...)
	}
	return out
}

func padPage(page []byte, size int) []byte {
	return append(page, make([]byte, size-len(page))...)
}
