// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"

	"github.com/ohchase/blizztools/lib/binfmt"
	"github.com/ohchase/blizztools/lib/hashid"
)

// DownloadMagic is the download manifest signature.
const DownloadMagic = "DL"

// DownloadEntry is one downloadable object.
type DownloadEntry struct {
	EncodingKey hashid.ID `json:"encoding_key"`
	FileSize    [5]byte   `json:"-"`
	Priority    uint8     `json:"priority"`

	// Checksum is present when the header's checksum flag is set.
	Checksum uint32 `json:"checksum,omitempty"`

	// Flags holds FlagSize bytes per entry (version 2 and later).
	Flags []byte `json:"flags,omitempty"`
}

// Size returns the encoded object size.
func (e *DownloadEntry) Size() uint64 {
	return binfmt.Uint40Value(e.FileSize)
}

// Download is a parsed download manifest.
type Download struct {
	Version         uint8 `json:"version"`
	EncodingKeySize uint8 `json:"encoding_key_size"`
	HasChecksum     bool  `json:"include_checksum"`

	// FlagSize is the number of flag bytes per entry (version >= 2).
	FlagSize uint8 `json:"flag_size,omitempty"`

	// BasePriority is subtracted from entry priorities (version >= 3).
	BasePriority int8 `json:"base_priority,omitempty"`

	Entries []DownloadEntry `json:"entries"`
	Tags    []Tag           `json:"tags"`
}

// ParseDownload decodes a download manifest. Entries precede tags in
// this format.
func ParseDownload(data []byte) (*Download, error) {
	r := binfmt.NewReader(data)
	if err := r.Magic(DownloadMagic, "download magic"); err != nil {
		return nil, err
	}

	var manifest Download
	var err error
	if manifest.Version, err = r.Uint8("download version"); err != nil {
		return nil, err
	}
	if manifest.EncodingKeySize, err = r.Uint8("download key size"); err != nil {
		return nil, err
	}
	checksumFlag, err := r.Uint8("download checksum flag")
	if err != nil {
		return nil, err
	}
	manifest.HasChecksum = checksumFlag != 0
	entryCount, err := r.Uint32("download entry count")
	if err != nil {
		return nil, err
	}
	tagCount, err := r.Uint16("download tag count")
	if err != nil {
		return nil, err
	}
	if manifest.Version >= 2 {
		if manifest.FlagSize, err = r.Uint8("download flag size"); err != nil {
			return nil, err
		}
	}
	if manifest.Version >= 3 {
		base, err := r.Uint8("download base priority")
		if err != nil {
			return nil, err
		}
		manifest.BasePriority = int8(base)
		if err := r.Skip(3, "download header reserved bytes"); err != nil {
			return nil, err
		}
	}
	if manifest.EncodingKeySize != hashid.Size {
		return nil, binfmt.Malformed(4, "download header", "key size %d, only %d is supported", manifest.EncodingKeySize, hashid.Size)
	}

	entrySize := hashid.Size + 5 + 1 + int(manifest.FlagSize)
	if manifest.HasChecksum {
		entrySize += 4
	}
	if need := uint64(entryCount) * uint64(entrySize); uint64(r.Remaining()) < need {
		return nil, binfmt.Truncated(r.Position(), "download entries", int(min(need, 1<<31)), r.Remaining())
	}

	manifest.Entries = make([]DownloadEntry, entryCount)
	for i := range manifest.Entries {
		what := fmt.Sprintf("download entry %d", i)
		entry := &manifest.Entries[i]
		if entry.EncodingKey, err = r.ID(what + " key"); err != nil {
			return nil, err
		}
		if entry.FileSize, err = r.Uint40(what + " size"); err != nil {
			return nil, err
		}
		if entry.Priority, err = r.Uint8(what + " priority"); err != nil {
			return nil, err
		}
		if manifest.HasChecksum {
			if entry.Checksum, err = r.Uint32(what + " checksum"); err != nil {
				return nil, err
			}
		}
		if manifest.FlagSize > 0 {
			if entry.Flags, err = r.Bytes(int(manifest.FlagSize), what+" flags"); err != nil {
				return nil, err
			}
		}
	}

	if manifest.Tags, err = readTags(r, tagCount, entryCount); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// FindByEncodingKey returns the first entry for key.
func (m *Download) FindByEncodingKey(key hashid.ID) (*DownloadEntry, bool) {
	for i := range m.Entries {
		if m.Entries[i].EncodingKey == key {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// Tagged returns the entries carried by every named tag, in manifest
// (priority) order.
func (m *Download) Tagged(names ...string) ([]DownloadEntry, error) {
	indices, err := selectTagged(m.Tags, len(m.Entries), names)
	if err != nil {
		return nil, err
	}
	entries := make([]DownloadEntry, 0, len(indices))
	for _, index := range indices {
		entries = append(entries, m.Entries[index])
	}
	return entries, nil
}
