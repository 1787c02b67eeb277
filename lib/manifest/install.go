// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"

	"github.com/ohchase/blizztools/lib/binfmt"
	"github.com/ohchase/blizztools/lib/hashid"
)

// InstallMagic is the install manifest signature.
const InstallMagic = "IN"

// InstallEntry is one installable file.
type InstallEntry struct {
	Name string `json:"name"`

	// ContentKey identifies the file content; resolve it through the
	// encoding manifest to fetch the file.
	ContentKey hashid.ID `json:"content_key"`

	Size uint32 `json:"size"`
}

// Install is a parsed install manifest.
type Install struct {
	Version  uint8          `json:"version"`
	HashSize uint8          `json:"hash_size"`
	Tags     []Tag          `json:"tags"`
	Entries  []InstallEntry `json:"entries"`
}

// ParseInstall decodes an install manifest. Tags precede entries in
// this format.
func ParseInstall(data []byte) (*Install, error) {
	r := binfmt.NewReader(data)
	if err := r.Magic(InstallMagic, "install magic"); err != nil {
		return nil, err
	}

	var manifest Install
	var err error
	if manifest.Version, err = r.Uint8("install version"); err != nil {
		return nil, err
	}
	if manifest.HashSize, err = r.Uint8("install hash size"); err != nil {
		return nil, err
	}
	tagCount, err := r.Uint16("install tag count")
	if err != nil {
		return nil, err
	}
	entryCount, err := r.Uint32("install entry count")
	if err != nil {
		return nil, err
	}
	if manifest.HashSize != hashid.Size {
		return nil, binfmt.Malformed(3, "install header", "hash size %d, only %d is supported", manifest.HashSize, hashid.Size)
	}

	if manifest.Tags, err = readTags(r, tagCount, entryCount); err != nil {
		return nil, err
	}

	// Each entry is at least a terminator, a key and a size.
	if minimum := uint64(entryCount) * (1 + hashid.Size + 4); uint64(r.Remaining()) < minimum {
		return nil, binfmt.Truncated(r.Position(), "install entries", int(min(minimum, 1<<31)), r.Remaining())
	}
	manifest.Entries = make([]InstallEntry, entryCount)
	for i := range manifest.Entries {
		what := fmt.Sprintf("install entry %d", i)
		entry := &manifest.Entries[i]
		if entry.Name, err = r.CString(what + " name"); err != nil {
			return nil, err
		}
		if entry.ContentKey, err = r.ID(what + " content key"); err != nil {
			return nil, err
		}
		if entry.Size, err = r.Uint32(what + " size"); err != nil {
			return nil, err
		}
	}
	return &manifest, nil
}

// FindByName returns the first entry with the given name.
func (m *Install) FindByName(name string) (*InstallEntry, bool) {
	for i := range m.Entries {
		if m.Entries[i].Name == name {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// EntryTags returns the names of the tags carried by entry index.
func (m *Install) EntryTags(index int) []string {
	var names []string
	for _, tag := range m.Tags {
		if tag.Contains(index) {
			names = append(names, tag.Name)
		}
	}
	return names
}

// Tagged returns the entries carried by every named tag, in manifest
// order. With no names it returns all entries.
func (m *Install) Tagged(names ...string) ([]InstallEntry, error) {
	indices, err := selectTagged(m.Tags, len(m.Entries), names)
	if err != nil {
		return nil, err
	}
	entries := make([]InstallEntry, 0, len(indices))
	for _, index := range indices {
		entries = append(entries, m.Entries[index])
	}
	return entries, nil
}
