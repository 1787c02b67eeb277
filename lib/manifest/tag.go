// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"

	"github.com/ohchase/blizztools/lib/binfmt"
)

// Tag is a named bitmask over a manifest's entries. Bit i (most
// significant bit first within each byte) is set when entry i carries
// the tag.
type Tag struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
	Mask []byte `json:"-"`
}

// Contains reports whether entry index carries the tag.
func (t Tag) Contains(index int) bool {
	if index < 0 || index/8 >= len(t.Mask) {
		return false
	}
	return t.Mask[index/8]&(0x80>>(index%8)) != 0
}

// maskLength is the number of mask bytes for a manifest of count
// entries: one bit per entry, rounded up.
func maskLength(count uint32) int {
	return int((uint64(count) + 7) / 8)
}

// readTags decodes count tags whose masks cover entryCount entries.
func readTags(r *binfmt.Reader, count uint16, entryCount uint32) ([]Tag, error) {
	tags := make([]Tag, 0, min(int(count), r.Remaining()))
	length := maskLength(entryCount)
	for i := 0; i < int(count); i++ {
		what := fmt.Sprintf("tag %d", i)
		name, err := r.CString(what + " name")
		if err != nil {
			return nil, err
		}
		tagType, err := r.Uint16(what + " type")
		if err != nil {
			return nil, err
		}
		mask, err := r.Bytes(length, what+" mask")
		if err != nil {
			return nil, err
		}
		tags = append(tags, Tag{Name: name, Type: tagType, Mask: mask})
	}
	return tags, nil
}

// selectTagged returns the indices in [0, count) carried by every
// named tag. Unknown tag names select nothing.
func selectTagged(tags []Tag, count int, names []string) ([]int, error) {
	selected := make([]*Tag, 0, len(names))
	for _, name := range names {
		var found *Tag
		for i := range tags {
			if tags[i].Name == name {
				found = &tags[i]
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("unknown tag %q", name)
		}
		selected = append(selected, found)
	}

	var indices []int
	for index := 0; index < count; index++ {
		carried := true
		for _, tag := range selected {
			if !tag.Contains(index) {
				carried = false
				break
			}
		}
		if carried {
			indices = append(indices, index)
		}
	}
	return indices, nil
}
