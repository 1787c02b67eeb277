// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ohchase/blizztools/lib/binfmt"
	"github.com/ohchase/blizztools/lib/hashid"
)

type downloadLayout struct {
	version      uint8
	checksum     bool
	flagSize     uint8
	basePriority int8
}

func buildDownload(layout downloadLayout, entries []DownloadEntry, tags []testTag) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(DownloadMagic)
	buffer.WriteByte(layout.version)
	buffer.WriteByte(hashid.Size)
	if layout.checksum {
		buffer.WriteByte(1)
	} else {
		buffer.WriteByte(0)
	}
	binary.Write(&buffer, binary.BigEndian, uint32(len(entries)))
	binary.Write(&buffer, binary.BigEndian, uint16(len(tags)))
	if layout.version >= 2 {
		buffer.WriteByte(layout.flagSize)
	}
	if layout.version >= 3 {
		buffer.WriteByte(byte(layout.basePriority))
		buffer.Write([]byte{0, 0, 0})
	}
	for _, entry := range entries {
		buffer.Write(entry.EncodingKey[:])
		buffer.Write(entry.FileSize[:])
		buffer.WriteByte(entry.Priority)
		if layout.checksum {
			binary.Write(&buffer, binary.BigEndian, entry.Checksum)
		}
		buffer.Write(entry.Flags)
	}
	writeTags(&buffer, tags)
	return buffer.Bytes()
}

func TestParseDownloadVersions(t *testing.T) {
	tests := []struct {
		name   string
		layout downloadLayout
		flags  []byte
	}{
		{name: "version 1", layout: downloadLayout{version: 1}},
		{name: "version 1 with checksum", layout: downloadLayout{version: 1, checksum: true}},
		{name: "version 2 flags", layout: downloadLayout{version: 2, flagSize: 2}, flags: []byte{0xaa, 0x55}},
		{name: "version 3 base priority", layout: downloadLayout{version: 3, checksum: true, flagSize: 1, basePriority: -2}, flags: []byte{0x01}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			entries := []DownloadEntry{
				{EncodingKey: testKey("first"), FileSize: binfmt.PutUint40(1 << 33), Priority: 0, Flags: test.flags},
				{EncodingKey: testKey("second"), FileSize: binfmt.PutUint40(42), Priority: 2, Flags: test.flags},
			}
			if test.layout.checksum {
				entries[0].Checksum = 0xdeadbeef
				entries[1].Checksum = 7
			}
			data := buildDownload(test.layout, entries, []testTag{{name: "Windows", tagType: 1, mask: []byte{0x40}}})

			manifest, err := ParseDownload(data)
			if err != nil {
				t.Fatalf("ParseDownload failed: %v", err)
			}
			if manifest.Version != test.layout.version || manifest.HasChecksum != test.layout.checksum {
				t.Errorf("header = %+v", manifest)
			}
			if manifest.FlagSize != test.layout.flagSize || manifest.BasePriority != test.layout.basePriority {
				t.Errorf("FlagSize, BasePriority = %d, %d, want %d, %d",
					manifest.FlagSize, manifest.BasePriority, test.layout.flagSize, test.layout.basePriority)
			}
			if len(manifest.Entries) != 2 {
				t.Fatalf("decoded %d entries, want 2", len(manifest.Entries))
			}
			first := manifest.Entries[0]
			if first.EncodingKey != testKey("first") || first.Size() != 1<<33 || first.Checksum != entries[0].Checksum {
				t.Errorf("Entries[0] = %+v", first)
			}
			if !bytes.Equal(first.Flags, test.flags) {
				t.Errorf("Flags = %x, want %x", first.Flags, test.flags)
			}

			found, ok := manifest.FindByEncodingKey(testKey("second"))
			if !ok || found.Priority != 2 || found.Size() != 42 {
				t.Errorf("FindByEncodingKey(second) = %+v, %v", found, ok)
			}

			tagged, err := manifest.Tagged("Windows")
			if err != nil {
				t.Fatal(err)
			}
			if len(tagged) != 1 || tagged[0].EncodingKey != testKey("second") {
				t.Errorf("Tagged(Windows) = %+v", tagged)
			}
		})
	}
}

func TestParseDownloadErrors(t *testing.T) {
	entries := []DownloadEntry{{EncodingKey: testKey("a"), FileSize: binfmt.PutUint40(1)}}
	valid := buildDownload(downloadLayout{version: 1}, entries, []testTag{{name: "x", tagType: 1, mask: []byte{0x80}}})

	badMagic := bytes.Clone(valid)
	badMagic[0] = 'E'
	if _, err := ParseDownload(badMagic); !errors.Is(err, binfmt.ErrBadMagic) {
		t.Errorf("bad magic error = %v, want ErrBadMagic", err)
	}

	badKey := bytes.Clone(valid)
	badKey[3] = 9
	if _, err := ParseDownload(badKey); !errors.Is(err, binfmt.ErrMalformed) {
		t.Errorf("bad key size error = %v, want ErrMalformed", err)
	}

	// Header 11 bytes, one 22-byte entry, then the tag.
	for _, length := range []int{1, 8, 11, 20, 33, len(valid) - 1} {
		if _, err := ParseDownload(valid[:length]); !errors.Is(err, binfmt.ErrTruncated) {
			t.Errorf("prefix %d error = %v, want ErrTruncated", length, err)
		}
	}
}
