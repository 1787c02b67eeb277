// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/ohchase/blizztools/lib/binfmt"
	"github.com/ohchase/blizztools/lib/hashid"
)

type testTag struct {
	name    string
	tagType uint16
	mask    []byte
}

func writeTags(buffer *bytes.Buffer, tags []testTag) {
	for _, tag := range tags {
		buffer.WriteString(tag.name)
		buffer.WriteByte(0)
		binary.Write(buffer, binary.BigEndian, tag.tagType)
		buffer.Write(tag.mask)
	}
}

func buildInstall(tags []testTag, entries []InstallEntry) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(InstallMagic)
	buffer.WriteByte(1)
	buffer.WriteByte(hashid.Size)
	binary.Write(&buffer, binary.BigEndian, uint16(len(tags)))
	binary.Write(&buffer, binary.BigEndian, uint32(len(entries)))
	writeTags(&buffer, tags)
	for _, entry := range entries {
		buffer.WriteString(entry.Name)
		buffer.WriteByte(0)
		buffer.Write(entry.ContentKey[:])
		binary.Write(&buffer, binary.BigEndian, entry.Size)
	}
	return buffer.Bytes()
}

func sampleInstallEntries() []InstallEntry {
	return []InstallEntry{
		{Name: "Wow.exe", ContentKey: testKey("wow"), Size: 100},
		{Name: "WowT.exe", ContentKey: testKey("wowt"), Size: 200},
		{Name: "Data/readme.txt", ContentKey: testKey("readme"), Size: 300},
	}
}

func TestParseInstall(t *testing.T) {
	entries := sampleInstallEntries()
	data := buildInstall([]testTag{
		{name: "Windows", tagType: 1, mask: []byte{0b1100_0000}},
		{name: "enUS", tagType: 3, mask: []byte{0b1010_0000}},
	}, entries)

	manifest, err := ParseInstall(data)
	if err != nil {
		t.Fatalf("ParseInstall failed: %v", err)
	}
	if !reflect.DeepEqual(manifest.Entries, entries) {
		t.Errorf("Entries = %+v, want %+v", manifest.Entries, entries)
	}
	if len(manifest.Tags) != 2 || manifest.Tags[1].Name != "enUS" || manifest.Tags[1].Type != 3 {
		t.Fatalf("Tags = %+v", manifest.Tags)
	}

	found, ok := manifest.FindByName("WowT.exe")
	if !ok || found.ContentKey != testKey("wowt") {
		t.Errorf("FindByName(WowT.exe) = %+v, %v", found, ok)
	}
	if _, ok := manifest.FindByName("missing"); ok {
		t.Error("FindByName found an absent name")
	}

	if got := manifest.EntryTags(0); !reflect.DeepEqual(got, []string{"Windows", "enUS"}) {
		t.Errorf("EntryTags(0) = %v", got)
	}
	if got := manifest.EntryTags(2); !reflect.DeepEqual(got, []string{"enUS"}) {
		t.Errorf("EntryTags(2) = %v", got)
	}

	tagged, err := manifest.Tagged("Windows", "enUS")
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 || tagged[0].Name != "Wow.exe" {
		t.Errorf("Tagged(Windows, enUS) = %+v", tagged)
	}
	all, err := manifest.Tagged()
	if err != nil || len(all) != 3 {
		t.Errorf("Tagged() = %d entries, %v", len(all), err)
	}
	if _, err := manifest.Tagged("OSX"); err == nil {
		t.Error("Tagged accepted an unknown tag")
	}
}

func TestInstallMaskLengthRoundsUp(t *testing.T) {
	// Nine entries need a two-byte mask.
	var entries []InstallEntry
	for i := 0; i < 9; i++ {
		entries = append(entries, InstallEntry{Name: string(rune('a' + i)), ContentKey: testKey(string(rune('a' + i))), Size: uint32(i)})
	}
	data := buildInstall([]testTag{{name: "last", tagType: 1, mask: []byte{0x00, 0x80}}}, entries)

	manifest, err := ParseInstall(data)
	if err != nil {
		t.Fatalf("ParseInstall failed: %v", err)
	}
	if len(manifest.Entries) != 9 {
		t.Fatalf("decoded %d entries, want 9", len(manifest.Entries))
	}
	tagged, err := manifest.Tagged("last")
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 || tagged[0].Name != "i" {
		t.Errorf("Tagged(last) = %+v, want only entry i", tagged)
	}
}

func TestParseInstallErrors(t *testing.T) {
	valid := buildInstall([]testTag{{name: "Windows", tagType: 1, mask: []byte{0xe0}}}, sampleInstallEntries())

	badMagic := bytes.Clone(valid)
	badMagic[1] = 'X'
	if _, err := ParseInstall(badMagic); !errors.Is(err, binfmt.ErrBadMagic) {
		t.Errorf("bad magic error = %v, want ErrBadMagic", err)
	}

	badHash := bytes.Clone(valid)
	badHash[3] = 20
	if _, err := ParseInstall(badHash); !errors.Is(err, binfmt.ErrMalformed) {
		t.Errorf("bad hash size error = %v, want ErrMalformed", err)
	}

	for _, length := range []int{0, 5, 12, 20, len(valid) - 1} {
		if _, err := ParseInstall(valid[:length]); !errors.Is(err, binfmt.ErrTruncated) {
			t.Errorf("prefix %d error = %v, want ErrTruncated", length, err)
		}
	}
}
