// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/ohchase/blizztools/lib/binfmt"
	"github.com/ohchase/blizztools/lib/hashid"
)

// testKey derives a distinct non-null ID from a label.
func testKey(label string) hashid.ID {
	var id hashid.ID
	copy(id[:], fmt.Sprintf("%-16s", label))
	return id
}

func entry(content string, sizes uint64, encoding ...string) CEKeyEntry {
	keys := make([]hashid.ID, len(encoding))
	for i, label := range encoding {
		keys[i] = testKey(label)
	}
	return CEKeyEntry{
		KeyCount:     uint8(len(keys)),
		FileSize:     binfmt.PutUint40(sizes),
		ContentKey:   testKey(content),
		EncodingKeys: keys,
	}
}

func mustEncode(t *testing.T, pageSizeKB uint16, especs []string, entries ...CEKeyEntry) []byte {
	t.Helper()
	data, err := EncodeEncoding(pageSizeKB, especs, entries)
	if err != nil {
		t.Fatalf("EncodeEncoding failed: %v", err)
	}
	return data
}

func TestEncodingSinglePageSingleEntry(t *testing.T) {
	data := mustEncode(t, 1, nil, entry("content", 1234, "encoded"))

	manifest, err := ParseEncoding(data)
	if err != nil {
		t.Fatalf("ParseEncoding failed: %v", err)
	}
	if manifest.Header.CEKeyPageCount != 1 || manifest.Header.CEPageSizeKB != 1 {
		t.Fatalf("header = %+v, want one 1 KiB page", manifest.Header)
	}
	if len(manifest.CEKeyEntries) != 1 {
		t.Fatalf("decoded %d entries, want 1", len(manifest.CEKeyEntries))
	}

	found, ok := manifest.FindByContentKey(testKey("content"))
	if !ok {
		t.Fatal("FindByContentKey did not find the entry")
	}
	if found.EncodingKeys[0] != testKey("encoded") {
		t.Errorf("encoding key = %s, want %s", found.EncodingKeys[0], testKey("encoded"))
	}
	if found.Size() != 1234 {
		t.Errorf("Size() = %d, want 1234", found.Size())
	}

	if _, ok := manifest.FindByContentKey(testKey("missing")); ok {
		t.Error("FindByContentKey found an absent key")
	}
	if _, ok := manifest.FindByContentKey(hashid.Null); ok {
		t.Error("FindByContentKey matched the null key against page padding")
	}
}

func TestEncodingEntryRoundtripPreservesKeyOrder(t *testing.T) {
	original := entry("multi", 0xabcdef0102, "third", "first", "second")
	data := mustEncode(t, 1, nil, original)

	manifest, err := ParseEncoding(data)
	if err != nil {
		t.Fatal(err)
	}
	decoded := manifest.CEKeyEntries[0]
	if decoded.ContentKey != original.ContentKey {
		t.Errorf("ContentKey = %s, want %s", decoded.ContentKey, original.ContentKey)
	}
	if decoded.FileSize != original.FileSize {
		t.Errorf("FileSize = %x, want %x", decoded.FileSize, original.FileSize)
	}
	if decoded.KeyCount != 3 || len(decoded.EncodingKeys) != 3 {
		t.Fatalf("KeyCount = %d, %d keys", decoded.KeyCount, len(decoded.EncodingKeys))
	}
	for i := range original.EncodingKeys {
		if decoded.EncodingKeys[i] != original.EncodingKeys[i] {
			t.Errorf("EncodingKeys[%d] = %s, want %s", i, decoded.EncodingKeys[i], original.EncodingKeys[i])
		}
	}
}

func TestEncodingMultiplePagesAndDuplicates(t *testing.T) {
	// A one-key entry is 38 bytes, so 26 fit in a 1 KiB page and the
	// 27th starts page two.
	var entries []CEKeyEntry
	entries = append(entries, entry("duplicate", 1, "first-wins"))
	for i := 1; i < 26; i++ {
		entries = append(entries, entry(fmt.Sprintf("filler-%d", i), uint64(i), fmt.Sprintf("ekey-%d", i)))
	}
	entries = append(entries, entry("duplicate", 2, "second-page"))
	entries = append(entries, entry("tail", 3, "tail-ekey"))

	data := mustEncode(t, 1, nil, entries...)
	manifest, err := ParseEncoding(data)
	if err != nil {
		t.Fatalf("ParseEncoding failed: %v", err)
	}
	if manifest.Header.CEKeyPageCount != 2 {
		t.Fatalf("CEKeyPageCount = %d, want 2", manifest.Header.CEKeyPageCount)
	}
	if len(manifest.CEKeyEntries) != len(entries) {
		t.Fatalf("decoded %d entries, want %d", len(manifest.CEKeyEntries), len(entries))
	}
	for i := range entries {
		if manifest.CEKeyEntries[i].ContentKey != entries[i].ContentKey {
			t.Fatalf("entry %d out of order", i)
		}
	}

	found, ok := manifest.FindByContentKey(testKey("duplicate"))
	if !ok {
		t.Fatal("duplicate key not found")
	}
	if found.EncodingKeys[0] != testKey("first-wins") {
		t.Errorf("duplicate resolved to %s, want the first occurrence in page order", found.EncodingKeys[0])
	}

	if _, ok := manifest.FindByContentKey(testKey("tail")); !ok {
		t.Error("entry on the second page not found")
	}

	if err := manifest.VerifyPages(); err != nil {
		t.Errorf("VerifyPages failed: %v", err)
	}
}

func TestEncodingShortFinalPageIsTruncation(t *testing.T) {
	var entries []CEKeyEntry
	for i := 0; i < 30; i++ {
		entries = append(entries, entry(fmt.Sprintf("key-%d", i), 1, "ekey"))
	}
	data := mustEncode(t, 1, nil, entries...)

	// Drop the tail of the final page: the header still declares two
	// full pages.
	_, err := ParseEncoding(data[:len(data)-100])
	if !errors.Is(err, binfmt.ErrTruncated) {
		t.Fatalf("ParseEncoding error = %v, want ErrTruncated", err)
	}
}

func TestEncodingBadMagic(t *testing.T) {
	data := mustEncode(t, 1, nil, entry("a", 1, "b"))
	data[0] = 'X'
	if _, err := ParseEncoding(data); !errors.Is(err, binfmt.ErrBadMagic) {
		t.Errorf("ParseEncoding error = %v, want ErrBadMagic", err)
	}
}

func TestEncodingTruncatedHeaderAndIndex(t *testing.T) {
	data := mustEncode(t, 1, []string{"z"}, entry("a", 1, "b"))
	// Header is 22 bytes, espec 2, page index 32.
	for _, length := range []int{1, 10, 23, 25, 40} {
		if _, err := ParseEncoding(data[:length]); !errors.Is(err, binfmt.ErrTruncated) {
			t.Errorf("ParseEncoding(prefix %d) error = %v, want ErrTruncated", length, err)
		}
	}
}

func TestEncodingRejectsUnsupportedKeySize(t *testing.T) {
	data := mustEncode(t, 1, nil, entry("a", 1, "b"))
	data[3] = 9
	if _, err := ParseEncoding(data); !errors.Is(err, binfmt.ErrMalformed) {
		t.Errorf("ParseEncoding error = %v, want ErrMalformed", err)
	}
}

func TestEncodingEmptyKeyListEntry(t *testing.T) {
	data := mustEncode(t, 1, nil, entry("no-keys", 5), entry("after", 1, "x"))

	manifest, err := ParseEncoding(data)
	if err != nil {
		t.Fatal(err)
	}
	found, ok := manifest.FindByContentKey(testKey("no-keys"))
	if !ok {
		t.Fatal("entry with zero encoding keys was treated as padding")
	}
	if len(found.EncodingKeys) != 0 {
		t.Errorf("EncodingKeys = %v, want none", found.EncodingKeys)
	}
	if _, ok := manifest.FindByContentKey(testKey("after")); !ok {
		t.Error("entry after the zero-key entry not found")
	}
}

func TestEncodingESpecs(t *testing.T) {
	data := mustEncode(t, 1, []string{"n", "z", "b:{256K*=z}"}, entry("a", 1, "b"))
	manifest, err := ParseEncoding(data)
	if err != nil {
		t.Fatal(err)
	}
	specs := manifest.ESpecs()
	if fmt.Sprint(specs) != "[n z b:{256K*=z}]" {
		t.Errorf("ESpecs() = %q", specs)
	}
}

func TestEncodingVerifyPagesDetectsCorruption(t *testing.T) {
	data := mustEncode(t, 1, nil, entry("a", 1, "b"))
	manifest, err := ParseEncoding(data)
	if err != nil {
		t.Fatal(err)
	}
	manifest.CEKeyIndex[0].Checksum[0] ^= 0xff
	if err := manifest.VerifyPages(); err == nil {
		t.Error("VerifyPages accepted a wrong page checksum")
	}
}

// appendEKeySpecTable appends a one-page encoding-key spec table to an
// encoded manifest and patches the header counts.
func appendEKeySpecTable(data []byte, entries []EKeySpecEntry) []byte {
	out := bytes.Clone(data)
	binary.BigEndian.PutUint32(out[13:17], 1)

	page := make([]byte, 1024)
	position := 0
	for _, entry := range entries {
		copy(page[position:], entry.EncodingKey[:])
		binary.BigEndian.PutUint32(page[position+16:], entry.ESpecIndex)
		copy(page[position+20:], entry.FileSize[:])
		position += 25
	}
	out = append(out, entries[0].EncodingKey[:]...)
	out = append(out, make([]byte, 16)...)
	return append(out, page...)
}

func TestEncodingEKeySpecTable(t *testing.T) {
	base := mustEncode(t, 1, []string{"n", "z"}, entry("content", 10, "encoded"))
	data := appendEKeySpecTable(base, []EKeySpecEntry{
		{EncodingKey: testKey("encoded"), ESpecIndex: 1, FileSize: binfmt.PutUint40(7)},
	})

	manifest, err := ParseEncoding(data)
	if err != nil {
		t.Fatalf("ParseEncoding failed: %v", err)
	}
	if len(manifest.EKeySpecEntries) != 1 {
		t.Fatalf("decoded %d spec entries, want 1", len(manifest.EKeySpecEntries))
	}
	spec, ok := manifest.FindSpec(testKey("encoded"))
	if !ok || spec != "z" {
		t.Errorf("FindSpec = %q, %v, want \"z\", true", spec, ok)
	}
	if manifest.EKeySpecEntries[0].Size() != 7 {
		t.Errorf("Size() = %d, want 7", manifest.EKeySpecEntries[0].Size())
	}

	// The same header without the table bytes is accepted.
	withoutTable := bytes.Clone(data[:len(base)])
	manifest, err = ParseEncoding(withoutTable)
	if err != nil {
		t.Fatalf("ParseEncoding without spec table failed: %v", err)
	}
	if manifest.EKeySpecEntries != nil {
		t.Error("spec entries decoded from an absent table")
	}
}
