// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"

	"github.com/ohchase/blizztools/lib/binfmt"
	"github.com/ohchase/blizztools/lib/hashid"
	"github.com/ohchase/blizztools/lib/pagetable"
)

// EncodingMagic is the encoding manifest signature.
const EncodingMagic = "EN"

// pageIndexSize is the wire size of a PageIndex record.
const pageIndexSize = 2 * hashid.Size

// EncodingHeader holds the fixed fields after the magic.
type EncodingHeader struct {
	Version      uint8 `json:"version"`
	CKeyHashSize uint8 `json:"ckey_hash_size"`
	EKeyHashSize uint8 `json:"ekey_hash_size"`

	// CEPageSizeKB is the content-key table page size in KiB.
	CEPageSizeKB uint16 `json:"ce_page_size_kb"`

	// EPageSizeKB is the encoding-key spec table page size in KiB.
	EPageSizeKB uint16 `json:"e_page_size_kb"`

	// CEKeyPageCount is the number of content-key table pages.
	CEKeyPageCount uint32 `json:"ce_key_table_page_count"`

	// EKeySpecPageCount is the number of encoding-key spec table pages.
	EKeySpecPageCount uint32 `json:"e_key_table_count"`
}

// PageIndex precedes each paginated table: one record per page.
type PageIndex struct {
	// FirstKey is the first key stored in the page.
	FirstKey hashid.ID `json:"first_key"`

	// Checksum is the MD5 of the whole page, padding included.
	Checksum hashid.ID `json:"page_checksum"`
}

// CEKeyEntry maps a content key to its encoding keys.
type CEKeyEntry struct {
	KeyCount     uint8       `json:"key_count"`
	FileSize     [5]byte     `json:"-"`
	ContentKey   hashid.ID   `json:"content_key"`
	EncodingKeys []hashid.ID `json:"encoding_keys"`
}

// Size returns the decoded file size.
func (e *CEKeyEntry) Size() uint64 {
	return binfmt.Uint40Value(e.FileSize)
}

// EKeySpecEntry records the encoding specification for an encoding
// key.
type EKeySpecEntry struct {
	EncodingKey hashid.ID `json:"encoding_key"`
	ESpecIndex  uint32    `json:"espec_index"`
	FileSize    [5]byte   `json:"-"`
}

// Size returns the encoded file size.
func (e *EKeySpecEntry) Size() uint64 {
	return binfmt.Uint40Value(e.FileSize)
}

// Encoding is a parsed encoding manifest.
type Encoding struct {
	Header EncodingHeader `json:"header"`

	// ESpecBlock is the raw table of NUL-terminated encoding
	// specification strings. See [Encoding.ESpecs].
	ESpecBlock []byte `json:"-"`

	CEKeyIndex   []PageIndex  `json:"ce_key_table_index"`
	CEKeyEntries []CEKeyEntry `json:"ce_key_table_entries"`

	// EKeySpecIndex and EKeySpecEntries hold the encoding-key spec
	// table. Both are nil when the payload ends after the content-key
	// table.
	EKeySpecIndex   []PageIndex     `json:"e_key_table_index,omitempty"`
	EKeySpecEntries []EKeySpecEntry `json:"e_key_table_entries,omitempty"`

	// pageDigests[i] is the MD5 of content-key page i as read.
	pageDigests []hashid.ID

	// pageStarts[i] is the index in CEKeyEntries of page i's first
	// entry; pageCounts[i] is the number of entries in page i.
	pageStarts []int
	pageCounts []int
}

// ParseEncoding decodes an encoding manifest.
func ParseEncoding(data []byte) (*Encoding, error) {
	r := binfmt.NewReader(data)
	if err := r.Magic(EncodingMagic, "encoding magic"); err != nil {
		return nil, err
	}

	header, especSize, err := readEncodingHeader(r)
	if err != nil {
		return nil, err
	}

	espec, err := r.Bytes(int(especSize), "espec block")
	if err != nil {
		return nil, err
	}

	index, err := readPageIndex(r, header.CEKeyPageCount, "content key page index")
	if err != nil {
		return nil, err
	}

	parsed := &Encoding{
		Header:     header,
		ESpecBlock: espec,
		CEKeyIndex: index,
	}

	if header.CEKeyPageCount == 0 {
		return parsed, parsed.readEKeySpecTable(r)
	}

	pageSize := int(header.CEPageSizeKB) * 1024
	result, consumed, err := pagetable.Bytes(r.Rest(), pagetable.Options[CEKeyEntry]{
		PageSize: pageSize,
		Decode:   decodeCEKeyEntry,
		Policy:   pagetable.ExactPages[CEKeyEntry](int(header.CEKeyPageCount)),
		Offset:   r.Position(),
		OnPage: func(_ int, page []byte) {
			parsed.pageDigests = append(parsed.pageDigests, hashid.ID(md5.Sum(page)))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("content key table: %w", err)
	}
	parsed.CEKeyEntries = result.Records
	parsed.pageCounts = result.PageRecords
	start := 0
	for _, count := range result.PageRecords {
		parsed.pageStarts = append(parsed.pageStarts, start)
		start += count
	}
	if err := r.Skip(consumed, "content key table"); err != nil {
		return nil, err
	}

	if err := parsed.readEKeySpecTable(r); err != nil {
		return nil, err
	}
	return parsed, nil
}

func readEncodingHeader(r *binfmt.Reader) (EncodingHeader, uint32, error) {
	var header EncodingHeader
	var err error
	if header.Version, err = r.Uint8("encoding version"); err != nil {
		return header, 0, err
	}
	if header.CKeyHashSize, err = r.Uint8("content key size"); err != nil {
		return header, 0, err
	}
	if header.EKeyHashSize, err = r.Uint8("encoding key size"); err != nil {
		return header, 0, err
	}
	if header.CEPageSizeKB, err = r.Uint16("content key page size"); err != nil {
		return header, 0, err
	}
	if header.EPageSizeKB, err = r.Uint16("encoding key page size"); err != nil {
		return header, 0, err
	}
	if header.CEKeyPageCount, err = r.Uint32("content key page count"); err != nil {
		return header, 0, err
	}
	if header.EKeySpecPageCount, err = r.Uint32("encoding key page count"); err != nil {
		return header, 0, err
	}
	if err = r.Skip(1, "encoding header reserved byte"); err != nil {
		return header, 0, err
	}
	especSize, err := r.Uint32("espec block size")
	if err != nil {
		return header, 0, err
	}

	if header.CKeyHashSize != hashid.Size || header.EKeyHashSize != hashid.Size {
		return header, 0, binfmt.Malformed(3, "encoding header",
			"key sizes %d/%d, only %d-byte keys are supported",
			header.CKeyHashSize, header.EKeyHashSize, hashid.Size)
	}
	if header.CEPageSizeKB == 0 && header.CEKeyPageCount > 0 {
		return header, 0, binfmt.Malformed(5, "encoding header", "content key page size is zero")
	}
	return header, especSize, nil
}

func readPageIndex(r *binfmt.Reader, count uint32, what string) ([]PageIndex, error) {
	if need := uint64(count) * pageIndexSize; uint64(r.Remaining()) < need {
		return nil, binfmt.Truncated(r.Position(), what, int(min(need, 1<<31)), r.Remaining())
	}
	index := make([]PageIndex, count)
	for i := range index {
		var err error
		if index[i].FirstKey, err = r.ID(what); err != nil {
			return nil, err
		}
		if index[i].Checksum, err = r.ID(what); err != nil {
			return nil, err
		}
	}
	return index, nil
}

// errPadding ends the records of a page.
var errPadding = errors.New("page padding")

// decodeCEKeyEntry decodes one content-key entry. A zero key count
// with a null content key is page padding.
func decodeCEKeyEntry(buffer []byte) (CEKeyEntry, int, error) {
	var entry CEKeyEntry
	r := binfmt.NewReader(buffer)

	keyCount, err := r.Uint8("key count")
	if err != nil {
		return entry, 0, err
	}
	fileSize, err := r.Uint40("file size")
	if err != nil {
		return entry, 0, err
	}
	contentKey, err := r.ID("content key")
	if err != nil {
		return entry, 0, err
	}
	if keyCount == 0 && contentKey.IsNull() {
		return entry, 0, errPadding
	}

	encodingKeys := make([]hashid.ID, keyCount)
	for i := range encodingKeys {
		if encodingKeys[i], err = r.ID("encoding key"); err != nil {
			return entry, 0, err
		}
	}

	entry = CEKeyEntry{
		KeyCount:     keyCount,
		FileSize:     fileSize,
		ContentKey:   contentKey,
		EncodingKeys: encodingKeys,
	}
	return entry, r.Offset(), nil
}

// decodeEKeySpecEntry decodes one encoding-key spec entry. A null
// encoding key is page padding.
func decodeEKeySpecEntry(buffer []byte) (EKeySpecEntry, int, error) {
	var entry EKeySpecEntry
	r := binfmt.NewReader(buffer)

	encodingKey, err := r.ID("encoding key")
	if err != nil {
		return entry, 0, err
	}
	if encodingKey.IsNull() {
		return entry, 0, errPadding
	}
	especIndex, err := r.Uint32("espec index")
	if err != nil {
		return entry, 0, err
	}
	fileSize, err := r.Uint40("file size")
	if err != nil {
		return entry, 0, err
	}

	entry = EKeySpecEntry{EncodingKey: encodingKey, ESpecIndex: especIndex, FileSize: fileSize}
	return entry, r.Offset(), nil
}

// readEKeySpecTable decodes the encoding-key spec table when the
// payload carries all of it. Payloads that end early or omit it are
// accepted; only the content-key table is required for resolution.
func (m *Encoding) readEKeySpecTable(r *binfmt.Reader) error {
	count := uint64(m.Header.EKeySpecPageCount)
	pageSize := uint64(m.Header.EPageSizeKB) * 1024
	if count == 0 || pageSize == 0 {
		return nil
	}
	if uint64(r.Remaining()) < count*(pageIndexSize+pageSize) {
		return nil
	}

	index, err := readPageIndex(r, uint32(count), "encoding key page index")
	if err != nil {
		return err
	}
	result, _, err := pagetable.Bytes(r.Rest(), pagetable.Options[EKeySpecEntry]{
		PageSize: int(pageSize),
		Decode:   decodeEKeySpecEntry,
		Policy:   pagetable.ExactPages[EKeySpecEntry](int(count)),
		Offset:   r.Position(),
	})
	if err != nil {
		return fmt.Errorf("encoding key table: %w", err)
	}
	m.EKeySpecIndex = index
	m.EKeySpecEntries = result.Records
	return nil
}

// FindByContentKey returns the first entry, in page order, whose
// content key equals key.
func (m *Encoding) FindByContentKey(key hashid.ID) (*CEKeyEntry, bool) {
	for i := range m.CEKeyEntries {
		if m.CEKeyEntries[i].ContentKey == key {
			return &m.CEKeyEntries[i], true
		}
	}
	return nil, false
}

// FindSpec returns the encoding specification string recorded for an
// encoding key.
func (m *Encoding) FindSpec(key hashid.ID) (string, bool) {
	specs := m.ESpecs()
	for _, entry := range m.EKeySpecEntries {
		if entry.EncodingKey != key {
			continue
		}
		if int(entry.ESpecIndex) >= len(specs) {
			return "", false
		}
		return specs[entry.ESpecIndex], true
	}
	return "", false
}

// ESpecs splits the espec block into its NUL-terminated strings.
func (m *Encoding) ESpecs() []string {
	block := bytes.TrimRight(m.ESpecBlock, "\x00")
	if len(block) == 0 {
		return nil
	}
	return strings.Split(string(block), "\x00")
}

// VerifyPages checks each content-key page against its index record:
// the page MD5 must equal the recorded checksum and the page's first
// entry must carry the recorded first key.
func (m *Encoding) VerifyPages() error {
	for i, record := range m.CEKeyIndex {
		if i >= len(m.pageDigests) {
			return fmt.Errorf("page %d: not read", i)
		}
		if m.pageDigests[i] != record.Checksum {
			return fmt.Errorf("page %d: checksum %s, index records %s", i, m.pageDigests[i], record.Checksum)
		}
		if m.pageCounts[i] == 0 {
			continue
		}
		first := m.CEKeyEntries[m.pageStarts[i]].ContentKey
		if first != record.FirstKey {
			return fmt.Errorf("page %d: first key %s, index records %s", i, first, record.FirstKey)
		}
	}
	return nil
}
